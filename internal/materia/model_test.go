package materia

import (
	"errors"
	"testing"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"", StatusAguardando},
		{"aguardando", StatusAguardando},
		{"Aguardando Votação", StatusAguardando},
		{"pendente", StatusAguardando},
		{"aprovado", StatusAprovado},
		{"APROVADA", StatusAprovado},
		{"rejeitado", StatusRejeitado},
		{"rejeitada", StatusRejeitado},
		{"atendida", StatusAtendida},
		{"atendido", StatusAtendida},
		{"  aprovado  ", StatusAprovado},
	}

	for _, tc := range cases {
		got, err := NormalizeStatus(tc.raw)
		if err != nil {
			t.Errorf("NormalizeStatus(%q): %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeStatus(%q) = %q, esperava %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeStatusInvalido(t *testing.T) {
	for _, raw := range []string{"arquivada", "em pauta", "xx"} {
		if _, err := NormalizeStatus(raw); !errors.Is(err, ErrStatusInvalido) {
			t.Errorf("NormalizeStatus(%q): esperava ErrStatusInvalido, veio %v", raw, err)
		}
	}
}
