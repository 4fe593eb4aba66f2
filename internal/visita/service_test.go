package visita

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gabinetefacil/gabinete/internal/contato"
)

func TestCreateSemContato(t *testing.T) {
	s := &Service{}

	_, err := s.Create(context.Background(), uuid.New(), Input{Tipo: "presencial"})
	if !errors.Is(err, ErrContatoObrigatorio) {
		t.Fatalf("esperava ErrContatoObrigatorio, veio %v", err)
	}
}

func TestCreateComContatoExigeNome(t *testing.T) {
	s := &Service{
		runTx: func(ctx context.Context, fn func(pctx context.Context, tx pgx.Tx) error) error {
			t.Fatal("transação não deveria ser aberta")
			return nil
		},
	}

	_, _, err := s.CreateComContato(context.Background(), uuid.New(), contato.Input{}, Input{})
	if err == nil {
		t.Fatal("esperava erro para contato sem nome")
	}
}

// Falha na transação não devolve visita nem contato parciais.
func TestCreateComContatoFalhaNaTransacao(t *testing.T) {
	boom := errors.New("insert falhou")
	s := &Service{
		runTx: func(ctx context.Context, fn func(pctx context.Context, tx pgx.Tx) error) error {
			return boom
		},
	}

	v, c, err := s.CreateComContato(context.Background(), uuid.New(), contato.Input{Nome: "Maria"}, Input{})
	if !errors.Is(err, boom) {
		t.Fatalf("esperava o erro da transação, veio %v", err)
	}
	if v.ID != uuid.Nil || c.ID != uuid.Nil {
		t.Fatal("falha na transação não pode devolver resultado parcial")
	}
}
