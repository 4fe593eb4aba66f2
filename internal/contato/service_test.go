package contato

import (
	"testing"
	"time"
)

func dia(ano int, mes time.Month, d int) time.Time {
	return time.Date(ano, mes, d, 0, 0, 0, 0, time.UTC)
}

func TestDiasAteAniversarioHoje(t *testing.T) {
	hoje := dia(2026, time.March, 15)
	nasc := dia(1990, time.March, 15)

	faltam, proximo := diasAteAniversario(hoje, nasc)
	if faltam != 0 {
		t.Fatalf("faltam = %d, esperava 0", faltam)
	}
	if proximo.Year() != 2026 {
		t.Fatalf("próximo aniversário em %d, esperava 2026", proximo.Year())
	}
}

func TestDiasAteAniversarioNoMesmoAno(t *testing.T) {
	hoje := dia(2026, time.March, 15)
	nasc := dia(1990, time.April, 1)

	faltam, _ := diasAteAniversario(hoje, nasc)
	if faltam != 17 {
		t.Fatalf("faltam = %d, esperava 17", faltam)
	}
}

// Aniversário já passou este ano: o próximo cai no ano seguinte.
func TestDiasAteAniversarioViradaDeAno(t *testing.T) {
	hoje := dia(2026, time.December, 28)
	nasc := dia(1990, time.January, 3)

	faltam, proximo := diasAteAniversario(hoje, nasc)
	if faltam != 6 {
		t.Fatalf("faltam = %d, esperava 6", faltam)
	}
	if proximo.Year() != 2027 {
		t.Fatalf("próximo aniversário em %d, esperava 2027", proximo.Year())
	}
}

func TestDiasAteAniversarioPassouOntem(t *testing.T) {
	hoje := dia(2026, time.March, 15)
	nasc := dia(1990, time.March, 14)

	faltam, proximo := diasAteAniversario(hoje, nasc)
	if faltam != 364 {
		t.Fatalf("faltam = %d, esperava 364", faltam)
	}
	if proximo.Year() != 2027 {
		t.Fatalf("próximo aniversário em %d, esperava 2027", proximo.Year())
	}
}

func TestIdadeNoProximoAniversario(t *testing.T) {
	hoje := dia(2026, time.March, 15)
	nasc := dia(1990, time.March, 15)

	_, proximo := diasAteAniversario(hoje, nasc)
	idade := proximo.Year() - nasc.Year()
	if idade != 36 {
		t.Fatalf("idade = %d, esperava 36", idade)
	}
}
