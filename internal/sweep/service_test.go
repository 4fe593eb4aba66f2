package sweep

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gabinetefacil/gabinete/internal/config"
	"github.com/gabinetefacil/gabinete/internal/contato"
	"github.com/gabinetefacil/gabinete/internal/gabinete"
	"github.com/gabinetefacil/gabinete/internal/repo"
)

type stubGabinetes struct {
	ativos        []gabinete.Gabinete
	indisponiveis []gabinete.Gabinete
}

func (s *stubGabinetes) List(ctx context.Context) ([]gabinete.Gabinete, error) {
	return s.ativos, nil
}

func (s *stubGabinetes) ListIndisponiveis(ctx context.Context) ([]gabinete.Gabinete, error) {
	return s.indisponiveis, nil
}

type stubTokens struct {
	mu          sync.Mutex
	hashes      map[uuid.UUID][]string
	revokeCalls int
	owner       repo.Usuario
}

func (s *stubTokens) RevokeRefreshTokensByGabinete(ctx context.Context, gabineteID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeCalls++
	hashes := s.hashes[gabineteID]
	s.hashes[gabineteID] = nil
	return hashes, nil
}

func (s *stubTokens) GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error) {
	if id == s.owner.ID {
		return s.owner, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

type stubDeleter struct {
	mu      sync.Mutex
	deleted []string
}

func (s *stubDeleter) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

type stubNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (s *stubNotifier) Notify(ctx context.Context, n Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
	return nil
}

type stubBirthdays struct {
	porGabinete map[uuid.UUID][]contato.Aniversariante
}

func (s *stubBirthdays) Aniversariantes(ctx context.Context, gabineteID uuid.UUID, dias int) ([]contato.Aniversariante, error) {
	return s.porGabinete[gabineteID], nil
}

func TestRunExpirationSweepDerrubaSessoes(t *testing.T) {
	gabID := uuid.New()
	gab := gabinete.Gabinete{ID: gabID, Nome: "Gabinete Vencido", Vencimento: time.Now().Add(-time.Hour)}

	tokens := &stubTokens{hashes: map[uuid.UUID][]string{gabID: {"hash1", "hash2"}}}
	deleter := &stubDeleter{}
	notifier := &stubNotifier{}

	svc := NewService(config.SweepConfig{}, &stubGabinetes{indisponiveis: []gabinete.Gabinete{gab}}, tokens, deleter, &stubBirthdays{}, notifier, nil)

	svc.RunExpirationSweep(context.Background())

	if tokens.revokeCalls != 1 {
		t.Fatalf("revokeCalls = %d, esperava 1", tokens.revokeCalls)
	}
	if len(deleter.deleted) != 2 {
		t.Fatalf("chaves removidas = %d, esperava 2", len(deleter.deleted))
	}
	if len(notifier.notices) != 1 {
		t.Fatalf("avisos = %d, esperava 1", len(notifier.notices))
	}
}

// Passadas seguintes continuam derrubando sessões novas, mas o aviso de
// vencimento sai uma vez só por gabinete.
func TestRunExpirationSweepNaoRepeteAviso(t *testing.T) {
	gabID := uuid.New()
	gab := gabinete.Gabinete{ID: gabID, Nome: "Gabinete Vencido"}

	tokens := &stubTokens{hashes: map[uuid.UUID][]string{gabID: {"hash1"}}}
	notifier := &stubNotifier{}
	svc := NewService(config.SweepConfig{}, &stubGabinetes{indisponiveis: []gabinete.Gabinete{gab}}, tokens, &stubDeleter{}, &stubBirthdays{}, notifier, nil)

	svc.RunExpirationSweep(context.Background())
	svc.RunExpirationSweep(context.Background())

	if tokens.revokeCalls != 2 {
		t.Fatalf("revokeCalls = %d, esperava 2", tokens.revokeCalls)
	}
	if len(notifier.notices) != 1 {
		t.Fatalf("avisos = %d, esperava 1", len(notifier.notices))
	}
}

// A varredura pode rodar ao mesmo tempo pelo agendador e por disparo manual
// após a desativação de um gabinete; o controle de avisos tem que aguentar as
// passadas concorrentes sem corromper estado nem duplicar o aviso.
func TestRunExpirationSweepConcorrente(t *testing.T) {
	gabID := uuid.New()
	gab := gabinete.Gabinete{ID: gabID, Nome: "Gabinete Vencido"}

	tokens := &stubTokens{hashes: map[uuid.UUID][]string{gabID: {"hash1"}}}
	notifier := &stubNotifier{}
	svc := NewService(config.SweepConfig{}, &stubGabinetes{indisponiveis: []gabinete.Gabinete{gab}}, tokens, &stubDeleter{}, &stubBirthdays{}, notifier, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.RunExpirationSweep(context.Background())
		}()
	}
	wg.Wait()

	if len(notifier.notices) != 1 {
		t.Fatalf("avisos = %d, esperava 1", len(notifier.notices))
	}
}

func TestStartStop(t *testing.T) {
	cfg := config.SweepConfig{Enabled: true, ExpirationSchedule: "@hourly", BirthdaySchedule: "@daily"}
	svc := NewService(cfg, &stubGabinetes{}, &stubTokens{hashes: map[uuid.UUID][]string{}}, &stubDeleter{}, &stubBirthdays{}, nil, nil)
	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	svc.Stop()

	// desabilitado: Start não agenda nada e Stop é inofensivo
	svc = NewService(config.SweepConfig{}, &stubGabinetes{}, &stubTokens{hashes: map[uuid.UUID][]string{}}, &stubDeleter{}, &stubBirthdays{}, nil, nil)
	if err := svc.Start(); err != nil {
		t.Fatalf("Start desabilitado: %v", err)
	}
	svc.Stop()
}

func TestRunBirthdayDigest(t *testing.T) {
	comAniversario := gabinete.Gabinete{ID: uuid.New(), Nome: "Gabinete A", Ativo: true}
	semAniversario := gabinete.Gabinete{ID: uuid.New(), Nome: "Gabinete B", Ativo: true}
	inativo := gabinete.Gabinete{ID: uuid.New(), Nome: "Gabinete C", Ativo: false}

	birthdays := &stubBirthdays{porGabinete: map[uuid.UUID][]contato.Aniversariante{
		comAniversario.ID: {
			{Contato: contato.Contato{Nome: "Maria"}, Idade: 40, Hoje: true},
			{Contato: contato.Contato{Nome: "José"}, Idade: 31, Hoje: false},
		},
		inativo.ID: {
			{Contato: contato.Contato{Nome: "Pedro"}, Idade: 50, Hoje: true},
		},
	}}
	notifier := &stubNotifier{}
	svc := NewService(config.SweepConfig{}, &stubGabinetes{ativos: []gabinete.Gabinete{comAniversario, semAniversario, inativo}}, &stubTokens{hashes: map[uuid.UUID][]string{}}, &stubDeleter{}, birthdays, notifier, nil)

	svc.RunBirthdayDigest(context.Background())

	if len(notifier.notices) != 1 {
		t.Fatalf("avisos = %d, esperava 1 (só o gabinete ativo com aniversariante de hoje)", len(notifier.notices))
	}
}
