// Package sweep roda as rotinas agendadas do sistema: derrubada de sessões de
// gabinetes vencidos ou desativados e o digest diário de aniversariantes.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/gabinetefacil/gabinete/internal/auth"
	"github.com/gabinetefacil/gabinete/internal/config"
	"github.com/gabinetefacil/gabinete/internal/contato"
	"github.com/gabinetefacil/gabinete/internal/gabinete"
	"github.com/gabinetefacil/gabinete/internal/repo"
)

type tokenRevoker interface {
	RevokeRefreshTokensByGabinete(ctx context.Context, gabineteID uuid.UUID) ([]string, error)
	GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error)
}

type redisDeleter interface {
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type gabineteLister interface {
	List(ctx context.Context) ([]gabinete.Gabinete, error)
	ListIndisponiveis(ctx context.Context) ([]gabinete.Gabinete, error)
}

type aniversarianteLister interface {
	Aniversariantes(ctx context.Context, gabineteID uuid.UUID, dias int) ([]contato.Aniversariante, error)
}

type expirationMailer interface {
	SendExpirationNotice(ctx context.Context, email, nome, gabineteNome string) error
}

// Service agenda e executa as varreduras.
type Service struct {
	cfg       config.SweepConfig
	gabinetes gabineteLister
	tokens    tokenRevoker
	redis     redisDeleter
	contatos  aniversarianteLister
	notifier  Notifier
	mailer    expirationMailer

	cron *cron.Cron
	// evita reenvio do aviso de vencimento a cada passada; a varredura roda
	// tanto pelo agendador quanto por disparo manual, então o acesso é
	// protegido por mutex
	mu       sync.Mutex
	notified map[uuid.UUID]struct{}
}

// NewService cria o serviço de varreduras. Notifier e mailer podem ser nil.
func NewService(cfg config.SweepConfig, gabinetes gabineteLister, tokens tokenRevoker, redis redisDeleter, contatos aniversarianteLister, notifier Notifier, mailer expirationMailer) *Service {
	return &Service{
		cfg:       cfg,
		gabinetes: gabinetes,
		tokens:    tokens,
		redis:     redis,
		contatos:  contatos,
		notifier:  notifier,
		mailer:    mailer,
		notified:  make(map[uuid.UUID]struct{}),
	}
}

// Start registra os jobs e inicia o agendador.
func (s *Service) Start() error {
	if !s.cfg.Enabled {
		log.Info().Msg("sweep: rotinas agendadas desabilitadas")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cfg.ExpirationSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.RunExpirationSweep(ctx)
	}); err != nil {
		return fmt.Errorf("sweep: agendamento de expiração: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.BirthdaySchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.RunBirthdayDigest(ctx)
	}); err != nil {
		return fmt.Errorf("sweep: agendamento de aniversariantes: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("expiracao", s.cfg.ExpirationSchedule).
		Str("aniversariantes", s.cfg.BirthdaySchedule).
		Msg("sweep: rotinas agendadas iniciadas")
	return nil
}

// Stop para o agendador e espera os jobs em andamento.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunExpirationSweep derruba as sessões de gabinetes vencidos ou desativados.
func (s *Service) RunExpirationSweep(ctx context.Context) {
	indisponiveis, err := s.gabinetes.ListIndisponiveis(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep: listagem de gabinetes indisponíveis falhou")
		return
	}

	for _, gab := range indisponiveis {
		hashes, err := s.tokens.RevokeRefreshTokensByGabinete(ctx, gab.ID)
		if err != nil {
			log.Error().Err(err).Str("gabinete", gab.ID.String()).Msg("sweep: revogação falhou")
			continue
		}
		for _, h := range hashes {
			if err := s.redis.Del(ctx, auth.RefreshRedisKey(h)).Err(); err != nil {
				log.Warn().Err(err).Msg("sweep: limpeza no redis falhou")
			}
		}

		if len(hashes) > 0 {
			log.Info().
				Str("gabinete", gab.ID.String()).
				Int("sessoes", len(hashes)).
				Msg("sweep: sessões de gabinete indisponível derrubadas")
		}

		s.mu.Lock()
		_, done := s.notified[gab.ID]
		if !done {
			s.notified[gab.ID] = struct{}{}
		}
		s.mu.Unlock()
		if done {
			continue
		}
		s.notifyExpiration(ctx, gab)
	}
}

func (s *Service) notifyExpiration(ctx context.Context, gab gabinete.Gabinete) {
	if s.notifier != nil {
		err := s.notifier.Notify(ctx, Notice{
			Title:    "Gabinete indisponível",
			Text:     fmt.Sprintf("%s (%s) está vencido ou desativado; sessões derrubadas.", gab.Nome, gab.ID),
			Severity: "warning",
		})
		if err != nil {
			log.Warn().Err(err).Msg("sweep: aviso no webhook falhou")
		}
	}

	if s.mailer == nil || gab.OwnerID == nil {
		return
	}
	owner, err := s.tokens.GetUsuarioByID(ctx, *gab.OwnerID)
	if err != nil {
		log.Warn().Err(err).Msg("sweep: dono do gabinete não encontrado")
		return
	}
	if err := s.mailer.SendExpirationNotice(ctx, owner.Email, owner.Nome, gab.Nome); err != nil {
		log.Warn().Err(err).Msg("sweep: e-mail de vencimento falhou")
	}
}

// RunBirthdayDigest publica no webhook os aniversariantes do dia por gabinete.
func (s *Service) RunBirthdayDigest(ctx context.Context) {
	if s.notifier == nil {
		return
	}

	gabinetes, err := s.gabinetes.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep: listagem de gabinetes falhou")
		return
	}

	for _, gab := range gabinetes {
		if !gab.Ativo {
			continue
		}
		aniversariantes, err := s.contatos.Aniversariantes(ctx, gab.ID, 0)
		if err != nil {
			log.Warn().Err(err).Str("gabinete", gab.ID.String()).Msg("sweep: aniversariantes falhou")
			continue
		}

		var hoje []string
		for _, a := range aniversariantes {
			if a.Hoje {
				hoje = append(hoje, fmt.Sprintf("%s (%d anos)", a.Nome, a.Idade))
			}
		}
		if len(hoje) == 0 {
			continue
		}

		text := fmt.Sprintf("Aniversariantes de hoje no gabinete %s:", gab.Nome)
		for _, nome := range hoje {
			text += "\n- " + nome
		}
		if err := s.notifier.Notify(ctx, Notice{Title: "Aniversariantes do dia", Text: text}); err != nil {
			log.Warn().Err(err).Msg("sweep: digest de aniversariantes falhou")
		}
	}
}
