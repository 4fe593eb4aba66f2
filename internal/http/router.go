package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gabinetefacil/gabinete/internal/acesso"
	"github.com/gabinetefacil/gabinete/internal/agenda"
	"github.com/gabinetefacil/gabinete/internal/config"
	"github.com/gabinetefacil/gabinete/internal/contato"
	"github.com/gabinetefacil/gabinete/internal/dashboard"
	"github.com/gabinetefacil/gabinete/internal/despesa"
	"github.com/gabinetefacil/gabinete/internal/gabinete"
	httpmiddleware "github.com/gabinetefacil/gabinete/internal/http/middleware"
	"github.com/gabinetefacil/gabinete/internal/mail"
	"github.com/gabinetefacil/gabinete/internal/materia"
	"github.com/gabinetefacil/gabinete/internal/provision"
	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/service"
	"github.com/gabinetefacil/gabinete/internal/storage"
	"github.com/gabinetefacil/gabinete/internal/sweep"
	"github.com/gabinetefacil/gabinete/internal/visita"
)

// Handler concentra os serviços expostos pela API.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	provisioner   *provision.Service
	equipe        *service.EquipeService
	gabinetes     *gabinete.Service
	acessos       *acesso.Repository
	contatos      *contato.Service
	visitas       *visita.Service
	despesas      *despesa.Service
	materias      *materia.Service
	agenda        *agenda.Service
	dashboard     *dashboard.Service
	sweeper       *sweep.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter monta os serviços de domínio e devolve o roteador configurado,
// junto com o serviço de varreduras já iniciado para o desligamento em main.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService, gabinetes *gabinete.Service, acessos *acesso.Repository) (http.Handler, *sweep.Service, error) {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	queries := repo.New(pool)
	gabineteRepo := gabinete.NewRepository(pool)

	var store storage.Store = storage.NoopStore{}
	switch cfg.Storage.Provider {
	case "", "noop":
		// mantém store padrão
	case "s3", "r2", "minio":
		s3Store, err := storage.NewS3Store(storage.S3Config{
			Endpoint:     cfg.Storage.S3Endpoint,
			Region:       cfg.Storage.S3Region,
			Bucket:       cfg.Storage.S3Bucket,
			AccessKey:    cfg.Storage.S3AccessKey,
			SecretKey:    cfg.Storage.S3SecretKey,
			PublicDomain: cfg.Storage.S3PublicURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("storage: %w", err)
		}
		store = s3Store
	default:
		return nil, nil, fmt.Errorf("storage: provedor %s não suportado", cfg.Storage.Provider)
	}

	var mailer *mail.Mailer
	if cfg.Mail.Enabled() {
		mailer = mail.NewMailer(cfg.Mail)
	}

	provisioner := provision.NewService(pool, queries, gabineteRepo, cfg.TrialDuration)

	var inviteMailer interface {
		SendInvite(ctx context.Context, email, nome, tempPassword string) error
	}
	if mailer != nil {
		inviteMailer = mailer
	}
	equipeService := service.NewEquipeService(queries, provisioner, authService, inviteMailer)

	contatoRepo := contato.NewRepository(pool)
	contatoService := contato.NewService(contatoRepo)
	visitaRepo := visita.NewRepository(pool)
	visitaService := visita.NewService(pool, visitaRepo, contatoRepo)
	despesaRepo := despesa.NewRepository(pool)
	despesaService := despesa.NewService(despesaRepo)
	materiaRepo := materia.NewRepository(pool)
	materiaService := materia.NewService(materiaRepo, store)
	agendaRepo := agenda.NewRepository(pool)
	agendaService := agenda.NewService(agendaRepo)
	dashboardService := dashboard.NewService(contatoService, visitaRepo, despesaRepo, materiaRepo, agendaRepo, redisClient)

	var notifier sweep.Notifier
	if n := sweep.NewWebhookNotifier(cfg.Sweep.WebhookURL); n != nil {
		notifier = n
	}
	var expirationMailer interface {
		SendExpirationNotice(ctx context.Context, email, nome, gabineteNome string) error
	}
	if mailer != nil {
		expirationMailer = mailer
	}
	sweeper := sweep.NewService(cfg.Sweep, gabineteRepo, queries, redisClient, contatoService, notifier, expirationMailer)
	if err := sweeper.Start(); err != nil {
		return nil, nil, err
	}

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		provisioner:   provisioner,
		equipe:        equipeService,
		gabinetes:     gabinetes,
		acessos:       acessos,
		contatos:      contatoService,
		visitas:       visitaService,
		despesas:      despesaService,
		materias:      materiaService,
		agenda:        agendaService,
		dashboard:     dashboardService,
		sweeper:       sweeper,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Metrics)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/healthz", h.Health)
		public.Get("/ready", h.Ready)
		public.Handle("/metrics", promhttp.Handler())

		public.Route("/v1/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/registrar", h.Register)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))
		private.Use(httpmiddleware.ResolveSession(authService, authService))

		private.Get("/v1/auth/me", h.Me)
		private.Get("/v1/dashboard", h.Dashboard)

		private.Route("/v1/contatos", func(c chi.Router) {
			c.Get("/", h.ListContatos)
			c.Post("/", h.CreateContato)
			c.Get("/aniversariantes", h.ListAniversariantes)
			c.Get("/{id}", h.GetContato)
			c.Put("/{id}", h.UpdateContato)
			c.Delete("/{id}", h.DeleteContato)
		})

		private.Route("/v1/visitas", func(v chi.Router) {
			v.Get("/", h.ListVisitas)
			v.Post("/", h.CreateVisita)
			v.Get("/tipos", h.ListTiposVisita)
			v.Put("/{id}", h.UpdateVisita)
			v.Delete("/{id}", h.DeleteVisita)
		})

		private.Route("/v1/despesas", func(d chi.Router) {
			d.Get("/", h.ListDespesas)
			d.Post("/", h.CreateDespesa)
			d.Get("/resumo", h.ResumoDespesas)
			d.Get("/categorias", h.ListCategoriasDespesa)
			d.Put("/{id}", h.UpdateDespesa)
			d.Delete("/{id}", h.DeleteDespesa)
		})

		private.Route("/v1/materias", func(m chi.Router) {
			m.Get("/", h.ListMaterias)
			m.Post("/", h.CreateMateria)
			m.Get("/{id}", h.GetMateria)
			m.Put("/{id}", h.UpdateMateria)
			m.Patch("/{id}/status", h.ChangeMateriaStatus)
			m.Delete("/{id}", h.DeleteMateria)
			m.Post("/{id}/anexos", h.UploadAnexo)
			m.Delete("/{id}/anexos/{anexoID}", h.DeleteAnexo)
		})

		private.Route("/v1/agenda", func(a chi.Router) {
			a.Get("/", h.ListAgenda)
			a.Post("/", h.CreateCompromisso)
			a.Get("/{id}", h.GetCompromisso)
			a.Put("/{id}", h.UpdateCompromisso)
			a.Delete("/{id}", h.DeleteCompromisso)
		})

		private.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdmin)
			admin.Route("/v1/equipe", func(e chi.Router) {
				e.Get("/", h.ListEquipe)
				e.Post("/convites", h.InviteMember)
				e.Put("/{id}", h.UpdateMember)
				e.Patch("/{id}/role", h.ChangeMemberRole)
				e.Delete("/{id}", h.DeactivateMember)
				e.Post("/{id}/reativar", h.ReactivateMember)
			})
		})

		private.Group(func(saas chi.Router) {
			saas.Use(httpmiddleware.RequireSuperAdmin)
			saas.Route("/v1/saas", func(s chi.Router) {
				s.Get("/gabinetes", h.ListGabinetes)
				s.Post("/gabinetes", h.CreateGabinete)
				s.Get("/gabinetes/{id}", h.GetGabinete)
				s.Patch("/gabinetes/{id}", h.UpdateGabinete)
				s.Get("/usuarios", h.ListAllUsuarios)
				s.Get("/acessos", h.ListAcessos)
			})
		})
	})

	log.Info().Msg("rotas registradas")
	return r, sweeper, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
