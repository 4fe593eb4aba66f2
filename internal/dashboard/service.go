// Package dashboard consolida os números do gabinete para o painel inicial.
// O resultado fica em cache curto no redis para aliviar as agregações.
package dashboard

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gabinetefacil/gabinete/internal/agenda"
	"github.com/gabinetefacil/gabinete/internal/contato"
	"github.com/gabinetefacil/gabinete/internal/despesa"
	"github.com/gabinetefacil/gabinete/internal/guard"
	"github.com/gabinetefacil/gabinete/internal/materia"
	"github.com/gabinetefacil/gabinete/internal/visita"
)

const cacheTTL = 60 * time.Second

// Atividade é um item recente do gabinete, de qualquer origem.
type Atividade struct {
	Tipo      string    `json:"tipo"` // visita | materia
	Titulo    string    `json:"titulo"`
	Quando    time.Time `json:"quando"`
	CriadoEm  time.Time `json:"criado_em"`
	Referente uuid.UUID `json:"referente"`
}

// Resumo agrega os números exibidos no painel.
type Resumo struct {
	TotalContatos       int64            `json:"total_contatos"`
	VisitasMes          int64            `json:"visitas_mes"`
	DespesasMesCentavos int64            `json:"despesas_mes_centavos"`
	MateriasPorStatus   map[string]int64 `json:"materias_por_status"`
	CompromissosFuturos int64            `json:"compromissos_futuros"`
	AniversariantesHoje int              `json:"aniversariantes_hoje"`
	AtividadesRecentes  []Atividade      `json:"atividades_recentes"`
	GeradoEm            time.Time        `json:"gerado_em"`
}

type redisCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Service monta o resumo do painel.
type Service struct {
	contatos     *contato.Service
	visitas      *visita.Repository
	despesas     *despesa.Repository
	materias     *materia.Repository
	compromissos *agenda.Repository
	cache        redisCache
}

// NewService cria o serviço de painel. O cache pode ser nil.
func NewService(contatos *contato.Service, visitas *visita.Repository, despesas *despesa.Repository, materias *materia.Repository, compromissos *agenda.Repository, cache redisCache) *Service {
	return &Service{
		contatos:     contatos,
		visitas:      visitas,
		despesas:     despesas,
		materias:     materias,
		compromissos: compromissos,
		cache:        cache,
	}
}

// Resumo devolve o painel do gabinete, servindo do cache quando possível.
func (s *Service) Resumo(ctx context.Context, gabineteID uuid.UUID) (*Resumo, error) {
	cacheKey := "dashboard:" + guard.ScopeKey(gabineteID, "resumo")
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached Resumo
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	resumo, err := s.montar(ctx, gabineteID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(resumo); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("dashboard: escrita no cache falhou")
			}
		}
	}
	return resumo, nil
}

// Invalidate descarta o resumo em cache do gabinete.
func (s *Service) Invalidate(ctx context.Context, gabineteID uuid.UUID) {
	if s.cache == nil {
		return
	}
	cacheKey := "dashboard:" + guard.ScopeKey(gabineteID, "resumo")
	if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("dashboard: invalidação do cache falhou")
	}
}

func (s *Service) montar(ctx context.Context, gabineteID uuid.UUID) (*Resumo, error) {
	totalContatos, err := s.contatos.Count(ctx, gabineteID)
	if err != nil {
		return nil, err
	}
	visitasMes, err := s.visitas.CountMes(ctx, gabineteID)
	if err != nil {
		return nil, err
	}
	despesasMes, err := s.despesas.TotalMesCorrente(ctx, gabineteID)
	if err != nil {
		return nil, err
	}
	materiasPorStatus, err := s.materias.CountPorStatus(ctx, gabineteID)
	if err != nil {
		return nil, err
	}
	futuros, err := s.compromissos.CountFuturos(ctx, gabineteID)
	if err != nil {
		return nil, err
	}
	aniversariantes, err := s.contatos.Aniversariantes(ctx, gabineteID, 0)
	if err != nil {
		return nil, err
	}
	hoje := 0
	for _, a := range aniversariantes {
		if a.Hoje {
			hoje++
		}
	}

	atividades, err := s.atividadesRecentes(ctx, gabineteID)
	if err != nil {
		return nil, err
	}

	return &Resumo{
		TotalContatos:       totalContatos,
		VisitasMes:          visitasMes,
		DespesasMesCentavos: despesasMes,
		MateriasPorStatus:   materiasPorStatus,
		CompromissosFuturos: futuros,
		AniversariantesHoje: hoje,
		AtividadesRecentes:  atividades,
		GeradoEm:            time.Now().UTC(),
	}, nil
}

// atividadesRecentes mistura visitas e matérias mais novas, limitado a cinco.
func (s *Service) atividadesRecentes(ctx context.Context, gabineteID uuid.UUID) ([]Atividade, error) {
	visitas, err := s.visitas.List(ctx, gabineteID)
	if err != nil {
		return nil, err
	}
	materias, err := s.materias.List(ctx, gabineteID, "", "")
	if err != nil {
		return nil, err
	}

	var atividades []Atividade
	for i, v := range visitas {
		if i >= 5 {
			break
		}
		atividades = append(atividades, Atividade{
			Tipo:      "visita",
			Titulo:    v.ContatoNome,
			Quando:    v.Data,
			CriadoEm:  v.CriadoEm,
			Referente: v.ID,
		})
	}
	for i, m := range materias {
		if i >= 5 {
			break
		}
		atividades = append(atividades, Atividade{
			Tipo:      "materia",
			Titulo:    m.Titulo,
			Quando:    m.Data,
			CriadoEm:  m.CriadoEm,
			Referente: m.ID,
		})
	}

	sort.Slice(atividades, func(i, j int) bool {
		return atividades[i].CriadoEm.After(atividades[j].CriadoEm)
	})
	if len(atividades) > 5 {
		atividades = atividades[:5]
	}
	return atividades, nil
}
