// Package provision coordena a criação de identidade e perfil em um único
// limite transacional: nunca existe identidade sem perfil correspondente.
package provision

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gabinetefacil/gabinete/internal/auth"
	"github.com/gabinetefacil/gabinete/internal/db"
	"github.com/gabinetefacil/gabinete/internal/gabinete"
	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/util"
)

var (
	// ErrEmailInUse indica e-mail já cadastrado.
	ErrEmailInUse = errors.New("este email já está sendo utilizado")
	// ErrWeakPassword indica senha abaixo do mínimo exigido.
	ErrWeakPassword = errors.New("a senha é muito fraca; use pelo menos 6 caracteres")
	// ErrInvalidRole indica papel fora da enumeração.
	ErrInvalidRole = errors.New("papel inválido")
	// ErrGabineteRequired indica papel que exige gabinete sem gabinete informado.
	ErrGabineteRequired = errors.New("gabinete obrigatório para este papel")
)

// Service executa os fluxos de provisionamento de contas.
type Service struct {
	usuarios  *repo.Queries
	gabinetes *gabinete.Repository
	trial     time.Duration
	runTx     func(ctx context.Context, fn func(pctx context.Context, tx pgx.Tx) error) error
}

// NewService cria o serviço de provisionamento.
func NewService(pool *pgxpool.Pool, usuarios *repo.Queries, gabinetes *gabinete.Repository, trial time.Duration) *Service {
	if trial <= 0 {
		trial = 30 * 24 * time.Hour
	}
	return &Service{
		usuarios:  usuarios,
		gabinetes: gabinetes,
		trial:     trial,
		runTx: func(ctx context.Context, fn func(pctx context.Context, tx pgx.Tx) error) error {
			return db.WithTx(ctx, pool, fn)
		},
	}
}

// SelfRegisterInput contém os dados do auto-registro (gabinete + admin dono).
type SelfRegisterInput struct {
	GabineteNome string
	UserNome     string
	Email        string
	Password     string
}

// SelfRegisterResult agrega o que foi criado.
type SelfRegisterResult struct {
	Usuario  repo.Usuario
	Gabinete gabinete.Gabinete
}

// SelfRegister cria gabinete e perfil admin em uma única transação.
// Uma repetição após falha não deixa gabinete órfão: tudo ou nada.
func (s *Service) SelfRegister(ctx context.Context, input SelfRegisterInput) (*SelfRegisterResult, error) {
	if err := util.RequireString(input.GabineteNome, "nome do gabinete"); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.UserNome, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, ErrWeakPassword
	}

	senhaHash, err := auth.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	var result SelfRegisterResult
	err = s.runTx(ctx, func(pctx context.Context, tx pgx.Tx) error {
		gabRepo := s.gabinetes.WithTx(tx)
		gab, err := gabRepo.Create(pctx, gabinete.CreateInput{
			Nome:       strings.TrimSpace(input.GabineteNome),
			Ativo:      true,
			Vencimento: util.Now().Add(s.trial),
		})
		if err != nil {
			return err
		}

		gabID := gab.ID
		usuario, err := s.usuarios.WithTx(tx).InsertUsuario(pctx, repo.InsertUsuarioParams{
			ID:         uuid.New(),
			Nome:       strings.TrimSpace(input.UserNome),
			Email:      input.Email,
			SenhaHash:  senhaHash,
			Role:       string(rbac.RoleAdmin),
			GabineteID: &gabID,
			Ativo:      true,
			CriadoEm:   util.Now(),
		})
		if err != nil {
			return err
		}

		if err := gabRepo.SetOwner(pctx, gab.ID, usuario.ID); err != nil {
			return err
		}
		gab.OwnerID = &usuario.ID

		result.Usuario = usuario
		result.Gabinete = *gab
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	return &result, nil
}

// CreateMemberInput descreve a criação de um perfil por admin ou superadmin.
type CreateMemberInput struct {
	Nome       string
	Email      string
	Role       rbac.Role
	GabineteID *uuid.UUID
	Password   string // vazio gera senha temporária
}

// CreateMemberResult devolve o perfil e, quando gerada, a senha temporária.
type CreateMemberResult struct {
	Usuario      repo.Usuario
	TempPassword string
}

// CreateMember cria identidade e perfil de um novo membro.
func (s *Service) CreateMember(ctx context.Context, input CreateMemberInput) (*CreateMemberResult, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if !rbac.IsValid(input.Role) {
		return nil, ErrInvalidRole
	}
	if rbac.RequiresGabinete(input.Role) && (input.GabineteID == nil || *input.GabineteID == uuid.Nil) {
		return nil, ErrGabineteRequired
	}

	password := input.Password
	var tempPassword string
	if password == "" {
		generated, err := auth.TempPassword()
		if err != nil {
			return nil, err
		}
		password = generated
		tempPassword = generated
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, ErrWeakPassword
	}

	senhaHash, err := auth.Hash(password)
	if err != nil {
		return nil, err
	}

	gabineteID := input.GabineteID
	if !rbac.RequiresGabinete(input.Role) {
		gabineteID = nil
	}

	var usuario repo.Usuario
	err = s.runTx(ctx, func(pctx context.Context, tx pgx.Tx) error {
		if gabineteID != nil {
			if _, err := s.gabinetes.WithTx(tx).GetByID(pctx, *gabineteID); err != nil {
				return err
			}
		}

		created, err := s.usuarios.WithTx(tx).InsertUsuario(pctx, repo.InsertUsuarioParams{
			ID:         uuid.New(),
			Nome:       strings.TrimSpace(input.Nome),
			Email:      input.Email,
			SenhaHash:  senhaHash,
			Role:       string(input.Role),
			GabineteID: gabineteID,
			Ativo:      true,
			CriadoEm:   util.Now(),
		})
		if err != nil {
			return err
		}
		usuario = created
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	return &CreateMemberResult{Usuario: usuario, TempPassword: tempPassword}, nil
}
