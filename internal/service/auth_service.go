package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gabinetefacil/gabinete/internal/acesso"
	"github.com/gabinetefacil/gabinete/internal/auth"
	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/session"
	"github.com/gabinetefacil/gabinete/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
)

type authRepository interface {
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.TokenRefresh, error)
	InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.TokenRefresh, error)
	InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, keepHash string) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, subject uuid.UUID) ([]string, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type sessionResolver interface {
	Resolve(ctx context.Context, uid uuid.UUID) (*session.Session, error)
}

type accessRecorder interface {
	Record(ctx context.Context, e acesso.Entry)
}

// AuthService concentra autenticação, sessões e sign-out forçado.
type AuthService struct {
	repo       authRepository
	redis      redisCommander
	resolver   sessionResolver
	acessos    accessRecorder
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(r authRepository, redisClient redisCommander, resolver sessionResolver, acessos accessRecorder, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, resolver: resolver, acessos: acessos, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Resolve delega ao resolvedor de sessões (útil em middlewares).
func (s *AuthService) Resolve(ctx context.Context, uid uuid.UUID) (*session.Session, error) {
	return s.resolver.Resolve(ctx, uid)
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	Session       *session.Session
	RefreshExpiry time.Time
}

// AccessMeta carrega metadados da requisição para o histórico de acessos.
type AccessMeta struct {
	IP        string
	UserAgent string
}

// Login autentica por e-mail e senha e valida a sessão resultante.
// Qualquer rejeição da resolução derruba as credenciais do subject.
func (s *AuthService) Login(ctx context.Context, email, password string, meta AccessMeta) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	usuario, err := s.repo.GetUsuarioByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			s.recordAccess(ctx, email, nil, acesso.ResultadoCredenciais, "", meta)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, usuario.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		s.recordAccess(ctx, email, &usuario.ID, acesso.ResultadoCredenciais, "", meta)
		return nil, ErrInvalidCredentials
	}

	sess, err := s.resolver.Resolve(ctx, usuario.ID)
	if err != nil {
		var rejected *session.RejectedError
		if errors.As(err, &rejected) {
			s.ForceSignOut(ctx, usuario.ID)
			s.recordAccess(ctx, email, &usuario.ID, acesso.ResultadoRejeitado, string(rejected.Reason), meta)
		}
		return nil, err
	}

	result, err := s.issueTokens(ctx, sess)
	if err != nil {
		return nil, err
	}

	s.recordAccess(ctx, email, &usuario.ID, acesso.ResultadoAutorizado, "", meta)
	return result, nil
}

// Refresh troca refresh token por novos tokens, revalidando a sessão.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revogado || time.Now().UTC().After(record.Expiracao) {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.RefreshRedisKey(hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	sess, err := s.resolver.Resolve(ctx, record.Subject)
	if err != nil {
		var rejected *session.RejectedError
		if errors.As(err, &rejected) {
			s.ForceSignOut(ctx, record.Subject)
		}
		return nil, err
	}

	result, err := s.issueTokens(ctx, sess)
	if err != nil {
		return nil, err
	}

	// Revoga token anterior (DB + Redis)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout revoga o refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// ForceSignOut derruba todas as credenciais do subject (DB + Redis).
// Uma sessão rejeitada não pode continuar operando com tokens antigos.
func (s *AuthService) ForceSignOut(ctx context.Context, subject uuid.UUID) {
	hashes, err := s.repo.RevokeAllRefreshTokens(ctx, subject)
	if err != nil {
		log.Error().Err(err).Str("subject", subject.String()).Msg("sign-out forçado: revogação no banco falhou")
		return
	}
	for _, h := range hashes {
		if err := s.redis.Del(ctx, auth.RefreshRedisKey(h)).Err(); err != nil && err != redis.Nil {
			log.Warn().Err(err).Msg("sign-out forçado: limpeza no redis falhou")
		}
	}
}

func (s *AuthService) issueTokens(ctx context.Context, sess *session.Session) (*LoginResult, error) {
	token, _, err := s.jwt.GenerateAccessToken(sess.UsuarioID.String(), string(sess.Role))
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, sess.UsuarioID, refreshHash, expires); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		Session:       sess,
		RefreshExpiry: expires,
	}, nil
}

func (s *AuthService) persistRefresh(ctx context.Context, subject uuid.UUID, hash string, expires time.Time) error {
	_, err := s.repo.InsertRefreshToken(ctx, repo.InsertRefreshTokenParams{
		ID:        uuid.New(),
		Subject:   subject,
		TokenHash: hash,
		Expiracao: expires,
		CriadoEm:  util.Now(),
	})
	if err != nil {
		return err
	}

	if err := s.repo.InvalidateOtherRefreshTokens(ctx, subject, hash); err != nil {
		return err
	}

	return s.redis.Set(ctx, auth.RefreshRedisKey(hash), "active", time.Until(expires)).Err()
}

func (s *AuthService) recordAccess(ctx context.Context, email string, usuarioID *uuid.UUID, resultado, motivo string, meta AccessMeta) {
	if s.acessos == nil {
		return
	}
	s.acessos.Record(ctx, acesso.Entry{
		Email:     email,
		UsuarioID: usuarioID,
		Resultado: resultado,
		Motivo:    motivo,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	})
}
