package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gabinetefacil/gabinete/internal/acesso"
	"github.com/gabinetefacil/gabinete/internal/auth"
	"github.com/gabinetefacil/gabinete/internal/rbac"
	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/session"
)

type stubAuthRepo struct {
	user   repo.Usuario
	tokens map[string]repo.TokenRefresh

	revokeAllCalls int
}

func newStubAuthRepo(user repo.Usuario) *stubAuthRepo {
	return &stubAuthRepo{user: user, tokens: map[string]repo.TokenRefresh{}}
}

func (s *stubAuthRepo) GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error) {
	if strings.EqualFold(email, s.user.Email) {
		return s.user, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.TokenRefresh, error) {
	t, ok := s.tokens[tokenHash]
	if !ok {
		return repo.TokenRefresh{}, repo.ErrNotFound
	}
	return t, nil
}

func (s *stubAuthRepo) InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.TokenRefresh, error) {
	t := repo.TokenRefresh{
		ID:        arg.ID,
		Subject:   arg.Subject,
		TokenHash: arg.TokenHash,
		Expiracao: arg.Expiracao,
		CriadoEm:  arg.CriadoEm,
	}
	s.tokens[arg.TokenHash] = t
	return t, nil
}

func (s *stubAuthRepo) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, keepHash string) error {
	for hash, t := range s.tokens {
		if t.Subject == subject && hash != keepHash {
			t.Revogado = true
			s.tokens[hash] = t
		}
	}
	return nil
}

func (s *stubAuthRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	t, ok := s.tokens[tokenHash]
	if !ok {
		return repo.ErrNotFound
	}
	t.Revogado = true
	s.tokens[tokenHash] = t
	return nil
}

func (s *stubAuthRepo) RevokeAllRefreshTokens(ctx context.Context, subject uuid.UUID) ([]string, error) {
	s.revokeAllCalls++
	var hashes []string
	for hash, t := range s.tokens {
		if t.Subject == subject && !t.Revogado {
			t.Revogado = true
			s.tokens[hash] = t
			hashes = append(hashes, hash)
		}
	}
	return hashes, nil
}

type stubRedis struct {
	store map[string]string
}

func newStubRedis() *stubRedis {
	return &stubRedis{store: map[string]string{}}
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	s.store[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := s.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type stubResolver struct {
	sess *session.Session
	err  error
}

func (s *stubResolver) Resolve(ctx context.Context, uid uuid.UUID) (*session.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sess, nil
}

type recordedAccess struct {
	entries []acesso.Entry
}

func (r *recordedAccess) Record(ctx context.Context, e acesso.Entry) {
	r.entries = append(r.entries, e)
}

func (r *recordedAccess) last(t *testing.T) acesso.Entry {
	t.Helper()
	if len(r.entries) == 0 {
		t.Fatal("nenhum acesso registrado")
	}
	return r.entries[len(r.entries)-1]
}

const testSecret = "segredo-de-teste-com-32-caracteres!!"

func newTestAuthService(t *testing.T, password string) (*AuthService, *stubAuthRepo, *stubRedis, *stubResolver, *recordedAccess) {
	t.Helper()

	hash, err := auth.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	gabID := uuid.New()
	user := repo.Usuario{
		ID:         uuid.New(),
		Nome:       "Ana",
		Email:      "ana@exemplo.com",
		SenhaHash:  hash,
		Role:       "user",
		GabineteID: &gabID,
		Ativo:      true,
	}

	repoStub := newStubAuthRepo(user)
	redisStub := newStubRedis()
	resolver := &stubResolver{sess: &session.Session{
		UsuarioID:  user.ID,
		Nome:       user.Nome,
		Email:      user.Email,
		Role:       rbac.RoleUser,
		GabineteID: user.GabineteID,
	}}
	acessos := &recordedAccess{}

	jwtMgr := auth.NewJWTManager(testSecret, 15*time.Minute)
	svc := NewAuthService(repoStub, redisStub, resolver, acessos, jwtMgr, time.Hour)
	return svc, repoStub, redisStub, resolver, acessos
}

func TestLoginAutorizado(t *testing.T) {
	svc, repoStub, redisStub, _, acessos := newTestAuthService(t, "abcdef")

	result, err := svc.Login(context.Background(), "ANA@exemplo.com", "abcdef", AccessMeta{IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("login deve emitir access e refresh tokens")
	}

	hash := auth.HashRefreshToken(result.RefreshToken)
	if _, ok := repoStub.tokens[hash]; !ok {
		t.Fatal("refresh token não persistido")
	}
	if redisStub.store[auth.RefreshRedisKey(hash)] != "active" {
		t.Fatal("refresh token não marcado como ativo no redis")
	}

	entry := acessos.last(t)
	if entry.Resultado != acesso.ResultadoAutorizado {
		t.Fatalf("resultado = %s, esperava autorizado", entry.Resultado)
	}
	if entry.IP != "10.0.0.1" {
		t.Fatalf("IP = %s, esperava 10.0.0.1", entry.IP)
	}
}

func TestLoginEmailInexistente(t *testing.T) {
	svc, _, _, _, acessos := newTestAuthService(t, "abcdef")

	_, err := svc.Login(context.Background(), "ninguem@exemplo.com", "abcdef", AccessMeta{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperava ErrInvalidCredentials, veio %v", err)
	}
	if acessos.last(t).Resultado != acesso.ResultadoCredenciais {
		t.Fatal("tentativa deve ser registrada como credenciais inválidas")
	}
}

func TestLoginSenhaErrada(t *testing.T) {
	svc, _, _, _, acessos := newTestAuthService(t, "abcdef")

	_, err := svc.Login(context.Background(), "ana@exemplo.com", "errada", AccessMeta{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperava ErrInvalidCredentials, veio %v", err)
	}
	if acessos.last(t).Resultado != acesso.ResultadoCredenciais {
		t.Fatal("tentativa deve ser registrada como credenciais inválidas")
	}
}

// Credenciais corretas com sessão rejeitada: além de negar, o serviço derruba
// todos os refresh tokens do subject.
func TestLoginSessaoRejeitadaDerrubaCredenciais(t *testing.T) {
	svc, repoStub, redisStub, resolver, acessos := newTestAuthService(t, "abcdef")

	// sessão previamente ativa
	first, err := svc.Login(context.Background(), "ana@exemplo.com", "abcdef", AccessMeta{})
	if err != nil {
		t.Fatalf("login inicial: %v", err)
	}
	firstHash := auth.HashRefreshToken(first.RefreshToken)

	resolver.err = session.Reject(session.ReasonTenantExpired, "gabinete vencido")

	_, err = svc.Login(context.Background(), "ana@exemplo.com", "abcdef", AccessMeta{})
	var rejected *session.RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("esperava RejectedError, veio %v", err)
	}
	if rejected.Reason != session.ReasonTenantExpired {
		t.Fatalf("motivo = %s, esperava tenant_expired", rejected.Reason)
	}

	if repoStub.revokeAllCalls == 0 {
		t.Fatal("rejeição deve revogar todos os refresh tokens")
	}
	if tok := repoStub.tokens[firstHash]; !tok.Revogado {
		t.Fatal("refresh token anterior deveria estar revogado")
	}
	if _, ok := redisStub.store[auth.RefreshRedisKey(firstHash)]; ok {
		t.Fatal("chave ativa no redis deveria ter sido removida")
	}

	entry := acessos.last(t)
	if entry.Resultado != acesso.ResultadoRejeitado {
		t.Fatalf("resultado = %s, esperava rejeitado", entry.Resultado)
	}
	if entry.Motivo != string(session.ReasonTenantExpired) {
		t.Fatalf("motivo = %s, esperava tenant_expired", entry.Motivo)
	}
}

func TestRefreshRotaciona(t *testing.T) {
	svc, repoStub, redisStub, _, _ := newTestAuthService(t, "abcdef")

	first, err := svc.Login(context.Background(), "ana@exemplo.com", "abcdef", AccessMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh deve emitir token novo")
	}

	oldHash := auth.HashRefreshToken(first.RefreshToken)
	if tok := repoStub.tokens[oldHash]; !tok.Revogado {
		t.Fatal("token anterior deveria estar revogado")
	}
	if _, ok := redisStub.store[auth.RefreshRedisKey(oldHash)]; ok {
		t.Fatal("chave anterior no redis deveria ter sido removida")
	}

	// token antigo não serve mais
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("reuso de token revogado: esperava ErrRefreshInvalid, veio %v", err)
	}
}

func TestRefreshTokenDesconhecido(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService(t, "abcdef")

	if _, err := svc.Refresh(context.Background(), "token-inventado"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("esperava ErrRefreshInvalid, veio %v", err)
	}
	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("esperava ErrRefreshInvalid para token vazio, veio %v", err)
	}
}

func TestRefreshSemChaveAtivaNoRedis(t *testing.T) {
	svc, _, redisStub, _, _ := newTestAuthService(t, "abcdef")

	first, err := svc.Login(context.Background(), "ana@exemplo.com", "abcdef", AccessMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	hash := auth.HashRefreshToken(first.RefreshToken)
	delete(redisStub.store, auth.RefreshRedisKey(hash))

	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("esperava ErrRefreshInvalid, veio %v", err)
	}
}

func TestRefreshSessaoRejeitadaDerrubaCredenciais(t *testing.T) {
	svc, repoStub, _, resolver, _ := newTestAuthService(t, "abcdef")

	first, err := svc.Login(context.Background(), "ana@exemplo.com", "abcdef", AccessMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resolver.err = session.Reject(session.ReasonUserDeactivated, "conta desativada")

	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	var rejected *session.RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("esperava RejectedError, veio %v", err)
	}
	if repoStub.revokeAllCalls == 0 {
		t.Fatal("rejeição no refresh deve revogar todos os tokens")
	}
}

func TestLogoutRevoga(t *testing.T) {
	svc, repoStub, redisStub, _, _ := newTestAuthService(t, "abcdef")

	first, err := svc.Login(context.Background(), "ana@exemplo.com", "abcdef", AccessMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), first.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	hash := auth.HashRefreshToken(first.RefreshToken)
	if tok := repoStub.tokens[hash]; !tok.Revogado {
		t.Fatal("logout deve revogar o token")
	}
	if _, ok := redisStub.store[auth.RefreshRedisKey(hash)]; ok {
		t.Fatal("logout deve limpar a chave no redis")
	}
}
