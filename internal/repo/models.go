package repo

import (
	"time"

	"github.com/google/uuid"
)

// Usuario representa o perfil de uma pessoa autenticada.
type Usuario struct {
	ID         uuid.UUID
	Nome       string
	Email      string
	SenhaHash  string
	Role       string
	GabineteID *uuid.UUID
	Ativo      bool
	CriadoEm   time.Time
}

// InsertUsuarioParams agrupa os campos de criação de perfil.
type InsertUsuarioParams struct {
	ID         uuid.UUID
	Nome       string
	Email      string
	SenhaHash  string
	Role       string
	GabineteID *uuid.UUID
	Ativo      bool
	CriadoEm   time.Time
}

// TokenRefresh modela tabela de refresh tokens.
type TokenRefresh struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
	Revogado  bool
}

// InsertRefreshTokenParams agrupa os campos de criação de refresh token.
type InsertRefreshTokenParams struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
}
