package util

import (
	"net/mail"
	"strings"
)

// ValidationError sinaliza entrada inválida do cliente.
type ValidationError struct {
	Mensagem string
}

func (e *ValidationError) Error() string {
	return e.Mensagem
}

func invalid(mensagem string) *ValidationError {
	return &ValidationError{Mensagem: mensagem}
}

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email inválido")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return invalid("senha deve ter pelo menos 6 caracteres")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field + " obrigatório")
	}
	return nil
}
