package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrDuplicate é retornado em violações de unicidade (e-mail já cadastrado).
	ErrDuplicate = errors.New("registro duplicado")
)
