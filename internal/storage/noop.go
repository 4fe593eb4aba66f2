package storage

import (
	"context"
	"errors"
)

// ErrNotConfigured indica ausência de backend de armazenamento.
var ErrNotConfigured = errors.New("storage: backend não configurado")

// NoopStore recusa qualquer operação. Usado quando o bucket não foi configurado.
type NoopStore struct{}

func (NoopStore) Put(ctx context.Context, obj Object) (*PutResult, error) {
	return nil, ErrNotConfigured
}

func (NoopStore) Delete(ctx context.Context, key string) error {
	return ErrNotConfigured
}
