// Package storage guarda anexos do gabinete em um bucket compatível com S3.
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Object é um blob a ser persistido.
type Object struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// PutResult descreve o artefato persistido.
type PutResult struct {
	URL  string
	ETag string
}

// Store define o comportamento mínimo para anexos.
type Store interface {
	Put(ctx context.Context, obj Object) (*PutResult, error)
	Delete(ctx context.Context, key string) error
}

// AnexoKey monta a chave de um anexo escopada pelo gabinete.
func AnexoKey(gabineteID uuid.UUID, kind string, filename string) string {
	return fmt.Sprintf("gabinetes/%s/%s/%s-%s", gabineteID, kind, uuid.New(), filename)
}
