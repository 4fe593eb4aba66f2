// Package guard concentra a fronteira de tenant: toda operação escopada por
// gabinete passa por Effective antes de tocar o armazenamento.
package guard

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gabinetefacil/gabinete/internal/session"
)

var (
	// ErrGabineteNaoInformado ocorre quando superadmin não indica o alvo.
	ErrGabineteNaoInformado = errors.New("gabinete não informado")
	// ErrGabineteDivergente ocorre quando o chamador pede um gabinete que não é o seu.
	ErrGabineteDivergente = errors.New("acesso negado ao gabinete solicitado")
)

// Effective devolve o gabinete efetivo de uma operação escopada.
// Para perfis comuns o id é sempre o do próprio perfil: um id divergente é
// recusado, ausência (uuid.Nil) é substituída. Superadmins não têm gabinete
// próprio e precisam indicar o alvo explicitamente.
func Effective(sess *session.Session, requested uuid.UUID) (uuid.UUID, error) {
	if sess.IsSuperAdmin() {
		if requested == uuid.Nil {
			return uuid.Nil, ErrGabineteNaoInformado
		}
		return requested, nil
	}

	// a resolução da sessão garante vínculo para perfis comuns
	if sess.GabineteID == nil || *sess.GabineteID == uuid.Nil {
		return uuid.Nil, session.Reject(session.ReasonNoTenantAssigned, "perfil sem gabinete vinculado")
	}

	if requested != uuid.Nil && requested != *sess.GabineteID {
		return uuid.Nil, ErrGabineteDivergente
	}

	return *sess.GabineteID, nil
}

// ScopeKey monta a chave canônica de um recurso escopado por gabinete,
// usada em caches e caminhos de armazenamento.
func ScopeKey(gabineteID uuid.UUID, kind string) string {
	return fmt.Sprintf("gabinetes/%s/%s", gabineteID, kind)
}
