package acesso

import (
	"time"

	"github.com/google/uuid"
)

const (
	ResultadoAutorizado  = "autorizado"
	ResultadoRejeitado   = "rejeitado"
	ResultadoCredenciais = "credenciais_invalidas"
)

// Entry registra o desfecho de uma tentativa de autenticação.
type Entry struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	UsuarioID  *uuid.UUID `json:"usuario_id,omitempty"`
	GabineteID *uuid.UUID `json:"gabinete_id,omitempty"`
	Resultado  string     `json:"resultado"`
	Motivo     string     `json:"motivo,omitempty"`
	IP         string     `json:"ip,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	CriadoEm   time.Time  `json:"criado_em"`
}
