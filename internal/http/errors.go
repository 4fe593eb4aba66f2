package http

import (
	"errors"
	"net/http"

	"github.com/gabinetefacil/gabinete/internal/agenda"
	"github.com/gabinetefacil/gabinete/internal/contato"
	"github.com/gabinetefacil/gabinete/internal/despesa"
	"github.com/gabinetefacil/gabinete/internal/gabinete"
	"github.com/gabinetefacil/gabinete/internal/guard"
	"github.com/gabinetefacil/gabinete/internal/materia"
	"github.com/gabinetefacil/gabinete/internal/provision"
	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/service"
	"github.com/gabinetefacil/gabinete/internal/session"
	"github.com/gabinetefacil/gabinete/internal/util"
	"github.com/gabinetefacil/gabinete/internal/visita"
)

// writeDomainError traduz erros das camadas de serviço para o envelope HTTP.
func writeDomainError(w http.ResponseWriter, err error) {
	var rejected *session.RejectedError
	if errors.As(err, &rejected) {
		WriteError(w, http.StatusForbidden, string(rejected.Reason), rejected.Mensagem, nil)
		return
	}

	var validation *util.ValidationError
	if errors.As(err, &validation) {
		WriteError(w, http.StatusBadRequest, "VALIDATION", validation.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "credenciais inválidas", nil)
	case errors.Is(err, service.ErrRefreshInvalid):
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "sessão expirada, faça login novamente", nil)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "permission-denied", "operação não permitida para este papel", nil)
	case errors.Is(err, guard.ErrGabineteDivergente):
		WriteError(w, http.StatusForbidden, "permission-denied", "gabinete não pertence à sessão", nil)
	case errors.Is(err, guard.ErrGabineteNaoInformado):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "informe o gabinete alvo", nil)
	case errors.Is(err, provision.ErrEmailInUse):
		WriteError(w, http.StatusConflict, "already-exists", "este email já está sendo utilizado", nil)
	case errors.Is(err, provision.ErrWeakPassword):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "a senha é muito fraca; use pelo menos 6 caracteres", nil)
	case errors.Is(err, provision.ErrInvalidRole):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "papel inválido", nil)
	case errors.Is(err, provision.ErrGabineteRequired):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "gabinete obrigatório para este papel", nil)
	case errors.Is(err, service.ErrMemberNotFound):
		WriteError(w, http.StatusNotFound, "not-found", "membro não encontrado", nil)
	case errors.Is(err, service.ErrSelfDeactivate):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "não é possível desativar o próprio perfil", nil)
	case errors.Is(err, gabinete.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not-found", "gabinete não encontrado", nil)
	case errors.Is(err, contato.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not-found", "contato não encontrado", nil)
	case errors.Is(err, visita.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not-found", "visita não encontrada", nil)
	case errors.Is(err, visita.ErrContatoObrigatorio):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "informe o contato da visita", nil)
	case errors.Is(err, despesa.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not-found", "despesa não encontrada", nil)
	case errors.Is(err, despesa.ErrCategoriaInvalida):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "categoria inválida", nil)
	case errors.Is(err, despesa.ErrValorInvalido):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "valor deve ser maior que zero", nil)
	case errors.Is(err, materia.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not-found", "matéria não encontrada", nil)
	case errors.Is(err, materia.ErrAnexoNotFound):
		WriteError(w, http.StatusNotFound, "not-found", "anexo não encontrado", nil)
	case errors.Is(err, materia.ErrStatusInvalido):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "status inválido", nil)
	case errors.Is(err, agenda.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not-found", "compromisso não encontrado", nil)
	case errors.Is(err, agenda.ErrTipoInvalido):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "tipo de compromisso inválido", nil)
	case errors.Is(err, agenda.ErrInicioObrigatorio):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "informe o início do compromisso", nil)
	case errors.Is(err, agenda.ErrFimAntesInicio):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "fim não pode ser anterior ao início", nil)
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not-found", "registro não encontrado", nil)
	case errors.Is(err, repo.ErrDuplicate):
		WriteError(w, http.StatusConflict, "already-exists", "registro duplicado", nil)
	default:
		WriteError(w, http.StatusInternalServerError, "internal", "erro interno", nil)
	}
}
