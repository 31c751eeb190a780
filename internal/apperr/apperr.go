// Package apperr define os tipos de erro conhecidos pela aplicação.
// Os serviços retornam estes valores (embrulhados com %w) e a camada de API
// os mapeia para códigos HTTP em um único ponto.
package apperr

import "errors"

var (
	// ErrNotFound indica que a entidade referenciada não existe (404)
	ErrNotFound = errors.New("não encontrado")

	// ErrUnauthorized indica credencial ausente/inválida ou senha/chave
	// secreta incorreta (401)
	ErrUnauthorized = errors.New("não autorizado")

	// ErrForbidden indica que o requisitante não é o dono do recurso.
	// Por convenção da API, também responde 401.
	ErrForbidden = errors.New("acesso negado")

	// ErrConflict indica violação de campo único, ex: e-mail duplicado (400)
	ErrConflict = errors.New("conflito")
)

// ValidationError representa entrada ausente ou malformada (400)
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation cria um ValidationError com a mensagem dada
func NewValidation(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation verifica se err é (ou embrulha) um ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
