package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"evidencevault-backend/internal/apperr"
	"evidencevault-backend/internal/logger"
)

// === Funções Auxiliares de Resposta ===

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Err("Erro ao serializar JSON: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"erro interno ao serializar resposta"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondWithAppError é a fronteira única que mapeia os tipos de erro
// conhecidos para códigos HTTP; o que não for reconhecido vira 500
func (h *Handler) respondWithAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		h.respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		h.respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		// Por convenção da API, posse negada também responde 401
		h.respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	case apperr.IsValidation(err):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Err("Erro não mapeado na API: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, "erro interno do servidor")
	}
}
