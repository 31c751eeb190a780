package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"evidencevault-backend/internal/auth"
	"evidencevault-backend/internal/logger"
	"evidencevault-backend/internal/models"
	"evidencevault-backend/internal/repository"
	"evidencevault-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Handler gerencia as dependências para os handlers HTTP
type Handler struct {
	userService     *service.UserService
	folderService   *service.FolderService
	evidenceService *service.EvidenceService
	tokenService    *auth.TokenService
	userStore       repository.UserStore // Necessário no middleware de autenticação
	validate        *validator.Validate

	// Limites de entrada de arquivos, aplicados antes de qualquer escrita
	maxFileSize  int64
	allowedTypes map[string]bool
}

// NewHandler cria uma nova instância do Handler
func NewHandler(
	userSvc *service.UserService,
	folderSvc *service.FolderService,
	evidenceSvc *service.EvidenceService,
	tokenSvc *auth.TokenService,
	userStore repository.UserStore,
	maxFileSize int64,
	allowedTypes map[string]bool,
) *Handler {
	return &Handler{
		userService:     userSvc,
		folderService:   folderSvc,
		evidenceService: evidenceSvc,
		tokenService:    tokenSvc,
		userStore:       userStore,
		validate:        validator.New(),
		maxFileSize:     maxFileSize,
		allowedTypes:    allowedTypes,
	}
}

// === Schemas de Resposta da API ===

type (
	// UserResponse são os campos públicos do usuário (nunca o hash)
	UserResponse struct {
		ID    uuid.UUID `json:"id"`
		Name  string    `json:"name"`
		Email string    `json:"email"`
	}

	// FolderResponse são os campos públicos da pasta (nunca o hash)
	FolderResponse struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// MediaResponse descreve um arquivo de mídia de uma evidência
	MediaResponse struct {
		ID          uuid.UUID `json:"id"`
		Filename    string    `json:"filename"`
		ContentType string    `json:"contentType"`
		Size        int64     `json:"size"`
	}

	// EvidenceResponse são os campos públicos da evidência (nunca o hash
	// da chave secreta)
	EvidenceResponse struct {
		ID          uuid.UUID       `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		CreatedAt   time.Time       `json:"createdAt"`
		Videos      []MediaResponse `json:"videos"`
		Images      []MediaResponse `json:"images"`
		Audios      []MediaResponse `json:"audios"`
	}
)

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toFolderResponse(f *models.Folder) FolderResponse {
	return FolderResponse{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt}
}

func toMediaResponses(files []models.MediaFile) []MediaResponse {
	out := make([]MediaResponse, 0, len(files))
	for _, f := range files {
		out = append(out, MediaResponse{
			ID:          f.ID,
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Size:        f.Size,
		})
	}
	return out
}

func toEvidenceResponse(e *models.Evidence) EvidenceResponse {
	return EvidenceResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		Videos:      toMediaResponses(e.Videos),
		Images:      toMediaResponses(e.Images),
		Audios:      toMediaResponses(e.Audios),
	}
}

// currentUser obtém o usuário autenticado injetado pelo middleware
func currentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	return user, ok && user != nil
}

// === Handlers de Autenticação ===

// handleRegister (POST /api/auth/register)
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "payload JSON inválido")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "dados inválidos: "+err.Error())
		return
	}

	user, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}

	token, err := h.tokenService.NewToken(user.ID)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "erro interno ao gerar token")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    toUserResponse(user),
	})
}

// handleLogin (POST /api/auth/login)
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "payload JSON inválido")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "dados inválidos: "+err.Error())
		return
	}

	user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}

	token, err := h.tokenService.NewToken(user.ID)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "erro interno ao gerar token")
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    toUserResponse(user),
	})
}

// handleMe (GET /api/auth/me)
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "contexto de usuário inválido")
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    toUserResponse(user),
	})
}

// === Handlers de Pasta ===

// handleCreateFolder (POST /api/folders)
func (h *Handler) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "contexto de usuário inválido")
		return
	}

	var req struct {
		Name     string `json:"name" validate:"required,max=100"`
		Password string `json:"password" validate:"required,min=6"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "payload JSON inválido")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "dados inválidos: "+err.Error())
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), user.ID, req.Name, req.Password)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"folder":  toFolderResponse(folder),
	})
}

// handleListFolders (GET /api/folders)
func (h *Handler) handleListFolders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "contexto de usuário inválido")
		return
	}

	folders, err := h.folderService.ListFolders(r.Context(), user.ID)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}

	// Mapeia para a resposta (nunca expor o hash da senha)
	response := make([]FolderResponse, 0, len(folders))
	for _, folder := range folders {
		response = append(response, toFolderResponse(folder))
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(response),
		"folders": response,
	})
}

// handleVerifyFolder (POST /api/folders/{id}/verify)
func (h *Handler) handleVerifyFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "contexto de usuário inválido")
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "ID de pasta inválido")
		return
	}

	var req struct {
		Password string `json:"password" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "payload JSON inválido")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "dados inválidos: "+err.Error())
		return
	}

	if err := h.folderService.VerifyPassword(r.Context(), folderID, user.ID, req.Password); err != nil {
		h.respondWithAppError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "senha verificada com sucesso",
	})
}

// handleDeleteFolder (DELETE /api/folders/{id})
func (h *Handler) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "contexto de usuário inválido")
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "ID de pasta inválido")
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), folderID, user.ID); err != nil {
		h.respondWithAppError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "pasta excluída com sucesso",
	})
}

// === Handlers de Evidência ===

// handleCreateEvidence (POST /api/evidence, multipart)
func (h *Handler) handleCreateEvidence(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "contexto de usuário inválido")
		return
	}

	// 1. Parsear o multipart (campos + arquivos)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "payload multipart inválido")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := struct {
		Name        string `validate:"required,max=200"`
		Description string `validate:"max=1000"`
		FolderID    string `validate:"required,uuid4"`
		SecretKey   string `validate:"required,min=6"`
	}{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		FolderID:    r.FormValue("folderId"),
		SecretKey:   r.FormValue("secretKey"),
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "dados inválidos: "+err.Error())
		return
	}

	folderID, err := uuid.Parse(req.FolderID)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "ID de pasta inválido")
		return
	}

	// 2. Fronteira de entrada de arquivos: allow-list de MIME e tamanho
	// máximo valem para TODOS os arquivos antes de qualquer escrita no
	// blob store — um arquivo ruim rejeita a requisição inteira
	headers := r.MultipartForm.File["files"]
	for _, fh := range headers {
		contentType := fh.Header.Get("Content-Type")
		if !h.allowedTypes[contentType] {
			h.respondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("tipo de arquivo não permitido: %s", contentType))
			return
		}
		if fh.Size > h.maxFileSize {
			h.respondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("arquivo '%s' excede o tamanho máximo permitido", fh.Filename))
			return
		}
	}

	// 3. Abrir os arquivos aceitos e repassar ao serviço
	files := make([]service.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "falha ao ler arquivo enviado")
			return
		}
		defer f.Close()

		files = append(files, service.UploadedFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}

	evidence, err := h.evidenceService.CreateEvidence(r.Context(), user.ID, service.CreateEvidenceRequest{
		FolderID:    folderID,
		Name:        req.Name,
		Description: req.Description,
		SecretKey:   req.SecretKey,
		Files:       files,
	})
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"evidence": map[string]interface{}{
			"id":          evidence.ID,
			"name":        evidence.Name,
			"description": evidence.Description,
			"createdAt":   evidence.CreatedAt,
			"fileCount": map[string]int{
				"videos": len(evidence.Videos),
				"images": len(evidence.Images),
				"audios": len(evidence.Audios),
			},
		},
	})
}

// handleListFolderEvidence (GET /api/evidence/folder/{folderId})
func (h *Handler) handleListFolderEvidence(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "contexto de usuário inválido")
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "folderId"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "ID de pasta inválido")
		return
	}

	items, err := h.evidenceService.ListFolderEvidence(r.Context(), user.ID, folderID)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}

	response := make([]EvidenceResponse, 0, len(items))
	for _, evidence := range items {
		response = append(response, toEvidenceResponse(evidence))
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"count":    len(response),
		"evidence": response,
	})
}

// handleGetEvidenceFile (GET /api/evidence/file/{fileId})
func (h *Handler) handleGetEvidenceFile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "contexto de usuário inválido")
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "fileId"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "ID de arquivo inválido")
		return
	}

	media, blob, err := h.evidenceService.GetEvidenceFile(r.Context(), user.ID, fileID)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}
	defer blob.Close()

	// Stream dos bytes com o content-type original
	w.Header().Set("Content-Type", media.ContentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", media.Size))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, blob); err != nil {
		// Cabeçalhos já enviados; só resta registrar
		logger.Err("Erro ao transmitir arquivo %s: %v", media.ID, err)
	}
}

// handleDeleteEvidence (DELETE /api/evidence/{id})
func (h *Handler) handleDeleteEvidence(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "contexto de usuário inválido")
		return
	}

	evidenceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "ID de evidência inválido")
		return
	}

	if err := h.evidenceService.DeleteEvidence(r.Context(), user.ID, evidenceID); err != nil {
		h.respondWithAppError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "evidência excluída com sucesso",
	})
}
