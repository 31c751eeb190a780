package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"evidencevault-backend/internal/auth"
	"evidencevault-backend/internal/repository"
	"evidencevault-backend/internal/service"
	"evidencevault-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *httptest.Server
	blobs  *storage.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewInMemoryStore()
	blobs := storage.NewMemoryStore()

	tokenService, err := auth.NewTokenService("segredo-de-teste", time.Hour)
	require.NoError(t, err)

	handler := NewHandler(
		service.NewUserService(store),
		service.NewFolderService(store, blobs),
		service.NewEvidenceService(store, blobs),
		tokenService,
		store,
		1<<20, // 1MB por arquivo nos testes
		map[string]bool{
			"image/jpeg": true,
			"audio/mpeg": true,
			"video/mp4":  true,
		},
	)

	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)

	return &testEnv{server: server, blobs: blobs}
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	payload := map[string]interface{}{}
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

// registerUser cria um usuário pela API e devolve o token e o id
func (e *testEnv) registerUser(t *testing.T, name, email string) (string, string) {
	t.Helper()

	resp, payload := e.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "senha-forte",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token := payload["token"].(string)
	user := payload["user"].(map[string]interface{})
	return token, user["id"].(string)
}

func (e *testEnv) createFolder(t *testing.T, token, name, password string) string {
	t.Helper()

	resp, payload := e.doJSON(t, http.MethodPost, "/api/folders", token, map[string]string{
		"name":     name,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return payload["folder"].(map[string]interface{})["id"].(string)
}

type uploadPart struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func (e *testEnv) postEvidence(t *testing.T, token string, fields map[string]string, files []uploadPart) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/evidence", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	payload := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

// === Autenticação ===

func TestRegisterAndMe(t *testing.T) {
	env := newTestEnv(t)

	resp, payload := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Ana",
		"email":    "ana@example.com",
		"password": "senha-forte",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, payload["success"])
	assert.NotEmpty(t, payload["token"])

	user := payload["user"].(map[string]interface{})
	assert.Equal(t, "Ana", user["name"])
	assert.Equal(t, "ana@example.com", user["email"])
	// Nenhum campo de hash na resposta
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "password")

	token := payload["token"].(string)
	resp, payload = env.doJSON(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ana@example.com", payload["user"].(map[string]interface{})["email"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "Ana", "ana@example.com")

	resp, payload := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Outra",
		"email":    "ana@example.com",
		"password": "outra-senha",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
}

func TestRegisterMissingField(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "ana@example.com",
		"password": "senha-forte",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "Ana", "ana@example.com")

	t.Run("credenciais corretas", func(t *testing.T) {
		resp, payload := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ana@example.com",
			"password": "senha-forte",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, payload["token"])
	})

	t.Run("senha errada e e-mail inexistente respondem igual", func(t *testing.T) {
		respSenha, payloadSenha := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ana@example.com",
			"password": "senha-errada",
		})
		respEmail, payloadEmail := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ninguem@example.com",
			"password": "senha-forte",
		})

		assert.Equal(t, http.StatusUnauthorized, respSenha.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, respEmail.StatusCode)
		assert.Equal(t, payloadSenha["error"], payloadEmail["error"])
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/folders"},
		{http.MethodPost, "/api/folders"},
		{http.MethodGet, "/api/evidence/folder/00000000-0000-0000-0000-000000000000"},
	}

	for _, p := range paths {
		resp, _ := env.doJSON(t, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, p.path)
	}

	// Token inválido também responde 401 uniformemente
	resp, _ := env.doJSON(t, http.MethodGet, "/api/auth/me", "token-invalido", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// === Pastas ===

func TestFolderRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "Ana", "ana@example.com")

	resp, payload := env.doJSON(t, http.MethodPost, "/api/folders", token, map[string]string{
		"name":     "Case A",
		"password": "abcdef",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := payload["folder"].(map[string]interface{})
	assert.Equal(t, "Case A", created["name"])
	assert.NotEmpty(t, created["createdAt"])
	assert.NotContains(t, created, "passwordHash")

	resp, payload = env.doJSON(t, http.MethodGet, "/api/folders", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), payload["count"])

	folders := payload["folders"].([]interface{})
	require.Len(t, folders, 1)
	listed := folders[0].(map[string]interface{})
	assert.Equal(t, "Case A", listed["name"])
	assert.Equal(t, created["createdAt"], listed["createdAt"])
	// O hash nunca aparece em nenhuma resposta de listagem
	assert.NotContains(t, listed, "passwordHash")
	assert.NotContains(t, listed, "password")
}

func TestVerifyFolderPassword(t *testing.T) {
	env := newTestEnv(t)
	tokenAna, _ := env.registerUser(t, "Ana", "ana@example.com")
	tokenBeto, _ := env.registerUser(t, "Beto", "beto@example.com")

	folderID := env.createFolder(t, tokenAna, "Case A", "abcdef")

	t.Run("dona com senha correta", func(t *testing.T) {
		resp, payload := env.doJSON(t, http.MethodPost, "/api/folders/"+folderID+"/verify", tokenAna,
			map[string]string{"password": "abcdef"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, payload["success"])
	})

	t.Run("dona com senha errada", func(t *testing.T) {
		resp, _ := env.doJSON(t, http.MethodPost, "/api/folders/"+folderID+"/verify", tokenAna,
			map[string]string{"password": "xxxxxx"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("não-dono mesmo com a senha correta", func(t *testing.T) {
		resp, _ := env.doJSON(t, http.MethodPost, "/api/folders/"+folderID+"/verify", tokenBeto,
			map[string]string{"password": "abcdef"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("pasta inexistente", func(t *testing.T) {
		resp, _ := env.doJSON(t, http.MethodPost,
			"/api/folders/00000000-0000-0000-0000-000000000001/verify", tokenAna,
			map[string]string{"password": "abcdef"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

// === Evidências ===

func TestEvidenceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	tokenAna, _ := env.registerUser(t, "Ana", "ana@example.com")
	tokenBeto, _ := env.registerUser(t, "Beto", "beto@example.com")

	folderID := env.createFolder(t, tokenAna, "Case A", "abcdef")

	// Criar com dois arquivos de mídia
	resp, payload := env.postEvidence(t, tokenAna, map[string]string{
		"name":        "Prova 1",
		"description": "material coletado",
		"folderId":    folderID,
		"secretKey":   "secret1",
	}, []uploadPart{
		{"files", "cena.jpg", "image/jpeg", []byte("jpeg-bytes")},
		{"files", "depoimento.mp3", "audio/mpeg", []byte("mp3-bytes")},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	evidence := payload["evidence"].(map[string]interface{})
	evidenceID := evidence["id"].(string)
	fileCount := evidence["fileCount"].(map[string]interface{})
	assert.Equal(t, float64(1), fileCount["images"])
	assert.Equal(t, float64(1), fileCount["audios"])
	assert.Equal(t, float64(0), fileCount["videos"])
	assert.Equal(t, 2, env.blobs.Len())

	// Listar: descritores de mídia presentes, hash ausente
	resp, payload = env.doJSON(t, http.MethodGet, "/api/evidence/folder/"+folderID, tokenAna, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), payload["count"])

	listed := payload["evidence"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, listed, "secretKeyHash")
	assert.NotContains(t, listed, "secretKey")
	images := listed["images"].([]interface{})
	require.Len(t, images, 1)
	fileID := images[0].(map[string]interface{})["id"].(string)

	// Outro usuário não lista a pasta alheia
	resp, _ = env.doJSON(t, http.MethodGet, "/api/evidence/folder/"+folderID, tokenBeto, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Download pelo dono
	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/evidence/file/"+fileID, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tokenAna)
	fileResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(fileResp.Body)
	require.NoError(t, err)
	fileResp.Body.Close()
	assert.Equal(t, http.StatusOK, fileResp.StatusCode)
	assert.Equal(t, "image/jpeg", fileResp.Header.Get("Content-Type"))
	assert.Equal(t, "jpeg-bytes", string(data))

	// Download por não-dono é barrado
	resp, _ = env.doJSON(t, http.MethodGet, "/api/evidence/file/"+fileID, tokenBeto, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Exclusão por não-dono: registro e blobs intactos
	resp, _ = env.doJSON(t, http.MethodDelete, "/api/evidence/"+evidenceID, tokenBeto, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 2, env.blobs.Len())

	// Exclusão pelo dono remove todos os blobs
	resp, _ = env.doJSON(t, http.MethodDelete, "/api/evidence/"+evidenceID, tokenAna, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, env.blobs.Len())

	// Buscar o arquivo depois responde 404
	resp, _ = env.doJSON(t, http.MethodGet, "/api/evidence/file/"+fileID, tokenAna, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Segunda exclusão: 404, nunca 500 por blob ausente
	resp, _ = env.doJSON(t, http.MethodDelete, "/api/evidence/"+evidenceID, tokenAna, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEvidenceUploadRejectsDisallowedType(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "Ana", "ana@example.com")
	folderID := env.createFolder(t, token, "Case A", "abcdef")

	resp, payload := env.postEvidence(t, token, map[string]string{
		"name":      "Prova 1",
		"folderId":  folderID,
		"secretKey": "secret1",
	}, []uploadPart{
		{"files", "cena.jpg", "image/jpeg", []byte("jpeg-bytes")},
		{"files", "malware.exe", "application/octet-stream", []byte("MZ")},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, payload["success"])

	// A rejeição acontece antes de qualquer escrita: nenhum blob órfão
	assert.Equal(t, 0, env.blobs.Len())
}

func TestEvidenceUploadRejectsOversizedFile(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "Ana", "ana@example.com")
	folderID := env.createFolder(t, token, "Case A", "abcdef")

	big := bytes.Repeat([]byte("a"), (1<<20)+1)
	resp, _ := env.postEvidence(t, token, map[string]string{
		"name":      "Prova 1",
		"folderId":  folderID,
		"secretKey": "secret1",
	}, []uploadPart{
		{"files", "grande.jpg", "image/jpeg", big},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, env.blobs.Len())
}

func TestEvidenceShortSecretKey(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "Ana", "ana@example.com")
	folderID := env.createFolder(t, token, "Case A", "abcdef")

	resp, _ := env.postEvidence(t, token, map[string]string{
		"name":      "Prova 1",
		"folderId":  folderID,
		"secretKey": "abc",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteFolderCascade(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "Ana", "ana@example.com")
	folderID := env.createFolder(t, token, "Case A", "abcdef")

	resp, _ := env.postEvidence(t, token, map[string]string{
		"name":      "Prova 1",
		"folderId":  folderID,
		"secretKey": "secret1",
	}, []uploadPart{
		{"files", "cena.jpg", "image/jpeg", []byte("jpeg-bytes")},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, 1, env.blobs.Len())

	resp, _ = env.doJSON(t, http.MethodDelete, "/api/folders/"+folderID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, env.blobs.Len())

	resp, payload := env.doJSON(t, http.MethodGet, "/api/folders", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), payload["count"])
}
