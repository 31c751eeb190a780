package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"evidencevault-backend/internal/apperr"
	"evidencevault-backend/internal/logger"
	"evidencevault-backend/internal/models"
	"evidencevault-backend/internal/repository"
	"evidencevault-backend/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EvidenceService lida com a lógica de negócios de evidências
type EvidenceService struct {
	store repository.Store // Precisa de FolderStore e EvidenceStore
	blobs storage.BlobStore
}

// NewEvidenceService cria um novo serviço de evidências
func NewEvidenceService(store repository.Store, blobs storage.BlobStore) *EvidenceService {
	return &EvidenceService{
		store: store,
		blobs: blobs,
	}
}

// UploadedFile é um arquivo já aceito pela camada de entrada (tipo permitido,
// tamanho dentro do limite) pronto para ser gravado no blob store
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// CreateEvidenceRequest define os parâmetros para criar uma evidência
type CreateEvidenceRequest struct {
	FolderID    uuid.UUID
	Name        string
	Description string
	SecretKey   string
	Files       []UploadedFile
}

// CreateEvidence cria uma evidência com seus arquivos de mídia.
// A pasta é resolvida e a posse verificada antes de qualquer blob ser gravado.
func (s *EvidenceService) CreateEvidence(ctx context.Context, requesterID uuid.UUID, req CreateEvidenceRequest) (*models.Evidence, error) {
	if req.Name == "" {
		return nil, apperr.NewValidation("informe o nome da evidência")
	}
	if len(req.Name) > 200 {
		return nil, apperr.NewValidation("nome da evidência não pode passar de 200 caracteres")
	}
	if len(req.Description) > 1000 {
		return nil, apperr.NewValidation("descrição não pode passar de 1000 caracteres")
	}
	if len(req.SecretKey) < 6 {
		return nil, apperr.NewValidation("chave secreta deve ter pelo menos 6 caracteres")
	}

	// Existência e posse da pasta, antes de persistir qualquer arquivo.
	// Como no comportamento de referência, os dois casos respondem NotFound
	// para não revelar a existência de pastas alheias.
	folder, err := s.store.GetFolderByID(ctx, req.FolderID)
	if err != nil || folder.UserID != requesterID {
		return nil, fmt.Errorf("pasta não encontrada ou acesso negado: %w", apperr.ErrNotFound)
	}

	// Hash da chave secreta, exatamente uma vez, antes de persistir
	hash, err := bcrypt.GenerateFromPassword([]byte(req.SecretKey), bcrypt.DefaultCost)
	if err != nil {
		logger.Err("Erro ao gerar hash bcrypt da chave secreta: %v", err)
		return nil, fmt.Errorf("erro interno ao processar chave secreta")
	}

	evidence := &models.Evidence{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		SecretKeyHash: string(hash),
		FolderID:      req.FolderID,
		Videos:        []models.MediaFile{},
		Images:        []models.MediaFile{},
		Audios:        []models.MediaFile{},
		CreatedAt:     time.Now(),
	}

	// Grava cada arquivo no blob store sob um nome gerado (UUID aleatório)
	// e particiona pelo prefixo do content-type
	written := []uuid.UUID{}
	for _, f := range req.Files {
		kind := mediaKind(f.ContentType)
		if kind == "" {
			// A allow-list da camada de entrada já deveria ter barrado;
			// tipos fora de vídeo/imagem/áudio são ignorados como na referência
			continue
		}

		media := models.MediaFile{
			ID:          uuid.New(),
			EvidenceID:  evidence.ID,
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Size:        f.Size,
			Kind:        kind,
		}

		if err := s.blobs.Save(ctx, media.ID.String(), f.ContentType, f.Size, f.Content); err != nil {
			s.rollbackBlobs(ctx, written)
			return nil, fmt.Errorf("erro interno ao gravar arquivo")
		}
		written = append(written, media.ID)

		switch kind {
		case models.MediaKindVideo:
			evidence.Videos = append(evidence.Videos, media)
		case models.MediaKindImage:
			evidence.Images = append(evidence.Images, media)
		case models.MediaKindAudio:
			evidence.Audios = append(evidence.Audios, media)
		}
	}

	if err := s.store.CreateEvidence(ctx, evidence); err != nil {
		logger.Err("Erro ao salvar evidência no store: %v", err)
		// Sem o registro, os blobs recém-gravados ficariam órfãos
		s.rollbackBlobs(ctx, written)
		return nil, fmt.Errorf("erro interno ao salvar evidência")
	}

	return evidence, nil
}

// ListFolderEvidence lista as evidências de uma pasta do requisitante
func (s *EvidenceService) ListFolderEvidence(ctx context.Context, requesterID, folderID uuid.UUID) ([]*models.Evidence, error) {
	folder, err := s.store.GetFolderByID(ctx, folderID)
	if err != nil || folder.UserID != requesterID {
		return nil, fmt.Errorf("pasta não encontrada ou acesso negado: %w", apperr.ErrNotFound)
	}

	items, err := s.store.GetEvidenceByFolderID(ctx, folderID)
	if err != nil {
		logger.Err("Erro ao buscar evidências no store: %v", err)
		return nil, fmt.Errorf("erro interno ao buscar evidências")
	}
	return items, nil
}

// GetEvidenceFile abre o blob de um arquivo de mídia para streaming.
// A cadeia de posse (arquivo → evidência → pasta → dono) é verificada antes
// de qualquer byte ser servido.
func (s *EvidenceService) GetEvidenceFile(ctx context.Context, requesterID, fileID uuid.UUID) (*models.MediaFile, io.ReadCloser, error) {
	media, err := s.store.GetMediaFileByID(ctx, fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("arquivo não encontrado: %w", apperr.ErrNotFound)
	}

	evidence, err := s.store.GetEvidenceByID(ctx, media.EvidenceID)
	if err != nil {
		return nil, nil, fmt.Errorf("arquivo não encontrado: %w", apperr.ErrNotFound)
	}

	folder, err := s.store.GetFolderByID(ctx, evidence.FolderID)
	if err != nil || folder.UserID != requesterID {
		return nil, nil, fmt.Errorf("sem permissão para acessar este arquivo: %w", apperr.ErrForbidden)
	}

	blob, err := s.blobs.Open(ctx, media.ID.String())
	if err != nil {
		// Registro pendurado apontando para blob ausente responde 404, não 500
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil, err
		}
		logger.Err("Erro ao abrir blob %s: %v", media.ID, err)
		return nil, nil, fmt.Errorf("erro interno ao abrir arquivo")
	}

	return media, blob, nil
}

// DeleteEvidence exclui a evidência e seus blobs como uma unidade.
// Os blobs são removidos primeiro; a exclusão do registro só é efetivada
// (transação do store) depois que todas as remoções de blob deram certo.
// Se um blob falhar no meio, a operação aborta e o registro permanece.
func (s *EvidenceService) DeleteEvidence(ctx context.Context, requesterID, evidenceID uuid.UUID) error {
	evidence, err := s.store.GetEvidenceByID(ctx, evidenceID)
	if err != nil {
		return fmt.Errorf("evidência não encontrada: %w", apperr.ErrNotFound)
	}

	// Posse transitiva via pasta; a referência responde 401 aqui
	folder, err := s.store.GetFolderByID(ctx, evidence.FolderID)
	if err != nil || folder.UserID != requesterID {
		return fmt.Errorf("sem permissão para excluir esta evidência: %w", apperr.ErrUnauthorized)
	}

	for _, f := range evidence.AllFiles() {
		if err := s.blobs.Delete(ctx, f.ID.String()); err != nil {
			// Duas exclusões concorrentes podem disputar os mesmos blobs;
			// blob já ausente não é um erro fatal
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			return fmt.Errorf("falha ao excluir blob %s: %w", f.ID, err)
		}
	}

	if err := s.store.DeleteEvidence(ctx, evidenceID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		logger.Err("Erro ao excluir evidência %s: %v", evidenceID, err)
		return fmt.Errorf("erro interno ao excluir evidência")
	}

	return nil
}

// rollbackBlobs apaga, em melhor esforço, blobs gravados em uma criação abortada
func (s *EvidenceService) rollbackBlobs(ctx context.Context, ids []uuid.UUID) {
	for _, id := range ids {
		if err := s.blobs.Delete(ctx, id.String()); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			logger.Warn("Blob órfão %s de criação abortada não pôde ser removido: %v", id, err)
		}
	}
}

// mediaKind classifica o arquivo pelo prefixo do content-type
func mediaKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return models.MediaKindVideo
	case strings.HasPrefix(contentType, "image/"):
		return models.MediaKindImage
	case strings.HasPrefix(contentType, "audio/"):
		return models.MediaKindAudio
	default:
		return ""
	}
}
