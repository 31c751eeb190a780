package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evidencevault-backend/internal/apperr"
	"evidencevault-backend/internal/logger"
	"evidencevault-backend/internal/models"
	"evidencevault-backend/internal/repository"
	"evidencevault-backend/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// FolderService lida com a lógica de negócios de pastas
type FolderService struct {
	store repository.Store // Precisa de FolderStore e EvidenceStore (cascata)
	blobs storage.BlobStore
}

// NewFolderService cria um novo serviço de pastas
func NewFolderService(store repository.Store, blobs storage.BlobStore) *FolderService {
	return &FolderService{
		store: store,
		blobs: blobs,
	}
}

// CreateFolder cria uma pasta protegida por senha para o usuário dono
func (s *FolderService) CreateFolder(ctx context.Context, ownerID uuid.UUID, name, password string) (*models.Folder, error) {
	// Validação antes do hash
	if name == "" {
		return nil, apperr.NewValidation("informe o nome da pasta")
	}
	if len(name) > 100 {
		return nil, apperr.NewValidation("nome da pasta não pode passar de 100 caracteres")
	}
	if len(password) < 6 {
		return nil, apperr.NewValidation("senha da pasta deve ter pelo menos 6 caracteres")
	}

	// Hash exatamente uma vez, no momento da criação
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Err("Erro ao gerar hash bcrypt da pasta: %v", err)
		return nil, fmt.Errorf("erro interno ao processar senha")
	}

	folder := &models.Folder{
		ID:           uuid.New(),
		Name:         name,
		PasswordHash: string(hash),
		UserID:       ownerID,
		CreatedAt:    time.Now(),
	}

	if err := s.store.CreateFolder(ctx, folder); err != nil {
		logger.Err("Erro ao salvar pasta no store: %v", err)
		return nil, fmt.Errorf("erro interno ao salvar pasta")
	}

	return folder, nil
}

// ListFolders lista as pastas do usuário dono
func (s *FolderService) ListFolders(ctx context.Context, ownerID uuid.UUID) ([]*models.Folder, error) {
	folders, err := s.store.GetFoldersByUserID(ctx, ownerID)
	if err != nil {
		logger.Err("Erro ao buscar pastas no store: %v", err)
		return nil, fmt.Errorf("erro interno ao buscar pastas")
	}
	return folders, nil
}

// VerifyPassword verifica a senha de uma pasta.
// A ordem das checagens importa: existência, depois posse, depois senha —
// um não-dono nunca fica sabendo se a senha que chutou estava certa.
// O sucesso não cria nenhum estado "destrancado" no servidor; cada acesso
// ao conteúdo exige uma nova verificação pelo cliente.
func (s *FolderService) VerifyPassword(ctx context.Context, folderID, requesterID uuid.UUID, candidate string) error {
	folder, err := s.store.GetFolderByID(ctx, folderID)
	if err != nil {
		return fmt.Errorf("pasta não encontrada: %w", apperr.ErrNotFound)
	}

	if folder.UserID != requesterID {
		return fmt.Errorf("sem permissão para acessar esta pasta: %w", apperr.ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(folder.PasswordHash), []byte(candidate)); err != nil {
		return fmt.Errorf("senha inválida: %w", apperr.ErrUnauthorized)
	}

	return nil
}

// DeleteFolder exclui a pasta e, em cascata, suas evidências e blobs.
// Os blobs são removidos primeiro; a exclusão dos registros só é efetivada
// depois que todos os blobs foram tratados.
func (s *FolderService) DeleteFolder(ctx context.Context, folderID, requesterID uuid.UUID) error {
	folder, err := s.store.GetFolderByID(ctx, folderID)
	if err != nil {
		return fmt.Errorf("pasta não encontrada: %w", apperr.ErrNotFound)
	}

	if folder.UserID != requesterID {
		return fmt.Errorf("sem permissão para excluir esta pasta: %w", apperr.ErrForbidden)
	}

	items, err := s.store.GetEvidenceByFolderID(ctx, folderID)
	if err != nil {
		logger.Err("Erro ao buscar evidências da pasta %s: %v", folderID, err)
		return fmt.Errorf("erro interno ao buscar evidências da pasta")
	}

	for _, evidence := range items {
		for _, f := range evidence.AllFiles() {
			if err := s.blobs.Delete(ctx, f.ID.String()); err != nil {
				// Blob já ausente é um estado terminal aceitável de exclusão
				if errors.Is(err, apperr.ErrNotFound) {
					continue
				}
				return fmt.Errorf("falha ao excluir blob %s: %w", f.ID, err)
			}
		}
	}

	if err := s.store.DeleteFolderCascade(ctx, folderID); err != nil {
		logger.Err("Erro ao excluir pasta %s: %v", folderID, err)
		return err
	}

	return nil
}
