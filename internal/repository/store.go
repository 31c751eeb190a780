package repository

import (
	"context"

	"evidencevault-backend/internal/models"

	"github.com/google/uuid"
)

// UserStore define a interface para operações de usuário no DB
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// FolderStore define a interface para operações de pasta no DB
type FolderStore interface {
	CreateFolder(ctx context.Context, folder *models.Folder) error
	GetFolderByID(ctx context.Context, id uuid.UUID) (*models.Folder, error)
	GetFoldersByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Folder, error)
	// DeleteFolderCascade remove a pasta, suas evidências e as linhas de mídia
	// em uma única transação. Os blobs são responsabilidade do chamador.
	DeleteFolderCascade(ctx context.Context, folderID uuid.UUID) error
}

// EvidenceStore define a interface para operações de evidência no DB
type EvidenceStore interface {
	// CreateEvidence insere a evidência e suas linhas de mídia em uma
	// única transação
	CreateEvidence(ctx context.Context, evidence *models.Evidence) error
	GetEvidenceByID(ctx context.Context, id uuid.UUID) (*models.Evidence, error)
	GetEvidenceByFolderID(ctx context.Context, folderID uuid.UUID) ([]*models.Evidence, error)
	GetMediaFileByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
	// DeleteEvidence remove a evidência e suas linhas de mídia em uma
	// única transação. Deve ser chamado somente após a remoção dos blobs.
	DeleteEvidence(ctx context.Context, id uuid.UUID) error
}

// Store é uma interface agregada para todas as operações de store
// Facilita a injeção de dependência
type Store interface {
	UserStore
	FolderStore
	EvidenceStore
}
