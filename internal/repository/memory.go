package repository

import (
	"context"
	"fmt"
	"sync"

	"evidencevault-backend/internal/apperr"
	"evidencevault-backend/internal/models"

	"github.com/google/uuid"
)

// InMemoryStore é uma implementação em-memória da interface Store
// Usada em testes e em desenvolvimento local sem banco
type InMemoryStore struct {
	mu           sync.RWMutex
	usersByID    map[uuid.UUID]*models.User
	usersByEmail map[string]*models.User
	foldersByID  map[uuid.UUID]*models.Folder
	evidenceByID map[uuid.UUID]*models.Evidence
	filesByID    map[uuid.UUID]*models.MediaFile
}

// NewInMemoryStore cria uma nova instância do store em memória
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		usersByID:    make(map[uuid.UUID]*models.User),
		usersByEmail: make(map[string]*models.User),
		foldersByID:  make(map[uuid.UUID]*models.Folder),
		evidenceByID: make(map[uuid.UUID]*models.Evidence),
		filesByID:    make(map[uuid.UUID]*models.MediaFile),
	}
}

// --- UserStore ---

func (s *InMemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[user.Email]; exists {
		return fmt.Errorf("e-mail '%s' já cadastrado: %w", user.Email, apperr.ErrConflict)
	}

	s.usersByID[user.ID] = user
	s.usersByEmail[user.Email] = user
	return nil
}

func (s *InMemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByEmail[email]
	if !exists {
		return nil, fmt.Errorf("usuário não encontrado: %w", apperr.ErrNotFound)
	}
	return user, nil
}

func (s *InMemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByID[id]
	if !exists {
		return nil, fmt.Errorf("usuário com ID '%s' não encontrado: %w", id, apperr.ErrNotFound)
	}
	return user, nil
}

// --- FolderStore ---

func (s *InMemoryStore) CreateFolder(ctx context.Context, folder *models.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.foldersByID[folder.ID] = folder
	return nil
}

func (s *InMemoryStore) GetFolderByID(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folder, exists := s.foldersByID[id]
	if !exists {
		return nil, fmt.Errorf("pasta não encontrada: %w", apperr.ErrNotFound)
	}
	return folder, nil
}

func (s *InMemoryStore) GetFoldersByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folders := []*models.Folder{}
	for _, folder := range s.foldersByID {
		if folder.UserID == userID {
			folders = append(folders, folder)
		}
	}
	return folders, nil
}

func (s *InMemoryStore) DeleteFolderCascade(ctx context.Context, folderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.foldersByID[folderID]; !exists {
		return fmt.Errorf("pasta não encontrada: %w", apperr.ErrNotFound)
	}

	for id, evidence := range s.evidenceByID {
		if evidence.FolderID != folderID {
			continue
		}
		for _, f := range evidence.AllFiles() {
			delete(s.filesByID, f.ID)
		}
		delete(s.evidenceByID, id)
	}
	delete(s.foldersByID, folderID)
	return nil
}

// --- EvidenceStore ---

func (s *InMemoryStore) CreateEvidence(ctx context.Context, evidence *models.Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evidenceByID[evidence.ID] = evidence
	for _, f := range evidence.AllFiles() {
		file := f
		s.filesByID[f.ID] = &file
	}
	return nil
}

func (s *InMemoryStore) GetEvidenceByID(ctx context.Context, id uuid.UUID) (*models.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evidence, exists := s.evidenceByID[id]
	if !exists {
		return nil, fmt.Errorf("evidência não encontrada: %w", apperr.ErrNotFound)
	}
	return evidence, nil
}

func (s *InMemoryStore) GetEvidenceByFolderID(ctx context.Context, folderID uuid.UUID) ([]*models.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []*models.Evidence{}
	for _, evidence := range s.evidenceByID {
		if evidence.FolderID == folderID {
			items = append(items, evidence)
		}
	}
	return items, nil
}

func (s *InMemoryStore) GetMediaFileByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.filesByID[id]
	if !exists {
		return nil, fmt.Errorf("arquivo não encontrado: %w", apperr.ErrNotFound)
	}
	return f, nil
}

func (s *InMemoryStore) DeleteEvidence(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	evidence, exists := s.evidenceByID[id]
	if !exists {
		return fmt.Errorf("evidência não encontrada: %w", apperr.ErrNotFound)
	}

	for _, f := range evidence.AllFiles() {
		delete(s.filesByID, f.ID)
	}
	delete(s.evidenceByID, id)
	return nil
}
