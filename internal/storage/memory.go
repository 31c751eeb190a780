package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"evidencevault-backend/internal/apperr"
)

// MemoryStore é uma implementação em-memória de BlobStore, usada em testes
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore cria um novo blob store em memória
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, key string, contentType string, size int64, r io.Reader) error {
	if key == "" {
		return fmt.Errorf("chave do blob não pode ser vazia")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("falha ao ler conteúdo do blob: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *MemoryStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.blobs[key]
	if !exists {
		return nil, fmt.Errorf("blob '%s' não encontrado: %w", key, apperr.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blobs[key]; !exists {
		return fmt.Errorf("blob '%s' não encontrado: %w", key, apperr.ErrNotFound)
	}
	delete(s.blobs, key)
	return nil
}

// Len devolve o número de blobs armazenados (auxiliar de testes)
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
