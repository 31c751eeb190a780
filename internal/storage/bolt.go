package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"evidencevault-backend/internal/apperr"

	bolt "go.etcd.io/bbolt"
)

var blobBucket = []byte("blobs")

// BoltStore é a implementação de BlobStore sobre um arquivo bbolt local.
// Útil em desenvolvimento e em instalações pequenas sem S3.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore abre (ou cria) o arquivo de blobs no caminho dado
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("falha ao criar diretório de blobs: %w", err)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir arquivo de blobs: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blobBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao criar bucket de blobs: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close fecha o arquivo de blobs
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Save grava os bytes do blob. O conteúdo é lido por completo, pois o bbolt
// não expõe escrita em stream.
func (s *BoltStore) Save(ctx context.Context, key string, contentType string, size int64, r io.Reader) error {
	if key == "" {
		return fmt.Errorf("chave do blob não pode ser vazia")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("falha ao ler conteúdo do blob: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blobBucket).Put([]byte(key), data)
	})
}

// Open abre o blob para leitura
func (s *BoltStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blobBucket).Get([]byte(key))
		if v == nil {
			return fmt.Errorf("blob '%s' não encontrado: %w", key, apperr.ErrNotFound)
		}
		// Cópia necessária: o slice do bbolt só é válido dentro da transação
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete remove o blob; ausente retorna apperr.ErrNotFound
func (s *BoltStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(blobBucket)
		if b.Get([]byte(key)) == nil {
			return fmt.Errorf("blob '%s' não encontrado: %w", key, apperr.ErrNotFound)
		}
		return b.Delete([]byte(key))
	})
}
