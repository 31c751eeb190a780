// Package storage abstrai o armazenamento binário dos arquivos de evidência.
// Os registros (metadados) ficam no repository; aqui ficam apenas os bytes,
// endereçados pela chave gerada (o ID do MediaFile).
package storage

import (
	"context"
	"io"
)

// BlobStore define a interface de armazenamento de blobs
type BlobStore interface {
	// Save grava os bytes do blob sob a chave dada
	Save(ctx context.Context, key string, contentType string, size int64, r io.Reader) error

	// Open abre o blob para leitura. Retorna apperr.ErrNotFound se ausente.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete remove o blob. Retorna apperr.ErrNotFound se ausente —
	// nos fluxos de exclusão isso é tratado como sucesso (o blob já se foi).
	Delete(ctx context.Context, key string) error
}
