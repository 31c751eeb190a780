package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"evidencevault-backend/internal/apperr"
	"evidencevault-backend/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store é a implementação de BlobStore sobre um bucket S3 (ou MinIO)
type S3Store struct {
	client     *s3.Client
	bucketName string
}

// S3Config agrupa os parâmetros de conexão com o bucket
type S3Config struct {
	Endpoint  string // vazio = AWS padrão; preencha para MinIO
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// NewS3Store cria um novo store S3 a partir da configuração
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("nome do bucket S3 não pode ser vazio")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"", // token de sessão (não usado)
		)))
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar configuração AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// Endpoint customizado (MinIO em desenvolvimento)
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucketName: cfg.Bucket}, nil
}

// Save grava o objeto no bucket
func (s *S3Store) Save(ctx context.Context, key string, contentType string, size int64, r io.Reader) error {
	if key == "" {
		return fmt.Errorf("chave do blob não pode ser vazia")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          r,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		logger.Err("Erro ao gravar blob %s no S3: %v", key, err)
		return fmt.Errorf("falha ao gravar blob: %w", err)
	}
	return nil
}

// Open abre o objeto para leitura em stream
func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("blob '%s' não encontrado: %w", key, apperr.ErrNotFound)
		}
		logger.Err("Erro ao abrir blob %s no S3: %v", key, err)
		return nil, fmt.Errorf("falha ao abrir blob: %w", err)
	}
	return out.Body, nil
}

// Delete remove o objeto. O S3 trata DELETE de chave ausente como sucesso,
// o que já é o comportamento que os fluxos de exclusão esperam.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.Err("Erro ao excluir blob %s no S3: %v", key, err)
		return fmt.Errorf("falha ao excluir blob: %w", err)
	}
	return nil
}
