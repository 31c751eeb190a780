package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config armazena a configuração da aplicação
type Config struct {
	ServerPort    int           `envconfig:"SERVER_PORT" default:"8080"`
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	TokenValidity time.Duration `envconfig:"TOKEN_VALIDITY" default:"24h"`
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`

	// Driver do blob store: "s3", "bolt" ou "memory"
	BlobDriver string `envconfig:"BLOB_DRIVER" default:"bolt"`
	BoltPath   string `envconfig:"BOLT_PATH" default:"./data/blobs.db"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"` // vazio = AWS padrão; preencha para MinIO
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`

	// Limites de entrada de arquivos (aplicados antes de qualquer escrita)
	MaxFileSize      int64  `envconfig:"MAX_FILE_SIZE" default:"52428800"` // 50MB
	AllowedFileTypes string `envconfig:"ALLOWED_FILE_TYPES" default:"image/jpeg,image/png,image/gif,video/mp4,video/webm,audio/mpeg,audio/wav,audio/ogg"`
}

// Load carrega a configuração das variáveis de ambiente
func Load(cfg *Config) error {
	return envconfig.Process("", cfg)
}

// AllowedTypes devolve a allow-list de MIME types como um set
func (c *Config) AllowedTypes() map[string]bool {
	allowed := make(map[string]bool)
	for _, t := range strings.Split(c.AllowedFileTypes, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			allowed[t] = true
		}
	}
	return allowed
}
