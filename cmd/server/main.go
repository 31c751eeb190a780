package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evidencevault-backend/internal/api"
	"evidencevault-backend/internal/auth"
	"evidencevault-backend/internal/config"
	"evidencevault-backend/internal/logger"
	"evidencevault-backend/internal/repository"
	"evidencevault-backend/internal/service"
	"evidencevault-backend/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Carregar o arquivo .env ANTES da configuração.
	// Em produção o app pode rodar sem .env, desde que as variáveis
	// estejam setadas no ambiente (ex: no Docker/K8s)
	if err := godotenv.Load(); err != nil {
		logger.Warn("Não foi possível carregar o arquivo .env: %v. (Usando variáveis de ambiente existentes)", err)
	}

	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		logger.Fatal("Falha ao carregar configuração: %v", err)
	}

	// 2. Inicializar a camada de repositório (PostgreSQL).
	// O handle é criado uma única vez aqui e injetado em todos os
	// componentes — nenhum estado global de conexão
	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelInit()

	store, err := repository.NewPostgresStore(initCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Falha ao conectar ao banco de dados: %v", err)
	}
	defer store.Close()

	// 3. Rodar migrations
	migrationSQL, err := os.ReadFile("./migrations/001_init.sql")
	if err != nil {
		logger.Fatal("Falha ao ler arquivo de migração: %v", err)
	}

	if err := store.RunMigrations(initCtx, string(migrationSQL)); err != nil {
		logger.Warn("Aviso ao rodar migrações: %v. (Continuando...)", err)
	} else {
		logger.Log("Migrações do banco de dados aplicadas com sucesso.")
	}

	// 4. Inicializar o blob store conforme o driver configurado
	blobs, closeBlobs, err := newBlobStore(initCtx, &cfg)
	if err != nil {
		logger.Fatal("Falha ao iniciar blob store: %v", err)
	}
	defer closeBlobs()
	logger.Log("Blob store '%s' pronto.", cfg.BlobDriver)

	// 5. Inicializar a camada de autenticação
	tokenService, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenValidity)
	if err != nil {
		logger.Fatal("Falha ao iniciar TokenService: %v", err)
	}

	// 6. Inicializar a camada de serviço
	userService := service.NewUserService(store)
	folderService := service.NewFolderService(store, blobs)
	evidenceService := service.NewEvidenceService(store, blobs)

	// 7. Inicializar a camada de API
	handler := api.NewHandler(
		userService,
		folderService,
		evidenceService,
		tokenService,
		store,
		cfg.MaxFileSize,
		cfg.AllowedTypes(),
	)

	// 8. Configurar o servidor HTTP
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      handler.Routes(),
		ReadTimeout:  30 * time.Second, // uploads multipart demoram mais
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Iniciar o servidor
	go func() {
		logger.Log("Servidor iniciado em http://localhost:%d/api", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Erro ao iniciar servidor: %v", err)
		}
	}()

	// Aguardar sinal de interrupção
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log("Recebido sinal de desligamento, encerrando servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Erro no graceful shutdown: %v", err)
	}
	logger.Log("Servidor encerrado.")
}

// newBlobStore seleciona o driver de blob configurado.
// Devolve também a função de encerramento (no-op quando não há o que fechar).
func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, func(), error) {
	switch cfg.BlobDriver {
	case "s3":
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return s3Store, func() {}, nil
	case "bolt":
		boltStore, err := storage.NewBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return boltStore, func() { boltStore.Close() }, nil
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("driver de blob desconhecido: %s", cfg.BlobDriver)
	}
}
