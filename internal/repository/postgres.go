package repository

import (
	"context"
	"errors"
	"fmt"

	"evidencevault-backend/internal/apperr"
	"evidencevault-backend/internal/logger"
	"evidencevault-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore é a implementação da interface Store para o PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore cria uma nova instância do PostgresStore e pool de conexões
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("não foi possível criar pool de conexão: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("não foi possível pingar o banco de dados: %w", err)
	}

	logger.Log("Pool de conexão com PostgreSQL estabelecido.")
	return &PostgresStore{db: pool}, nil
}

// Close fecha o pool de conexões
func (s *PostgresStore) Close() {
	s.db.Close()
}

// RunMigrations executa o script SQL de migração
func (s *PostgresStore) RunMigrations(ctx context.Context, migrationSQL string) error {
	_, err := s.db.Exec(ctx, migrationSQL)
	if err != nil {
		return fmt.Errorf("falha ao executar migração: %w", err)
	}
	return nil
}

// --- UserStore ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	sql := `
        INSERT INTO users (id, name, email, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.Exec(ctx, sql,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)

	if err != nil {
		// Verifica se é um erro de violação de constraint (e-mail duplicado)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // 23505 = unique_violation
			return fmt.Errorf("e-mail '%s' já cadastrado: %w", user.Email, apperr.ErrConflict)
		}
		return fmt.Errorf("falha ao criar usuário: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	sql := `
        SELECT id, name, email, password_hash, created_at
        FROM users
        WHERE email = $1`

	user := &models.User{}
	err := s.db.QueryRow(ctx, sql, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("usuário não encontrado: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("falha ao buscar usuário por e-mail: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	sql := `
        SELECT id, name, email, password_hash, created_at
        FROM users
        WHERE id = $1`

	user := &models.User{}
	err := s.db.QueryRow(ctx, sql, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("usuário com ID '%s' não encontrado: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("falha ao buscar usuário por ID: %w", err)
	}
	return user, nil
}

// --- FolderStore ---

func (s *PostgresStore) CreateFolder(ctx context.Context, folder *models.Folder) error {
	sql := `
        INSERT INTO folders (id, name, password_hash, user_id, created_at)
        VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.Exec(ctx, sql,
		folder.ID,
		folder.Name,
		folder.PasswordHash,
		folder.UserID,
		folder.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("falha ao criar pasta: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFolderByID(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	sql := `
        SELECT id, name, password_hash, user_id, created_at
        FROM folders
        WHERE id = $1`

	folder := &models.Folder{}
	err := s.db.QueryRow(ctx, sql, id).Scan(
		&folder.ID,
		&folder.Name,
		&folder.PasswordHash,
		&folder.UserID,
		&folder.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pasta não encontrada: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("falha ao buscar pasta: %w", err)
	}
	return folder, nil
}

func (s *PostgresStore) GetFoldersByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Folder, error) {
	sql := `
        SELECT id, name, password_hash, user_id, created_at
        FROM folders
        WHERE user_id = $1
        ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar pastas: %w", err)
	}
	defer rows.Close()

	// Importante: inicializa como slice vazio, não nil, para consistência de JSON
	folders := []*models.Folder{}

	for rows.Next() {
		folder := &models.Folder{}
		err := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.PasswordHash,
			&folder.UserID,
			&folder.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("falha ao escanear linha de pasta: %w", err)
		}
		folders = append(folders, folder)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre as pastas: %w", err)
	}

	return folders, nil
}

func (s *PostgresStore) DeleteFolderCascade(ctx context.Context, folderID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}
	defer tx.Rollback(ctx)

	// Linhas de mídia primeiro, depois as evidências, por fim a pasta
	_, err = tx.Exec(ctx, `
        DELETE FROM evidence_files
        WHERE evidence_id IN (SELECT id FROM evidence WHERE folder_id = $1)`, folderID)
	if err != nil {
		return fmt.Errorf("falha ao excluir arquivos das evidências: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM evidence WHERE folder_id = $1`, folderID)
	if err != nil {
		return fmt.Errorf("falha ao excluir evidências da pasta: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM folders WHERE id = $1`, folderID)
	if err != nil {
		return fmt.Errorf("falha ao excluir pasta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pasta não encontrada: %w", apperr.ErrNotFound)
	}

	return tx.Commit(ctx)
}

// --- EvidenceStore ---

func (s *PostgresStore) CreateEvidence(ctx context.Context, evidence *models.Evidence) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}
	defer tx.Rollback(ctx)

	sql := `
        INSERT INTO evidence (id, name, description, secret_key_hash, folder_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = tx.Exec(ctx, sql,
		evidence.ID,
		evidence.Name,
		evidence.Description,
		evidence.SecretKeyHash,
		evidence.FolderID,
		evidence.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao criar evidência: %w", err)
	}

	fileSQL := `
        INSERT INTO evidence_files (id, evidence_id, filename, content_type, size, kind)
        VALUES ($1, $2, $3, $4, $5, $6)`

	for _, f := range evidence.AllFiles() {
		_, err = tx.Exec(ctx, fileSQL,
			f.ID,
			evidence.ID,
			f.Filename,
			f.ContentType,
			f.Size,
			f.Kind,
		)
		if err != nil {
			return fmt.Errorf("falha ao registrar arquivo de evidência: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetEvidenceByID(ctx context.Context, id uuid.UUID) (*models.Evidence, error) {
	sql := `
        SELECT id, name, description, secret_key_hash, folder_id, created_at
        FROM evidence
        WHERE id = $1`

	evidence := &models.Evidence{}
	err := s.db.QueryRow(ctx, sql, id).Scan(
		&evidence.ID,
		&evidence.Name,
		&evidence.Description,
		&evidence.SecretKeyHash,
		&evidence.FolderID,
		&evidence.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("evidência não encontrada: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("falha ao buscar evidência: %w", err)
	}

	if err := s.loadEvidenceFiles(ctx, evidence); err != nil {
		return nil, err
	}
	return evidence, nil
}

func (s *PostgresStore) GetEvidenceByFolderID(ctx context.Context, folderID uuid.UUID) ([]*models.Evidence, error) {
	sql := `
        SELECT id, name, description, secret_key_hash, folder_id, created_at
        FROM evidence
        WHERE folder_id = $1
        ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, sql, folderID)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar evidências: %w", err)
	}
	defer rows.Close()

	// Inicializa como slice vazio para consistência de JSON
	items := []*models.Evidence{}

	for rows.Next() {
		evidence := &models.Evidence{}
		err := rows.Scan(
			&evidence.ID,
			&evidence.Name,
			&evidence.Description,
			&evidence.SecretKeyHash,
			&evidence.FolderID,
			&evidence.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("falha ao escanear linha de evidência: %w", err)
		}
		items = append(items, evidence)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre as evidências: %w", err)
	}

	// Uma consulta de arquivos por evidência (N+1, mas as pastas são pequenas)
	for _, evidence := range items {
		if err := s.loadEvidenceFiles(ctx, evidence); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// loadEvidenceFiles carrega e particiona as linhas de mídia de uma evidência
func (s *PostgresStore) loadEvidenceFiles(ctx context.Context, evidence *models.Evidence) error {
	sql := `
        SELECT id, evidence_id, filename, content_type, size, kind
        FROM evidence_files
        WHERE evidence_id = $1`

	rows, err := s.db.Query(ctx, sql, evidence.ID)
	if err != nil {
		return fmt.Errorf("falha ao buscar arquivos da evidência: %w", err)
	}
	defer rows.Close()

	evidence.Videos = []models.MediaFile{}
	evidence.Images = []models.MediaFile{}
	evidence.Audios = []models.MediaFile{}

	for rows.Next() {
		f := models.MediaFile{}
		err := rows.Scan(&f.ID, &f.EvidenceID, &f.Filename, &f.ContentType, &f.Size, &f.Kind)
		if err != nil {
			return fmt.Errorf("falha ao escanear arquivo de evidência: %w", err)
		}
		switch f.Kind {
		case models.MediaKindVideo:
			evidence.Videos = append(evidence.Videos, f)
		case models.MediaKindImage:
			evidence.Images = append(evidence.Images, f)
		case models.MediaKindAudio:
			evidence.Audios = append(evidence.Audios, f)
		}
	}

	return rows.Err()
}

func (s *PostgresStore) GetMediaFileByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	sql := `
        SELECT id, evidence_id, filename, content_type, size, kind
        FROM evidence_files
        WHERE id = $1`

	f := &models.MediaFile{}
	err := s.db.QueryRow(ctx, sql, id).Scan(
		&f.ID,
		&f.EvidenceID,
		&f.Filename,
		&f.ContentType,
		&f.Size,
		&f.Kind,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("arquivo não encontrado: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("falha ao buscar arquivo: %w", err)
	}
	return f, nil
}

func (s *PostgresStore) DeleteEvidence(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM evidence_files WHERE evidence_id = $1`, id)
	if err != nil {
		return fmt.Errorf("falha ao excluir arquivos da evidência: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM evidence WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("falha ao excluir evidência: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("evidência não encontrada: %w", apperr.ErrNotFound)
	}

	return tx.Commit(ctx)
}
