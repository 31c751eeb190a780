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

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyPasswordHash é um hash bcrypt válido (DefaultCost) usado para pagar
// o custo da comparação quando o e-mail não existe. Sem isso, o login com
// e-mail desconhecido retornaria em microssegundos enquanto uma senha errada
// levaria o tempo de um bcrypt inteiro — um oráculo de enumeração de e-mails.
var dummyPasswordHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// UserService lida com a lógica de negócios de usuários
type UserService struct {
	store repository.UserStore
}

// NewUserService cria um novo serviço de usuário
func NewUserService(store repository.UserStore) *UserService {
	return &UserService{
		store: store,
	}
}

// Register cria um novo usuário
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperr.NewValidation("name, email e password são obrigatórios")
	}

	// Gerar hash da senha (nunca armazene senha em texto plano).
	// O hash acontece exatamente uma vez, aqui — não há hook implícito.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Err("Erro ao gerar hash bcrypt: %v", err)
		return nil, fmt.Errorf("erro interno ao processar senha")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	// O índice único de e-mail no store decide o conflito — checar antes
	// com um GET abriria uma corrida entre dois registros simultâneos
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		logger.Err("Erro ao salvar usuário no store: %v", err)
		return nil, fmt.Errorf("erro interno ao salvar usuário")
	}

	return user, nil
}

// Login autentica um usuário pelo e-mail e senha
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		// Resposta genérica: e-mail inexistente e senha errada devem ser
		// indistinguíveis para quem chama, inclusive no tempo de resposta.
		// A comparação contra o hash de sacrifício paga o mesmo custo de
		// bcrypt que o caminho de senha errada
		bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return nil, fmt.Errorf("credenciais inválidas: %w", apperr.ErrUnauthorized)
	}

	// Comparar a senha fornecida com o hash armazenado
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("credenciais inválidas: %w", apperr.ErrUnauthorized)
	}

	return user, nil
}

// GetUserByID busca um usuário pelo ID
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usuário não encontrado: %w", apperr.ErrNotFound)
	}
	return user, nil
}
