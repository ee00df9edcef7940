package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"feedback-board/internal/apperr"
	"feedback-board/internal/auth"
	"feedback-board/internal/domain"
	"feedback-board/internal/repository"
)

const minPasswordLength = 6

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = apperr.New(apperr.CodeUnauthenticated, "invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing username.
	ErrUserAlreadyExists = apperr.New(apperr.CodeConflict, "username already exists")
)

// AdminCredentials is the reserved, non-persisted admin login. An empty password disables it.
type AdminCredentials struct {
	Username string
	Password string
}

func (a AdminCredentials) enabled() bool {
	return strings.TrimSpace(a.Username) != "" && a.Password != ""
}

func (a AdminCredentials) match(username, password string) bool {
	if !a.enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.Password)) == 1
	return userOK && passOK
}

// Session is the result of a successful login: the signed assertion plus the
// same identity fields unsigned for client display.
type Session struct {
	SubjectID string
	Username  string
	Role      domain.Role
	Token     string
	ExpiresAt time.Time
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type userService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	admin      AdminCredentials
	bcryptCost int
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, admin AdminCredentials, bcryptCost int) UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		users:      users,
		tokens:     tokens,
		admin:      admin,
		bcryptCost: bcryptCost,
	}
}

func (s *userService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return nil, apperr.InvalidArgument("username is required")
	}
	if password == "" {
		return nil, apperr.InvalidArgument("password is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.InvalidArgument(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if s.admin.enabled() && strings.EqualFold(username, s.admin.Username) {
		return nil, ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, apperr.Internal(err)
	}

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	// the reserved admin never touches the store
	if s.admin.match(username, password) {
		return s.issue(domain.Subject{
			ID:       domain.AdminSubjectID,
			Username: s.admin.Username,
			Role:     domain.RoleAdmin,
		})
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(domain.Subject{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}

func (s *userService) issue(subject domain.Subject) (*Session, error) {
	token, expires, err := s.tokens.Issue(subject)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{
		SubjectID: subject.ID,
		Username:  subject.Username,
		Role:      subject.Role,
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
