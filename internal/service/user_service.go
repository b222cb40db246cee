package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mebelmart-backend/internal/domain"
	"mebelmart-backend/internal/repository"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

// UserService registers and authenticates users.
type UserService struct {
	repo   repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	now    func() time.Time
}

func NewUserService(repo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{repo: repo, hasher: hasher, tokens: tokens, now: time.Now}
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
	Address     string
	Role        string
}

type LoginResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates a customer (or admin) account. Email and username are
// stored lowercased; the response carries no user data.
func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || strings.TrimSpace(in.FullName) == "" {
		return validationError("email, password and fullName are required")
	}
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	role := domain.Role(in.Role)
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return validationError("role must be admin or customer")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return conflictError("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return storageError(err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return &Error{Kind: ErrStorage, Message: "could not hash password", Err: err}
	}
	u := domain.User{
		Username:    username,
		Email:       email,
		Password:    hashed,
		Role:        role,
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return conflictError("username or email already registered")
		}
		return storageError(err)
	}
	return nil
}

// Login checks the credentials and returns the user without its password
// hash plus a session token. Unknown email and wrong password fail alike.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}
	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, storageError(err)
	}
	if !s.hasher.Verify(password, u.Password) {
		return nil, errInvalidCredentials
	}
	token, err := s.tokens.Issue(u.ID.Hex(), string(u.Role))
	if err != nil {
		return nil, &Error{Kind: ErrStorage, Message: "could not issue token", Err: err}
	}
	return &LoginResult{User: u.Sanitized(), Token: token}, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

// Get returns the sanitized user with the given id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFoundError("user not found")
	}
	u, err := s.repo.GetByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("user not found")
	}
	if err != nil {
		return nil, storageError(err)
	}
	clean := u.Sanitized()
	return &clean, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
