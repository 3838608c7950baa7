package app

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/pkg/jwtutil"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/repository"
)

// AuthService is the embedded identity provider: it owns credentials and
// issues the session tokens the API middleware verifies.
type AuthService struct {
	userRepo      *repository.UserRepository
	credRepo      *repository.CredentialRepository
	jwtSecret     string
	jwtIssuer     string
	jwtExpiration time.Duration
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(
	userRepo *repository.UserRepository,
	credRepo *repository.CredentialRepository,
	jwtSecret, jwtIssuer string,
	jwtExpiration time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		credRepo:      credRepo,
		jwtSecret:     jwtSecret,
		jwtIssuer:     jwtIssuer,
		jwtExpiration: jwtExpiration,
	}
}

// Signup registers a credential and creates the matching user record, then
// signs the new user in.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password

	verr := &ValidationError{}
	if name == "" || utf8.RuneCountInString(name) > 64 {
		verr.Add("name", "must be 1 to 64 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		verr.Add("email", "must be a valid email address")
	}
	if len(password) < 8 {
		verr.Add("password", "must be at least 8 characters")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	existing, err := s.credRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	authID := uuid.NewString()
	cred := &model.Credential{
		AuthID:       authID,
		Email:        email,
		PasswordHash: string(hash),
	}
	user := &model.User{
		AuthID: authID,
		Name:   name,
		Email:  email,
	}
	if err := s.userRepo.CreateWithCredential(ctx, user, cred); err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredential
	}

	cred, err := s.credRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	user, err := s.userRepo.GetByAuthID(ctx, cred.AuthID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtIssuer, s.jwtExpiration, user.AuthID, user.Name)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
