package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/platform/auth"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	repo   Repository
	issuer *auth.Issuer
}

func NewService(repo Repository, issuer *auth.Issuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// Register creates an account with the given role. Doctors must carry a
// department so that token booking can route to their queue.
func (s *Service) Register(ctx context.Context, name, email, password, role, department string) (*Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}
	if !auth.ValidRole(role) {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	if role == auth.RoleDoctor && strings.TrimSpace(department) == "" {
		return nil, fmt.Errorf("department is required for doctors")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Department:   strings.TrimSpace(department),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Authenticate verifies the credentials and returns the account plus a signed
// bearer token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, string, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(account.ID.String(), account.Name, account.Role)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// FindDoctorByName resolves a doctor account by display name, as entered by a
// patient when booking a token.
func (s *Service) FindDoctorByName(ctx context.Context, name string) (*Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("doctor name is required")
	}
	return s.repo.FindDoctorByName(ctx, name)
}

func (s *Service) CountByRole(ctx context.Context, role string) (int, error) {
	return s.repo.CountByRole(ctx, role)
}
