package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

type mockRepo struct {
	accounts []*Account
}

func (m *mockRepo) Create(_ context.Context, a *Account) error {
	for _, existing := range m.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return ErrEmailTaken
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.accounts = append(m.accounts, a)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Account, int, error) {
	return m.accounts, len(m.accounts), nil
}

func (m *mockRepo) FindDoctorByName(_ context.Context, name string) (*Account, error) {
	for _, a := range m.accounts {
		if a.Role == auth.RoleDoctor && strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) CountByRole(_ context.Context, role string) (int, error) {
	count := 0
	for _, a := range m.accounts {
		if a.Role == role {
			count++
		}
	}
	return count, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := &mockRepo{}
	return NewService(repo, auth.NewIssuer("test-secret", time.Hour)), repo
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, _ := newTestService()

	account, err := svc.Register(context.Background(), "Asha Patel", "asha@example.com", "secret1", auth.RolePatient, "")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if account.PasswordHash == "secret1" || account.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if account.Role != auth.RolePatient {
		t.Errorf("expected role Patient, got %s", account.Role)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name       string
		userName   string
		email      string
		password   string
		role       string
		department string
	}{
		{"missing name", "", "a@b.c", "secret1", auth.RolePatient, ""},
		{"missing email", "A", "", "secret1", auth.RolePatient, ""},
		{"short password", "A", "a@b.c", "123", auth.RolePatient, ""},
		{"bad role", "A", "a@b.c", "secret1", "Janitor", ""},
		{"doctor without department", "A", "a@b.c", "secret1", auth.RoleDoctor, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.userName, tc.email, tc.password, tc.role, tc.department); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "A", "dup@example.com", "secret1", auth.RolePatient, ""); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}
	if _, err := svc.Register(ctx, "B", "dup@example.com", "secret1", auth.RolePatient, ""); err != ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Asha", "asha@example.com", "secret1", auth.RolePatient, "")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	account, token, err := svc.Authenticate(ctx, "asha@example.com", "secret1")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if account.ID != registered.ID {
		t.Error("authenticated wrong account")
	}
	if token == "" {
		t.Error("expected a signed token")
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Asha", "asha@example.com", "secret1", auth.RolePatient, ""); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	_, token, err := svc.Authenticate(ctx, "asha@example.com", "wrong")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if token != "" {
		t.Error("no token must be issued for bad credentials")
	}

	if _, _, err := svc.Authenticate(ctx, "nobody@example.com", "secret1"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestFindDoctorByName(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Dr. Rao", "rao@example.com", "secret1", auth.RoleDoctor, "Cardiology"); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	doc, err := svc.FindDoctorByName(ctx, "dr. rao")
	if err != nil {
		t.Fatalf("FindDoctorByName() error: %v", err)
	}
	if doc.Department != "Cardiology" {
		t.Errorf("expected Cardiology, got %s", doc.Department)
	}

	if _, err := svc.FindDoctorByName(ctx, ""); err == nil {
		t.Error("expected error for empty name")
	}
}
