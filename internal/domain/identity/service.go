package identity

import (
	"context"
	"fmt"

	"github.com/dermaclinic/dermaclinic/internal/platform/auth"
)

var (
	ErrUsernameTaken      = fmt.Errorf("username already taken")
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
)

type Service struct {
	users Repository
}

func NewService(users Repository) *Service {
	return &Service{users: users}
}

// Register creates a new user with a hashed password. Username uniqueness is
// checked here so the in-memory and Postgres backends reject duplicates the
// same way; the database unique constraint remains as a backstop.
func (s *Service) Register(ctx context.Context, username, password, name, role string) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if role == "" {
		role = RolePatient
	}
	if !ValidRoles[role] {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username: username,
		Password: hash,
		Name:     name,
		Role:     role,
		Active:   true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies credentials and returns the user. Disabled accounts
// fail the same way as wrong passwords to avoid leaking account state.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active || !auth.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.users.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.users.GetByUsername(ctx, username)
}

// Update applies a patch. A new plaintext password in the patch is hashed
// before it reaches the repository.
func (s *Service) Update(ctx context.Context, id int64, patch UserPatch) (*User, error) {
	if patch.Role != nil && !ValidRoles[*patch.Role] {
		return nil, fmt.Errorf("invalid role: %s", *patch.Role)
	}
	if patch.Password != nil {
		if len(*patch.Password) < 8 {
			return nil, fmt.Errorf("password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}
	return s.users.Update(ctx, id, patch)
}

// Deactivate soft-disables an account. Users are never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, id int64) (*User, error) {
	inactive := false
	return s.users.Update(ctx, id, UserPatch{Active: &inactive})
}

// ListExperts returns all active users with the expert role, used when
// fanning out review notifications.
func (s *Service) ListExperts(ctx context.Context) ([]*User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	var experts []*User
	for _, u := range all {
		if u.Role == RoleExpert && u.Active {
			experts = append(experts, u)
		}
	}
	return experts, nil
}
