package identity

import (
	"context"
	"errors"
	"testing"
)

func newService() *Service {
	return NewService(NewMemRepo())
}

func TestRegisterAssignsIDAndHashesPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	u, err := svc.Register(ctx, "drsmith", "password123", "Dr. Smith", RoleDoctor)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == 0 {
		t.Error("no id assigned")
	}
	if u.CreatedAt.IsZero() {
		t.Error("no creation timestamp assigned")
	}
	if u.Password == "password123" {
		t.Error("password stored in plaintext")
	}
	if !u.Active {
		t.Error("new user not active")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.Register(ctx, "jane", "password123", "Jane", RolePatient); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register(ctx, "jane", "otherpassword", "Jane Two", RolePatient)
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestRegisterDefaultsRoleAndValidates(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	u, err := svc.Register(ctx, "pat", "password123", "Pat", "")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != RolePatient {
		t.Errorf("Role = %q, want patient", u.Role)
	}

	if _, err := svc.Register(ctx, "x", "password123", "X", "superadmin"); err == nil {
		t.Error("expected error for invalid role")
	}
	if _, err := svc.Register(ctx, "y", "short", "Y", RolePatient); err == nil {
		t.Error("expected error for short password")
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	created, err := svc.Register(ctx, "jane", "password123", "Jane", RolePatient)
	if err != nil {
		t.Fatal(err)
	}

	u, err := svc.Authenticate(ctx, "jane", "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("ID = %d, want %d", u.ID, created.ID)
	}

	if _, err := svc.Authenticate(ctx, "jane", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v", err)
	}
}

func TestAuthenticateRejectsDeactivated(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	u, err := svc.Register(ctx, "jane", "password123", "Jane", RolePatient)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Deactivate(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(ctx, "jane", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("deactivated login: err = %v", err)
	}
}

func TestUpdatePreservesUntouchedFields(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	u, err := svc.Register(ctx, "jane", "password123", "Jane", RolePatient)
	if err != nil {
		t.Fatal(err)
	}

	newName := "Jane Doe"
	updated, err := svc.Update(ctx, u.ID, UserPatch{Name: &newName})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Jane Doe" {
		t.Errorf("Name = %q", updated.Name)
	}
	if updated.Username != u.Username || updated.Role != u.Role || updated.Active != u.Active {
		t.Error("untouched fields changed")
	}
	if !updated.CreatedAt.Equal(u.CreatedAt) {
		t.Error("creation timestamp changed")
	}
}

func TestUpdateMissingUserReturnsNil(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	name := "ghost"
	u, err := svc.Update(ctx, 999999, UserPatch{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != nil {
		t.Errorf("got %+v, want nil", u)
	}
}

func TestListExperts(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	if _, err := svc.Register(ctx, "doc", "password123", "Doc", RoleDoctor); err != nil {
		t.Fatal(err)
	}
	e1, err := svc.Register(ctx, "exp1", "password123", "Expert One", RoleExpert)
	if err != nil {
		t.Fatal(err)
	}
	e2, err := svc.Register(ctx, "exp2", "password123", "Expert Two", RoleExpert)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Deactivate(ctx, e2.ID); err != nil {
		t.Fatal(err)
	}

	experts, err := svc.ListExperts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(experts) != 1 || experts[0].ID != e1.ID {
		t.Errorf("experts = %+v, want only exp1", experts)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	svc := newService()
	u, err := svc.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != nil {
		t.Errorf("got %+v, want nil", u)
	}
}
