package patient

import (
	"context"
	"errors"
	"testing"
)

func newService() *Service {
	return NewService(NewMemRepo())
}

func TestCreateAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	p, err := svc.Create(ctx, &Patient{
		PID:    "DRM1001",
		Name:   "Jane Doe",
		Age:    29,
		Gender: "female",
		Email:  "jane@example.com",
		Phone:  "5551234567",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == 0 {
		t.Error("no id assigned")
	}
	if p.CreatedAt.IsZero() {
		t.Error("no creation timestamp assigned")
	}
	if p.PID != "DRM1001" || p.Name != "Jane Doe" || p.Age != 29 ||
		p.Gender != "female" || p.Email != "jane@example.com" || p.Phone != "5551234567" {
		t.Errorf("stored fields changed: %+v", p)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.PID != "DRM1001" {
		t.Errorf("round trip: %+v", got)
	}
}

func TestCreateRejectsDuplicatePID(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.Create(ctx, &Patient{PID: "DRM1001", Name: "Jane", Age: 29}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, &Patient{PID: "DRM1001", Name: "Other", Age: 40})
	if !errors.Is(err, ErrPIDTaken) {
		t.Errorf("err = %v, want ErrPIDTaken", err)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.Create(ctx, &Patient{Name: "No PID", Age: 20}); err == nil {
		t.Error("expected error for missing pid")
	}
	if _, err := svc.Create(ctx, &Patient{PID: "DRM1", Age: 20}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := svc.Create(ctx, &Patient{PID: "DRM2", Name: "X", Age: -1}); err == nil {
		t.Error("expected error for negative age")
	}
}

func TestUpdatePreservesUntouchedFields(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	p, err := svc.Create(ctx, &Patient{PID: "DRM1001", Name: "Jane", Age: 29, Email: "jane@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	phone := "5559998888"
	updated, err := svc.Update(ctx, p.ID, PatientPatch{Phone: &phone})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Phone != phone {
		t.Errorf("Phone = %q", updated.Phone)
	}
	if updated.PID != p.PID || updated.Name != p.Name || updated.Age != p.Age || updated.Email != p.Email {
		t.Error("untouched fields changed")
	}
	if !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Error("creation timestamp changed")
	}
}

func TestStoreDoesNotAliasCallerMemory(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	p, err := svc.Create(ctx, &Patient{PID: "DRM1001", Name: "Jane", Age: 29})
	if err != nil {
		t.Fatal(err)
	}

	addr := "12 Clinic Road"
	if _, err := svc.Update(ctx, p.ID, PatientPatch{Address: &addr}); err != nil {
		t.Fatal(err)
	}

	// Rewriting the caller's variable after the update must not reach the store.
	addr = "666 Mutated Lane"
	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Address == nil || *got.Address != "12 Clinic Road" {
		t.Errorf("Address = %v, want value at update time", got.Address)
	}

	// Mutating through a returned pointer must not reach the store either.
	*got.Address = "yet another street"
	again, _ := svc.Get(ctx, p.ID)
	if *again.Address != "12 Clinic Road" {
		t.Errorf("read-side aliasing: Address = %q", *again.Address)
	}
}

func TestUpdateRejectsNegativeAge(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	p, err := svc.Create(ctx, &Patient{PID: "DRM1001", Name: "Jane", Age: 29})
	if err != nil {
		t.Fatal(err)
	}
	bad := -5
	if _, err := svc.Update(ctx, p.ID, PatientPatch{Age: &bad}); err == nil {
		t.Error("expected error for negative age")
	}
}

func TestDeleteIsIdempotentOnSecondCall(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	p, err := svc.Create(ctx, &Patient{PID: "DRM1001", Name: "Jane", Age: 29})
	if err != nil {
		t.Fatal(err)
	}

	removed, err := svc.Delete(ctx, p.ID)
	if err != nil || !removed {
		t.Fatalf("first delete: removed=%v err=%v", removed, err)
	}
	removed, err = svc.Delete(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("second delete reported removal")
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("patient still readable after delete: %+v", got)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	svc := newService()
	p, err := svc.Get(context.Background(), 424242)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("got %+v, want nil", p)
	}
	p, err = svc.GetByPID(context.Background(), "NOPE")
	if err != nil || p != nil {
		t.Errorf("GetByPID: got %+v err=%v, want nil nil", p, err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	first, _ := svc.Create(ctx, &Patient{PID: "DRM1001", Name: "A", Age: 20})
	second, _ := svc.Create(ctx, &Patient{PID: "DRM1002", Name: "B", Age: 30})

	out, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != second.ID || out[1].ID != first.ID {
		t.Errorf("order wrong: %+v", out)
	}
}
