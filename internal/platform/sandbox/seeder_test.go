package sandbox

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dermaclinic/dermaclinic/internal/domain/identity"
	"github.com/dermaclinic/dermaclinic/internal/domain/medication"
	"github.com/dermaclinic/dermaclinic/internal/domain/patient"
)

func newSeeder() (*Seeder, *identity.Service, *patient.Service, *medication.Service) {
	users := identity.NewService(identity.NewMemRepo())
	patients := patient.NewService(patient.NewMemRepo())
	catalog := medication.NewService(medication.NewMemRepo())
	return NewSeeder(users, patients, catalog, zerolog.Nop()), users, patients, catalog
}

func TestSeedPopulatesDemoData(t *testing.T) {
	ctx := context.Background()
	s, users, patients, catalog := newSeeder()

	if err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	doctor, err := users.Authenticate(ctx, "dr.house", demoPassword)
	if err != nil {
		t.Fatalf("demo doctor login: %v", err)
	}
	if doctor.Role != identity.RoleDoctor {
		t.Errorf("role = %q", doctor.Role)
	}

	experts, err := users.ListExperts(ctx)
	if err != nil || len(experts) != 1 {
		t.Errorf("experts = %v, err = %v", experts, err)
	}

	p, err := patients.GetByPID(ctx, "DRM1001")
	if err != nil || p == nil {
		t.Fatalf("demo patient: %+v, %v", p, err)
	}
	if p.UserID == nil {
		t.Error("demo patient not linked to its portal account")
	}

	meds, err := catalog.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(meds) != len(demoCatalog) {
		t.Errorf("catalog = %d entries, want %d", len(meds), len(demoCatalog))
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, users, patients, catalog := newSeeder()

	if err := s.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Seed(ctx); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	all, _ := users.List(ctx)
	if len(all) != len(demoUsers) {
		t.Errorf("users = %d, want %d", len(all), len(demoUsers))
	}
	ps, _ := patients.List(ctx)
	if len(ps) != 1 {
		t.Errorf("patients = %d, want 1", len(ps))
	}
	meds, _ := catalog.List(ctx)
	if len(meds) != len(demoCatalog) {
		t.Errorf("catalog = %d, want %d", len(meds), len(demoCatalog))
	}
}
