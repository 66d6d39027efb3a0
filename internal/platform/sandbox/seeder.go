// Package sandbox seeds a development deployment with the demo accounts,
// a sample patient and the starter medication catalog so the API is usable
// immediately after first boot.
package sandbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dermaclinic/dermaclinic/internal/domain/identity"
	"github.com/dermaclinic/dermaclinic/internal/domain/medication"
	"github.com/dermaclinic/dermaclinic/internal/domain/patient"
)

// demoPassword is shared by every seeded account. Development only; the
// production config check refuses to boot with seeding enabled backends.
const demoPassword = "clinic-demo-123"

type demoUser struct {
	username string
	name     string
	role     string
}

var demoUsers = []demoUser{
	{"dr.house", "Dr. Gregory House", identity.RoleDoctor},
	{"assistant.amy", "Amy Rivera", identity.RoleAssistant},
	{"expert.chen", "Dr. Lin Chen", identity.RoleExpert},
	{"jane.doe", "Jane Doe", identity.RolePatient},
}

var demoCatalog = []medication.Medication{
	{Name: "Tretinoin Cream 0.025%", Category: "retinoid", Description: "Topical retinoid for acne vulgaris", DosageForm: "cream", Price: 2499, InStock: true},
	{Name: "Benzoyl Peroxide 5%", Category: "antiseptic", Description: "Antibacterial wash for acne-prone skin", DosageForm: "gel", Price: 1299, InStock: true},
	{Name: "Hydrocortisone 1%", Category: "corticosteroid", Description: "Mild topical steroid for dermatitis flares", DosageForm: "ointment", Price: 899, InStock: true},
	{Name: "Ketoconazole 2%", Category: "antifungal", Description: "Antifungal shampoo for seborrheic dermatitis", DosageForm: "shampoo", Price: 1599, InStock: true},
	{Name: "Metronidazole 0.75%", Category: "antibiotic", Description: "Topical antibiotic for rosacea", DosageForm: "gel", Price: 1899, InStock: true},
	{Name: "Calcipotriene 0.005%", Category: "vitamin-d-analogue", Description: "Vitamin D analogue for plaque psoriasis", DosageForm: "cream", Price: 4299, InStock: false},
	{Name: "Tacrolimus 0.1%", Category: "calcineurin-inhibitor", Description: "Steroid-sparing option for atopic dermatitis", DosageForm: "ointment", Price: 5499, InStock: true},
}

// Seeder populates demo data through the domain services so the records pass
// the same validation as API traffic.
type Seeder struct {
	users    *identity.Service
	patients *patient.Service
	catalog  *medication.Service
	logger   zerolog.Logger
}

func NewSeeder(users *identity.Service, patients *patient.Service, catalog *medication.Service, logger zerolog.Logger) *Seeder {
	return &Seeder{users: users, patients: patients, catalog: catalog, logger: logger}
}

// Seed inserts the demo users, the demo patient and the starter catalog.
// Re-running is safe: records that already exist are left alone.
func (s *Seeder) Seed(ctx context.Context) error {
	patientUserID, err := s.seedUsers(ctx)
	if err != nil {
		return err
	}
	if err := s.seedPatient(ctx, patientUserID); err != nil {
		return err
	}
	if err := s.seedCatalog(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("demo data seeded")
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) (patientUserID int64, err error) {
	for _, du := range demoUsers {
		u, err := s.users.Register(ctx, du.username, demoPassword, du.name, du.role)
		if errors.Is(err, identity.ErrUsernameTaken) {
			existing, err := s.users.GetByUsername(ctx, du.username)
			if err != nil {
				return 0, err
			}
			if du.role == identity.RolePatient {
				patientUserID = existing.ID
			}
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("seed user %s: %w", du.username, err)
		}
		if du.role == identity.RolePatient {
			patientUserID = u.ID
		}
		s.logger.Debug().Str("username", du.username).Str("role", du.role).Msg("demo user created")
	}
	return patientUserID, nil
}

func (s *Seeder) seedPatient(ctx context.Context, userID int64) error {
	existing, err := s.patients.GetByPID(ctx, "DRM1001")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	address := "42 Elm Street, Springfield"
	allergies := "penicillin"
	p := &patient.Patient{
		PID:       "DRM1001",
		Name:      "Jane Doe",
		Age:       29,
		Gender:    "female",
		Email:     "jane@example.com",
		Phone:     "5551234567",
		Address:   &address,
		Allergies: &allergies,
	}
	if userID != 0 {
		p.UserID = &userID
	}
	if _, err := s.patients.Create(ctx, p); err != nil {
		return fmt.Errorf("seed patient: %w", err)
	}
	return nil
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	existing, err := s.catalog.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for i := range demoCatalog {
		m := demoCatalog[i]
		if _, err := s.catalog.Create(ctx, &m); err != nil {
			return fmt.Errorf("seed medication %s: %w", m.Name, err)
		}
	}
	return nil
}
