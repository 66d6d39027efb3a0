package prescription

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubPatients map[int64]bool

func (s stubPatients) PatientExists(_ context.Context, id int64) (bool, error) {
	return s[id], nil
}

type stubCatalog map[int64]bool

func (s stubCatalog) MedicationExists(_ context.Context, id int64) (bool, error) {
	return s[id], nil
}

func newService() *Service {
	return NewService(NewMemRepo(),
		stubPatients{1: true},
		stubCatalog{10: true, 11: true, 12: true})
}

func TestWritePreservesItemOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	p, err := svc.Write(ctx, &Prescription{
		PatientID: 1,
		Items: []Item{
			{MedicationID: 11, Dosage: "twice daily", Instructions: "after meals"},
			{MedicationID: 10, Dosage: "once daily", Instructions: "at night"},
			{MedicationID: 12, Dosage: "as needed", Instructions: "thin layer"},
		},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if p.ID == 0 || p.CreatedAt.IsZero() {
		t.Errorf("id/timestamp not assigned: %+v", p)
	}
	if p.Date.IsZero() {
		t.Error("date not defaulted")
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{11, 10, 12}
	if len(got.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(got.Items))
	}
	for i, id := range want {
		if got.Items[i].MedicationID != id {
			t.Errorf("item %d = %d, want %d", i, got.Items[i].MedicationID, id)
		}
	}
}

func TestWriteRejectsUnknownReferences(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Write(ctx, &Prescription{PatientID: 99, Items: []Item{{MedicationID: 10}}})
	if !errors.Is(err, ErrUnknownPatient) {
		t.Errorf("unknown patient: err = %v", err)
	}

	_, err = svc.Write(ctx, &Prescription{PatientID: 1, Items: []Item{{MedicationID: 999}}})
	if !errors.Is(err, ErrUnknownMedication) {
		t.Errorf("unknown medication: err = %v", err)
	}

	_, err = svc.Write(ctx, &Prescription{PatientID: 1})
	if err == nil {
		t.Error("expected error for empty item list")
	}
}

func TestUpdateReplacesItemList(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	p, err := svc.Write(ctx, &Prescription{
		PatientID: 1,
		Items:     []Item{{MedicationID: 10, Dosage: "once daily"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	newItems := []Item{
		{MedicationID: 12, Dosage: "as needed"},
		{MedicationID: 11, Dosage: "twice daily"},
	}
	updated, err := svc.Update(ctx, p.ID, PrescriptionPatch{Items: &newItems})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Items) != 2 || updated.Items[0].MedicationID != 12 || updated.Items[1].MedicationID != 11 {
		t.Errorf("items = %+v", updated.Items)
	}
	if updated.PatientID != p.PatientID || !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Error("immutable fields changed")
	}
}

func TestUpdateValidatesReplacementItems(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	p, _ := svc.Write(ctx, &Prescription{PatientID: 1, Items: []Item{{MedicationID: 10}}})

	bad := []Item{{MedicationID: 999}}
	if _, err := svc.Update(ctx, p.ID, PrescriptionPatch{Items: &bad}); !errors.Is(err, ErrUnknownMedication) {
		t.Errorf("err = %v, want ErrUnknownMedication", err)
	}
}

func TestByPatientDescendingDate(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	older := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	p1, _ := svc.Write(ctx, &Prescription{PatientID: 1, Date: older, Items: []Item{{MedicationID: 10}}})
	p2, _ := svc.Write(ctx, &Prescription{PatientID: 1, Date: newer, Items: []Item{{MedicationID: 11}}})

	out, err := svc.ByPatient(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != p2.ID || out[1].ID != p1.ID {
		t.Errorf("order wrong: %+v", out)
	}
}

func TestByPatientUnknownIDReturnsEmptyList(t *testing.T) {
	svc := newService()
	out, err := svc.ByPatient(context.Background(), 999999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("got %v, want empty list", out)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	p, _ := svc.Write(ctx, &Prescription{PatientID: 1, Items: []Item{{MedicationID: 10}}})

	removed, err := svc.Delete(ctx, p.ID)
	if err != nil || !removed {
		t.Fatalf("first delete: removed=%v err=%v", removed, err)
	}
	removed, err = svc.Delete(ctx, p.ID)
	if err != nil || removed {
		t.Errorf("second delete: removed=%v err=%v", removed, err)
	}
}

func TestStoredItemsAreIsolatedFromCaller(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	items := []Item{{MedicationID: 10, Dosage: "once daily"}}
	p, _ := svc.Write(ctx, &Prescription{PatientID: 1, Items: items})

	// Mutating the caller's slice must not leak into the store.
	items[0].Dosage = "mutated"
	got, _ := svc.Get(ctx, p.ID)
	if got.Items[0].Dosage != "once daily" {
		t.Errorf("store shares caller's slice: %+v", got.Items)
	}
}
