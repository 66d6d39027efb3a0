package scheduling

import (
	"context"
	"fmt"
	"time"
)

var ErrUnknownPatient = fmt.Errorf("patient does not exist")

// PatientDirectory answers whether a patient record exists. The scheduling
// package only needs existence, not the record, so the dependency stays thin;
// cmd wires the patient service in behind this.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	appointments Repository
	patients     PatientDirectory
}

func NewService(appointments Repository, patients PatientDirectory) *Service {
	return &Service{appointments: appointments, patients: patients}
}

// Book creates an appointment. The patient existence check lives here so
// both storage backends reject dangling references the same way; status
// defaults to Pending when the caller leaves it blank.
func (s *Service) Book(ctx context.Context, a *Appointment) (*Appointment, error) {
	if a.PatientID == 0 {
		return nil, fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == 0 {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if a.Date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if !ValidStatuses[a.Status] {
		return nil, fmt.Errorf("invalid status: %s", a.Status)
	}

	ok, err := s.patients.PatientExists(ctx, a.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownPatient
	}

	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]*Appointment, error) {
	return s.appointments.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// ByPatient returns the patient's appointments, newest visit first. An id
// that was never created yields an empty list, not an error.
func (s *Service) ByPatient(ctx context.Context, patientID int64) ([]*Appointment, error) {
	return s.appointments.ByPatient(ctx, patientID)
}

// ByDate returns the day's schedule; only the calendar-date component of the
// stored date is compared.
func (s *Service) ByDate(ctx context.Context, day time.Time) ([]*Appointment, error) {
	return s.appointments.ByDate(ctx, day)
}

func (s *Service) Update(ctx context.Context, id int64, patch AppointmentPatch) (*Appointment, error) {
	if patch.Status != nil && !ValidStatuses[*patch.Status] {
		return nil, fmt.Errorf("invalid status: %s", *patch.Status)
	}
	return s.appointments.Update(ctx, id, patch)
}

func (s *Service) Cancel(ctx context.Context, id int64) (*Appointment, error) {
	cancelled := StatusCancelled
	return s.appointments.Update(ctx, id, AppointmentPatch{Status: &cancelled})
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.appointments.Delete(ctx, id)
}
