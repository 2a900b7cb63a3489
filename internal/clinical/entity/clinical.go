// Package entity holds the clinical domain types: blood pressure readings,
// consultations, medication history, and health worker profiles.
package entity

import "time"

// BPReading is one blood pressure measurement. RecordedBy is the account that
// entered it, which is the patient for self-recorded readings and the health
// worker for authorized readings.
type BPReading struct {
	ID         int64
	PatientID  string
	Systolic   int32
	Diastolic  int32
	PulseRate  int32
	Notes      string
	RecordedBy string
	RecordedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type BPListFilter struct {
	PatientID string
	From      time.Time
	To        time.Time
	Size      int32
	Offset    int32
}

type Consultation struct {
	ID             int64
	PatientID      string
	HealthWorkerID string
	Complaint      string
	Diagnosis      string
	Treatment      string
	Notes          string
	ConsultedAt    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ConsultationListFilter struct {
	PatientID      string
	HealthWorkerID string
	Size           int32
	Offset         int32
}

type MedicationRecord struct {
	ID           int64
	PatientID    string
	PrescribedBy string
	Name         string
	Dosage       string
	Frequency    string
	StartDate    *time.Time
	EndDate      *time.Time
	Notes        string
	CreatedAt    time.Time
}

type HealthWorkerProfile struct {
	UserID          string
	Specialty       string
	LicenseNumber   string
	YearsExperience int32
	Bio             string
	UpdatedAt       time.Time
}
