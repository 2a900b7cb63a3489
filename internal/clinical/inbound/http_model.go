package inbound

import "time"

type BPRecordRequest struct {
	Systolic   int32      `json:"systolic"`
	Diastolic  int32      `json:"diastolic"`
	PulseRate  int32      `json:"pulse_rate,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

type BPReadingResponse struct {
	ID         int64     `json:"id,string"`
	PatientID  string    `json:"patient_id"`
	Systolic   int32     `json:"systolic"`
	Diastolic  int32     `json:"diastolic"`
	PulseRate  int32     `json:"pulse_rate,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	RecordedBy string    `json:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at"`
}

type BPRecordResponse struct {
	Reading BPReadingResponse `json:"reading"`
}

func (BPRecordResponse) StatusCode() int {
	return 201
}

type BPReadingsResponse struct {
	Readings []BPReadingResponse `json:"readings"`
	// meta
	total int64
	size  int32
	page  int32
}

func (r BPReadingsResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
		"size":  r.size,
		"page":  r.page,
	}
}

type BPUpdateRequest struct {
	Systolic  int32  `json:"systolic"`
	Diastolic int32  `json:"diastolic"`
	PulseRate int32  `json:"pulse_rate,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type BPUpdateResponse struct{}

func (BPUpdateResponse) Message() string {
	return "Reading updated."
}

type BPStatsResponse struct {
	Count            int64              `json:"count"`
	AverageSystolic  float64            `json:"average_systolic"`
	AverageDiastolic float64            `json:"average_diastolic"`
	Latest           *BPReadingResponse `json:"latest,omitempty"`
}

type BPAuthorizeRequest struct {
	PatientEmail string `json:"patient_email"`
	DateOfBirth  string `json:"date_of_birth"` // YYYY-MM-DD
}

type BPAuthorizeResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func (BPAuthorizeResponse) Message() string {
	return "An authorization code has been sent to the patient's email."
}

type BPRecordForPatientRequest struct {
	PatientEmail string `json:"patient_email"`
	Code         string `json:"code"`
	Systolic     int32  `json:"systolic"`
	Diastolic    int32  `json:"diastolic"`
	PulseRate    int32  `json:"pulse_rate,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type ConsultationRequest struct {
	PatientID   string     `json:"patient_id"`
	Complaint   string     `json:"complaint"`
	Diagnosis   string     `json:"diagnosis,omitempty"`
	Treatment   string     `json:"treatment,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	ConsultedAt *time.Time `json:"consulted_at,omitempty"`
}

type ConsultationResponse struct {
	ID             int64     `json:"id,string"`
	PatientID      string    `json:"patient_id"`
	HealthWorkerID string    `json:"health_worker_id"`
	Complaint      string    `json:"complaint"`
	Diagnosis      string    `json:"diagnosis,omitempty"`
	Treatment      string    `json:"treatment,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	ConsultedAt    time.Time `json:"consulted_at"`
}

type ConsultationCreateResponse struct {
	Consultation ConsultationResponse `json:"consultation"`
}

func (ConsultationCreateResponse) StatusCode() int {
	return 201
}

type ConsultationUpdateRequest struct {
	Diagnosis string `json:"diagnosis,omitempty"`
	Treatment string `json:"treatment,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type ConsultationUpdateResponse struct{}

func (ConsultationUpdateResponse) Message() string {
	return "Consultation updated."
}

type ConsultationsResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	// meta
	total int64
	size  int32
	page  int32
}

func (r ConsultationsResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
		"size":  r.size,
		"page":  r.page,
	}
}

type MedicationAddRequest struct {
	PatientID string     `json:"patient_id"`
	Name      string     `json:"name"`
	Dosage    string     `json:"dosage"`
	Frequency string     `json:"frequency,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

type MedicationResponse struct {
	ID           int64      `json:"id,string"`
	PatientID    string     `json:"patient_id"`
	PrescribedBy string     `json:"prescribed_by"`
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	Frequency    string     `json:"frequency,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

type MedicationAddResponse struct {
	Medication MedicationResponse `json:"medication"`
}

func (MedicationAddResponse) StatusCode() int {
	return 201
}

type MedicationsResponse struct {
	Medications []MedicationResponse `json:"medications"`
}

type HWProfileUpsertRequest struct {
	Specialty       string `json:"specialty"`
	LicenseNumber   string `json:"license_number"`
	YearsExperience int32  `json:"years_experience,omitempty"`
	Bio             string `json:"bio,omitempty"`
}

type HWProfileUpsertResponse struct{}

func (HWProfileUpsertResponse) Message() string {
	return "Professional profile saved."
}

type HWProfileResponse struct {
	UserID          string `json:"user_id"`
	Specialty       string `json:"specialty"`
	LicenseNumber   string `json:"license_number"`
	YearsExperience int32  `json:"years_experience"`
	Bio             string `json:"bio,omitempty"`
}
