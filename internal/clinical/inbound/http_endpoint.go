package inbound

import (
	"time"

	"github.com/ogerihealth/healthrecord/internal/clinical/usecase"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for blood pressure readings,
// consultations, medication history, and health worker profiles.
type HTTPEndpoint struct {
	uc uc
}

// BPRecord stores a reading the patient measured themselves.
// @Summary Record own blood pressure
// @Tags Clinical, Blood Pressure
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BPRecordRequest true "Reading payload"
// @Success 201 {object} router.successResponse{data=BPRecordResponse} "Reading stored"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/bp [post]
func (h *HTTPEndpoint) BPRecord(r *router.Request) (any, error) {
	var req BPRecordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.BPRecord(r.Context(), usecase.BPRecordInput{
		Systolic:   req.Systolic,
		Diastolic:  req.Diastolic,
		PulseRate:  req.PulseRate,
		Notes:      req.Notes,
		RecordedAt: req.RecordedAt,
	})
	if err != nil {
		return nil, err
	}

	return BPRecordResponse{Reading: readingResponse(resp)}, nil
}

// BPList pages through readings.
// @Summary List blood pressure readings
// @Description Patients see their own readings. Staff pass patient_id explicitly.
// @Tags Clinical, Blood Pressure
// @Security BearerAuth
// @Produce json
// @Param patient_id query string false "Patient ID (staff only)"
// @Param from query string false "Lower bound, RFC3339"
// @Param to query string false "Upper bound, RFC3339"
// @Param size query int false "Page size"
// @Param page query int false "Page number"
// @Success 200 {object} router.successResponse{data=BPReadingsResponse} "Reading list"
// @Failure 400 {object} router.errorResponse "Invalid query parameters"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/bp [get]
func (h *HTTPEndpoint) BPList(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	from, err := r.GetQueryDate("from", time.RFC3339)
	if err != nil {
		return nil, err
	}

	to, err := r.GetQueryDate("to", time.RFC3339)
	if err != nil {
		return nil, err
	}

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, goerror.NewInvalidFormat("from must be before to")
	}

	resp, err := h.uc.BPList(r.Context(), usecase.BPListInput{
		PatientID: r.GetQuery("patient_id"),
		From:      from,
		To:        to,
		Size:      size,
		Page:      page,
	})
	if err != nil {
		return nil, err
	}

	readings := make([]BPReadingResponse, 0, len(resp.Readings))
	for _, item := range resp.Readings {
		readings = append(readings, readingResponse(&item))
	}

	return BPReadingsResponse{
		total:    resp.Total,
		size:     resp.Size,
		page:     resp.Page,
		Readings: readings,
	}, nil
}

// BPStats summarizes a patient's readings.
// @Summary Blood pressure statistics
// @Description Averages and the most recent reading by measurement time.
// @Tags Clinical, Blood Pressure
// @Security BearerAuth
// @Produce json
// @Param patient_id query string false "Patient ID (staff only)"
// @Success 200 {object} router.successResponse{data=BPStatsResponse} "Statistics"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/bp-stats [get]
func (h *HTTPEndpoint) BPStats(r *router.Request) (any, error) {
	resp, err := h.uc.BPStats(r.Context(), usecase.BPStatsInput{PatientID: r.GetQuery("patient_id")})
	if err != nil {
		return nil, err
	}

	out := BPStatsResponse{
		Count:            resp.Count,
		AverageSystolic:  resp.AverageSystolic,
		AverageDiastolic: resp.AverageDiastolic,
	}
	if resp.Latest != nil {
		latest := readingResponse(resp.Latest)
		out.Latest = &latest
	}

	return out, nil
}

// BPDetail returns one reading.
// @Summary Get one blood pressure reading
// @Tags Clinical, Blood Pressure
// @Security BearerAuth
// @Produce json
// @Param id path int true "Reading ID"
// @Success 200 {object} router.successResponse{data=BPReadingResponse} "Reading"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Reading not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/bp/{id} [get]
func (h *HTTPEndpoint) BPDetail(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.BPDetail(r.Context(), usecase.BPDetailInput{ID: id})
	if err != nil {
		return nil, err
	}

	return readingResponse(resp), nil
}

// BPUpdate corrects a reading.
// @Summary Update a blood pressure reading
// @Tags Clinical, Blood Pressure
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Reading ID"
// @Param request body BPUpdateRequest true "Reading payload"
// @Success 200 {object} router.successResponse{data=BPUpdateResponse} "Reading updated"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Reading not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/bp/{id} [put]
func (h *HTTPEndpoint) BPUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req BPUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err = h.uc.BPUpdate(r.Context(), usecase.BPUpdateInput{
		ID:        id,
		Systolic:  req.Systolic,
		Diastolic: req.Diastolic,
		PulseRate: req.PulseRate,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}

	return BPUpdateResponse{}, nil
}

// BPAuthorize emails a one-time authorization code to the patient.
// @Summary Request patient authorization code
// @Description The patient's email and date of birth must both match. The code reaches the patient by email.
// @Tags Clinical, Blood Pressure
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BPAuthorizeRequest true "Authorization payload"
// @Success 200 {object} router.successResponse{data=BPAuthorizeResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Patient not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/bp/authorize [post]
func (h *HTTPEndpoint) BPAuthorize(r *router.Request) (any, error) {
	var req BPAuthorizeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	dob, err := time.Parse(time.DateOnly, req.DateOfBirth)
	if err != nil {
		return nil, goerror.NewInvalidFormat("date_of_birth must be in YYYY-MM-DD format")
	}

	resp, err := h.uc.BPAuthorize(r.Context(), usecase.BPAuthorizeInput{
		PatientEmail: req.PatientEmail,
		DateOfBirth:  dob,
	})
	if err != nil {
		return nil, err
	}

	return BPAuthorizeResponse{ExpiresAt: resp.ExpiresAt}, nil
}

// BPRecordForPatient stores a reading measured by a health worker.
// @Summary Record blood pressure for a patient
// @Description Verifies the patient's one-time code, stores the reading, then burns the code. A failed insert leaves the code usable.
// @Tags Clinical, Blood Pressure
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BPRecordForPatientRequest true "Reading and code payload"
// @Success 201 {object} router.successResponse{data=BPRecordResponse} "Reading stored"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Patient not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/bp/record-for-patient [post]
func (h *HTTPEndpoint) BPRecordForPatient(r *router.Request) (any, error) {
	var req BPRecordForPatientRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.BPRecordForPatient(r.Context(), usecase.BPRecordForPatientInput{
		PatientEmail: req.PatientEmail,
		Code:         req.Code,
		Systolic:     req.Systolic,
		Diastolic:    req.Diastolic,
		PulseRate:    req.PulseRate,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}

	return BPRecordResponse{Reading: readingResponse(resp)}, nil
}

// ConsultationCreate records a visit.
// @Summary Create consultation
// @Tags Clinical, Consultations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ConsultationRequest true "Consultation payload"
// @Success 201 {object} router.successResponse{data=ConsultationCreateResponse} "Consultation recorded"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/consultations [post]
func (h *HTTPEndpoint) ConsultationCreate(r *router.Request) (any, error) {
	var req ConsultationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ConsultationCreate(r.Context(), usecase.ConsultationCreateInput{
		PatientID:   req.PatientID,
		Complaint:   req.Complaint,
		Diagnosis:   req.Diagnosis,
		Treatment:   req.Treatment,
		Notes:       req.Notes,
		ConsultedAt: req.ConsultedAt,
	})
	if err != nil {
		return nil, err
	}

	return ConsultationCreateResponse{Consultation: consultationResponse(resp)}, nil
}

// ConsultationList pages through visits.
// @Summary List consultations
// @Description Patients see their own history. Health workers see their own visits, or one patient's history with patient_id.
// @Tags Clinical, Consultations
// @Security BearerAuth
// @Produce json
// @Param patient_id query string false "Patient ID (staff only)"
// @Param size query int false "Page size"
// @Param page query int false "Page number"
// @Success 200 {object} router.successResponse{data=ConsultationsResponse} "Consultation list"
// @Failure 400 {object} router.errorResponse "Invalid query parameters"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/consultations [get]
func (h *HTTPEndpoint) ConsultationList(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ConsultationList(r.Context(), usecase.ConsultationListInput{
		PatientID: r.GetQuery("patient_id"),
		Size:      size,
		Page:      page,
	})
	if err != nil {
		return nil, err
	}

	consultations := make([]ConsultationResponse, 0, len(resp.Consultations))
	for _, item := range resp.Consultations {
		consultations = append(consultations, consultationResponse(&item))
	}

	return ConsultationsResponse{
		total:         resp.Total,
		size:          resp.Size,
		page:          resp.Page,
		Consultations: consultations,
	}, nil
}

// ConsultationUpdate amends diagnosis, treatment, or notes.
// @Summary Update consultation
// @Tags Clinical, Consultations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Consultation ID"
// @Param request body ConsultationUpdateRequest true "Amendment payload"
// @Success 200 {object} router.successResponse{data=ConsultationUpdateResponse} "Consultation updated"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Consultation not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/consultations/{id} [put]
func (h *HTTPEndpoint) ConsultationUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req ConsultationUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err = h.uc.ConsultationUpdate(r.Context(), usecase.ConsultationUpdateInput{
		ID:        id,
		Diagnosis: req.Diagnosis,
		Treatment: req.Treatment,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}

	return ConsultationUpdateResponse{}, nil
}

// MedicationAdd appends to a patient's medication history.
// @Summary Add medication record
// @Tags Clinical, Medications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body MedicationAddRequest true "Medication payload"
// @Success 201 {object} router.successResponse{data=MedicationAddResponse} "Medication recorded"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/medications [post]
func (h *HTTPEndpoint) MedicationAdd(r *router.Request) (any, error) {
	var req MedicationAddRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.MedicationAdd(r.Context(), usecase.MedicationAddInput{
		PatientID: req.PatientID,
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}

	return MedicationAddResponse{Medication: medicationResponse(resp)}, nil
}

// MedicationList returns a patient's medication history.
// @Summary List medication records
// @Tags Clinical, Medications
// @Security BearerAuth
// @Produce json
// @Param patient_id query string false "Patient ID (staff only)"
// @Success 200 {object} router.successResponse{data=MedicationsResponse} "Medication history"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/medications [get]
func (h *HTTPEndpoint) MedicationList(r *router.Request) (any, error) {
	resp, err := h.uc.MedicationList(r.Context(), usecase.MedicationListInput{PatientID: r.GetQuery("patient_id")})
	if err != nil {
		return nil, err
	}

	medications := make([]MedicationResponse, 0, len(resp.Medications))
	for _, item := range resp.Medications {
		medications = append(medications, medicationResponse(&item))
	}

	return MedicationsResponse{Medications: medications}, nil
}

// HWProfileUpsert saves the caller's professional profile.
// @Summary Save health worker profile
// @Tags Clinical, Worker Profiles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body HWProfileUpsertRequest true "Profile payload"
// @Success 200 {object} router.successResponse{data=HWProfileUpsertResponse} "Profile saved"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/worker-profile [put]
func (h *HTTPEndpoint) HWProfileUpsert(r *router.Request) (any, error) {
	var req HWProfileUpsertRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err := h.uc.HWProfileUpsert(r.Context(), usecase.HWProfileUpsertInput{
		Specialty:       req.Specialty,
		LicenseNumber:   req.LicenseNumber,
		YearsExperience: req.YearsExperience,
		Bio:             req.Bio,
	})
	if err != nil {
		return nil, err
	}

	return HWProfileUpsertResponse{}, nil
}

// HWProfileGet returns one health worker's professional profile.
// @Summary Get health worker profile
// @Tags Clinical, Worker Profiles
// @Security BearerAuth
// @Produce json
// @Param id path string true "Health worker ID"
// @Success 200 {object} router.successResponse{data=HWProfileResponse} "Profile"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Profile not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/clinical/worker-profile/{id} [get]
func (h *HTTPEndpoint) HWProfileGet(r *router.Request) (any, error) {
	resp, err := h.uc.HWProfileGet(r.Context(), usecase.HWProfileGetInput{UserID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return HWProfileResponse{
		UserID:          resp.UserID,
		Specialty:       resp.Specialty,
		LicenseNumber:   resp.LicenseNumber,
		YearsExperience: resp.YearsExperience,
		Bio:             resp.Bio,
	}, nil
}

func readingResponse(r *usecase.BPReadingOutput) BPReadingResponse {
	return BPReadingResponse{
		ID:         r.ID,
		PatientID:  r.PatientID,
		Systolic:   r.Systolic,
		Diastolic:  r.Diastolic,
		PulseRate:  r.PulseRate,
		Notes:      r.Notes,
		RecordedBy: r.RecordedBy,
		RecordedAt: r.RecordedAt,
	}
}

func consultationResponse(c *usecase.ConsultationOutput) ConsultationResponse {
	return ConsultationResponse{
		ID:             c.ID,
		PatientID:      c.PatientID,
		HealthWorkerID: c.HealthWorkerID,
		Complaint:      c.Complaint,
		Diagnosis:      c.Diagnosis,
		Treatment:      c.Treatment,
		Notes:          c.Notes,
		ConsultedAt:    c.ConsultedAt,
	}
}

func medicationResponse(m *usecase.MedicationOutput) MedicationResponse {
	return MedicationResponse{
		ID:           m.ID,
		PatientID:    m.PatientID,
		PrescribedBy: m.PrescribedBy,
		Name:         m.Name,
		Dosage:       m.Dosage,
		Frequency:    m.Frequency,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		Notes:        m.Notes,
	}
}
