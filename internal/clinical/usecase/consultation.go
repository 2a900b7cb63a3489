package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ogerihealth/healthrecord/internal/clinical/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/shared/constant"
	"github.com/samber/lo"
)

type ConsultationCreateInput struct {
	PatientID   string `validate:"required,uuid"`
	Complaint   string `validate:"required,max=1000"`
	Diagnosis   string `validate:"omitempty,max=1000"`
	Treatment   string `validate:"omitempty,max=1000"`
	Notes       string `validate:"omitempty,max=2000"`
	ConsultedAt *time.Time
}

type ConsultationOutput struct {
	ID             int64
	PatientID      string
	HealthWorkerID string
	Complaint      string
	Diagnosis      string
	Treatment      string
	Notes          string
	ConsultedAt    time.Time
}

// ConsultationCreate records a visit. The authenticated health worker is the
// consulting party.
func (s *Usecase) ConsultationCreate(ctx context.Context, in ConsultationCreateInput) (*ConsultationOutput, error) {
	ctx, span := s.startSpan(ctx, "ConsultationCreate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalConsults, constant.PermActWrite)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	consultedAt := s.clock.Now()
	if in.ConsultedAt != nil {
		consultedAt = *in.ConsultedAt
	}

	c := entity.Consultation{
		ID:             s.uid.Generate(),
		PatientID:      in.PatientID,
		HealthWorkerID: clm.UserID,
		Complaint:      in.Complaint,
		Diagnosis:      in.Diagnosis,
		Treatment:      in.Treatment,
		Notes:          in.Notes,
		ConsultedAt:    consultedAt,
	}

	if err := s.repoDB.NewConsultation(ctx, c); err != nil {
		slog.ErrorContext(ctx, "failed to repo create consultation", "patient_id", in.PatientID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return consultationOutput(c), nil
}

type ConsultationUpdateInput struct {
	ID        int64  `validate:"required"`
	Diagnosis string `validate:"omitempty,max=1000"`
	Treatment string `validate:"omitempty,max=1000"`
	Notes     string `validate:"omitempty,max=2000"`
}

// ConsultationUpdate amends diagnosis, treatment, or notes. Only the worker
// who conducted the visit or an administrator can amend it.
func (s *Usecase) ConsultationUpdate(ctx context.Context, in ConsultationUpdateInput) error {
	ctx, span := s.startSpan(ctx, "ConsultationUpdate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalConsults, constant.PermActWrite)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	c, err := s.repoDB.GetConsultation(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Consultation not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get consultation", "consultation_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	if clm.UserRole != "admin" && c.HealthWorkerID != clm.UserID {
		return goerror.NewBusiness("Consultation not found", goerror.CodeNotFound)
	}

	c.Diagnosis = in.Diagnosis
	c.Treatment = in.Treatment
	c.Notes = in.Notes

	if err := s.repoDB.UpdateConsultation(ctx, *c); err != nil {
		slog.ErrorContext(ctx, "failed to repo update consultation", "consultation_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type ConsultationListInput struct {
	PatientID string
	Size      int32
	Page      int32
}

type ConsultationListOutput struct {
	Page          int32
	Size          int32
	Total         int64
	Consultations []ConsultationOutput
}

// ConsultationList pages through visits. Patients see their own history;
// health workers see the visits they conducted, or one patient's history when
// patient_id is set.
func (s *Usecase) ConsultationList(ctx context.Context, in ConsultationListInput) (*ConsultationListOutput, error) {
	ctx, span := s.startSpan(ctx, "ConsultationList")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalConsults, constant.PermActRead)
	if err != nil {
		return nil, err
	}

	filter := entity.ConsultationListFilter{PatientID: in.PatientID}
	switch clm.UserRole {
	case "patient":
		filter.PatientID = clm.UserID
	case "health_worker":
		if in.PatientID == "" {
			filter.HealthWorkerID = clm.UserID
		}
	}

	if in.Size < 1 || in.Size > 100 {
		in.Size = 20
	}
	if in.Page < 1 {
		in.Page = 1
	}
	filter.Size = in.Size
	filter.Offset = (in.Page - 1) * in.Size

	consultations, total, err := s.repoDB.GetConsultations(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list consultations", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ConsultationListOutput{
		Page:  in.Page,
		Size:  in.Size,
		Total: total,
		Consultations: lo.Map(consultations, func(c entity.Consultation, _ int) ConsultationOutput {
			return *consultationOutput(c)
		}),
	}, nil
}

func consultationOutput(c entity.Consultation) *ConsultationOutput {
	return &ConsultationOutput{
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
