package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ogerihealth/healthrecord/internal/clinical/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/shared/constant"
	"github.com/samber/lo"
)

type MedicationAddInput struct {
	PatientID string `validate:"required,uuid"`
	Name      string `validate:"required,max=200"`
	Dosage    string `validate:"required,max=100"`
	Frequency string `validate:"omitempty,max=100"`
	StartDate *time.Time
	EndDate   *time.Time
	Notes     string `validate:"omitempty,max=1000"`
}

type MedicationOutput struct {
	ID           int64
	PatientID    string
	PrescribedBy string
	Name         string
	Dosage       string
	Frequency    string
	StartDate    *time.Time
	EndDate      *time.Time
	Notes        string
}

func (s *Usecase) MedicationAdd(ctx context.Context, in MedicationAddInput) (*MedicationOutput, error) {
	ctx, span := s.startSpan(ctx, "MedicationAdd")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalMeds, constant.PermActWrite)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, goerror.NewInvalidFormat("end_date must not be before start_date")
	}

	m := entity.MedicationRecord{
		ID:           s.uid.Generate(),
		PatientID:    in.PatientID,
		PrescribedBy: clm.UserID,
		Name:         in.Name,
		Dosage:       in.Dosage,
		Frequency:    in.Frequency,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Notes:        in.Notes,
	}

	if err := s.repoDB.NewMedicationRecord(ctx, m); err != nil {
		slog.ErrorContext(ctx, "failed to repo create medication record", "patient_id", in.PatientID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return medicationOutput(m), nil
}

type MedicationListInput struct {
	PatientID string
}

type MedicationListOutput struct {
	Medications []MedicationOutput
}

// MedicationList returns a patient's full medication history. Patients see
// their own; staff pass the patient explicitly.
func (s *Usecase) MedicationList(ctx context.Context, in MedicationListInput) (*MedicationListOutput, error) {
	ctx, span := s.startSpan(ctx, "MedicationList")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalMeds, constant.PermActRead)
	if err != nil {
		return nil, err
	}

	patientID, err := s.scopePatient(clm.UserRole, clm.UserID, in.PatientID)
	if err != nil {
		return nil, err
	}

	medications, err := s.repoDB.GetMedicationRecords(ctx, patientID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list medication records", "patient_id", patientID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &MedicationListOutput{
		Medications: lo.Map(medications, func(m entity.MedicationRecord, _ int) MedicationOutput {
			return *medicationOutput(m)
		}),
	}, nil
}

func medicationOutput(m entity.MedicationRecord) *MedicationOutput {
	return &MedicationOutput{
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
