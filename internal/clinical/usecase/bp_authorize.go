package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ogerihealth/healthrecord/internal/clinical/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/shared/constant"
	verentity "github.com/ogerihealth/healthrecord/internal/verification/entity"
	verification "github.com/ogerihealth/healthrecord/internal/verification/usecase"
)

type BPAuthorizeInput struct {
	PatientEmail string    `validate:"required,email"`
	DateOfBirth  time.Time `validate:"required"`
}

type BPAuthorizeOutput struct {
	ExpiresAt time.Time
}

// BPAuthorize starts the code-authorized recording flow. The patient receives
// a one-time code by email; the health worker submits it together with the
// reading. Email and date of birth must both match the patient's account.
func (s *Usecase) BPAuthorize(ctx context.Context, in BPAuthorizeInput) (*BPAuthorizeOutput, error) {
	ctx, span := s.startSpan(ctx, "BPAuthorize")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalRecords, constant.PermActManage); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	resp, err := s.otp.Issue(ctx, verification.IssueInput{
		Email:       in.PatientEmail,
		Purpose:     verentity.PurposeBPAuthorization,
		DateOfBirth: &in.DateOfBirth,
	})
	if err != nil {
		return nil, err
	}

	return &BPAuthorizeOutput{ExpiresAt: resp.ExpiresAt}, nil
}

type BPRecordForPatientInput struct {
	PatientEmail string `validate:"required,email"`
	Code         string `validate:"required,len=6,numeric"`
	Systolic     int32  `validate:"required,min=50,max=300"`
	Diastolic    int32  `validate:"required,min=30,max=200"`
	PulseRate    int32  `validate:"omitempty,min=20,max=250"`
	Notes        string `validate:"omitempty,max=500"`
}

// BPRecordForPatient stores a reading measured by a health worker. The insert
// runs as the action bound to consuming the patient's authorization code, so
// the code is only burned once the reading is actually persisted.
func (s *Usecase) BPRecordForPatient(ctx context.Context, in BPRecordForPatientInput) (*BPReadingOutput, error) {
	ctx, span := s.startSpan(ctx, "BPRecordForPatient")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalRecords, constant.PermActManage)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	patientID, err := s.repoDB.GetPatientIDByEmail(ctx, in.PatientEmail)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Patient not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo resolve patient", "email", in.PatientEmail, "error", err)
		return nil, goerror.NewServer(err)
	}

	reading := entity.BPReading{
		ID:         s.uid.Generate(),
		PatientID:  patientID,
		Systolic:   in.Systolic,
		Diastolic:  in.Diastolic,
		PulseRate:  in.PulseRate,
		Notes:      in.Notes,
		RecordedBy: clm.UserID,
		RecordedAt: s.clock.Now(),
	}

	err = s.otp.Consume(ctx, verification.VerifyInput{
		Email:   in.PatientEmail,
		Purpose: verentity.PurposeBPAuthorization,
		Code:    in.Code,
	}, func(ctx context.Context) error {
		return s.repoDB.NewBPReading(ctx, reading)
	})
	if err != nil {
		return nil, err
	}

	return readingOutput(reading), nil
}
