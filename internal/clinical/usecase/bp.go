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

type BPRecordInput struct {
	Systolic   int32  `validate:"required,min=50,max=300"`
	Diastolic  int32  `validate:"required,min=30,max=200"`
	PulseRate  int32  `validate:"omitempty,min=20,max=250"`
	Notes      string `validate:"omitempty,max=500"`
	RecordedAt *time.Time
}

type BPReadingOutput struct {
	ID         int64
	PatientID  string
	Systolic   int32
	Diastolic  int32
	PulseRate  int32
	Notes      string
	RecordedBy string
	RecordedAt time.Time
}

// BPRecord stores a reading the patient measured themselves. Readings entered
// by a health worker go through the code-authorized flow instead.
func (s *Usecase) BPRecord(ctx context.Context, in BPRecordInput) (*BPReadingOutput, error) {
	ctx, span := s.startSpan(ctx, "BPRecord")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalRecords, constant.PermActWrite)
	if err != nil {
		return nil, err
	}

	if clm.UserRole != "patient" {
		return nil, goerror.NewBusiness("Only patients record their own readings", goerror.CodeForbidden)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	recordedAt := now
	if in.RecordedAt != nil {
		recordedAt = *in.RecordedAt
	}
	if recordedAt.After(now) {
		return nil, goerror.NewInvalidFormat("recorded_at cannot be in the future")
	}

	reading := entity.BPReading{
		ID:         s.uid.Generate(),
		PatientID:  clm.UserID,
		Systolic:   in.Systolic,
		Diastolic:  in.Diastolic,
		PulseRate:  in.PulseRate,
		Notes:      in.Notes,
		RecordedBy: clm.UserID,
		RecordedAt: recordedAt,
	}

	if err := s.repoDB.NewBPReading(ctx, reading); err != nil {
		slog.ErrorContext(ctx, "failed to repo create bp reading", "patient_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return readingOutput(reading), nil
}

type BPListInput struct {
	PatientID string
	From      time.Time
	To        time.Time
	Size      int32
	Page      int32
}

type BPListOutput struct {
	Page     int32
	Size     int32
	Total    int64
	Readings []BPReadingOutput
}

// BPList pages through readings. Patients always see their own; staff pass
// the patient explicitly.
func (s *Usecase) BPList(ctx context.Context, in BPListInput) (*BPListOutput, error) {
	ctx, span := s.startSpan(ctx, "BPList")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalRecords, constant.PermActRead)
	if err != nil {
		return nil, err
	}

	patientID, err := s.scopePatient(clm.UserRole, clm.UserID, in.PatientID)
	if err != nil {
		return nil, err
	}

	if in.Size < 1 || in.Size > 100 {
		in.Size = 20
	}
	if in.Page < 1 {
		in.Page = 1
	}

	readings, total, err := s.repoDB.GetBPReadings(ctx, entity.BPListFilter{
		PatientID: patientID,
		From:      in.From,
		To:        in.To,
		Size:      in.Size,
		Offset:    (in.Page - 1) * in.Size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list bp readings", "patient_id", patientID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &BPListOutput{
		Page:  in.Page,
		Size:  in.Size,
		Total: total,
		Readings: lo.Map(readings, func(r entity.BPReading, _ int) BPReadingOutput {
			return *readingOutput(r)
		}),
	}, nil
}

type BPDetailInput struct {
	ID int64 `validate:"required"`
}

func (s *Usecase) BPDetail(ctx context.Context, in BPDetailInput) (*BPReadingOutput, error) {
	ctx, span := s.startSpan(ctx, "BPDetail")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalRecords, constant.PermActRead)
	if err != nil {
		return nil, err
	}

	reading, err := s.getOwnedReading(ctx, in.ID, clm.UserRole, clm.UserID)
	if err != nil {
		return nil, err
	}

	return readingOutput(*reading), nil
}

type BPUpdateInput struct {
	ID        int64  `validate:"required"`
	Systolic  int32  `validate:"required,min=50,max=300"`
	Diastolic int32  `validate:"required,min=30,max=200"`
	PulseRate int32  `validate:"omitempty,min=20,max=250"`
	Notes     string `validate:"omitempty,max=500"`
}

// BPUpdate corrects a reading. Patients can only touch their own rows.
func (s *Usecase) BPUpdate(ctx context.Context, in BPUpdateInput) error {
	ctx, span := s.startSpan(ctx, "BPUpdate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalRecords, constant.PermActWrite)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	reading, err := s.getOwnedReading(ctx, in.ID, clm.UserRole, clm.UserID)
	if err != nil {
		return err
	}

	reading.Systolic = in.Systolic
	reading.Diastolic = in.Diastolic
	reading.PulseRate = in.PulseRate
	reading.Notes = in.Notes

	if err := s.repoDB.UpdateBPReading(ctx, *reading); err != nil {
		slog.ErrorContext(ctx, "failed to repo update bp reading", "reading_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type BPStatsInput struct {
	PatientID string
}

type BPStatsOutput struct {
	Count            int64
	AverageSystolic  float64
	AverageDiastolic float64
	Latest           *BPReadingOutput
}

// BPStats summarizes a patient's readings. The latest reading is the one with
// the most recent measurement time, not the most recently inserted row.
func (s *Usecase) BPStats(ctx context.Context, in BPStatsInput) (*BPStatsOutput, error) {
	ctx, span := s.startSpan(ctx, "BPStats")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalRecords, constant.PermActRead)
	if err != nil {
		return nil, err
	}

	patientID, err := s.scopePatient(clm.UserRole, clm.UserID, in.PatientID)
	if err != nil {
		return nil, err
	}

	readings, err := s.repoDB.GetAllBPReadings(ctx, patientID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo fetch bp readings", "patient_id", patientID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return summarize(readings), nil
}

func summarize(readings []entity.BPReading) *BPStatsOutput {
	if len(readings) == 0 {
		return &BPStatsOutput{}
	}

	sys := lo.SumBy(readings, func(r entity.BPReading) int64 { return int64(r.Systolic) })
	dia := lo.SumBy(readings, func(r entity.BPReading) int64 { return int64(r.Diastolic) })

	latest := lo.MaxBy(readings, func(a, b entity.BPReading) bool {
		return a.RecordedAt.After(b.RecordedAt)
	})

	n := float64(len(readings))

	return &BPStatsOutput{
		Count:            int64(len(readings)),
		AverageSystolic:  float64(sys) / n,
		AverageDiastolic: float64(dia) / n,
		Latest:           readingOutput(latest),
	}
}

// scopePatient pins patients to their own records and requires staff to name
// the patient explicitly.
func (s *Usecase) scopePatient(role, userID, requested string) (string, error) {
	if role == "patient" {
		return userID, nil
	}
	if requested == "" {
		return "", goerror.NewInvalidFormat("patient_id is required")
	}
	return requested, nil
}

func (s *Usecase) getOwnedReading(ctx context.Context, id int64, role, userID string) (*entity.BPReading, error) {
	reading, err := s.repoDB.GetBPReading(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Reading not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get bp reading", "reading_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	if role == "patient" && reading.PatientID != userID {
		return nil, goerror.NewBusiness("Reading not found", goerror.CodeNotFound)
	}

	return reading, nil
}

func readingOutput(r entity.BPReading) *BPReadingOutput {
	return &BPReadingOutput{
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
