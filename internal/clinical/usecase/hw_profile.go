package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ogerihealth/healthrecord/internal/clinical/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/shared/constant"
)

type HWProfileUpsertInput struct {
	Specialty       string `validate:"required,max=100"`
	LicenseNumber   string `validate:"required,max=50"`
	YearsExperience int32  `validate:"omitempty,min=0,max=70"`
	Bio             string `validate:"omitempty,max=2000"`
}

// HWProfileUpsert creates or replaces the caller's professional profile.
func (s *Usecase) HWProfileUpsert(ctx context.Context, in HWProfileUpsertInput) error {
	ctx, span := s.startSpan(ctx, "HWProfileUpsert")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalProfiles, constant.PermActWrite)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	p := entity.HealthWorkerProfile{
		UserID:          clm.UserID,
		Specialty:       in.Specialty,
		LicenseNumber:   in.LicenseNumber,
		YearsExperience: in.YearsExperience,
		Bio:             in.Bio,
	}

	if err := s.repoDB.UpsertHealthWorkerProfile(ctx, p); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert health worker profile", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type HWProfileGetInput struct {
	UserID string `validate:"required,uuid"`
}

type HWProfileOutput struct {
	UserID          string
	Specialty       string
	LicenseNumber   string
	YearsExperience int32
	Bio             string
}

func (s *Usecase) HWProfileGet(ctx context.Context, in HWProfileGetInput) (*HWProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "HWProfileGet")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermClinicalProfiles, constant.PermActRead); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	p, err := s.repoDB.GetHealthWorkerProfile(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Profile not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get health worker profile", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &HWProfileOutput{
		UserID:          p.UserID,
		Specialty:       p.Specialty,
		LicenseNumber:   p.LicenseNumber,
		YearsExperience: p.YearsExperience,
		Bio:             p.Bio,
	}, nil
}
