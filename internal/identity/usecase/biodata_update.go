package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ogerihealth/healthrecord/internal/identity/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/jwt"
)

type BiodataUpdateInput struct {
	Gender      entity.Gender
	DateOfBirth *time.Time
	PhoneNumber string `validate:"omitempty,min=7,max=20"`
	Address     string `validate:"omitempty,max=255"`
}

// BiodataUpdate fills in the demographic part of the caller's own profile.
func (s *Usecase) BiodataUpdate(ctx context.Context, in BiodataUpdateInput) error {
	ctx, span := s.startSpan(ctx, "BiodataUpdate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if err := s.repoDB.UpdateUserBiodata(ctx, clm.UserID, entity.Biodata{
		Gender:      in.Gender,
		DateOfBirth: in.DateOfBirth,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Address:     strings.TrimSpace(in.Address),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to update user biodata", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
