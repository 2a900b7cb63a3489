package usecase

import (
	"context"
	"time"

	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	verentity "github.com/ogerihealth/healthrecord/internal/verification/entity"
	verification "github.com/ogerihealth/healthrecord/internal/verification/usecase"
)

type PasswordForgotInput struct {
	Email string `validate:"required,email"`
}

type PasswordForgotOutput struct {
	ExpiresAt time.Time
}

// PasswordForgot emails a one-time code to the account. An unknown email is
// reported to the caller; the clinic front desk walks patients through this
// flow in person, so the usual anti-enumeration silence does not apply.
func (s *Usecase) PasswordForgot(ctx context.Context, in PasswordForgotInput) (*PasswordForgotOutput, error) {
	ctx, span := s.startSpan(ctx, "PasswordForgot")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	out, err := s.otp.Issue(ctx, verification.IssueInput{
		Email:   in.Email,
		Purpose: verentity.PurposePasswordReset,
	})
	if err != nil {
		return nil, err
	}

	return &PasswordForgotOutput{ExpiresAt: out.ExpiresAt}, nil
}

type PasswordVerifyInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required"`
}

// PasswordVerifyOTP checks the code without consuming it, so the client can
// gate the new-password form before submitting the actual reset.
func (s *Usecase) PasswordVerifyOTP(ctx context.Context, in PasswordVerifyInput) error {
	ctx, span := s.startSpan(ctx, "PasswordVerifyOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	return s.otp.Verify(ctx, verification.VerifyInput{
		Email:   in.Email,
		Purpose: verentity.PurposePasswordReset,
		Code:    in.Code,
	})
}
