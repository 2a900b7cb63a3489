package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	verentity "github.com/ogerihealth/healthrecord/internal/verification/entity"
	verification "github.com/ogerihealth/healthrecord/internal/verification/usecase"
)

type PasswordResetInput struct {
	Email       string `validate:"required,email"`
	Code        string `validate:"required"`
	NewPassword string `validate:"required,password"`
}

// PasswordReset consumes the one-time code with the password update as the
// bound action. If the update fails the code stays live and the whole call
// can be retried with the same code.
func (s *Usecase) PasswordReset(ctx context.Context, in PasswordResetInput) error {
	ctx, span := s.startSpan(ctx, "PasswordReset")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("User with this email not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	newHash, err := s.bcrypt.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash new password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return s.otp.Consume(ctx, verification.VerifyInput{
		Email:   email,
		Purpose: verentity.PurposePasswordReset,
		Code:    in.Code,
	}, func(ctx context.Context) error {
		if err := s.repoDB.UpdateUserPassword(ctx, user.ID, string(newHash)); err != nil {
			slog.ErrorContext(ctx, "failed to update user password", "user_id", user.ID, "error", err)
			return goerror.NewServer(err)
		}
		return nil
	})
}
