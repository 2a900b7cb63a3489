package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
)

// Consume verifies the code, runs the bound action, and only then deletes the
// code. The order is deliberate:
//
//   - an action error propagates unchanged and the code stays live, so the
//     caller can retry with the same code;
//   - the delete is conditional on the stored hash, so a code superseded
//     between verify and delete is never destroyed by this call.
func (s *Usecase) Consume(ctx context.Context, in VerifyInput, action func(ctx context.Context) error) error {
	ctx, span := s.startSpan(ctx, "Consume")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if !in.Purpose.Valid() {
		return goerror.NewInvalidFormat("unknown verification purpose")
	}

	otc, err := s.checkCode(ctx, in.Email, in.Purpose, in.Code)
	if err != nil {
		return err
	}

	if err := action(ctx); err != nil {
		return err
	}

	deleted, err := s.repoDB.DeleteCodeIfMatch(ctx, otc.Email, otc.Purpose, otc.CodeHash)
	if err != nil {
		slog.ErrorContext(ctx, "failed to spend one-time code after action", "email", otc.Email, "purpose", otc.Purpose.String(), "error", err)
		return goerror.NewServer(err)
	}

	if !deleted {
		slog.WarnContext(ctx, "one-time code was superseded or already spent", "email", otc.Email, "purpose", otc.Purpose.String())
	}

	return nil
}
