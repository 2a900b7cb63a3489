package usecase

import (
	"context"
	"strings"

	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/verification/entity"
)

type VerifyInput struct {
	Email   string `validate:"required,email"`
	Purpose entity.Purpose
	Code    string `validate:"required,len=6,numeric"`
}

// Verify checks a candidate code without consuming it. It can be called any
// number of times; the code stays live until consumed or expired.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) error {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if !in.Purpose.Valid() {
		return goerror.NewInvalidFormat("unknown verification purpose")
	}

	_, err := s.checkCode(ctx, in.Email, in.Purpose, in.Code)
	return err
}
