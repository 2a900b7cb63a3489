package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/idempotency"
	"github.com/ogerihealth/healthrecord/internal/verification/entity"
)

type IssueInput struct {
	Email   string `validate:"required,email"`
	Purpose entity.Purpose

	// DateOfBirth is the second identifying factor for the blood pressure
	// authorization purpose. Issuing for that purpose requires it to match
	// the account.
	DateOfBirth *time.Time
}

type IssueOutput struct {
	Email     string
	ExpiresAt time.Time
}

// Issue creates a one-time code for the account, stores its hash and emails
// the plaintext code. A previous live code for the same (email, purpose) is
// superseded atomically.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if !in.Purpose.Valid() {
		return nil, goerror.NewInvalidFormat("unknown verification purpose")
	}

	acct, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "one-time code requested for unknown email", "email", in.Email, "purpose", in.Purpose.String())
		return nil, ErrRecipientNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if in.Purpose == entity.PurposeBPAuthorization {
		if acct.Role != "patient" {
			slog.WarnContext(ctx, "bp authorization code requested for non-patient account", "email", in.Email, "role", acct.Role)
			return nil, ErrRecipientNotFound
		}
		// The date of birth is the second identifying factor for this
		// purpose; an absent one is treated the same as a mismatch.
		if in.DateOfBirth == nil || !sameDate(acct.DateOfBirth, in.DateOfBirth) {
			slog.WarnContext(ctx, "bp authorization code requested with missing or mismatched date of birth", "email", in.Email)
			return nil, ErrRecipientNotFound
		}
	}

	ttl := s.ttlFor(in.Purpose)
	out := &IssueOutput{Email: acct.Email}

	key := "verification:issue:" + acct.Email + ":" + in.Purpose.String()
	err = s.idemp.Exec(ctx, key, func(ctx context.Context) error {
		code, err := s.codes.Generate()
		if err != nil {
			return err
		}

		codeHash, err := s.hmac.Hash(code)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		out.ExpiresAt = now.Add(ttl)

		if err := s.repoDB.UpsertCode(ctx, entity.OneTimeCode{
			ID:        s.uid.Generate(),
			Email:     acct.Email,
			Purpose:   in.Purpose,
			CodeHash:  string(codeHash),
			IssuedAt:  now,
			ExpiresAt: out.ExpiresAt,
		}); err != nil {
			return err
		}

		// The code is already persisted at this point. A delivery failure is
		// surfaced to the caller but the code stays valid until it expires.
		if err := s.repoMail.SendCode(ctx, *acct, in.Purpose, code, ttl); err != nil {
			return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
		}

		return nil
	}, idempotency.WithLockDuration(30*time.Second), idempotency.WithStateTTL(time.Minute))

	switch {
	case err == nil:
		return out, nil

	case errors.Is(err, idempotency.ErrAlreadyInProgress),
		errors.Is(err, idempotency.ErrAlreadyCompleted),
		errors.Is(err, idempotency.ErrAlreadyFailed):
		slog.WarnContext(ctx, "one-time code issuance throttled", "email", acct.Email, "purpose", in.Purpose.String())
		return nil, goerror.NewBusiness("An OTP was sent recently, please wait before requesting another", goerror.CodeTooManyRequest)

	case errors.Is(err, ErrDeliveryFailed):
		slog.ErrorContext(ctx, "failed to deliver one-time code email", "email", acct.Email, "purpose", in.Purpose.String(), "error", err)
		return nil, goerror.NewServer(err)

	default:
		slog.ErrorContext(ctx, "failed to issue one-time code", "email", acct.Email, "purpose", in.Purpose.String(), "error", err)
		return nil, goerror.NewServer(err)
	}
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
