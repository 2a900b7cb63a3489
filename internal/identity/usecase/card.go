package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ogerihealth/healthrecord/internal/identity/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/shared/constant"
	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
)

const cardNumberPrefix = "OHF-"

type CardGenerateInput struct {
	Count int32 `validate:"required,min=1,max=1000"`
}

type CardGenerateOutput struct {
	Requested int32
	Created   int64
}

// CardGenerate tops up the pool of unassigned clinic card numbers.
// Administrator only. Random collisions with existing numbers are skipped by
// the insert, so Created can be lower than Requested.
func (s *Usecase) CardGenerate(ctx context.Context, in CardGenerateInput) (*CardGenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "CardGenerate")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermIdentityCards, constant.PermActManage); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	cards := lo.Times(int(in.Count), func(_ int) entity.CardNumber {
		return entity.CardNumber{
			ID:        s.uid.Generate(),
			Number:    newCardNumber(),
			Status:    entity.CardStatusUnused,
			CreatedAt: now,
		}
	})
	cards = lo.Filter(cards, func(c entity.CardNumber, _ int) bool { return c.Number != "" })
	cards = lo.UniqBy(cards, func(c entity.CardNumber) string { return c.Number })

	created, err := s.repoDB.CreateCardNumbers(ctx, cards)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create card numbers", "count", in.Count, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CardGenerateOutput{Requested: in.Count, Created: created}, nil
}

type CardAssignInput struct {
	UserID string `validate:"required,uuid"`
}

type CardAssignOutput struct {
	CardNumber string
}

// CardAssign hands an unused card from the pool to a patient. Concurrent
// assignments can race for the same card row, which surfaces as a conflict;
// the pick is retried with backoff before giving up.
func (s *Usecase) CardAssign(ctx context.Context, in CardAssignInput) (*CardAssignOutput, error) {
	ctx, span := s.startSpan(ctx, "CardAssign")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermIdentityCards, constant.PermActManage); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Patient not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if user.Role != entity.RolePatient {
		return nil, goerror.NewBusiness("Cards can only be assigned to patients", goerror.CodeInvalidInput)
	}
	if user.CardNumber != nil {
		return nil, goerror.NewBusiness("Patient already has a card", goerror.CodeConflict)
	}

	var number string
	backoff := retry.WithCappedDuration(2*time.Second, retry.NewFibonacci(100*time.Millisecond))
	err = retry.Do(ctx, retry.WithMaxRetries(4, backoff), func(ctx context.Context) error {
		n, err := s.repoDB.AssignCardNumber(ctx, user.ID)
		if errors.Is(err, goerror.ErrConflict) {
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		number = n
		return nil
	})
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("No unused card numbers left, generate more first", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to assign card number", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CardAssignOutput{CardNumber: number}, nil
}

type CardVerifyInput struct {
	CardNumber string `validate:"required,min=8,max=20"`
}

type CardVerifyOutput struct {
	PatientID   string
	FullName    string
	Email       string
	Gender      string
	DateOfBirth *time.Time
}

// CardVerify resolves a clinic card to its patient. Health workers use it at
// the front desk before recording anything on a patient's behalf.
func (s *Usecase) CardVerify(ctx context.Context, in CardVerifyInput) (*CardVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "CardVerify")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermIdentityCards, constant.PermActRead); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	number := strings.ToUpper(strings.TrimSpace(in.CardNumber))
	user, err := s.repoDB.GetUserByCardNumber(ctx, number)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("No patient holds this card", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by card number", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CardVerifyOutput{
		PatientID:   user.ID,
		FullName:    user.FullName,
		Email:       user.Email,
		Gender:      user.Gender.String(),
		DateOfBirth: user.DateOfBirth,
	}, nil
}

func newCardNumber() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return cardNumberPrefix + strings.ToUpper(hex.EncodeToString(b[:]))
}
