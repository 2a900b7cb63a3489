package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ogerihealth/healthrecord/internal/pkg/clock"
	"github.com/ogerihealth/healthrecord/internal/pkg/config"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/hash"
	"github.com/ogerihealth/healthrecord/internal/pkg/idempotency"
	"github.com/ogerihealth/healthrecord/internal/pkg/instrument"
	"github.com/ogerihealth/healthrecord/internal/pkg/otp"
	"github.com/ogerihealth/healthrecord/internal/pkg/uid"
	"github.com/ogerihealth/healthrecord/internal/pkg/validator"
	"github.com/ogerihealth/healthrecord/internal/verification/entity"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrRecipientNotFound is returned when no eligible account matches the email.
	ErrRecipientNotFound = goerror.NewBusiness("User with this email not found", goerror.CodeNotFound)

	// ErrInvalidCode is returned when no live code exists or the code does not match.
	ErrInvalidCode = goerror.NewBusiness("Invalid OTP", goerror.CodeUnauthorized)

	// ErrCodeExpired is returned when the code matches but its validity window has passed.
	ErrCodeExpired = goerror.NewBusiness("OTP has expired", goerror.CodeUnauthorized)

	// ErrDeliveryFailed indicates the code was stored but the email could not be sent.
	// The stored code stays valid, so a later verify with the same code still works.
	ErrDeliveryFailed = errors.New("one-time code email delivery failed")
)

type repoDB interface {
	GetAccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	GetCode(ctx context.Context, email string, p entity.Purpose) (*entity.OneTimeCode, error)
	UpsertCode(ctx context.Context, code entity.OneTimeCode) error
	DeleteCodeIfMatch(ctx context.Context, email string, p entity.Purpose, codeHash string) (bool, error)
}

type repoMail interface {
	SendCode(ctx context.Context, to entity.Account, p entity.Purpose, code string, ttl time.Duration) error
}

type Usecase struct {
	repoDB    repoDB
	repoMail  repoMail
	idemp     idempotency.Idempotency
	validator validator.Validator
	cfg       config.Config
	hmac      hash.Hash
	codes     otp.Generator
	uid       uid.NumberID
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB      repoDB
	RepoMail    repoMail
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Config      config.Config
	HMAC        hash.Hash
	Codes       otp.Generator
	UID         uid.NumberID
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		repoMail:  dep.RepoMail,
		idemp:     dep.Idempotency,
		validator: dep.Validator,
		cfg:       dep.Config,
		hmac:      dep.HMAC,
		codes:     dep.Codes,
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}

func (s *Usecase) ttlFor(p entity.Purpose) time.Duration {
	switch p {
	case entity.PurposeBPAuthorization:
		return s.cfg.GetMinute("modules.verification.bp_authorization_ttl_minutes")
	default:
		return s.cfg.GetMinute("modules.verification.password_reset_ttl_minutes")
	}
}

// checkCode loads the live code and validates the candidate against it.
//
// A missing or mismatched code is reported before expiry, so callers cannot
// distinguish "no code" from "wrong code".
func (s *Usecase) checkCode(ctx context.Context, email string, p entity.Purpose, code string) (*entity.OneTimeCode, error) {
	otc, err := s.repoDB.GetCode(ctx, email, p)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	if !s.hmac.Verify(otc.CodeHash, code) {
		return nil, ErrInvalidCode
	}

	if otc.Expired(s.clock.Now()) {
		return nil, ErrCodeExpired
	}

	return otc, nil
}
