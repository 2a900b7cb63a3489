// Package verification owns the one-time code workflow: issue a code to a
// known account, verify a candidate code, and consume a code atomically with
// a bound action. Other modules build their flows on top of it.
package verification

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogerihealth/healthrecord/internal/pkg/clock"
	"github.com/ogerihealth/healthrecord/internal/pkg/config"
	"github.com/ogerihealth/healthrecord/internal/pkg/hash"
	"github.com/ogerihealth/healthrecord/internal/pkg/idempotency"
	"github.com/ogerihealth/healthrecord/internal/pkg/instrument"
	"github.com/ogerihealth/healthrecord/internal/pkg/mail"
	"github.com/ogerihealth/healthrecord/internal/pkg/otp"
	"github.com/ogerihealth/healthrecord/internal/pkg/uid"
	"github.com/ogerihealth/healthrecord/internal/pkg/validator"
	"github.com/ogerihealth/healthrecord/internal/verification/outbound/db"
	"github.com/ogerihealth/healthrecord/internal/verification/outbound/mailer"
	"github.com/ogerihealth/healthrecord/internal/verification/usecase"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Codes       otp.Generator              `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
}

// New wires the verification storage and mailer and returns the usecase for
// other modules to embed in their flows. This module has no HTTP surface of
// its own.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	repo := db.NewDB(dep.DBConn, dep.Instrument)
	codeMailer := mailer.New(dep.Mail, dep.Instrument)

	return usecase.New(usecase.Dependency{
		RepoDB:      repo,
		RepoMail:    codeMailer,
		Idempotency: dep.Idempotency,
		Validator:   dep.Validator,
		Config:      dep.Config,
		HMAC:        dep.HMAC,
		Codes:       dep.Codes,
		UID:         dep.UID,
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
	}), nil
}
