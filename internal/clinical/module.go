// Package clinical owns patient health records: blood pressure readings,
// consultations, medication history, and health worker profiles.
package clinical

import (
	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogerihealth/healthrecord/internal/clinical/inbound"
	"github.com/ogerihealth/healthrecord/internal/clinical/outbound/db"
	"github.com/ogerihealth/healthrecord/internal/clinical/usecase"
	"github.com/ogerihealth/healthrecord/internal/pkg/clock"
	"github.com/ogerihealth/healthrecord/internal/pkg/instrument"
	"github.com/ogerihealth/healthrecord/internal/pkg/router"
	"github.com/ogerihealth/healthrecord/internal/pkg/uid"
	"github.com/ogerihealth/healthrecord/internal/pkg/validator"
	verification "github.com/ogerihealth/healthrecord/internal/verification/usecase"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	OTP        *verification.Usecase      `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:     repoDB,
		OTP:        dep.OTP,
		Validator:  dep.Validator,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
		Enforcer:   dep.Enforcer,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
