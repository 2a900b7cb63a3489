// Package identity owns accounts: registration, login, password recovery,
// profiles, role management, and clinic card numbers.
package identity

import (
	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogerihealth/healthrecord/internal/identity/inbound"
	"github.com/ogerihealth/healthrecord/internal/identity/outbound/db"
	"github.com/ogerihealth/healthrecord/internal/identity/outbound/mq"
	"github.com/ogerihealth/healthrecord/internal/identity/usecase"
	"github.com/ogerihealth/healthrecord/internal/pkg/clock"
	"github.com/ogerihealth/healthrecord/internal/pkg/config"
	"github.com/ogerihealth/healthrecord/internal/pkg/hash"
	"github.com/ogerihealth/healthrecord/internal/pkg/instrument"
	"github.com/ogerihealth/healthrecord/internal/pkg/jwt"
	"github.com/ogerihealth/healthrecord/internal/pkg/messaging"
	"github.com/ogerihealth/healthrecord/internal/pkg/router"
	"github.com/ogerihealth/healthrecord/internal/pkg/storage"
	"github.com/ogerihealth/healthrecord/internal/pkg/uid"
	"github.com/ogerihealth/healthrecord/internal/pkg/validator"
	verification "github.com/ogerihealth/healthrecord/internal/verification/usecase"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	OTP        *verification.Usecase      `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        repoDB,
		RepoMessaging: repoMsg,
		OTP:           dep.OTP,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Storage:       dep.Storage,
		Bcrypt:        dep.Bcrypt,
		UUID:          dep.UUID,
		UID:           dep.UID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
