package app

import (
	"log/slog"
	"os"

	"github.com/ogerihealth/healthrecord/internal/clinical"
	"github.com/ogerihealth/healthrecord/internal/identity"
	"github.com/ogerihealth/healthrecord/internal/notification"
	"github.com/ogerihealth/healthrecord/internal/verification"
)

func (a *App) initModules() {
	// The verification module carries the one-time code workflow that the
	// identity and clinical modules build on, so it is always wired.
	otp, err := verification.New(verification.Dependency{
		DBConn:      a.dbConn,
		Mail:        a.mail,
		Idempotency: a.idemp,
		Config:      a.config,
		Instrument:  a.ins,
		UID:         a.uid,
		HMAC:        a.hmac,
		Codes:       a.codes,
		Clock:       a.clock,
		Validator:   a.validator,
	})
	if err != nil {
		slog.Error("failed to init module verification", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("modules.identity.enabled") {
		if err := identity.New(identity.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Enforcer:   a.casbin,
			Messaging:  a.messaging,
			Storage:    a.storage,
			OTP:        otp,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Bcrypt:     a.bcrypt,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.clinical.enabled") {
		if err := clinical.New(clinical.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Enforcer:   a.casbin,
			OTP:        otp,
			Instrument: a.ins,
			UID:        a.uid,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module clinical", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(a.ctx, notification.Dependency{
			DBConn:     a.dbConn,
			Goroutine:  a.goroutine,
			Messaging:  a.messaging,
			Mail:       a.mail,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
