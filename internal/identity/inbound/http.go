package inbound

import (
	"context"

	"github.com/ogerihealth/healthrecord/internal/identity/usecase"
	"github.com/ogerihealth/healthrecord/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)

	PasswordForgot(ctx context.Context, in usecase.PasswordForgotInput) (*usecase.PasswordForgotOutput, error)
	PasswordVerifyOTP(ctx context.Context, in usecase.PasswordVerifyInput) error
	PasswordReset(ctx context.Context, in usecase.PasswordResetInput) error

	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
	BiodataUpdate(ctx context.Context, in usecase.BiodataUpdateInput) error

	PatientList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
	PatientDetail(ctx context.Context, in usecase.UserDetailInput) (*usecase.ProfileOutput, error)
	PatientExport(ctx context.Context) (*usecase.PatientExportOutput, error)
	HealthWorkerList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
	RoleChange(ctx context.Context, in usecase.RoleChangeInput) error

	CardGenerate(ctx context.Context, in usecase.CardGenerateInput) (*usecase.CardGenerateOutput, error)
	CardAssign(ctx context.Context, in usecase.CardAssignInput) (*usecase.CardAssignOutput, error)
	CardVerify(ctx context.Context, in usecase.CardVerifyInput) (*usecase.CardVerifyOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Authentication
	r.POST("/api/v1/identity/register", end.Register)
	r.POST("/api/v1/identity/login", end.Login)

	// Password recovery (one-time code flow)
	r.POST("/api/v1/identity/password/forgot", end.PasswordForgot)
	r.POST("/api/v1/identity/password/verify-otp", end.PasswordVerifyOTP)
	r.POST("/api/v1/identity/password/reset", end.PasswordReset)

	// Own profile (need authenticated)
	r.GET("/api/v1/identity/profile", end.Profile)
	r.PUT("/api/v1/identity/profile/biodata", end.BiodataUpdate)

	// Directory (need authenticated & authorization)
	r.GET("/api/v1/identity/patients", end.PatientList)
	r.GET("/api/v1/identity/patients/:id", end.PatientDetail)
	r.GET("/api/v1/identity/patients-export", end.PatientExport)
	r.GET("/api/v1/identity/health-workers", end.HealthWorkerList)
	r.PUT("/api/v1/identity/users/:id/role", end.RoleChange)

	// Clinic cards (need authenticated & authorization)
	r.POST("/api/v1/identity/cards/generate", end.CardGenerate)
	r.POST("/api/v1/identity/cards/assign", end.CardAssign)
	r.POST("/api/v1/identity/cards/verify", end.CardVerify)
}
