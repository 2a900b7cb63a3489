package usecase

import (
	"context"
	"log/slog"

	"github.com/casbin/casbin/v3"
	"github.com/ogerihealth/healthrecord/internal/clinical/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/clock"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/instrument"
	"github.com/ogerihealth/healthrecord/internal/pkg/jwt"
	"github.com/ogerihealth/healthrecord/internal/pkg/uid"
	"github.com/ogerihealth/healthrecord/internal/pkg/validator"
	verification "github.com/ogerihealth/healthrecord/internal/verification/usecase"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	GetPatientIDByEmail(ctx context.Context, email string) (string, error)

	NewBPReading(ctx context.Context, reading entity.BPReading) error
	GetBPReading(ctx context.Context, id int64) (*entity.BPReading, error)
	GetBPReadings(ctx context.Context, filter entity.BPListFilter) ([]entity.BPReading, int64, error)
	GetAllBPReadings(ctx context.Context, patientID string) ([]entity.BPReading, error)
	UpdateBPReading(ctx context.Context, reading entity.BPReading) error

	NewConsultation(ctx context.Context, c entity.Consultation) error
	GetConsultation(ctx context.Context, id int64) (*entity.Consultation, error)
	GetConsultations(ctx context.Context, filter entity.ConsultationListFilter) ([]entity.Consultation, int64, error)
	UpdateConsultation(ctx context.Context, c entity.Consultation) error

	NewMedicationRecord(ctx context.Context, m entity.MedicationRecord) error
	GetMedicationRecords(ctx context.Context, patientID string) ([]entity.MedicationRecord, error)

	UpsertHealthWorkerProfile(ctx context.Context, p entity.HealthWorkerProfile) error
	GetHealthWorkerProfile(ctx context.Context, userID string) (*entity.HealthWorkerProfile, error)
}

// otpService is the slice of the verification module backing the blood
// pressure authorization flow.
type otpService interface {
	Issue(ctx context.Context, in verification.IssueInput) (*verification.IssueOutput, error)
	Consume(ctx context.Context, in verification.VerifyInput, action func(ctx context.Context) error) error
}

type Usecase struct {
	repoDB    repoDB
	otp       otpService
	validator validator.Validator
	uid       uid.NumberID
	clock     clock.Clocker
	ins       instrument.Instrumentation
	enforcer  *casbin.Enforcer
}

type Dependency struct {
	RepoDB     repoDB
	OTP        otpService
	Validator  validator.Validator
	UID        uid.NumberID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	Enforcer   *casbin.Enforcer
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		otp:       dep.OTP,
		validator: dep.Validator,
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		enforcer:  dep.Enforcer,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("clinical.usecase").Start(ctx, name)
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce("role:"+clm.UserRole, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}
