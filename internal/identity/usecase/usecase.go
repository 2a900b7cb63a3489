package usecase

import (
	"context"
	"log/slog"

	"github.com/casbin/casbin/v3"
	"github.com/ogerihealth/healthrecord/internal/identity/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/clock"
	"github.com/ogerihealth/healthrecord/internal/pkg/config"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/hash"
	"github.com/ogerihealth/healthrecord/internal/pkg/instrument"
	"github.com/ogerihealth/healthrecord/internal/pkg/jwt"
	"github.com/ogerihealth/healthrecord/internal/pkg/storage"
	"github.com/ogerihealth/healthrecord/internal/pkg/uid"
	"github.com/ogerihealth/healthrecord/internal/pkg/validator"
	verification "github.com/ogerihealth/healthrecord/internal/verification/usecase"
	"go.opentelemetry.io/otel/trace"
)

type UserRegisteredEvent struct {
	UserID   string
	Email    string
	FullName string
	Role     entity.Role
}

type repoMessaging interface {
	PublishUserRegistered(ctx context.Context, msg UserRegisteredEvent) error
}

type repoDB interface {
	GetUserLoginInfo(ctx context.Context, email string) (*entity.UserLoginInfo, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByCardNumber(ctx context.Context, number string) (*entity.User, error)
	GetUserList(ctx context.Context, filter entity.UserListFilter) ([]entity.User, int64, error)

	NewUser(ctx context.Context, user entity.NewUser, passwordHash string) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	UpdateUserBiodata(ctx context.Context, id string, bio entity.Biodata) error
	UpdateUserRole(ctx context.Context, id string, role entity.Role) error

	CreateCardNumbers(ctx context.Context, cards []entity.CardNumber) (int64, error)
	AssignCardNumber(ctx context.Context, userID string) (string, error)
}

// otpService is the slice of the verification module this module builds its
// password reset flow on.
type otpService interface {
	Issue(ctx context.Context, in verification.IssueInput) (*verification.IssueOutput, error)
	Verify(ctx context.Context, in verification.VerifyInput) error
	Consume(ctx context.Context, in verification.VerifyInput, action func(ctx context.Context) error) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	otp           otpService
	validator     validator.Validator
	cfg           config.Config
	storage       storage.Storage
	bcrypt        hash.Hash
	uuid          uid.StringID
	uid           uid.NumberID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	enforcer      *casbin.Enforcer
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	OTP           otpService
	Validator     validator.Validator
	Config        config.Config
	Storage       storage.Storage
	Bcrypt        hash.Hash
	UUID          uid.StringID
	UID           uid.NumberID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Enforcer      *casbin.Enforcer
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		otp:           dep.OTP,
		validator:     dep.Validator,
		cfg:           dep.Config,
		storage:       dep.Storage,
		bcrypt:        dep.Bcrypt,
		uuid:          dep.UUID,
		uid:           dep.UID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
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
