package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ogerihealth/healthrecord/internal/identity/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/shared/constant"
	"github.com/samber/lo"
)

type UserListInput struct {
	Search string // value already trimmed
	Size   int32
	Page   int32
}

type UserSummary struct {
	ID          string
	Email       string
	FullName    string
	Gender      string
	DateOfBirth *time.Time
	PhoneNumber string
	CardNumber  *string
}

type UserListOutput struct {
	Page  int32
	Size  int32
	Total int64
	Users []UserSummary
}

// PatientList is available to health workers and administrators.
func (s *Usecase) PatientList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "PatientList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermIdentityUsers, constant.PermActRead); err != nil {
		return nil, err
	}

	return s.listByRole(ctx, entity.RolePatient, in)
}

// HealthWorkerList is restricted to administrators.
func (s *Usecase) HealthWorkerList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "HealthWorkerList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermIdentityUsers, constant.PermActManage); err != nil {
		return nil, err
	}

	return s.listByRole(ctx, entity.RoleHealthWorker, in)
}

func (s *Usecase) listByRole(ctx context.Context, role entity.Role, in UserListInput) (*UserListOutput, error) {
	if in.Size <= 0 || in.Size > 100 {
		in.Size = 10 // default limit
	}

	filter := entity.UserListFilter{
		Role:   role,
		Search: strings.TrimSpace(in.Search),
		Size:   in.Size,
		Offset: (max(in.Page, 1) - 1) * in.Size,
	}
	if filter.Search != "" {
		filter.IsFilterBySearch = true
	}

	users, count, err := s.repoDB.GetUserList(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "role", role.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserListOutput{
		Page:  max(in.Page, 1),
		Size:  in.Size,
		Total: count,
		Users: lo.Map(users, func(u entity.User, _ int) UserSummary {
			return UserSummary{
				ID:          u.ID,
				Email:       u.Email,
				FullName:    u.FullName,
				Gender:      u.Gender.String(),
				DateOfBirth: u.DateOfBirth,
				PhoneNumber: u.PhoneNumber,
				CardNumber:  u.CardNumber,
			}
		}),
	}, nil
}

type UserDetailInput struct {
	ID string `validate:"required,uuid"`
}

// PatientDetail returns the full record for one patient.
func (s *Usecase) PatientDetail(ctx context.Context, in UserDetailInput) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "PatientDetail")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermIdentityUsers, constant.PermActRead); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Patient not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if user.Role != entity.RolePatient {
		return nil, goerror.NewBusiness("Patient not found", goerror.CodeNotFound)
	}

	return &ProfileOutput{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role.String(),
		Gender:      user.Gender.String(),
		DateOfBirth: user.DateOfBirth,
		PhoneNumber: user.PhoneNumber,
		Address:     user.Address,
		CardNumber:  user.CardNumber,
	}, nil
}
