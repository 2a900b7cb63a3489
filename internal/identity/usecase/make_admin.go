package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ogerihealth/healthrecord/internal/identity/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/shared/constant"
)

type RoleChangeInput struct {
	UserID string `validate:"required,uuid"`
	Role   string `validate:"required,oneof=patient health_worker admin"`
}

// RoleChange promotes or demotes an account. Administrator only. The new role
// takes effect at the next login, when a token with the new role claim is
// issued.
func (s *Usecase) RoleChange(ctx context.Context, in RoleChangeInput) error {
	ctx, span := s.startSpan(ctx, "RoleChange")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermIdentityUsers, constant.PermActManage)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if clm.UserID == in.UserID {
		return goerror.NewBusiness("You cannot change your own role", goerror.CodeForbidden)
	}

	role := entity.ParseRole(in.Role)
	if !role.Valid() {
		return goerror.NewInvalidFormat("unknown role")
	}

	user, err := s.repoDB.GetUserByID(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if user.Role == role {
		return nil
	}

	if err := s.repoDB.UpdateUserRole(ctx, user.ID, role); err != nil {
		slog.ErrorContext(ctx, "failed to update user role", "user_id", user.ID, "role", role.String(), "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user role changed", "user_id", user.ID, "from", user.Role.String(), "to", role.String(), "by", clm.UserID)
	return nil
}
