package inbound

import (
	"strings"
	"time"

	"github.com/ogerihealth/healthrecord/internal/identity/entity"
	"github.com/ogerihealth/healthrecord/internal/identity/usecase"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for accounts, clinic cards, and the
// staff-facing patient directory.
type HTTPEndpoint struct {
	uc uc
}

// parseDate accepts an optional YYYY-MM-DD body field.
func parseDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, goerror.NewInvalidFormat(field + " must be in YYYY-MM-DD format")
	}
	return &t, nil
}

// Register creates a new patient account.
// @Summary Register patient
// @Description Creates a patient account. Staff roles are granted later by an administrator.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 201 {object} router.successResponse{data=RegisterResponse} "Account created"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Email already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	dob, err := parseDate(req.DateOfBirth, "date_of_birth")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Gender:      entity.ParseGender(req.Gender),
		DateOfBirth: dob,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{UserID: resp.UserID}, nil
}

// Login authenticates a user and returns an access token.
// @Summary Authenticate user
// @Description Validates credentials and returns a signed access token carrying the user's role.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		AccessToken: resp.AccessToken,
		UserID:      resp.UserID,
		Role:        resp.Role,
	}, nil
}

// PasswordForgot emails a one-time reset code to the account.
// @Summary Request password reset code
// @Description Emails a short-lived one-time code. Issuing a new code invalidates any previous one.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body PasswordForgotRequest true "Forgot password payload"
// @Success 200 {object} router.successResponse{data=PasswordForgotResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Failure 409 {object} router.errorResponse "A request is already in progress"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/password/forgot [post]
func (h *HTTPEndpoint) PasswordForgot(r *router.Request) (any, error) {
	var req PasswordForgotRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.PasswordForgot(r.Context(), usecase.PasswordForgotInput{Email: req.Email})
	if err != nil {
		return nil, err
	}

	return PasswordForgotResponse{ExpiresAt: resp.ExpiresAt}, nil
}

// PasswordVerifyOTP checks a reset code without consuming it.
// @Summary Verify password reset code
// @Description Checks the code so the client can show the new-password form. The code stays valid.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body PasswordVerifyOTPRequest true "Verify code payload"
// @Success 200 {object} router.successResponse{data=PasswordVerifyOTPResponse} "Code is valid"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/password/verify-otp [post]
func (h *HTTPEndpoint) PasswordVerifyOTP(r *router.Request) (any, error) {
	var req PasswordVerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err := h.uc.PasswordVerifyOTP(r.Context(), usecase.PasswordVerifyInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return PasswordVerifyOTPResponse{}, nil
}

// PasswordReset consumes a reset code and sets the new password.
// @Summary Reset password
// @Description Verifies the one-time code, updates the password, then burns the code. A failed update leaves the code usable.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "Reset password payload"
// @Success 200 {object} router.successResponse{data=PasswordResetResponse} "Password updated"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/password/reset [post]
func (h *HTTPEndpoint) PasswordReset(r *router.Request) (any, error) {
	var req PasswordResetRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err := h.uc.PasswordReset(r.Context(), usecase.PasswordResetInput{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return nil, err
	}

	return PasswordResetResponse{}, nil
}

// Profile returns the caller's own account.
// @Summary Get own profile
// @Tags Identity, Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Profile data"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/profile [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return profileResponse(resp), nil
}

// BiodataUpdate fills in the demographic part of the caller's profile.
// @Summary Update own biodata
// @Description Updates gender, date of birth, phone number, and address on the caller's account.
// @Tags Identity, Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BiodataUpdateRequest true "Biodata payload"
// @Success 200 {object} router.successResponse{data=BiodataUpdateResponse} "Profile updated"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/profile/biodata [put]
func (h *HTTPEndpoint) BiodataUpdate(r *router.Request) (any, error) {
	var req BiodataUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	dob, err := parseDate(req.DateOfBirth, "date_of_birth")
	if err != nil {
		return nil, err
	}

	err = h.uc.BiodataUpdate(r.Context(), usecase.BiodataUpdateInput{
		Gender:      entity.ParseGender(req.Gender),
		DateOfBirth: dob,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		return nil, err
	}

	return BiodataUpdateResponse{}, nil
}

// PatientList lists patient accounts for staff.
// @Summary List patients
// @Tags Identity, Directory
// @Security BearerAuth
// @Produce json
// @Param search query string false "Match against name, email, or card number"
// @Param size query int false "Page size"
// @Param page query int false "Page number"
// @Success 200 {object} router.successResponse{data=UsersResponse} "Patient list"
// @Failure 400 {object} router.errorResponse "Invalid query parameters"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/patients [get]
func (h *HTTPEndpoint) PatientList(r *router.Request) (any, error) {
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.PatientList(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return usersResponse(resp), nil
}

// PatientDetail returns one patient's full record.
// @Summary Get patient detail
// @Tags Identity, Directory
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Patient detail"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Patient not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/patients/{id} [get]
func (h *HTTPEndpoint) PatientDetail(r *router.Request) (any, error) {
	resp, err := h.uc.PatientDetail(r.Context(), usecase.UserDetailInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return profileResponse(resp), nil
}

// PatientExport writes the patient directory to object storage as CSV.
// @Summary Export patients to CSV
// @Description Builds a CSV of all patients and returns a presigned download link. Administrator only.
// @Tags Identity, Directory
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=PatientExportResponse} "Export link"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/patients-export [get]
func (h *HTTPEndpoint) PatientExport(r *router.Request) (any, error) {
	resp, err := h.uc.PatientExport(r.Context())
	if err != nil {
		return nil, err
	}

	return PatientExportResponse{
		ObjectKey:   resp.ObjectKey,
		DownloadURL: resp.DownloadURL,
		Total:       resp.Total,
	}, nil
}

// HealthWorkerList lists health worker accounts.
// @Summary List health workers
// @Tags Identity, Directory
// @Security BearerAuth
// @Produce json
// @Param search query string false "Match against name or email"
// @Param size query int false "Page size"
// @Param page query int false "Page number"
// @Success 200 {object} router.successResponse{data=UsersResponse} "Health worker list"
// @Failure 400 {object} router.errorResponse "Invalid query parameters"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/health-workers [get]
func (h *HTTPEndpoint) HealthWorkerList(r *router.Request) (any, error) {
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.HealthWorkerList(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return usersResponse(resp), nil
}

// RoleChange promotes or demotes an account.
// @Summary Change user role
// @Description Sets the account's role. Administrator only. Takes effect at the next login.
// @Tags Identity, Directory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body RoleChangeRequest true "Role payload"
// @Success 200 {object} router.successResponse{data=RoleChangeResponse} "Role updated"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/users/{id}/role [put]
func (h *HTTPEndpoint) RoleChange(r *router.Request) (any, error) {
	var req RoleChangeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err := h.uc.RoleChange(r.Context(), usecase.RoleChangeInput{
		UserID: r.GetParam("id"),
		Role:   req.Role,
	})
	if err != nil {
		return nil, err
	}

	return RoleChangeResponse{}, nil
}

// CardGenerate tops up the pool of unassigned clinic card numbers.
// @Summary Generate clinic card numbers
// @Description Creates a batch of unassigned card numbers. Administrator only.
// @Tags Identity, Cards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CardGenerateRequest true "Batch size payload"
// @Success 201 {object} router.successResponse{data=CardGenerateResponse} "Cards created"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/cards/generate [post]
func (h *HTTPEndpoint) CardGenerate(r *router.Request) (any, error) {
	var req CardGenerateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CardGenerate(r.Context(), usecase.CardGenerateInput{Count: req.Count})
	if err != nil {
		return nil, err
	}

	return CardGenerateResponse{
		Requested: resp.Requested,
		Created:   resp.Created,
	}, nil
}

// CardAssign hands an unused card from the pool to a patient.
// @Summary Assign a clinic card
// @Description Picks an unused card number and binds it to the patient.
// @Tags Identity, Cards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CardAssignRequest true "Assignment payload"
// @Success 200 {object} router.successResponse{data=CardAssignResponse} "Card assigned"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Patient not found or pool exhausted"
// @Failure 409 {object} router.errorResponse "Patient already has a card"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/cards/assign [post]
func (h *HTTPEndpoint) CardAssign(r *router.Request) (any, error) {
	var req CardAssignRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CardAssign(r.Context(), usecase.CardAssignInput{UserID: req.UserID})
	if err != nil {
		return nil, err
	}

	return CardAssignResponse{CardNumber: resp.CardNumber}, nil
}

// CardVerify resolves a clinic card to its patient.
// @Summary Verify a clinic card
// @Description Looks up the patient bound to the presented card number.
// @Tags Identity, Cards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CardVerifyRequest true "Card payload"
// @Success 200 {object} router.successResponse{data=CardVerifyResponse} "Card holder"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Card not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/cards/verify [post]
func (h *HTTPEndpoint) CardVerify(r *router.Request) (any, error) {
	var req CardVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CardVerify(r.Context(), usecase.CardVerifyInput{CardNumber: req.CardNumber})
	if err != nil {
		return nil, err
	}

	return CardVerifyResponse{
		PatientID:   resp.PatientID,
		FullName:    resp.FullName,
		Email:       resp.Email,
		Gender:      resp.Gender,
		DateOfBirth: resp.DateOfBirth,
	}, nil
}

func listInput(r *router.Request) (usecase.UserListInput, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return usecase.UserListInput{}, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return usecase.UserListInput{}, err
	}

	return usecase.UserListInput{
		Search: strings.TrimSpace(r.GetQuery("search")),
		Size:   size,
		Page:   page,
	}, nil
}

func profileResponse(resp *usecase.ProfileOutput) ProfileResponse {
	return ProfileResponse{
		ID:          resp.ID,
		Email:       resp.Email,
		FullName:    resp.FullName,
		Role:        resp.Role,
		Gender:      resp.Gender,
		DateOfBirth: resp.DateOfBirth,
		PhoneNumber: resp.PhoneNumber,
		Address:     resp.Address,
		CardNumber:  resp.CardNumber,
	}
}

func usersResponse(resp *usecase.UserListOutput) UsersResponse {
	users := make([]UserSummaryResponse, 0, len(resp.Users))
	for _, item := range resp.Users {
		users = append(users, UserSummaryResponse{
			ID:          item.ID,
			Email:       item.Email,
			FullName:    item.FullName,
			Gender:      item.Gender,
			DateOfBirth: item.DateOfBirth,
			PhoneNumber: item.PhoneNumber,
			CardNumber:  item.CardNumber,
		})
	}

	return UsersResponse{
		total: resp.Total,
		size:  resp.Size,
		page:  resp.Page,
		Users: users,
	}
}
