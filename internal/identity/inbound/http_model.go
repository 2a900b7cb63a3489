package inbound

import (
	"time"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

func (RegisterResponse) Message() string {
	return "Registration successful. You can now log in."
}

func (RegisterResponse) StatusCode() int {
	return 201
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

type PasswordForgotRequest struct {
	Email string `json:"email"`
}

type PasswordForgotResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func (PasswordForgotResponse) Message() string {
	return "A verification code has been sent to your email."
}

type PasswordVerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type PasswordVerifyOTPResponse struct{}

func (PasswordVerifyOTPResponse) Message() string {
	return "Code verified. You can now set a new password."
}

type PasswordResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type PasswordResetResponse struct{}

func (PasswordResetResponse) Message() string {
	return "Password has been reset. Please log in with your new password."
}

type ProfileResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Address     string     `json:"address,omitempty"`
	CardNumber  *string    `json:"card_number,omitempty"`
}

type BiodataUpdateRequest struct {
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
}

type BiodataUpdateResponse struct{}

func (BiodataUpdateResponse) Message() string {
	return "Profile updated."
}

type UserSummaryResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	CardNumber  *string    `json:"card_number,omitempty"`
}

type UsersResponse struct {
	Users []UserSummaryResponse `json:"users"`
	// meta
	total int64
	size  int32
	page  int32
}

func (r UsersResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
		"size":  r.size,
		"page":  r.page,
	}
}

type RoleChangeRequest struct {
	Role string `json:"role"`
}

type RoleChangeResponse struct{}

func (RoleChangeResponse) Message() string {
	return "Role updated. The change takes effect at the next login."
}

type CardGenerateRequest struct {
	Count int32 `json:"count"`
}

type CardGenerateResponse struct {
	Requested int32 `json:"requested"`
	Created   int64 `json:"created"`
}

func (CardGenerateResponse) StatusCode() int {
	return 201
}

type CardAssignRequest struct {
	UserID string `json:"user_id"`
}

type CardAssignResponse struct {
	CardNumber string `json:"card_number"`
}

func (CardAssignResponse) Message() string {
	return "Card assigned to patient."
}

type CardVerifyRequest struct {
	CardNumber string `json:"card_number"`
}

type CardVerifyResponse struct {
	PatientID   string     `json:"patient_id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

type PatientExportResponse struct {
	ObjectKey   string `json:"object_key"`
	DownloadURL string `json:"download_url"`
	Total       int64  `json:"total"`
}

func (PatientExportResponse) Message() string {
	return "Export ready. The download link expires shortly."
}
