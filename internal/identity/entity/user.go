package entity

import "time"

type User struct {
	ID          string
	Email       string
	FullName    string
	Role        Role
	Gender      Gender
	DateOfBirth *time.Time
	PhoneNumber string
	Address     string
	CardNumber  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type NewUser struct {
	ID          string
	Email       string
	FullName    string
	Role        Role
	Gender      Gender
	DateOfBirth *time.Time
	PhoneNumber string
	Address     string
}

type UserLoginInfo struct {
	ID       string
	Email    string
	Password string // hashed
	Role     Role
}

// Biodata is the demographic slice of the profile updated after registration.
type Biodata struct {
	Gender      Gender
	DateOfBirth *time.Time
	PhoneNumber string
	Address     string
}

// CardNumber is a pooled clinic card, pre-generated and assigned to patients.
type CardNumber struct {
	ID         int64
	Number     string
	Status     CardStatus
	AssignedTo *string
	CreatedAt  time.Time
}

type UserListFilter struct {
	Role             Role
	Search           string
	IsFilterBySearch bool
	Size             int32
	Offset           int32
}
