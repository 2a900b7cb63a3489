package entity

// Role is the account role driving authorization.
type Role int16

const (
	RoleUnknown Role = iota
	RolePatient
	RoleHealthWorker
	RoleAdmin
)

// String returns a string representation of the Role.
func (r Role) String() string {
	switch r {
	case RolePatient:
		return "patient"
	case RoleHealthWorker:
		return "health_worker"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleHealthWorker || r == RoleAdmin
}

// ParseRole converts a raw string into a Role.
func ParseRole(raw string) Role {
	switch raw {
	case "patient":
		return RolePatient
	case "health_worker":
		return RoleHealthWorker
	case "admin":
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// Gender is the self-reported gender on the biodata form.
type Gender int16

const (
	GenderUnknown Gender = iota
	GenderFemale
	GenderMale
	GenderOther
)

// String returns a string representation of the Gender.
func (g Gender) String() string {
	switch g {
	case GenderFemale:
		return "female"
	case GenderMale:
		return "male"
	case GenderOther:
		return "other"
	default:
		return "unknown"
	}
}

// ParseGender converts a raw string into a Gender.
func ParseGender(raw string) Gender {
	switch raw {
	case "female":
		return GenderFemale
	case "male":
		return GenderMale
	case "other":
		return GenderOther
	default:
		return GenderUnknown
	}
}

// CardStatus tracks whether a pooled card number has been handed out.
type CardStatus int16

const (
	CardStatusUnused CardStatus = iota
	CardStatusUsed
)

// String returns a string representation of the CardStatus.
func (c CardStatus) String() string {
	if c == CardStatusUsed {
		return "used"
	}
	return "unused"
}
