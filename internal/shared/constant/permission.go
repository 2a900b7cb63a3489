// Package constant holds cross-module permission objects and actions used by
// the casbin enforcer.
package constant

const (
	PermIdentityUsers    = "identity:users"
	PermIdentityCards    = "identity:cards"
	PermClinicalRecords  = "clinical:records"
	PermClinicalConsults = "clinical:consultations"
	PermClinicalMeds     = "clinical:medications"
	PermClinicalProfiles = "clinical:profiles"
)

const (
	PermActRead   = "read"
	PermActWrite  = "write"
	PermActManage = "manage"
)
