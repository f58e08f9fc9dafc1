package model

import (
	"strings"
	"time"
)

// Role is the fixed capability class of an account.  It is chosen at
// registration and never changes afterwards.
type Role string

const (
	RoleDoctor                Role = "Doctor"
	RolePatient               Role = "Patient"
	RoleCommunityHealthWorker Role = "CommunityHealthWorker"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleDoctor, RolePatient, RoleCommunityHealthWorker}

// ParseRole normalizes user input into a Role.  Matching is case-insensitive
// and ignores spaces, dashes and underscores; the community health worker
// role also accepts the ASHA / "Aasha Worker" and CHW spellings.
func ParseRole(s string) (Role, bool) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "doctor":
		return RoleDoctor, true
	case "patient":
		return RolePatient, true
	case "communityhealthworker", "chw", "asha", "ashaworker", "aashaworker":
		return RoleCommunityHealthWorker, true
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RolePatient, RoleCommunityHealthWorker:
		return true
	}
	return false
}

// Account represents a row of the `accounts` table.
//
// Fields:
//
//	Username     – primary key, unique and immutable.
//	PasswordHash – bcrypt hash; the plaintext is never stored.
//	Role         – immutable role chosen at registration.
//	IsLoggedIn   – presence flag flipped by login and logout.
//	CreatedAt    – registration timestamp.
type Account struct {
	Username     string    // accounts.username
	PasswordHash string    // accounts.password_hash
	Role         Role      // accounts.role
	IsLoggedIn   bool      // accounts.is_logged_in
	CreatedAt    time.Time // accounts.created_at
}
