package rbac

import "strings"

// Role is a staff role from the fixed closed set.
type Role string

// Closed role set, lowest to highest. Higher roles inherit every
// permission of the roles below them; admin has unconditional access.
const (
	RoleSocialWorker   Role = "social_worker"
	RoleRehabWorker    Role = "rehab_worker"
	RoleCareTaker      Role = "care_taker"
	RoleNurse          Role = "nurse"
	RoleMedicalOfficer Role = "medical_officer"
	RoleTherapist      Role = "therapist"
	RolePsychologist   Role = "psychologist"
	RolePsychiatrist   Role = "psychiatrist"
	RoleAdmin          Role = "admin"
)

// Hierarchy lists all roles in rank order. The slice index is the rank.
var Hierarchy = []Role{
	RoleSocialWorker,
	RoleRehabWorker,
	RoleCareTaker,
	RoleNurse,
	RoleMedicalOfficer,
	RoleTherapist,
	RolePsychologist,
	RolePsychiatrist,
	RoleAdmin,
}

// Normalize lowercases and trims a raw role string.
func Normalize(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// Rank returns the position of a role in the hierarchy, or -1 when the
// role is not part of the closed set.
func Rank(role Role) int {
	for i, r := range Hierarchy {
		if r == role {
			return i
		}
	}
	return -1
}

// Subject carries the profile fields access decisions depend on.
// Role holds the current single value; Roles carries the legacy list
// shape still present on older profiles.
type Subject struct {
	UID         string
	DisplayName string
	Role        string
	Roles       []string
}

// RoleOf resolves the effective role of a subject. A recognized single
// role wins; otherwise the highest-ranked entry of the legacy list is
// used. Unrecognized values are ignored and the lowest role is the
// fallback, so the answer is always a member of the hierarchy.
func RoleOf(s Subject) Role {
	if single := Normalize(s.Role); Rank(single) >= 0 {
		return single
	}

	best := RoleSocialWorker
	maxRank := -1
	for _, raw := range s.Roles {
		r := Normalize(raw)
		if rank := Rank(r); rank > maxRank {
			maxRank = rank
			best = r
		}
	}
	return best
}
