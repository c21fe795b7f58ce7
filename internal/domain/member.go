package domain

import "time"

// Permission names checked by the engine before privileged operations.
const (
	PermPropose     = "canPropose"
	PermApprove     = "canApprove"
	PermExecute     = "canExecute"
	PermManageRoles = "canManageRoles"
	PermRunElection = "canRunElection"
	PermVote        = "canVote"
)

// Role names assignable to members.
const (
	RoleAdmin           = "admin"
	RoleTreasurer       = "treasurer"
	RoleApprover        = "approver"
	RoleElectionOfficer = "electionOfficer"
	RoleVoter           = "voter"
)

// rolePermissions maps each role to the permission bundle it grants.
// Roles are immutable value objects identified by name.
var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermPropose, PermApprove, PermExecute,
		PermManageRoles, PermRunElection, PermVote,
	},
	RoleTreasurer:       {PermPropose, PermExecute, PermVote},
	RoleApprover:        {PermApprove, PermVote},
	RoleElectionOfficer: {PermRunElection, PermVote},
	RoleVoter:           {PermVote},
}

// KnownRole reports whether name is a recognized role.
func KnownRole(name string) bool {
	_, ok := rolePermissions[name]
	return ok
}

// RoleGrants reports whether the named role grants the given permission.
func RoleGrants(role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Member represents an identity within a team. The address is the stable
// identifier; the role set is mutated only through the entitlement registry.
type Member struct {
	Address     string    `json:"address"`
	TeamID      int       `json:"team_id"`
	DisplayName string    `json:"display_name"`
	Roles       []string  `json:"roles"`
	JoinedAt    time.Time `json:"joined_at"`
}

// HasRole reports whether the member currently holds the named role.
func (m *Member) HasRole(role string) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}
