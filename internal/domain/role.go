package domain

import "strings"

// Role identifies the newsroom position of an actor.
type Role string

const (
	RoleIntern    Role = "intern"
	RoleReporter  Role = "reporter"
	RoleCopy      Role = "copy"
	RoleModerator Role = "moderator"
	RoleAnalyst   Role = "analyst"
	RoleEditor    Role = "editor"
	RoleAdmin     Role = "admin"
	RoleFounder   Role = "founder"
)

// roleRank holds the fixed total order used for minimum-role checks.
var roleRank = map[Role]int{
	RoleIntern:    1,
	RoleReporter:  2,
	RoleCopy:      3,
	RoleModerator: 4,
	RoleAnalyst:   5,
	RoleEditor:    6,
	RoleAdmin:     7,
	RoleFounder:   8,
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(input string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(input)))
	if _, ok := roleRank[role]; !ok {
		return "", false
	}
	return role, true
}

// IsValid reports whether the role belongs to the closed role set.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank returns the position of the role in the total order, or zero for
// unknown roles.
func (r Role) Rank() int {
	return roleRank[r]
}

// Satisfies reports whether r ranks at or above min. Unknown roles never
// satisfy anything.
func (r Role) Satisfies(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[min]
	if !ok {
		return false
	}
	return have >= want
}

func (r Role) String() string {
	return string(r)
}
