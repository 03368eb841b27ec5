package entities

import "strings"

// CallerRole identifies who is asking. It governs knowledge-base access.
type CallerRole string

const (
	RoleDoctor  CallerRole = "doctor"
	RolePatient CallerRole = "patient"
)

// RoleFor derives the caller role from the optional doctor identifier.
func RoleFor(doctorID string) CallerRole {
	if strings.TrimSpace(doctorID) != "" {
		return RoleDoctor
	}
	return RolePatient
}

// CanAccessKnowledge reports whether the role may receive knowledge-base content.
func (r CallerRole) CanAccessKnowledge() bool {
	return r == RoleDoctor
}
