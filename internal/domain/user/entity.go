package user

import "context"

type Role string

const (
	RoleEmployee Role = "Employee" // Regular employee
	RoleHOD      Role = "HOD"      // Head of department - first approver
	RoleAdmin    Role = "Admin"    // HR administration - permission and acknowledgement stages
	RoleCEO      Role = "CEO"      // Final approver
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleHOD, RoleAdmin, RoleCEO:
		return true
	}
	return false
}

// Rank orders roles along the approval hierarchy. Admin sits outside the
// hierarchy and ranks like an employee.
func (r Role) Rank() int {
	switch r {
	case RoleHOD:
		return 1
	case RoleCEO:
		return 2
	default:
		return 0
	}
}

// Actor is the authenticated principal supplied by the auth middleware.
type Actor struct {
	EmployeeID string
	Role       Role
}

// IsApprover checks if the actor can act on any approval stage
func (a Actor) IsApprover() bool {
	return a.Role == RoleHOD || a.Role == RoleAdmin || a.Role == RoleCEO
}

type actorKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
