// Package policy implements the user-facing permission gate described by
// execute_with_policy: an operation that calls Require checks the
// permission list carried on a JWT-authenticated user's Policy before its
// handler does any work. The schedule create/update/delete commands call
// Require; the calendar and event commands do not, so their permissions
// are declared here but not checked.
package policy

import (
	"context"

	"github.com/nitro-scheduler/nitro/internal/shared/apperror"
)

// Permission names one action a Policy may grant.
type Permission string

const (
	CreateCalendar      Permission = "create_calendar"
	DeleteCalendar      Permission = "delete_calendar"
	UpdateCalendar      Permission = "update_calendar"
	CreateCalendarEvent Permission = "create_calendar_event"
	DeleteCalendarEvent Permission = "delete_calendar_event"
	UpdateCalendarEvent Permission = "update_calendar_event"
	CreateSchedule      Permission = "create_schedule"
	UpdateSchedule      Permission = "update_schedule"
	DeleteSchedule      Permission = "delete_schedule"
)

// Policy is the set of permissions granted to an authenticated user. A nil
// or zero Policy grants nothing; admin (x-api-key) callers bypass policy
// checks entirely and never construct one.
type Policy struct {
	permissions map[Permission]struct{}
}

// New builds a Policy from a permission list, such as one decoded from a
// JWT's policy claim.
func New(permissions []Permission) Policy {
	p := Policy{permissions: make(map[Permission]struct{}, len(permissions))}
	for _, perm := range permissions {
		p.permissions[perm] = struct{}{}
	}
	return p
}

// Allows reports whether the policy grants perm.
func (p Policy) Allows(perm Permission) bool {
	if p.permissions == nil {
		return false
	}
	_, ok := p.permissions[perm]
	return ok
}

// contextKey is unexported so only this package can stamp/extract policy.
type contextKey struct{}

// WithContext attaches p to ctx.
func WithContext(ctx context.Context, p Policy) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext extracts the Policy stamped on ctx. The second return value
// is false when the caller is an admin (API-key) request that never had a
// policy attached, meaning every permission is implicitly granted.
func FromContext(ctx context.Context) (Policy, bool) {
	p, ok := ctx.Value(contextKey{}).(Policy)
	return p, ok
}

// Require checks perm against the Policy on ctx, returning nil when the
// caller is an admin request (no policy attached) or when the attached
// policy grants perm, and an apperror.Unauthorized otherwise.
func Require(ctx context.Context, perm Permission) error {
	p, attached := FromContext(ctx)
	if !attached {
		return nil
	}
	if !p.Allows(perm) {
		return apperror.Unauthorized("policy: permission denied", errPermissionDenied{perm})
	}
	return nil
}

type errPermissionDenied struct{ perm Permission }

func (e errPermissionDenied) Error() string {
	return "missing permission: " + string(e.perm)
}
