// Package policy centralizes resource authorization decisions. Policies are
// pure functions of the principal and the resource; handlers and services map
// a denial to a Forbidden outcome (distinct from NotFound, so an unauthorized
// caller learns that the resource exists but not its contents).
package policy

import (
	"context"

	"github.com/diewo77/factura/auth"
)

// Action describes the kind of operation a principal wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// Ownable is implemented by resources owned by a client. Implement this on
// models to enable ownership-based authorization.
type Ownable interface {
	GetClientID() uint
}

// Policy decides whether a principal may perform an action on a resource.
type Policy interface {
	Can(ctx context.Context, p auth.Principal, action Action, resource any) bool
}

// OwnershipPolicy allows a client principal to act only on resources it owns.
// For list/create (resource is nil) it returns true; listing is separately
// scoped to the owner by the query layer.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates a new ownership policy.
func NewOwnershipPolicy() *OwnershipPolicy { return &OwnershipPolicy{} }

// Can checks if the principal owns the resource.
func (p *OwnershipPolicy) Can(_ context.Context, pr auth.Principal, _ Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		// Resources without an ownership notion are denied by default so a
		// missing GetClientID implementation cannot open a hole.
		return false
	}
	return pr.Kind == auth.KindClient && ownable.GetClientID() == pr.ID
}

// AdminBypassPolicy wraps another policy and always allows administrators.
type AdminBypassPolicy struct {
	inner Policy
}

// NewAdminBypassPolicy creates a policy that bypasses the inner check for
// admin principals.
func NewAdminBypassPolicy(inner Policy) *AdminBypassPolicy {
	return &AdminBypassPolicy{inner: inner}
}

// Can allows admins unconditionally, otherwise falls back to the inner policy.
func (p *AdminBypassPolicy) Can(ctx context.Context, pr auth.Principal, action Action, resource any) bool {
	if pr.IsAdmin() {
		return true
	}
	return p.inner.Can(ctx, pr, action, resource)
}

// Invoices returns the policy applied to invoice resources: admins see
// everything, clients only what they own.
func Invoices() Policy {
	return NewAdminBypassPolicy(NewOwnershipPolicy())
}
