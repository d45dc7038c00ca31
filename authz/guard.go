package authz

import (
	"context"
	"fmt"

	"github.com/kbukum/clinic/auth"
)

// ResourceType names an owned record kind.
type ResourceType string

const (
	ResourceAppointment  ResourceType = "appointment"
	ResourcePrescription ResourceType = "prescription"
)

// Action is what the principal wants to do with a resource. Ownership
// checks give the same answer for every action; route-level gating is
// where actions differ.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Permission renders the "resource:action" string checked by a Checker.
func Permission(resource string, action Action) string {
	return resource + ":" + string(action)
}

// Owners is the ownership relation of a record.
type Owners struct {
	PatientID int64
	DoctorID  int64
}

// OwnerLoader looks up who owns a record. ok is false when the record does
// not exist.
type OwnerLoader interface {
	LoadOwners(ctx context.Context, rt ResourceType, id int64) (owners Owners, ok bool, err error)
}

// OwnerLoaderFunc adapts a function to OwnerLoader.
type OwnerLoaderFunc func(ctx context.Context, rt ResourceType, id int64) (Owners, bool, error)

func (f OwnerLoaderFunc) LoadOwners(ctx context.Context, rt ResourceType, id int64) (Owners, bool, error) {
	return f(ctx, rt, id)
}

// Guard holds the authorization rules. It keeps no per-request state.
type Guard struct {
	owners  OwnerLoader
	checker Checker
}

// NewGuard creates a guard. A nil checker uses DefaultPermissions.
func NewGuard(owners OwnerLoader, checker Checker) *Guard {
	if checker == nil {
		checker = NewMapChecker(DefaultPermissions())
	}
	return &Guard{owners: owners, checker: checker}
}

// RequireRole fails with auth.ErrWrongRole unless p has role.
func (g *Guard) RequireRole(p auth.Principal, role auth.Role) (auth.Principal, error) {
	if p.Role != role {
		return auth.Principal{}, fmt.Errorf("%w: %s requires %s", auth.ErrWrongRole, p.Ref(), role)
	}
	return p, nil
}

// RequirePatient narrows p to a patient.
func (g *Guard) RequirePatient(p auth.Principal) (auth.Patient, error) {
	pt, ok := auth.AsPatient(p)
	if !ok {
		return auth.Patient{}, fmt.Errorf("%w: %s is not a patient", auth.ErrWrongRole, p.Ref())
	}
	return pt, nil
}

// RequireDoctor narrows p to a doctor.
func (g *Guard) RequireDoctor(p auth.Principal) (auth.Doctor, error) {
	d, ok := auth.AsDoctor(p)
	if !ok {
		return auth.Doctor{}, fmt.Errorf("%w: %s is not a doctor", auth.ErrWrongRole, p.Ref())
	}
	return d, nil
}

// RequirePermission fails with auth.ErrWrongRole unless p's role is granted
// permission by the checker.
func (g *Guard) RequirePermission(p auth.Principal, permission string) error {
	if !g.checker.HasPermission(p.Role, permission) {
		return fmt.Errorf("%w: %s lacks %s", auth.ErrWrongRole, p.Ref(), permission)
	}
	return nil
}

// AuthorizeResourceAccess allows a patient that is the record's patient and
// a doctor that is the record's doctor. Anything else is auth.ErrForbidden.
func (g *Guard) AuthorizeResourceAccess(p auth.Principal, owners Owners, action Action) error {
	var allowed bool
	switch p.Role {
	case auth.RolePatient:
		allowed = p.ID == owners.PatientID
	case auth.RoleDoctor:
		allowed = p.ID == owners.DoctorID
	}
	if !allowed {
		return fmt.Errorf("%w: %s may not %s", auth.ErrForbidden, p.Ref(), action)
	}
	return nil
}

// Access loads the owners of a record and authorizes p against them. A
// missing record is auth.ErrNotFound.
func (g *Guard) Access(ctx context.Context, p auth.Principal, rt ResourceType, id int64, action Action) (Owners, error) {
	owners, ok, err := g.owners.LoadOwners(ctx, rt, id)
	if err != nil {
		return Owners{}, fmt.Errorf("authz: load %s %d owners: %w", rt, id, err)
	}
	if !ok {
		return Owners{}, fmt.Errorf("%w: %s %d", auth.ErrNotFound, rt, id)
	}
	if err := g.AuthorizeResourceAccess(p, owners, action); err != nil {
		return Owners{}, fmt.Errorf("%s %d: %w", rt, id, err)
	}
	return owners, nil
}

// AuthorizeSelf allows p to act on the account at pathID only when that
// account is p itself.
func (g *Guard) AuthorizeSelf(p auth.Principal, role auth.Role, pathID int64) error {
	if p.Role != role || p.ID != pathID {
		return fmt.Errorf("%w: %s may not manage %s", auth.ErrForbidden, p.Ref(), auth.Ref{Role: role, ID: pathID})
	}
	return nil
}
