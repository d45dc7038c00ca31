// Package authz decides what an authenticated principal may do.
//
// Two layers are provided. Route-level gating asks whether a role may use an
// operation at all, through a Checker of "resource:action" patterns:
//
//	checker := authz.NewMapChecker(map[auth.Role][]string{
//	    auth.RoleDoctor:  {"prescription:*", "appointment:read"},
//	    auth.RolePatient: {"appointment:create", "*:read"},
//	})
//
// Resource-level checks ask whether the principal owns a specific record.
// Ownership is decided from the principal's id and role and the record's
// owning patient and doctor only:
//
//	guard := authz.NewGuard(repo, checker)
//	owners, err := guard.Access(ctx, p, authz.ResourceAppointment, id, authz.ActionRead)
package authz
