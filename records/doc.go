// Package records persists patients, doctors, medications, appointments and
// prescriptions with GORM.
//
// Repository is also the persistence side of authentication: it implements
// auth.Authenticator, auth.PrincipalLoader and authz.OwnerLoader.
//
// The schema ships as golang-migrate files per driver under migrations/;
// Migrations returns the set for a database.driver value.
package records
