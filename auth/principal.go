package auth

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is the discriminant of a Principal.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

func (r Role) String() string { return string(r) }

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("auth: unknown role %q", s)
	}
	return r, nil
}

// Ref identifies a principal. Patients and doctors have separate id spaces,
// so the role is part of the identity.
type Ref struct {
	Role Role
	ID   int64
}

// String renders the ref as "role:id".
func (r Ref) String() string {
	return string(r.Role) + ":" + strconv.FormatInt(r.ID, 10)
}

// ParseRef parses the "role:id" form produced by Ref.String.
func ParseRef(s string) (Ref, error) {
	role, id, ok := strings.Cut(s, ":")
	if !ok {
		return Ref{}, fmt.Errorf("auth: malformed principal ref %q", s)
	}
	r, err := ParseRole(role)
	if err != nil {
		return Ref{}, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return Ref{}, fmt.Errorf("auth: malformed principal id in %q", s)
	}
	return Ref{Role: r, ID: n}, nil
}

// Principal is an authenticated identity.
type Principal struct {
	ID           int64  `json:"id"`
	Role         Role   `json:"role"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Ref returns the principal's identity.
func (p Principal) Ref() Ref {
	return Ref{Role: p.Role, ID: p.ID}
}

// Patient is a principal known to have RolePatient.
type Patient struct {
	p Principal
}

// AsPatient narrows p. It fails for any other role.
func AsPatient(p Principal) (Patient, bool) {
	if p.Role != RolePatient {
		return Patient{}, false
	}
	return Patient{p: p}, true
}

func (p Patient) ID() int64            { return p.p.ID }
func (p Patient) Principal() Principal { return p.p }

// Doctor is a principal known to have RoleDoctor.
type Doctor struct {
	p Principal
}

// AsDoctor narrows p. It fails for any other role.
func AsDoctor(p Principal) (Doctor, bool) {
	if p.Role != RoleDoctor {
		return Doctor{}, false
	}
	return Doctor{p: p}, true
}

func (d Doctor) ID() int64            { return d.p.ID }
func (d Doctor) Principal() Principal { return d.p }
