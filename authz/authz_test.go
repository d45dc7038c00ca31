package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/clinic/auth"
)

func patient(id int64) auth.Principal {
	return auth.Principal{ID: id, Role: auth.RolePatient}
}

func doctor(id int64) auth.Principal {
	return auth.Principal{ID: id, Role: auth.RoleDoctor}
}

var allActions = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern, required string
		want              bool
	}{
		{"*:*", "prescription:delete", true},
		{"*", "anything", true},
		{"prescription:*", "prescription:read", true},
		{"prescription:*", "appointment:read", false},
		{"*:read", "appointment:read", true},
		{"*:read", "appointment:update", false},
		{"doctor:list", "doctor:list", true},
		{"doctor:list", "doctor:lists", false},
		{"doctor", "doctor:list", false},
		{"", "doctor:list", false},
	}
	for _, tt := range tests {
		if got := MatchPattern(tt.pattern, tt.required); got != tt.want {
			t.Errorf("MatchPattern(%q, %q) = %v, want %v", tt.pattern, tt.required, got, tt.want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	g := NewGuard(nil, nil)

	if _, err := g.RequireRole(patient(1), auth.RolePatient); err != nil {
		t.Errorf("patient as patient: %v", err)
	}
	if _, err := g.RequireRole(patient(1), auth.RoleDoctor); !errors.Is(err, auth.ErrWrongRole) {
		t.Errorf("patient as doctor: %v, want ErrWrongRole", err)
	}
	if pt, err := g.RequirePatient(patient(3)); err != nil || pt.ID() != 3 {
		t.Errorf("RequirePatient = %v, %v", pt, err)
	}
	if _, err := g.RequirePatient(doctor(3)); !errors.Is(err, auth.ErrWrongRole) {
		t.Errorf("RequirePatient(doctor) = %v", err)
	}
	if d, err := g.RequireDoctor(doctor(4)); err != nil || d.ID() != 4 {
		t.Errorf("RequireDoctor = %v, %v", d, err)
	}
	if _, err := g.RequireDoctor(patient(4)); !errors.Is(err, auth.ErrWrongRole) {
		t.Errorf("RequireDoctor(patient) = %v", err)
	}
}

func TestRequirePermission(t *testing.T) {
	g := NewGuard(nil, nil)
	tests := []struct {
		p          auth.Principal
		permission string
		allowed    bool
	}{
		{patient(1), "doctor:list", true},
		{patient(1), "appointment:create", true},
		{patient(1), "appointment:update", false},
		{patient(1), "prescription:create", false},
		{patient(1), "medication:read", false},
		{doctor(1), "prescription:create", true},
		{doctor(1), "appointment:delete", true},
		{doctor(1), "medication:create", true},
		{doctor(1), "doctor:list", false},
		{auth.Principal{ID: 1, Role: "admin"}, "appointment:read", false},
	}
	for _, tt := range tests {
		err := g.RequirePermission(tt.p, tt.permission)
		if tt.allowed && err != nil {
			t.Errorf("%s %s: %v", tt.p.Ref(), tt.permission, err)
		}
		if !tt.allowed && !errors.Is(err, auth.ErrWrongRole) {
			t.Errorf("%s %s: got %v, want ErrWrongRole", tt.p.Ref(), tt.permission, err)
		}
	}
}

func TestAuthorizeResourceAccess_Matrix(t *testing.T) {
	g := NewGuard(nil, nil)
	owners := Owners{PatientID: 10, DoctorID: 20}

	tests := []struct {
		name    string
		p       auth.Principal
		allowed bool
	}{
		{"owning patient", patient(10), true},
		{"other patient", patient(11), false},
		{"owning doctor", doctor(20), true},
		{"other doctor", doctor(21), false},
		// Same number, other id space.
		{"patient with doctor's id", patient(20), false},
		{"doctor with patient's id", doctor(10), false},
		{"unknown role", auth.Principal{ID: 10, Role: "admin"}, false},
	}
	for _, tt := range tests {
		for _, action := range allActions {
			err := g.AuthorizeResourceAccess(tt.p, owners, action)
			if tt.allowed && err != nil {
				t.Errorf("%s %s: %v", tt.name, action, err)
			}
			if !tt.allowed && !errors.Is(err, auth.ErrForbidden) {
				t.Errorf("%s %s: got %v, want ErrForbidden", tt.name, action, err)
			}
		}
	}
}

func TestAccess(t *testing.T) {
	// Appointment 1: patient A(1) with doctor B(2).
	// Appointment 2: patient C(3) with doctor D(4).
	records := map[int64]Owners{
		1: {PatientID: 1, DoctorID: 2},
		2: {PatientID: 3, DoctorID: 4},
	}
	loader := OwnerLoaderFunc(func(_ context.Context, rt ResourceType, id int64) (Owners, bool, error) {
		if rt != ResourceAppointment {
			return Owners{}, false, nil
		}
		o, ok := records[id]
		return o, ok, nil
	})
	g := NewGuard(loader, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		p    auth.Principal
		id   int64
		want error
	}{
		{"A reads own", patient(1), 1, nil},
		{"C reads A's", patient(3), 1, auth.ErrForbidden},
		{"B reads own", doctor(2), 1, nil},
		{"D reads A's", doctor(4), 1, auth.ErrForbidden},
		{"D reads C's", doctor(4), 2, nil},
		{"A reads missing", patient(1), 99, auth.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owners, err := g.Access(ctx, tt.p, ResourceAppointment, tt.id, ActionRead)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Access: %v", err)
				}
				if owners != records[tt.id] {
					t.Errorf("owners = %+v", owners)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Access = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := g.Access(ctx, patient(1), ResourcePrescription, 1, ActionRead); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("prescription lookup = %v, want ErrNotFound", err)
	}
}

func TestAccess_LoaderFailure(t *testing.T) {
	boom := errors.New("db down")
	g := NewGuard(OwnerLoaderFunc(func(context.Context, ResourceType, int64) (Owners, bool, error) {
		return Owners{}, false, boom
	}), nil)
	_, err := g.Access(context.Background(), patient(1), ResourceAppointment, 1, ActionRead)
	if !errors.Is(err, boom) || errors.Is(err, auth.ErrNotFound) || errors.Is(err, auth.ErrForbidden) {
		t.Errorf("Access = %v", err)
	}
}

func TestAuthorizeSelf(t *testing.T) {
	g := NewGuard(nil, nil)
	tests := []struct {
		name    string
		p       auth.Principal
		role    auth.Role
		pathID  int64
		allowed bool
	}{
		{"patient self", patient(5), auth.RolePatient, 5, true},
		{"patient other", patient(5), auth.RolePatient, 6, false},
		{"doctor self", doctor(5), auth.RoleDoctor, 5, true},
		{"doctor on patient path", doctor(5), auth.RolePatient, 5, false},
		{"patient on doctor path", patient(5), auth.RoleDoctor, 5, false},
	}
	for _, tt := range tests {
		err := g.AuthorizeSelf(tt.p, tt.role, tt.pathID)
		if tt.allowed && err != nil {
			t.Errorf("%s: %v", tt.name, err)
		}
		if !tt.allowed && !errors.Is(err, auth.ErrForbidden) {
			t.Errorf("%s: got %v, want ErrForbidden", tt.name, err)
		}
	}
}

func TestCheckerFunc(t *testing.T) {
	var c Checker = CheckerFunc(func(role auth.Role, permission string) bool {
		return role == auth.RoleDoctor && permission == "x:y"
	})
	g := NewGuard(nil, c)
	if err := g.RequirePermission(doctor(1), "x:y"); err != nil {
		t.Errorf("custom checker: %v", err)
	}
	if err := g.RequirePermission(doctor(1), "prescription:read"); err == nil {
		t.Error("custom checker should replace the default table")
	}
}
