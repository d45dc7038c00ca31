package authctx

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/clinic/auth"
)

func TestPrincipalRoundTrip(t *testing.T) {
	p := auth.Principal{ID: 3, Role: auth.RoleDoctor, Email: "house@clinic.test"}
	ctx := WithPrincipal(context.Background(), p)

	got, ok := Principal(ctx)
	if !ok || got != p {
		t.Fatalf("Principal() = %+v, %v", got, ok)
	}
	if _, err := PrincipalOrError(ctx); err != nil {
		t.Errorf("PrincipalOrError: %v", err)
	}
}

func TestPrincipalMissing(t *testing.T) {
	if _, ok := Principal(context.Background()); ok {
		t.Error("expected no principal")
	}
	if _, err := PrincipalOrError(context.Background()); !errors.Is(err, ErrNoPrincipal) {
		t.Errorf("err = %v, want ErrNoPrincipal", err)
	}
}

func TestToken(t *testing.T) {
	if Token(context.Background()) != "" {
		t.Error("expected empty token")
	}
	ctx := WithToken(context.Background(), "abc.def.ghi")
	if Token(ctx) != "abc.def.ghi" {
		t.Errorf("Token() = %q", Token(ctx))
	}
}
