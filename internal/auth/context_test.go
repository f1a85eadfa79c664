package auth

import (
	"context"
	"testing"
)

func TestWithAuthRoundTrip(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 42, Email: "alice@example.com", SessionID: 7})

	ac, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if ac.UserID != 42 || ac.Email != "alice@example.com" || ac.SessionID != 7 {
		t.Errorf("auth context = %+v", ac)
	}
}

func TestEmptyContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected no auth context")
	}
	if UserID(context.Background()) != 0 {
		t.Error("UserID should be 0 for unauthenticated context")
	}
	if Email(context.Background()) != "" {
		t.Error("Email should be empty for unauthenticated context")
	}
}
