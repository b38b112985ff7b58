package utils

import (
	"context"
	"testing"

	"github.com/narahq/nara-chat/models"
)

func TestGetUserFromContext(t *testing.T) {
	want := models.User{UserID: 7, SubjectID: "user-uuid-7", Email: "user@example.com"}
	ctx := context.WithValue(context.Background(), UserCtxKey, want)

	got, ok := GetUserFromContext(ctx)

	if !ok {
		t.Fatal("expected user to be present in context")
	}
	if got != want {
		t.Errorf("expected user %+v, got %+v", want, got)
	}
}

func TestGetUserFromContext_Missing(t *testing.T) {
	if _, ok := GetUserFromContext(context.Background()); ok {
		t.Error("expected no user in empty context")
	}
}
