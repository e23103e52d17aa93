package guard

import (
	"errors"
	"testing"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/model"
)

func TestOwner(t *testing.T) {
	if err := Owner("post", 1, 1); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}

	err := Owner("post", 1, 2)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAdmin(t *testing.T) {
	admin := &model.User{Role: model.RoleAdmin}
	if err := Admin(admin); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}

	student := &model.User{Role: model.RoleStudent}
	if err := Admin(student); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for student, got %v", err)
	}
	if err := Admin(nil); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for nil user, got %v", err)
	}
}
