package security

import (
	"errors"
	"testing"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "secret1" {
		t.Fatal("password stored in plain text")
	}
	if err = CheckPasswordHash("secret1", hash); err != nil {
		t.Fatalf("matching password rejected: %v", err)
	}
	if err = CheckPasswordHash("secret2", hash); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
