package services

import (
	"errors"
	"strings"
	"testing"

	accountdomain "github.com/ghuser/crochestock/services/account/domain"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"three chars", "ana", false},
		{"accented", "josé", false},
		{"too short", "ab", true},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"inner space", "ana maria", true},
		{"tab", "ana\tm", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if tt.wantErr {
				if !errors.Is(err, accountdomain.ErrInvalidUsername) {
					t.Fatalf("expected ErrInvalidUsername, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"six chars", "secret", false},
		{"five chars", "short", true},
		{"72 bytes", strings.Repeat("x", 72), false},
		{"73 bytes", strings.Repeat("x", 73), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.input)
			if tt.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, accountdomain.ErrInvalidPassword) {
				t.Fatalf("expected ErrInvalidPassword, got %v", err)
			}
		})
	}
}

func TestValidateDisplayName(t *testing.T) {
	if err := ValidateDisplayName("Ana"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "   ", strings.Repeat("n", 256)} {
		if err := ValidateDisplayName(bad); !errors.Is(err, accountdomain.ErrInvalidDisplayName) {
			t.Errorf("%q: expected ErrInvalidDisplayName, got %v", bad, err)
		}
	}
}
