package models

import (
	"errors"
	"math"
	"testing"

	itemdomain "github.com/ghuser/crochestock/services/item/domain"
)

func TestCentsFromMajor(t *testing.T) {
	tests := []struct {
		name    string
		in      float64
		want    Cents
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"whole", 12, 1200, false},
		{"two decimals", 12.5, 1250, false},
		{"binary drift rounds up", 19.99, 1999, false},
		{"binary drift rounds down", 0.07, 7, false},
		{"half cent rounds away from zero", 0.125, 13, false},
		{"sub cent rounds down", 0.004, 0, false},
		{"negative", -0.01, 0, true},
		{"NaN", math.NaN(), 0, true},
		{"+Inf", math.Inf(1), 0, true},
		{"max price", 1e10, MaxUnitPrice, false},
		{"one cent above max price", 1e10 + 0.01, 0, true},
		{"overflow", 1e17, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CentsFromMajor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CentsFromMajor(%v) error = %v, wantErr = %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, itemdomain.ErrInvalidPrice) {
					t.Fatalf("expected ErrInvalidPrice, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("CentsFromMajor(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCents_MajorAndString(t *testing.T) {
	c := Cents(1205)
	if c.Major() != 12.05 {
		t.Errorf("Major: got %v", c.Major())
	}
	if c.String() != "12.05" {
		t.Errorf("String: got %q", c.String())
	}
	if Cents(7).String() != "0.07" {
		t.Errorf("String: got %q", Cents(7).String())
	}
	if Cents(-150).String() != "-1.50" {
		t.Errorf("String: got %q", Cents(-150).String())
	}
}

func TestCents_TimesPlus(t *testing.T) {
	if got, err := Cents(1250).Times(3); err != nil || got != 3750 {
		t.Fatalf("Times: got %d, %v", got, err)
	}
	if got, err := Cents(1250).Plus(50); err != nil || got != 1300 {
		t.Fatalf("Plus: got %d, %v", got, err)
	}
	if got, err := Cents(math.MaxInt64).Times(1); err != nil || got != math.MaxInt64 {
		t.Fatalf("Times at max: got %d, %v", got, err)
	}

	overflows := map[string]func() (Cents, error){
		"times":          func() (Cents, error) { return Cents(math.MaxInt64/2 + 1).Times(2) },
		"times large":    func() (Cents, error) { return MaxUnitPrice.Times(MaxQuantity) },
		"plus":           func() (Cents, error) { return Cents(math.MaxInt64).Plus(1) },
		"negative times": func() (Cents, error) { return Cents(-1).Times(2) },
		"negative plus":  func() (Cents, error) { return Cents(1).Plus(-1) },
	}
	for name, fn := range overflows {
		t.Run(name, func(t *testing.T) {
			if _, err := fn(); !errors.Is(err, itemdomain.ErrValueOverflow) {
				t.Fatalf("expected ErrValueOverflow, got %v", err)
			}
		})
	}
}
