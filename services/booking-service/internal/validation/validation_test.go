package validation

import (
	"errors"
	"testing"
)

type customer struct {
	Name  string `json:"name" validate:"required,min=1"`
	Email string `json:"email" validate:"required,email"`
}

type booking struct {
	ServiceID string   `json:"serviceId" validate:"required,uuid"`
	Slot      string   `json:"slot" validate:"required,rfc3339"`
	Slug      string   `json:"slug" validate:"omitempty,slug"`
	Timezone  string   `json:"timezone" validate:"omitempty,timezone"`
	Customer  customer `json:"customer"`
}

func TestStructCollectsFieldErrors(t *testing.T) {
	v := NewValidator()
	err := v.Struct(booking{
		ServiceID: "not-a-uuid",
		Slot:      "tomorrow",
		Slug:      "Bad Slug",
		Timezone:  "Mars/Olympus",
		Customer:  customer{Email: "nope"},
	})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Field] = f.Message
	}
	for _, field := range []string{"serviceId", "slot", "slug", "timezone", "customer.name", "customer.email"} {
		if got[field] == "" {
			t.Fatalf("expected error for %s, got %v", field, got)
		}
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	v := NewValidator()
	err := v.Struct(booking{
		ServiceID: "0b6c1c1e-7a55-4d0e-9a3c-7f1d2a000002",
		Slot:      "2030-01-15T14:00:00.000Z",
		Slug:      "test-dental",
		Timezone:  "America/New_York",
		Customer:  customer{Name: "Ada", Email: "ada@example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseSlot(t *testing.T) {
	if _, err := ParseSlot("slot", "2030-01-15T14:00:00+01:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var verr *Error
	if _, err := ParseSlot("slot", "2030-01-15 14:00"); !errors.As(err, &verr) || verr.Fields[0].Field != "slot" {
		t.Fatalf("expected field error, got %v", err)
	}
}

func TestTimezoneRule(t *testing.T) {
	for _, tz := range []string{"America/New_York", "Europe/Berlin", "UTC"} {
		if !ValidTimezone(tz) {
			t.Fatalf("expected %q to be accepted", tz)
		}
	}
	for _, tz := range []string{"Local", "local", "", "Mars/Olympus"} {
		if ValidTimezone(tz) {
			t.Fatalf("expected %q to be rejected", tz)
		}
	}

	v := NewValidator()
	err := v.Struct(booking{
		ServiceID: "0b6c1c1e-7a55-4d0e-9a3c-7f1d2a000002",
		Slot:      "2030-01-15T14:00:00Z",
		Timezone:  "Local",
		Customer:  customer{Name: "Ada", Email: "ada@example.com"},
	})
	var verr *Error
	if !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0].Field != "timezone" {
		t.Fatalf("expected a timezone field error, got %v", err)
	}
}
