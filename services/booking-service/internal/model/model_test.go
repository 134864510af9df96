package model

import (
	"testing"
	"time"
)

func TestConfirmationNumber(t *testing.T) {
	b := Booking{ID: "3f2a9c1e-1111-2222-3333-444455556666"}
	if got := b.ConfirmationNumber(); got != "3F2A9C1E" {
		t.Fatalf("expected 3F2A9C1E, got %q", got)
	}
	if got := ConfirmationNumber("nodash"); got != "NODASH" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestStatusBlocking(t *testing.T) {
	cases := map[BookingStatus]bool{
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: false,
		StatusCompleted: false,
	}
	for status, want := range cases {
		if got := status.Blocking(); got != want {
			t.Fatalf("%s: expected %v, got %v", status, want, got)
		}
	}
}

func TestCompanyLocationFallsBackToUTC(t *testing.T) {
	if loc := (Company{Timezone: "Not/AZone"}).Location(); loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
	if loc := (Company{}).Location(); loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
	if loc := (Company{Timezone: "Europe/Berlin"}).Location(); loc.String() != "Europe/Berlin" {
		t.Fatalf("expected Europe/Berlin, got %v", loc)
	}
}

func TestServiceDuration(t *testing.T) {
	if d := (Service{DurationMinutes: 45}).Duration(); d != 45*time.Minute {
		t.Fatalf("unexpected duration %s", d)
	}
}
