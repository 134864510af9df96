package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/md-rashed-zaman/agentbook/libs/bookingapi"
	"github.com/md-rashed-zaman/agentbook/libs/config"
	"github.com/md-rashed-zaman/agentbook/libs/widget"
)

type bookOptions struct {
	company string
	service string
	slot    string
	name    string
	email   string
	phone   string
}

// pickService matches by id first, then by case-insensitive name. Empty picks the first.
func pickService(services []bookingapi.Service, want string) (bookingapi.Service, error) {
	if len(services) == 0 {
		return bookingapi.Service{}, errors.New("company has no active services")
	}
	if want == "" {
		return services[0], nil
	}
	for _, s := range services {
		if s.ID == want {
			return s, nil
		}
	}
	for _, s := range services {
		if strings.EqualFold(s.Name, want) {
			return s, nil
		}
	}
	return bookingapi.Service{}, fmt.Errorf("no service matches %q", want)
}

// book walks the widget from service selection to confirmation.
func book(ctx context.Context, client *bookingapi.Client, opts bookOptions, out io.Writer) (widget.State, error) {
	cat, err := client.Services(ctx, opts.company)
	if err != nil {
		return widget.State{}, err
	}
	svc, err := pickService(cat.Services, opts.service)
	if err != nil {
		return widget.State{}, err
	}

	w := widget.New(client, opts.company, cat.Services)
	if err := w.SelectService(ctx, svc.ID); err != nil {
		return w.GetState(), err
	}
	st := w.GetState()
	if len(st.Slots) == 0 {
		return st, fmt.Errorf("no available slots for %s in the next %d days", svc.Name, widget.AvailabilityDays)
	}
	slot := opts.slot
	if slot == "" {
		slot = st.Slots[0]
	}
	fmt.Fprintf(out, "%s: %s (%d min) at %s\n", cat.Company.Name, svc.Name, svc.Duration, slot)

	if err := w.SelectSlot(slot); err != nil {
		return w.GetState(), err
	}
	if err := w.SetCustomerInfo(opts.name, opts.email, opts.phone); err != nil {
		return w.GetState(), err
	}
	if _, err := w.ConfirmBooking(ctx); err != nil {
		return w.GetState(), err
	}
	return w.GetState(), nil
}

func runBook(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("book", out)
	baseURL := fs.String("base-url", config.String("BOOKING_API_URL", "http://localhost:8080"), "booking API base URL")
	var opts bookOptions
	fs.StringVar(&opts.company, "company", "test-dental", "company slug")
	fs.StringVar(&opts.service, "service", "", "service id or name (default: first service)")
	fs.StringVar(&opts.slot, "slot", "", "RFC 3339 slot (default: first available)")
	fs.StringVar(&opts.name, "name", "", "customer name")
	fs.StringVar(&opts.email, "email", "", "customer email")
	fs.StringVar(&opts.phone, "phone", "", "customer phone")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.name == "" || opts.email == "" {
		return errors.New("--name and --email are required")
	}

	st, err := book(ctx, bookingapi.New(*baseURL), opts, out)
	if err != nil {
		return fmt.Errorf("booking stopped at %s step: %w", st.Step, err)
	}
	fmt.Fprintf(out, "confirmed %s (booking %s)\n", st.ConfirmationNumber, st.BookingID)
	return nil
}
