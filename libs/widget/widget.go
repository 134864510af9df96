// Package widget drives a booking from service choice to confirmation. It is the
// programmatic counterpart of the public booking page: a UI layer or an automation
// script holds a *Widget and calls its methods in step order.
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/md-rashed-zaman/agentbook/libs/bookingapi"
)

type Step string

const (
	StepService   Step = "service"
	StepTime      Step = "time"
	StepDetails   Step = "details"
	StepConfirmed Step = "confirmed"
)

const (
	// AgentName is recorded on bookings made through the widget.
	AgentName = "Web Browser"
	// AvailabilityDays is how far ahead slots are fetched after a service is chosen.
	AvailabilityDays = 14
)

var (
	ErrInvalidStep     = errors.New("widget: action not allowed at this step")
	ErrUnknownService  = errors.New("widget: unknown service")
	ErrUnknownSlot     = errors.New("widget: slot is not in the available list")
	ErrMissingCustomer = errors.New("widget: customer name and email are required")
	ErrBusy            = errors.New("widget: another request is in flight")
)

// Backend is the part of *bookingapi.Client the widget uses.
type Backend interface {
	Availability(ctx context.Context, q bookingapi.AvailabilityQuery) (bookingapi.Availability, error)
	Reserve(ctx context.Context, req bookingapi.ReserveRequest) (bookingapi.Reservation, error)
}

var _ Backend = (*bookingapi.Client)(nil)

// State is a snapshot of the widget.
type State struct {
	Step               Step
	Company            string
	Service            *bookingapi.Service
	Slots              []string
	Slot               string
	Customer           bookingapi.Customer
	ConfirmationNumber string
	BookingID          string
	Loading            bool
	LastError          string
}

// Widget is safe for concurrent use. Only one backend call runs at a time; a second
// caller gets ErrBusy instead of queueing.
type Widget struct {
	backend  Backend
	company  string
	services []bookingapi.Service

	mu           sync.Mutex
	step         Step
	service      *bookingapi.Service
	slots        []string
	slot         string
	customer     bookingapi.Customer
	confirmation bookingapi.Confirmation
	loading      bool
	lastErr      string
}

func New(backend Backend, companySlug string, services []bookingapi.Service) *Widget {
	return &Widget{
		backend:  backend,
		company:  companySlug,
		services: append([]bookingapi.Service(nil), services...),
		step:     StepService,
	}
}

// SelectService picks a service and loads its availability. On success the widget moves to
// the time step; on a backend failure it stays on the service step.
func (w *Widget) SelectService(ctx context.Context, serviceID string) error {
	w.mu.Lock()
	if err := w.beginLocked(StepService); err != nil {
		w.mu.Unlock()
		return err
	}
	var svc *bookingapi.Service
	for i := range w.services {
		if w.services[i].ID == serviceID {
			s := w.services[i]
			svc = &s
			break
		}
	}
	if svc == nil {
		w.loading = false
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownService, serviceID)
	}
	w.mu.Unlock()

	days := AvailabilityDays
	avail, err := w.backend.Availability(ctx, bookingapi.AvailabilityQuery{
		Company:   w.company,
		ServiceID: svc.ID,
		Days:      &days,
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if err != nil {
		w.lastErr = err.Error()
		return err
	}
	w.service = svc
	w.slots = append([]string(nil), avail.Slots...)
	w.step = StepTime
	return nil
}

// SelectSlot picks one of the fetched slots. Slots compare as instants, so any RFC 3339
// spelling of a listed slot is accepted.
func (w *Widget) SelectSlot(slot string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkLocked(StepTime); err != nil {
		return err
	}
	want, err := time.Parse(time.RFC3339, strings.TrimSpace(slot))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	for _, s := range w.slots {
		if t, err := time.Parse(time.RFC3339, s); err == nil && t.Equal(want) {
			w.slot = s
			w.step = StepDetails
			w.lastErr = ""
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
}

func (w *Widget) SetCustomerInfo(name, email, phone string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkLocked(StepDetails); err != nil {
		return err
	}
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return ErrMissingCustomer
	}
	w.customer = bookingapi.Customer{Name: name, Email: email, Phone: strings.TrimSpace(phone)}
	return nil
}

// ConfirmBooking reserves the selected slot. A rejected reservation (for example a slot
// taken in the meantime) leaves the widget on the details step with LastError set.
func (w *Widget) ConfirmBooking(ctx context.Context) (bookingapi.Reservation, error) {
	w.mu.Lock()
	if err := w.beginLocked(StepDetails); err != nil {
		w.mu.Unlock()
		return bookingapi.Reservation{}, err
	}
	if w.customer.Name == "" || w.customer.Email == "" {
		w.loading = false
		w.mu.Unlock()
		return bookingapi.Reservation{}, ErrMissingCustomer
	}
	req := bookingapi.ReserveRequest{
		CompanySlug: w.company,
		ServiceID:   w.service.ID,
		Slot:        w.slot,
		Customer:    w.customer,
		AgentName:   AgentName,
	}
	w.mu.Unlock()

	res, err := w.backend.Reserve(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if err != nil {
		w.lastErr = err.Error()
		return bookingapi.Reservation{}, err
	}
	w.confirmation = res.Booking
	w.step = StepConfirmed
	w.lastErr = ""
	return res, nil
}

// Back returns to the previous step. It is not allowed from the first or the final step.
func (w *Widget) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loading {
		return ErrBusy
	}
	switch w.step {
	case StepTime:
		w.step = StepService
		w.service = nil
		w.slots = nil
	case StepDetails:
		w.step = StepTime
		w.slot = ""
	default:
		return fmt.Errorf("%w: back from %s", ErrInvalidStep, w.step)
	}
	w.lastErr = ""
	return nil
}

func (w *Widget) GetState() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := State{
		Step:               w.step,
		Company:            w.company,
		Slots:              append([]string(nil), w.slots...),
		Slot:               w.slot,
		Customer:           w.customer,
		ConfirmationNumber: w.confirmation.ConfirmationNumber,
		BookingID:          w.confirmation.ID,
		Loading:            w.loading,
		LastError:          w.lastErr,
	}
	if w.service != nil {
		s := *w.service
		st.Service = &s
	}
	return st
}

func (w *Widget) checkLocked(want Step) error {
	if w.loading {
		return ErrBusy
	}
	if w.step != want {
		return fmt.Errorf("%w: at %s, need %s", ErrInvalidStep, w.step, want)
	}
	return nil
}

// beginLocked checks the step and marks a backend call in flight.
func (w *Widget) beginLocked(want Step) error {
	if err := w.checkLocked(want); err != nil {
		return err
	}
	w.loading = true
	return nil
}
