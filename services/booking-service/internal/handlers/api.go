// Package handlers exposes the reservation and directory flows over HTTP. Every JSON endpoint is
// mounted under both /api/ai and /ai.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/agentbook/libs/httpx"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/directory"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/docs"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/reservations"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/validation"
)

// Reservations is implemented by *reservations.Service.
type Reservations interface {
	Availability(ctx context.Context, q reservations.AvailabilityQuery) (reservations.AvailabilityResult, error)
	Reserve(ctx context.Context, req reservations.ReserveRequest) (reservations.Reservation, error)
	ReserveMedical(ctx context.Context, req reservations.MedicalReserveRequest) (reservations.Reservation, error)
	Lookup(ctx context.Context, id, email string) (model.BookingDetail, error)
	Reschedule(ctx context.Context, req reservations.RescheduleRequest) (model.BookingDetail, error)
	Cancel(ctx context.Context, id, email string) (model.Booking, error)
}

// Directory is implemented by *directory.Service.
type Directory interface {
	SearchCompanies(ctx context.Context, q directory.SearchQuery) ([]model.CompanySummary, error)
	SearchMedical(ctx context.Context, q directory.MedicalQuery) ([]model.CompanySummary, error)
	CompanyServices(ctx context.Context, slug string) (directory.Catalog, error)
	Practitioners(ctx context.Context, slug string) (directory.Practice, error)
	Register(ctx context.Context, req directory.RegisterRequest) (model.Company, model.Service, error)
}

type Config struct {
	Reservations Reservations
	Directory    Directory
	Docs         *docs.Documents
	Logger       *slog.Logger
	// BaseURL prefixes bookingUrl fields and JSON-LD targets.
	BaseURL string
}

type API struct {
	res     Reservations
	dir     Directory
	docs    *docs.Documents
	logger  *slog.Logger
	baseURL string
}

func NewAPI(cfg Config) *API {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		res:     cfg.Reservations,
		dir:     cfg.Directory,
		docs:    cfg.Docs,
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Register mounts every route on mux. mux must already serve /healthz and /readyz.
func (a *API) Register(mux *http.ServeMux) {
	for _, prefix := range []string{"/api/ai", "/ai"} {
		mux.HandleFunc("GET "+prefix+"/companies", a.Companies)
		mux.HandleFunc("GET "+prefix+"/services", a.Services)
		mux.HandleFunc("GET "+prefix+"/availability", a.Availability)
		mux.HandleFunc("POST "+prefix+"/reservations", a.Reserve)
		mux.HandleFunc("GET "+prefix+"/reservations", a.Lookup)
		mux.HandleFunc("PATCH "+prefix+"/reservations", a.Reschedule)
		mux.HandleFunc("DELETE "+prefix+"/reservations", a.Cancel)

		mux.HandleFunc("GET "+prefix+"/medical/search", a.MedicalSearch)
		mux.HandleFunc("GET "+prefix+"/medical/practitioners", a.Practitioners)
		mux.HandleFunc("GET "+prefix+"/medical/availability", a.Availability)
		mux.HandleFunc("POST "+prefix+"/medical/reservations", a.ReserveMedical)
		mux.HandleFunc("GET "+prefix+"/medical/reservations", a.Lookup)
		mux.HandleFunc("PATCH "+prefix+"/medical/reservations", a.Reschedule)
		mux.HandleFunc("DELETE "+prefix+"/medical/reservations", a.Cancel)

		if a.docs != nil {
			mux.HandleFunc("GET "+prefix+"/openapi.json", a.docs.Handler(docs.General))
			mux.HandleFunc("GET "+prefix+"/medical/openapi.json", a.docs.Handler(docs.Medical))
		}
	}
	mux.HandleFunc("POST /api/companies/register", a.RegisterCompany)

	// No method in these patterns: "GET /{slug}" would conflict with the method-less /healthz.
	mux.HandleFunc("/{$}", a.Home)
	mux.HandleFunc("/{slug}", a.BookingPage)
}

const checkAvailabilityHint = "Please check availability again and choose a different slot"

// fail maps domain errors to the JSON error envelope. Only unexpected errors are logged.
func (a *API) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr)
	case errors.Is(err, httpx.ErrBadJSON):
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "Invalid request", Hint: "Send a JSON object body", Details: []httpx.FieldError{{Field: "body", Message: err.Error()}}})
	case errors.Is(err, reservations.ErrCompanyNotFound), errors.Is(err, directory.ErrCompanyNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Company not found", "Use /ai/companies to find a company slug")
	case errors.Is(err, reservations.ErrServiceNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Service not found", "Use /ai/services?company={slug} to list services")
	case errors.Is(err, reservations.ErrBookingNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Booking not found", "")
	case errors.Is(err, reservations.ErrSlotUnavailable):
		httpx.WriteError(w, http.StatusConflict, "Time slot no longer available", checkAvailabilityHint)
	case errors.Is(err, reservations.ErrBookingClosed):
		httpx.WriteError(w, http.StatusConflict, "Booking can no longer be changed", "Cancelled or completed bookings cannot be rescheduled")
	case errors.Is(err, reservations.ErrNotMedical), errors.Is(err, directory.ErrNotMedical):
		httpx.WriteError(w, http.StatusBadRequest, "This endpoint is for medical practices only", "Use /ai/reservations for non-medical companies")
	case errors.Is(err, directory.ErrSlugTaken):
		httpx.WriteError(w, http.StatusConflict, "Company slug already exists. Please choose a different name.", "")
	default:
		a.logger.Error("request failed",
			"op", op,
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"err", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func writeValidation(w http.ResponseWriter, verr *validation.Error) {
	body := httpx.ErrorBody{Error: verr.Message, Hint: verr.Hint}
	for _, f := range verr.Fields {
		body.Details = append(body.Details, httpx.FieldError{Field: f.Field, Message: f.Message})
	}
	httpx.WriteJSON(w, http.StatusBadRequest, body)
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (a *API) bookingURL(slug string) string {
	return a.baseURL + "/" + slug
}
