package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/directory"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type bookingPage struct {
	Company       model.Company
	Services      []model.Service
	Location      string
	Timezone      string
	Business      map[string]any
	ReserveAction map[string]any
}

func (a *API) Home(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.render(w, r, http.StatusOK, "home.html", nil)
}

// BookingPage renders a company's public page with schema.org markup and data-ai-* hooks.
func (a *API) BookingPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cat, err := a.dir.CompanyServices(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, directory.ErrCompanyNotFound) {
			http.NotFound(w, r)
			return
		}
		a.logger.Error("booking page failed", "slug", r.PathValue("slug"), "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	a.render(w, r, http.StatusOK, "booking.html", a.newBookingPage(cat))
}

func (a *API) newBookingPage(cat directory.Catalog) bookingPage {
	c := cat.Company
	business := map[string]any{
		"@context": "https://schema.org",
		"@type":    "LocalBusiness",
		"name":     c.Name,
		"url":      a.bookingURL(c.Slug),
	}
	if c.Description != "" {
		business["description"] = c.Description
	}
	if c.Phone != "" {
		business["telephone"] = c.Phone
	}
	if c.Email != "" {
		business["email"] = c.Email
	}
	if c.City != "" || c.Address != "" {
		business["address"] = map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   c.Address,
			"addressLocality": c.City,
			"addressRegion":   c.State,
			"postalCode":      c.PostalCode,
			"addressCountry":  c.Country,
		}
	}
	offers := make([]map[string]any, 0, len(cat.Services))
	for _, s := range cat.Services {
		offer := map[string]any{
			"@type": "Offer",
			"itemOffered": map[string]any{
				"@type": "Service",
				"name":  s.Name,
			},
		}
		if s.Price.Valid {
			offer["price"] = s.Price.Decimal.StringFixed(2)
			offer["priceCurrency"] = s.Currency
		}
		offers = append(offers, offer)
	}
	if len(offers) > 0 {
		business["makesOffer"] = offers
	}

	reserve := map[string]any{
		"@context": "https://schema.org",
		"@type":    "ReserveAction",
		"target": map[string]any{
			"@type":       "EntryPoint",
			"urlTemplate": a.baseURL + "/ai/reservations",
			"httpMethod":  "POST",
			"contentType": "application/json",
		},
		"result": map[string]any{
			"@type": "Reservation",
			"name":  "Appointment at " + c.Name,
		},
	}

	return bookingPage{
		Company:       c,
		Services:      cat.Services,
		Location:      location(c.City, c.State),
		Timezone:      c.Location().String(),
		Business:      business,
		ReserveAction: reserve,
	}
}

func (a *API) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("render failed", "template", name, "path", r.URL.Path, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
