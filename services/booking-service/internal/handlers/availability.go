package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/agentbook/libs/httpx"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/reservations"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/validation"
)

type dateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type availabilityMeta struct {
	TotalSlots int       `json:"totalSlots"`
	Showing    int       `json:"showing"`
	DateRange  dateRange `json:"dateRange"`
}

type availabilityResponse struct {
	ServiceID string           `json:"serviceId"`
	Duration  int              `json:"duration"`
	Slots     []string         `json:"slots"`
	Timezone  string           `json:"timezone"`
	Meta      availabilityMeta `json:"meta"`
}

func (a *API) Availability(w http.ResponseWriter, r *http.Request) {
	q := reservations.AvailabilityQuery{
		CompanySlug: httpx.QueryString(r, "company"),
		ServiceID:   httpx.QueryString(r, "serviceId"),
		Date:        httpx.QueryString(r, "date"),
	}
	if httpx.QueryString(r, "days") != "" {
		days, ok := httpx.QueryInt(r, "days", 0)
		if !ok {
			a.fail(w, r, "availability", validation.Field("days", "must be an integer"))
			return
		}
		q.Days = &days
	}

	res, err := a.res.Availability(r.Context(), q)
	if err != nil {
		a.fail(w, r, "availability", err)
		return
	}

	out := availabilityResponse{
		ServiceID: res.ServiceID,
		Duration:  res.Duration,
		Slots:     make([]string, 0, len(res.Slots)),
		Timezone:  res.Timezone,
		Meta: availabilityMeta{
			TotalSlots: res.TotalSlots,
			Showing:    len(res.Slots),
			DateRange:  dateRange{From: res.From, To: res.To},
		},
	}
	for _, s := range res.Slots {
		out.Slots = append(out.Slots, isoTime(s))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
