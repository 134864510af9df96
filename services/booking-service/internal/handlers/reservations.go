package handlers

import (
	"errors"
	"net/http"

	"github.com/md-rashed-zaman/agentbook/libs/httpx"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/reservations"
)

type contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type bookingSummary struct {
	ID                 string  `json:"id"`
	ConfirmationNumber string  `json:"confirmationNumber"`
	Company            string  `json:"company"`
	Service            string  `json:"service"`
	StartTime          string  `json:"startTime"`
	EndTime            string  `json:"endTime"`
	Customer           contact `json:"customer"`
	Status             string  `json:"status"`
}

type bookingMeta struct {
	BookedVia string `json:"bookedVia"`
	AgentName string `json:"agentName"`
	Industry  string `json:"industry,omitempty"`
}

type reserveResponse struct {
	Success bool           `json:"success"`
	Booking bookingSummary `json:"booking"`
	Message string         `json:"message"`
	Meta    bookingMeta    `json:"meta"`
}

func (a *API) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reservations.ReserveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		a.fail(w, r, "reserve", err)
		return
	}
	res, err := a.res.Reserve(r.Context(), req)
	if err != nil {
		a.fail(w, r, "reserve", err)
		return
	}

	b := res.Booking
	httpx.WriteJSON(w, http.StatusCreated, reserveResponse{
		Success: true,
		Booking: bookingSummary{
			ID:                 b.ID,
			ConfirmationNumber: b.ConfirmationNumber(),
			Company:            res.Company.Name,
			Service:            res.Service.Name,
			StartTime:          isoTime(b.StartTime),
			EndTime:            isoTime(b.EndTime),
			Customer:           contact{Name: b.CustomerName, Email: b.CustomerEmail},
			Status:             string(b.Status),
		},
		Message: "Booking confirmed! Confirmation number: " + b.ConfirmationNumber(),
		Meta:    bookingMeta{BookedVia: "AI Agent", AgentName: b.AgentName},
	})
}

type appointmentSummary struct {
	ID                 string  `json:"id"`
	ConfirmationNumber string  `json:"confirmationNumber"`
	Practice           string  `json:"practice"`
	Service            string  `json:"service"`
	AppointmentTime    string  `json:"appointmentTime"`
	EndTime            string  `json:"endTime"`
	Duration           int     `json:"duration"`
	Patient            contact `json:"patient"`
	Status             string  `json:"status"`
	InsuranceOnFile    bool    `json:"insuranceOnFile"`
}

type visitInstructions struct {
	Arrival      string `json:"arrival"`
	Insurance    string `json:"insurance"`
	Cancellation string `json:"cancellation"`
}

type medicalReserveResponse struct {
	Success      bool               `json:"success"`
	Appointment  appointmentSummary `json:"appointment"`
	Message      string             `json:"message"`
	Instructions visitInstructions  `json:"instructions"`
	Meta         bookingMeta        `json:"meta"`
}

func (a *API) ReserveMedical(w http.ResponseWriter, r *http.Request) {
	var req reservations.MedicalReserveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		a.fail(w, r, "reserve_medical", err)
		return
	}
	res, err := a.res.ReserveMedical(r.Context(), req)
	if err != nil {
		a.fail(w, r, "reserve_medical", err)
		return
	}

	b := res.Booking
	insurance := "Please bring your insurance information"
	if b.Patient.InsuranceProvider != "" {
		insurance = "Please bring your " + b.Patient.InsuranceProvider + " insurance card"
	}
	httpx.WriteJSON(w, http.StatusCreated, medicalReserveResponse{
		Success: true,
		Appointment: appointmentSummary{
			ID:                 b.ID,
			ConfirmationNumber: b.ConfirmationNumber(),
			Practice:           res.Company.Name,
			Service:            res.Service.Name,
			AppointmentTime:    isoTime(b.StartTime),
			EndTime:            isoTime(b.EndTime),
			Duration:           res.Service.DurationMinutes,
			Patient:            contact{Name: b.CustomerName, Email: b.CustomerEmail},
			Status:             string(b.Status),
			InsuranceOnFile:    b.Patient.InsuranceProvider != "",
		},
		Message: "Medical appointment confirmed! Confirmation number: " + b.ConfirmationNumber(),
		Instructions: visitInstructions{
			Arrival:      "Please arrive 10 minutes early to complete any necessary paperwork",
			Insurance:    insurance,
			Cancellation: "To cancel or reschedule, please call at least 24 hours in advance",
		},
		Meta: bookingMeta{BookedVia: "AI Agent", AgentName: b.AgentName, Industry: model.IndustryMedical},
	})
}

type companyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type serviceRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

type patientDetail struct {
	DateOfBirth        string `json:"dateOfBirth,omitempty"`
	InsuranceProvider  string `json:"insuranceProvider,omitempty"`
	ReasonForVisit     string `json:"reasonForVisit,omitempty"`
	Allergies          string `json:"allergies,omitempty"`
	CurrentMedications string `json:"currentMedications,omitempty"`
}

type bookingDetail struct {
	ID                 string         `json:"id"`
	ConfirmationNumber string         `json:"confirmationNumber"`
	Company            companyContact `json:"company"`
	Service            serviceRef     `json:"service"`
	StartTime          string         `json:"startTime"`
	EndTime            string         `json:"endTime"`
	Status             string         `json:"status"`
	Customer           contact        `json:"customer"`
	Notes              string         `json:"notes"`
	BookedVia          string         `json:"bookedVia,omitempty"`
	AgentName          string         `json:"agentName,omitempty"`
	Patient            *patientDetail `json:"patient,omitempty"`
}

func toBookingDetail(d model.BookingDetail) bookingDetail {
	out := bookingDetail{
		ID:                 d.ID,
		ConfirmationNumber: d.ConfirmationNumber(),
		Company:            companyContact{Name: d.CompanyName, Phone: d.CompanyPhone, Email: d.CompanyEmail},
		Service:            serviceRef{ID: d.ServiceID, Name: d.ServiceName, Duration: d.ServiceDuration},
		StartTime:          isoTime(d.StartTime),
		EndTime:            isoTime(d.EndTime),
		Status:             string(d.Status),
		Customer:           contact{Name: d.CustomerName, Email: d.CustomerEmail, Phone: d.CustomerPhone},
		Notes:              d.Notes,
		BookedVia:          d.BookedVia,
		AgentName:          d.AgentName,
	}
	if p := d.Patient; p != (model.PatientInfo{}) {
		out.Patient = &patientDetail{
			DateOfBirth:        p.DateOfBirth,
			InsuranceProvider:  p.InsuranceProvider,
			ReasonForVisit:     p.ReasonForVisit,
			Allergies:          p.Allergies,
			CurrentMedications: p.CurrentMedications,
		}
	}
	return out
}

func (a *API) Lookup(w http.ResponseWriter, r *http.Request) {
	d, err := a.res.Lookup(r.Context(), httpx.QueryString(r, "id"), httpx.QueryString(r, "email"))
	if err != nil {
		a.fail(w, r, "lookup", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toBookingDetail(d))
}

type rescheduleResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Booking bookingDetail `json:"booking"`
}

func (a *API) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req reservations.RescheduleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		a.fail(w, r, "reschedule", err)
		return
	}
	d, err := a.res.Reschedule(r.Context(), req)
	if err != nil {
		a.fail(w, r, "reschedule", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rescheduleResponse{
		Success: true,
		Message: "Booking updated successfully",
		Booking: toBookingDetail(d),
	})
}

type cancelledBooking struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type cancelResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Booking cancelledBooking `json:"booking"`
}

func (a *API) Cancel(w http.ResponseWriter, r *http.Request) {
	b, err := a.res.Cancel(r.Context(), httpx.QueryString(r, "id"), httpx.QueryString(r, "email"))
	if err != nil {
		if errors.Is(err, reservations.ErrBookingNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Booking not found or already cancelled", "")
			return
		}
		a.fail(w, r, "cancel", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cancelResponse{
		Success: true,
		Message: "Booking cancelled successfully",
		Booking: cancelledBooking{ID: b.ID, Status: string(b.Status)},
	})
}
