package bookingapi

import "github.com/shopspring/decimal"

type Company struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Timezone    string `json:"timezone"`
	Industry    string `json:"industry,omitempty"`
	Contact     struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"contact"`
}

type Service struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Duration    int                 `json:"duration"`
	Price       decimal.NullDecimal `json:"price"`
	Currency    string              `json:"currency"`
	BufferTime  int                 `json:"bufferTime"`
}

type Catalog struct {
	Company  Company   `json:"company"`
	Services []Service `json:"services"`
}

type AvailabilityQuery struct {
	Company   string
	ServiceID string
	// Date is YYYY-MM-DD in the company's timezone; empty means today.
	Date string
	// Days is the number of days after Date to include; nil uses the server default.
	Days *int
}

type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Availability struct {
	ServiceID string   `json:"serviceId"`
	Duration  int      `json:"duration"`
	Slots     []string `json:"slots"`
	Timezone  string   `json:"timezone"`
	Meta      struct {
		TotalSlots int       `json:"totalSlots"`
		Showing    int       `json:"showing"`
		DateRange  DateRange `json:"dateRange"`
	} `json:"meta"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type ReserveRequest struct {
	CompanySlug string   `json:"companySlug"`
	ServiceID   string   `json:"serviceId"`
	Slot        string   `json:"slot"`
	Customer    Customer `json:"customer"`
	Notes       string   `json:"notes,omitempty"`
	AgentName   string   `json:"agentName,omitempty"`
}

type Confirmation struct {
	ID                 string   `json:"id"`
	ConfirmationNumber string   `json:"confirmationNumber"`
	Company            string   `json:"company"`
	Service            string   `json:"service"`
	StartTime          string   `json:"startTime"`
	EndTime            string   `json:"endTime"`
	Customer           Customer `json:"customer"`
	Status             string   `json:"status"`
}

type Reservation struct {
	Success bool         `json:"success"`
	Booking Confirmation `json:"booking"`
	Message string       `json:"message"`
	Meta    struct {
		BookedVia string `json:"bookedVia"`
		AgentName string `json:"agentName"`
	} `json:"meta"`
}

type Booking struct {
	ID                 string `json:"id"`
	ConfirmationNumber string `json:"confirmationNumber"`
	Company            struct {
		Name  string `json:"name"`
		Phone string `json:"phone,omitempty"`
		Email string `json:"email,omitempty"`
	} `json:"company"`
	Service struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Duration int    `json:"duration"`
	} `json:"service"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Status    string   `json:"status"`
	Customer  Customer `json:"customer"`
	Notes     string   `json:"notes"`
	BookedVia string   `json:"bookedVia,omitempty"`
	AgentName string   `json:"agentName,omitempty"`
}

type RescheduleRequest struct {
	BookingID    string  `json:"bookingId"`
	Email        string  `json:"email"`
	NewSlot      string  `json:"newSlot,omitempty"`
	NewServiceID string  `json:"newServiceId,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}
