package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Blocking reports whether a booking in this status occupies its interval.
func (s BookingStatus) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

const (
	BookedViaWeb     = "web"
	BookedViaAIAgent = "ai_agent"
	BookedViaAPI     = "api"
)

const (
	DefaultAgentName = "Unknown AI Agent"
	IndustryMedical  = "medical"
)

type Company struct {
	ID          string
	Slug        string
	Name        string
	Email       string
	Phone       string
	Description string
	Address     string
	City        string
	State       string
	PostalCode  string
	Country     string
	Timezone    string
	Website     string
	Industry    string
	IsActive    bool
	CreatedAt   time.Time
}

// Location returns the company's time zone, or UTC when it is empty or unknown.
func (c Company) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Company) IsMedical() bool {
	return strings.EqualFold(c.Industry, IndustryMedical)
}

// CompanySummary is a company row plus its active service count, as listed by search.
type CompanySummary struct {
	Company
	ServicesCount int
}

type Service struct {
	ID                string
	CompanyID         string
	Name              string
	Description       string
	DurationMinutes   int
	Price             decimal.NullDecimal
	Currency          string
	BufferTimeMinutes int
	IsActive          bool
}

func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

type Staff struct {
	ID        string
	CompanyID string
	Name      string
	Email     string
	Role      string
	IsActive  bool
}

// PatientInfo holds the optional medical intake fields. They are stored and returned only.
type PatientInfo struct {
	DateOfBirth        string
	InsuranceProvider  string
	ReasonForVisit     string
	Allergies          string
	CurrentMedications string
}

type Booking struct {
	ID            string
	CompanyID     string
	ServiceID     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StartTime     time.Time
	EndTime       time.Time
	Status        BookingStatus
	Notes         string
	BookedVia     string
	AgentName     string
	Patient       PatientInfo
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ConfirmationNumber is the first segment of the booking id, upper-cased.
func (b Booking) ConfirmationNumber() string {
	return ConfirmationNumber(b.ID)
}

func ConfirmationNumber(id string) string {
	head, _, _ := strings.Cut(id, "-")
	return strings.ToUpper(head)
}

// BookingDetail is a booking joined with the company and service fields shown on lookup.
type BookingDetail struct {
	Booking
	CompanyName     string
	CompanyPhone    string
	CompanyEmail    string
	ServiceName     string
	ServiceDuration int
}
