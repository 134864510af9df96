package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/md-rashed-zaman/agentbook/libs/httpx"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/directory"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/validation"
	"github.com/shopspring/decimal"
)

type companyEndpoints struct {
	Services     string `json:"services"`
	Availability string `json:"availability"`
	Book         string `json:"book"`
}

type companyItem struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	City          string           `json:"city"`
	State         string           `json:"state"`
	Country       string           `json:"country"`
	Phone         string           `json:"phone"`
	Email         string           `json:"email"`
	Timezone      string           `json:"timezone"`
	Website       string           `json:"website"`
	ServicesCount int              `json:"servicesCount"`
	BookingURL    string           `json:"bookingUrl"`
	APIEndpoints  companyEndpoints `json:"apiEndpoints"`
}

type searchFilters struct {
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
}

type companiesResponse struct {
	Companies []companyItem `json:"companies"`
	Total     int           `json:"total"`
	Filters   searchFilters `json:"filters"`
	Meta      struct {
		Message string `json:"message"`
	} `json:"meta"`
}

func queryLimit(r *http.Request) (int, error) {
	n, ok := httpx.QueryInt(r, "limit", 0)
	if !ok {
		return 0, validation.Field("limit", "must be an integer")
	}
	return n, nil
}

func (a *API) Companies(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		a.fail(w, r, "companies", err)
		return
	}
	q := directory.SearchQuery{
		Search:   httpx.QueryString(r, "search"),
		City:     httpx.QueryString(r, "city"),
		State:    httpx.QueryString(r, "state"),
		Category: httpx.QueryString(r, "category"),
		Limit:    limit,
	}
	companies, err := a.dir.SearchCompanies(r.Context(), q)
	if err != nil {
		a.fail(w, r, "companies", err)
		return
	}

	out := companiesResponse{
		Companies: make([]companyItem, 0, len(companies)),
		Total:     len(companies),
		Filters:   searchFilters{City: q.City, State: q.State, Search: q.Search, Category: q.Category},
	}
	for _, c := range companies {
		out.Companies = append(out.Companies, companyItem{
			ID:            c.ID,
			Name:          c.Name,
			Slug:          c.Slug,
			Description:   c.Description,
			City:          c.City,
			State:         c.State,
			Country:       c.Country,
			Phone:         c.Phone,
			Email:         c.Email,
			Timezone:      c.Timezone,
			Website:       c.Website,
			ServicesCount: c.ServicesCount,
			BookingURL:    a.bookingURL(c.Slug),
			APIEndpoints: companyEndpoints{
				Services:     "/ai/services?company=" + c.Slug,
				Availability: "/ai/availability?company=" + c.Slug + "&serviceId={serviceId}",
				Book:         "/ai/reservations",
			},
		})
	}
	switch len(out.Companies) {
	case 0:
		out.Meta.Message = "No companies found matching your criteria. Try broader search terms."
	case 1:
		out.Meta.Message = "Found 1 company"
	default:
		out.Meta.Message = "Found " + strconv.Itoa(len(out.Companies)) + " companies"
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// priceJSON renders a nullable price as a bare JSON number.
func priceJSON(p decimal.NullDecimal) any {
	if !p.Valid {
		return nil
	}
	return json.Number(p.Decimal.String())
}

type serviceItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Price       any    `json:"price"`
	Currency    string `json:"currency"`
	BufferTime  int    `json:"bufferTime"`
}

type catalogCompany struct {
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

type servicesResponse struct {
	Company  catalogCompany `json:"company"`
	Services []serviceItem  `json:"services"`
	Meta     struct {
		AIOptimized bool              `json:"aiOptimized"`
		Version     string            `json:"version"`
		Endpoints   map[string]string `json:"endpoints"`
	} `json:"meta"`
}

func toServiceItems(services []model.Service) []serviceItem {
	out := make([]serviceItem, 0, len(services))
	for _, s := range services {
		out = append(out, serviceItem{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Duration:    s.DurationMinutes,
			Price:       priceJSON(s.Price),
			Currency:    s.Currency,
			BufferTime:  s.BufferTimeMinutes,
		})
	}
	return out
}

func (a *API) Services(w http.ResponseWriter, r *http.Request) {
	cat, err := a.dir.CompanyServices(r.Context(), httpx.QueryString(r, "company"))
	if err != nil {
		a.fail(w, r, "services", err)
		return
	}
	c := cat.Company

	var out servicesResponse
	out.Company = catalogCompany{Name: c.Name, Slug: c.Slug, Description: c.Description, Timezone: c.Timezone, Industry: c.Industry}
	out.Company.Contact.Phone = c.Phone
	out.Company.Contact.Email = c.Email
	out.Services = toServiceItems(cat.Services)
	out.Meta.AIOptimized = true
	out.Meta.Version = "1.0"
	out.Meta.Endpoints = map[string]string{
		"availability": "/ai/availability?company=" + c.Slug + "&serviceId={serviceId}",
		"book":         "/ai/reservations",
	}
	if c.IsMedical() {
		out.Meta.Endpoints["book"] = "/ai/medical/reservations"
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type providerItem struct {
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	City             string `json:"city"`
	State            string `json:"state"`
	Phone            string `json:"phone"`
	BookingEndpoint  string `json:"bookingEndpoint"`
	ServicesEndpoint string `json:"servicesEndpoint"`
}

type providersResponse struct {
	Providers    []providerItem `json:"providers"`
	Total        int            `json:"total"`
	Industry     string         `json:"industry"`
	Instructions string         `json:"instructions"`
}

func location(city, state string) string {
	switch {
	case city == "":
		return state
	case state == "":
		return city
	}
	return city + ", " + state
}

func (a *API) MedicalSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		a.fail(w, r, "medical_search", err)
		return
	}
	providers, err := a.dir.SearchMedical(r.Context(), directory.MedicalQuery{
		Search:    httpx.QueryString(r, "search"),
		City:      httpx.QueryString(r, "city"),
		State:     httpx.QueryString(r, "state"),
		Specialty: httpx.QueryString(r, "specialty"),
		Limit:     limit,
	})
	if err != nil {
		a.fail(w, r, "medical_search", err)
		return
	}

	out := providersResponse{
		Providers:    make([]providerItem, 0, len(providers)),
		Total:        len(providers),
		Industry:     model.IndustryMedical,
		Instructions: "To see available services and specialists, call /ai/services?company={slug}",
	}
	for _, p := range providers {
		out.Providers = append(out.Providers, providerItem{
			Name:             p.Name,
			Slug:             p.Slug,
			Description:      p.Description,
			Location:         location(p.City, p.State),
			City:             p.City,
			State:            p.State,
			Phone:            p.Phone,
			BookingEndpoint:  "/ai/medical/reservations",
			ServicesEndpoint: "/ai/services?company=" + p.Slug,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type practitionerItem struct {
	ID                   string `json:"id,omitempty"`
	Name                 string `json:"name"`
	Role                 string `json:"role"`
	Note                 string `json:"note,omitempty"`
	AvailabilityEndpoint string `json:"availabilityEndpoint"`
}

type practitionersResponse struct {
	Practice        string             `json:"practice"`
	Practitioners   []practitionerItem `json:"practitioners"`
	Total           int                `json:"total"`
	BookingEndpoint string             `json:"bookingEndpoint"`
}

func (a *API) Practitioners(w http.ResponseWriter, r *http.Request) {
	p, err := a.dir.Practitioners(r.Context(), httpx.QueryString(r, "company"))
	if err != nil {
		a.fail(w, r, "practitioners", err)
		return
	}
	slug := p.Company.Slug
	out := practitionersResponse{
		Practice:        p.Company.Name,
		Practitioners:   make([]practitionerItem, 0, len(p.Practitioners)),
		Total:           len(p.Practitioners),
		BookingEndpoint: "/ai/medical/reservations",
	}
	for _, pr := range p.Practitioners {
		item := practitionerItem{
			ID:                   pr.ID,
			Name:                 pr.Name,
			Role:                 pr.Role,
			AvailabilityEndpoint: "/ai/availability?company=" + slug + "&serviceId={serviceId}",
		}
		if pr.Placeholder {
			item.Note = "Book any available appointment - staff will be assigned"
		}
		out.Practitioners = append(out.Practitioners, item)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type registerResponse struct {
	Success bool `json:"success"`
	Company struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"company"`
	Service struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"service"`
	BookingURL string `json:"bookingUrl"`
}

func (a *API) RegisterCompany(w http.ResponseWriter, r *http.Request) {
	var req directory.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		a.fail(w, r, "register", err)
		return
	}
	c, s, err := a.dir.Register(r.Context(), req)
	if err != nil {
		a.fail(w, r, "register", err)
		return
	}
	a.logger.Info("company registered", "company_id", c.ID, "slug", c.Slug)

	out := registerResponse{Success: true, BookingURL: a.bookingURL(c.Slug)}
	out.Company.ID, out.Company.Name, out.Company.Slug = c.ID, c.Name, c.Slug
	out.Service.ID, out.Service.Name = s.ID, s.Name
	httpx.WriteJSON(w, http.StatusCreated, out)
}
