package directory

import (
	"context"

	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
)

const (
	RolePrimaryPhysician   = "Primary Physician"
	RoleHealthcareProvider = "Healthcare Provider"
)

type Practitioner struct {
	ID   string
	Name string
	Role string
	// Placeholder is set when the practice has no staff on file; any appointment may be booked
	// and staff are assigned by the practice.
	Placeholder bool
}

type Practice struct {
	Company       model.Company
	Practitioners []Practitioner
}

// Practitioners lists the active staff of a medical practice, or a single placeholder entry
// named after the practice when none are on file.
func (s *Service) Practitioners(ctx context.Context, slug string) (Practice, error) {
	company, err := s.company(ctx, slug)
	if err != nil {
		return Practice{}, err
	}
	if !company.IsMedical() {
		return Practice{}, ErrNotMedical
	}
	staff, err := s.store.ListStaff(ctx, company.ID)
	if err != nil {
		return Practice{}, err
	}

	p := Practice{Company: company}
	for _, st := range staff {
		role := RoleHealthcareProvider
		if st.Role == "admin" {
			role = RolePrimaryPhysician
		}
		p.Practitioners = append(p.Practitioners, Practitioner{ID: st.ID, Name: st.Name, Role: role})
	}
	if len(p.Practitioners) == 0 {
		p.Practitioners = []Practitioner{{Name: company.Name, Role: RoleHealthcareProvider, Placeholder: true}}
	}
	return p, nil
}
