package service

import (
	"context"
	"strings"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
)

// ResolveScope returns the filter selecting the visitors and enquiries p may
// read or write. services is the customer executive's service coverage and is
// ignored for other roles.
//
// Clauses whose operand is empty are left out, and a role that is not
// recognised only ever sees records assigned to it by id.
func ResolveScope(p entity.Principal, services []string) filter.Filter {
	switch p.Role {
	case enum.RoleAdmin:
		return filter.All()
	case enum.RoleSalesExecutive:
		return filter.Or(
			idClause("assignedAgent", p),
			idClause("salesExecutive", p),
			nameClause("agentName", p.Name),
			nameClause("salesExecutiveName", p.Name),
		)
	case enum.RoleCustomerExecutive:
		return filter.Or(
			idClause("assignedAgent", p),
			nameClause("agentName", p.Name),
			nameClause("region", p.Region),
			servicesClause(services),
		)
	}
	return idClause("assignedAgent", p)
}

func idClause(field string, p entity.Principal) filter.Filter {
	id, ok := p.ObjectID()
	if !ok {
		return filter.None()
	}
	return filter.Eq(field, id)
}

func nameClause(field, value string) filter.Filter {
	value = strings.TrimSpace(value)
	if value == "" {
		return filter.None()
	}
	return filter.Eq(field, value)
}

func servicesClause(services []string) filter.Filter {
	values := make([]any, 0, len(services))
	for _, s := range services {
		if s = strings.TrimSpace(s); s != "" {
			values = append(values, s)
		}
	}
	return filter.In("service", values...)
}

// ScopeService resolves scopes, loading customer executives' service coverage
type ScopeService struct {
	execRepo repository.ExecutiveServiceRepository
}

// NewScopeService creates a new scope service
func NewScopeService(execRepo repository.ExecutiveServiceRepository) *ScopeService {
	return &ScopeService{execRepo: execRepo}
}

// Scope returns the record filter for p
func (s *ScopeService) Scope(ctx context.Context, p entity.Principal) (filter.Filter, error) {
	if p.Role != enum.RoleCustomerExecutive {
		return ResolveScope(p, nil), nil
	}

	var services []string
	if id, ok := p.ObjectID(); ok {
		assignment, err := s.execRepo.Get(ctx, id)
		if err != nil {
			return filter.None(), err
		}
		if assignment != nil {
			services = assignment.Services
		}
	}
	return ResolveScope(p, services), nil
}
