package service

import (
	"strings"

	"github.com/spec-kit/ticket-tools/internal/domain"
	"github.com/spec-kit/ticket-tools/internal/hubspot"
)

// PageSize is the fixed page size for listing and search calls.
const PageSize = 100

// BuildSelection translates filter criteria into search criteria. It returns
// nil when nothing was supplied, which selects the plain listing call.
func BuildSelection(criteria domain.FilterCriteria, groupProperty string) domain.SelectionQuery {
	var query domain.SelectionQuery

	in := func(property string, values []string) {
		if len(values) == 0 {
			return
		}
		query = append(query, domain.Criterion{
			Property: property,
			Operator: domain.OperatorIn,
			Values:   append([]string(nil), values...),
		})
	}

	in(groupProperty, criteria.Groups)
	in(domain.PropStage, criteria.Statuses)
	in(domain.PropPriority, criteria.Priorities)
	in(domain.PropOwnerID, criteria.Owners)

	if term := strings.TrimSpace(criteria.Query); term != "" {
		query = append(query, domain.Criterion{
			Property: domain.PropSubject,
			Operator: domain.OperatorContainsToken,
			Value:    term,
		})
	}
	return query
}

// toFilterGroups puts every criterion in one group so the vendor ANDs them.
func toFilterGroups(query domain.SelectionQuery) []hubspot.FilterGroup {
	group := hubspot.FilterGroup{Filters: make([]hubspot.Filter, 0, len(query))}
	for _, c := range query {
		f := hubspot.Filter{PropertyName: c.Property, Operator: string(c.Operator)}
		if c.Operator == domain.OperatorIn {
			f.Values = c.Values
		} else {
			f.Value = c.Value
		}
		group.Filters = append(group.Filters, f)
	}
	return []hubspot.FilterGroup{group}
}
