package domain

// FilterCriteria selects tickets. Every field is optional; empty slices are
// treated the same as absent ones.
type FilterCriteria struct {
	Groups     []string
	Statuses   []string
	Priorities []string
	Owners     []string
	Query      string
}

// Operator is a comparison understood by the vendor search API.
type Operator string

const (
	OperatorIn            Operator = "IN"
	OperatorContainsToken Operator = "CONTAINS_TOKEN"
)

// Criterion is one condition of a selection query. IN criteria use Values,
// CONTAINS_TOKEN criteria use Value.
type Criterion struct {
	Property string
	Operator Operator
	Values   []string
	Value    string
}

// SelectionQuery is nil for a plain listing, otherwise the criteria ANDed together.
type SelectionQuery []Criterion
