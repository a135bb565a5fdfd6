package hubspot

import (
	"errors"
	"fmt"
	"time"
)

// Object types used by the ticket tools.
const (
	ObjectTickets = "tickets"
	ObjectEmails  = "emails"
	ObjectNotes   = "notes"
)

// NoteToTicketAssociation is the vendor-defined association type id linking a
// note to a ticket.
const NoteToTicketAssociation = 228

// ErrNotFound is returned when a record fetched by id does not exist.
var ErrNotFound = errors.New("hubspot: record not found")

// Record is a CRM object narrowed from the vendor payload.
type Record struct {
	ID           string
	Properties   map[string]*string
	Associations map[string][]string
	CreatedAt    time.Time
}

// Page is one page of records.
type Page struct {
	Results []Record
	Total   int
	After   string
}

// Filter is one condition of a search filter group.
type Filter struct {
	PropertyName string   `json:"propertyName"`
	Operator     string   `json:"operator"`
	Value        string   `json:"value,omitempty"`
	Values       []string `json:"values,omitempty"`
}

// FilterGroup ANDs its filters; multiple groups are ORed by the vendor.
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// SearchRequest is the body of a CRM search call.
type SearchRequest struct {
	ObjectType   string        `json:"-"`
	FilterGroups []FilterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties,omitempty"`
	Limit        int           `json:"limit"`
}

// DirectoryUser is an owner entry from the vendor directory.
type DirectoryUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AssociationSpec links a created record to an existing one.
type AssociationSpec struct {
	ToID     string
	Category string
	TypeID   int
}

// APIError describes a non-2xx vendor response.
type APIError struct {
	Status        int
	Category      string
	Message       string
	CorrelationID string
}

func (e *APIError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("hubspot: status %d (%s): %s", e.Status, e.Category, e.Message)
	}
	return fmt.Sprintf("hubspot: status %d: %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status of the vendor response.
func (e *APIError) StatusCode() int {
	return e.Status
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// wire payloads

type recordPayload struct {
	ID           string                        `json:"id"`
	Properties   map[string]*string            `json:"properties"`
	CreatedAt    string                        `json:"createdAt"`
	Associations map[string]associationResults `json:"associations,omitempty"`
}

type associationResults struct {
	Results []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"results"`
}

type pagePayload struct {
	Total   int             `json:"total"`
	Results []recordPayload `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging,omitempty"`
}

type ownersPayload struct {
	Results []DirectoryUser `json:"results"`
}

type errorPayload struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Category      string `json:"category"`
	CorrelationID string `json:"correlationId"`
}

type createPayload struct {
	Properties   map[string]string   `json:"properties"`
	Associations []createAssociation `json:"associations,omitempty"`
}

type createAssociation struct {
	To struct {
		ID string `json:"id"`
	} `json:"to"`
	Types []associationType `json:"types"`
}

type associationType struct {
	Category string `json:"associationCategory"`
	TypeID   int    `json:"associationTypeId"`
}

func (p recordPayload) toRecord() Record {
	rec := Record{
		ID:         p.ID,
		Properties: p.Properties,
	}
	if rec.Properties == nil {
		rec.Properties = map[string]*string{}
	}
	if p.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
			rec.CreatedAt = t
		}
	}
	if len(p.Associations) > 0 {
		rec.Associations = make(map[string][]string, len(p.Associations))
		for kind, res := range p.Associations {
			ids := make([]string, 0, len(res.Results))
			seen := make(map[string]struct{}, len(res.Results))
			for _, r := range res.Results {
				if _, dup := seen[r.ID]; dup {
					continue
				}
				seen[r.ID] = struct{}{}
				ids = append(ids, r.ID)
			}
			rec.Associations[kind] = ids
		}
	}
	return rec
}
