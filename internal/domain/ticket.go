package domain

// Ticket property names as exposed by the ticketing vendor.
const (
	PropSubject   = "subject"
	PropContent   = "content"
	PropPipeline  = "hs_pipeline"
	PropStage     = "hs_pipeline_stage"
	PropPriority  = "hs_ticket_priority"
	PropCreatedAt = "createdate"
	PropOwnerID   = "hubspot_owner_id"
	PropCategory  = "hs_ticket_category"
	PropObjectID  = "hs_object_id"
)

// Association kinds linked from a ticket.
const (
	AssocEmails    = "emails"
	AssocNotes     = "notes"
	AssocContacts  = "contacts"
	AssocCompanies = "companies"
)

// DetailAssociations are expanded when a single ticket is fetched in full.
var DetailAssociations = []string{AssocEmails, AssocNotes, AssocContacts, AssocCompanies}

// Ticket is a read-only view of a vendor ticket record.
type Ticket struct {
	ID           string
	Properties   map[string]*string
	Associations map[string][]string
}

// Prop returns a property value or "" when the property is absent or null.
func (t *Ticket) Prop(name string) string {
	if t == nil || t.Properties == nil {
		return ""
	}
	if v := t.Properties[name]; v != nil {
		return *v
	}
	return ""
}

// TicketProperties returns the property set requested for ticket listings.
// groupProperty is appended when it is not already one of the defaults.
func TicketProperties(groupProperty string) []string {
	props := []string{
		PropSubject,
		PropContent,
		PropPipeline,
		PropStage,
		PropPriority,
		PropCreatedAt,
		PropOwnerID,
		PropCategory,
	}
	if groupProperty == "" {
		return props
	}
	for _, p := range props {
		if p == groupProperty {
			return props
		}
	}
	return append(props, groupProperty)
}
