package domain

import "time"

// Email record property names.
const (
	PropEmailSubject   = "hs_email_subject"
	PropEmailFrom      = "hs_email_from_email"
	PropEmailTo        = "hs_email_to_email"
	PropEmailHTML      = "hs_email_html"
	PropEmailText      = "hs_email_text"
	PropEmailDate      = "hs_email_date"
	PropTimestamp      = "hs_timestamp"
	PropRecordCreateAt = "hs_createdate"
)

// EmailProperties is the property set fetched for each conversation message.
var EmailProperties = []string{
	PropEmailSubject,
	PropEmailFrom,
	PropEmailTo,
	PropEmailHTML,
	PropEmailText,
	PropEmailDate,
	PropTimestamp,
	PropRecordCreateAt,
}

// ConversationMessage is one email of a ticket thread with a plain-text body.
type ConversationMessage struct {
	ID        string
	Subject   *string
	From      *string
	To        *string
	Body      string
	CreatedAt time.Time
	// TimestampFallback is set when no source field resolved and CreatedAt is
	// the assembly time rather than the send time.
	TimestampFallback bool
}
