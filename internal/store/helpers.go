package store

import (
	"database/sql"

	"github.com/BTreeMap/LeadFunnel/internal/models"
)

// scanLead reads one lead row. Column order must match the SELECT lists
// in the SQLite and Postgres backends.
func scanLead(rows *sql.Rows) (models.Lead, error) {
	var lead models.Lead
	var goal, timeSlot string
	err := rows.Scan(
		&lead.ID, &lead.ConversationID, &lead.SenderName, &goal, &timeSlot,
		&lead.Contact.RawText, &lead.Contact.Phone, &lead.Contact.Email,
		&lead.Contact.SocialHandle, &lead.Contact.Name, &lead.CapturedAt,
	)
	if err != nil {
		return models.Lead{}, err
	}
	lead.Goal = models.Goal(goal)
	lead.TimeSlot = models.TimeSlot(timeSlot)
	return lead, nil
}
