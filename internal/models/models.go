// Package models defines the core data structures for LeadFunnel.
//
// It includes the funnel stages, qualification enums, contact records, leads,
// and the inbound event types shared across modules.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Stage identifies the current phase of the qualification funnel for one conversation.
type Stage string

const (
	// StageIdle is the initial stage before any contact with the user.
	StageIdle Stage = "idle"
	// StageAwaitGoal means the goal menu was sent and a selection is expected.
	StageAwaitGoal Stage = "await_goal"
	// StageAwaitTime means the time-slot menu was sent and a selection is expected.
	StageAwaitTime Stage = "await_time"
	// StageAwaitContact means free-form contact details are expected.
	StageAwaitContact Stage = "await_contact"
	// StageDone means the funnel completed and the assistant handles further chat.
	StageDone Stage = "done"
)

// IsValidStage checks if the given stage is one of the known funnel stages.
func IsValidStage(s Stage) bool {
	switch s {
	case StageIdle, StageAwaitGoal, StageAwaitTime, StageAwaitContact, StageDone:
		return true
	default:
		return false
	}
}

// Goal identifies what the user wants help with.
type Goal string

const (
	GoalWeightLoss    Goal = "kilo_verme"
	GoalWeightGain    Goal = "kilo_alma"
	GoalHealthyEating Goal = "saglikli_beslenme"
	GoalSkinCare      Goal = "cilt"
	GoalBusinessOppty Goal = "is"
)

var goalLabels = map[Goal]string{
	GoalWeightLoss:    "Kilo vermek",
	GoalWeightGain:    "Kilo almak",
	GoalHealthyEating: "Sağlıklı beslenmek",
	GoalSkinCare:      "Cilt beslenmesi",
	GoalBusinessOppty: "İş fırsatı",
}

// Label returns the human-readable Turkish label for the goal.
// Unknown goals fall back to the raw value; an empty goal renders as "-".
func (g Goal) Label() string {
	if label, ok := goalLabels[g]; ok {
		return label
	}
	if g == "" {
		return "-"
	}
	return string(g)
}

// IsValidGoal checks if the given goal is one of the selectable goals.
func IsValidGoal(g Goal) bool {
	_, ok := goalLabels[g]
	return ok
}

// TimeSlot identifies the preferred contact time bucket.
type TimeSlot string

const (
	TimeSlotMorning TimeSlot = "09-12"
	TimeSlotMidday  TimeSlot = "12-18"
	TimeSlotEvening TimeSlot = "18+"
)

var timeSlotLabels = map[TimeSlot]string{
	TimeSlotMorning: "09:00–12:00",
	TimeSlotMidday:  "12:00–18:00",
	TimeSlotEvening: "18:00 ve sonrası",
}

// Label returns the human-readable label for the time slot.
func (t TimeSlot) Label() string {
	if label, ok := timeSlotLabels[t]; ok {
		return label
	}
	if t == "" {
		return "-"
	}
	return string(t)
}

// IsValidTimeSlot checks if the given slot is one of the selectable time slots.
func IsValidTimeSlot(t TimeSlot) bool {
	_, ok := timeSlotLabels[t]
	return ok
}

// PromptKind tags the last prompt sent to a conversation so duplicate
// re-prompts can be suppressed when the user repeats unrecognized input.
type PromptKind string

const (
	PromptKindNone         PromptKind = ""
	PromptKindGoalMenu     PromptKind = "goal_menu"
	PromptKindGoalNudge    PromptKind = "goal_nudge"
	PromptKindTimeMenu     PromptKind = "time_menu"
	PromptKindTimeNudge    PromptKind = "time_nudge"
	PromptKindContactAsk   PromptKind = "contact_ask"
	PromptKindContactNudge PromptKind = "contact_nudge"
)

// Menu token namespaces. Menu selections arrive as namespaced tokens so the
// engine can tell a goal choice from a time choice regardless of stage.
const (
	GoalTokenPrefix = "GOAL:"
	TimeTokenPrefix = "TIME:"
)

// GoalToken builds the menu token for a goal selection.
func GoalToken(g Goal) string { return GoalTokenPrefix + string(g) }

// TimeToken builds the menu token for a time-slot selection.
func TimeToken(t TimeSlot) string { return TimeTokenPrefix + string(t) }

// MenuOption represents a single selectable option in an outbound menu.
type MenuOption struct {
	Label string `json:"label"` // text shown to the user
	Token string `json:"token"` // namespaced value reported back on selection
}

// GoalMenuOptions returns the goal menu in presentation order.
func GoalMenuOptions() []MenuOption {
	return []MenuOption{
		{Label: "Kilo vermek istiyorum", Token: GoalToken(GoalWeightLoss)},
		{Label: "Kilo almak istiyorum", Token: GoalToken(GoalWeightGain)},
		{Label: "Sağlıklı beslenmek istiyorum", Token: GoalToken(GoalHealthyEating)},
		{Label: "Cilt beslenmesi hakkında bilgi almak istiyorum", Token: GoalToken(GoalSkinCare)},
		{Label: "İş fırsatı hakkında bilgi almak istiyorum", Token: GoalToken(GoalBusinessOppty)},
	}
}

// TimeMenuOptions returns the time-slot menu in presentation order.
func TimeMenuOptions() []MenuOption {
	return []MenuOption{
		{Label: "09:00–12:00", Token: TimeToken(TimeSlotMorning)},
		{Label: "12:00–18:00", Token: TimeToken(TimeSlotMidday)},
		{Label: "18:00 ve sonrası", Token: TimeToken(TimeSlotEvening)},
	}
}

// Error variables for better error handling and testability
var (
	ErrEmptyConversationID = errors.New("conversation id cannot be empty")
	ErrUnknownToken        = errors.New("unknown menu token")
	ErrInsufficientContact = errors.New("contact record lacks phone and email")
)

// ContactRecord holds the structured fields extracted from a free-form
// contact message. Absent fields are empty strings.
type ContactRecord struct {
	RawText      string `json:"raw_text"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	SocialHandle string `json:"social_handle,omitempty"`
	Name         string `json:"name,omitempty"`
}

// Sufficient reports whether the record meets the minimum bar for a lead:
// a phone number or an email address. Name and social handle are optional
// enrichments and never gate sufficiency.
func (c ContactRecord) Sufficient() bool {
	return c.Phone != "" || c.Email != ""
}

// Lead is an immutable snapshot of a completed qualification funnel,
// ready for operator follow-up.
type Lead struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	SenderName     string        `json:"sender_name,omitempty"` // display name from the messaging channel
	Goal           Goal          `json:"goal"`
	TimeSlot       TimeSlot      `json:"time_slot"`
	Contact        ContactRecord `json:"contact"`
	CapturedAt     time.Time     `json:"captured_at"`
}

// Validate checks that the lead carries the fields required for delivery.
func (l *Lead) Validate() error {
	if l.ConversationID == "" {
		return ErrEmptyConversationID
	}
	if !l.Contact.Sufficient() {
		return ErrInsufficientContact
	}
	return nil
}

// FormatForOperator renders the lead as the operator notification message.
func (l *Lead) FormatForOperator() string {
	name := l.Contact.Name
	if name == "" {
		name = l.SenderName
	}
	var b strings.Builder
	b.WriteString("🔥 Yeni Lead Geldi\n\n")
	fmt.Fprintf(&b, "👤 İsim: %s\n", orDash(name))
	fmt.Fprintf(&b, "📞 Telefon: %s\n", orDash(l.Contact.Phone))
	fmt.Fprintf(&b, "📧 Mail: %s\n", orDash(l.Contact.Email))
	fmt.Fprintf(&b, "📸 Instagram: %s\n", orDash(l.Contact.SocialHandle))
	fmt.Fprintf(&b, "🎯 Hedef: %s\n", l.Goal.Label())
	fmt.Fprintf(&b, "🕒 Saat: %s", l.TimeSlot.Label())
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// EventType discriminates inbound events from the messaging channel.
type EventType string

const (
	// EventTypeMenuSelection is a selection from a previously sent menu.
	EventTypeMenuSelection EventType = "menu_selection"
	// EventTypeText is a free-form text message.
	EventTypeText EventType = "text"
)

// Event is an inbound event delivered by the messaging channel.
// Token is set for menu selections, Text for text messages.
type Event struct {
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id"`
	Token          string    `json:"token,omitempty"`
	Text           string    `json:"text,omitempty"`
	SenderName     string    `json:"sender_name,omitempty"`
	Time           int64     `json:"time"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
