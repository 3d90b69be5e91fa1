package models

import (
	"strings"
	"testing"
	"time"
)

func TestGoalLabel(t *testing.T) {
	if got := GoalWeightLoss.Label(); got != "Kilo vermek" {
		t.Errorf("expected 'Kilo vermek', got %q", got)
	}
	if got := Goal("").Label(); got != "-" {
		t.Errorf("expected '-' for empty goal, got %q", got)
	}
	if got := Goal("mystery").Label(); got != "mystery" {
		t.Errorf("expected raw fallback, got %q", got)
	}
}

func TestTimeSlotLabel(t *testing.T) {
	if got := TimeSlotEvening.Label(); got != "18:00 ve sonrası" {
		t.Errorf("unexpected label %q", got)
	}
	if got := TimeSlot("").Label(); got != "-" {
		t.Errorf("expected '-' for empty slot, got %q", got)
	}
}

func TestContactRecordSufficient(t *testing.T) {
	cases := []struct {
		name string
		rec  ContactRecord
		want bool
	}{
		{"empty", ContactRecord{}, false},
		{"phone only", ContactRecord{Phone: "0555 123 45 67"}, true},
		{"email only", ContactRecord{Email: "ali@example.com"}, true},
		{"name and handle only", ContactRecord{Name: "Ali Veli", SocialHandle: "@aliveli"}, false},
	}
	for _, tc := range cases {
		if got := tc.rec.Sufficient(); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestLeadValidate(t *testing.T) {
	lead := Lead{ConversationID: "905551112233", Contact: ContactRecord{Phone: "0555 111 22 33"}}
	if err := lead.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lead = Lead{Contact: ContactRecord{Phone: "0555 111 22 33"}}
	if err := lead.Validate(); err != ErrEmptyConversationID {
		t.Errorf("expected ErrEmptyConversationID, got %v", err)
	}

	lead = Lead{ConversationID: "905551112233", Contact: ContactRecord{Name: "Ali"}}
	if err := lead.Validate(); err != ErrInsufficientContact {
		t.Errorf("expected ErrInsufficientContact, got %v", err)
	}
}

func TestLeadFormatForOperator(t *testing.T) {
	lead := Lead{
		ConversationID: "905551112233",
		SenderName:     "Umut",
		Goal:           GoalSkinCare,
		TimeSlot:       TimeSlotMorning,
		Contact:        ContactRecord{Phone: "0555 123 45 67", SocialHandle: "@umutgg"},
		CapturedAt:     time.Now(),
	}
	out := lead.FormatForOperator()
	for _, want := range []string{"Yeni Lead Geldi", "İsim: Umut", "Telefon: 0555 123 45 67", "Mail: -", "Instagram: @umutgg", "Hedef: Cilt beslenmesi", "Saat: 09:00–12:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("operator message missing %q:\n%s", want, out)
		}
	}
}

func TestMenuTokens(t *testing.T) {
	for _, opt := range GoalMenuOptions() {
		if !strings.HasPrefix(opt.Token, GoalTokenPrefix) {
			t.Errorf("goal option token %q lacks namespace", opt.Token)
		}
		if !IsValidGoal(Goal(strings.TrimPrefix(opt.Token, GoalTokenPrefix))) {
			t.Errorf("goal option token %q does not map to a valid goal", opt.Token)
		}
	}
	for _, opt := range TimeMenuOptions() {
		if !strings.HasPrefix(opt.Token, TimeTokenPrefix) {
			t.Errorf("time option token %q lacks namespace", opt.Token)
		}
		if !IsValidTimeSlot(TimeSlot(strings.TrimPrefix(opt.Token, TimeTokenPrefix))) {
			t.Errorf("time option token %q does not map to a valid slot", opt.Token)
		}
	}
}
