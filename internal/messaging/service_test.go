package messaging

import (
	"context"
	"strings"
	"testing"

	"github.com/BTreeMap/LeadFunnel/internal/models"
	"github.com/BTreeMap/LeadFunnel/internal/twiliowhatsapp"
	"github.com/BTreeMap/LeadFunnel/internal/whatsapp"
)

func TestCanonicalizePhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+90 555 123 45 67", "905551234567", false},
		{"905551234567", "905551234567", false},
		{"whatsapp:+905551234567", "905551234567", false},
		{"", "", true},
		{"abc", "", true},
		{"12345", "", true},
	}
	for _, tc := range cases {
		got, err := canonicalizePhone(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestRenderMenu(t *testing.T) {
	out := renderMenu("Nasıl yardımcı olabilirim?", models.GoalMenuOptions())
	if !strings.HasPrefix(out, "Nasıl yardımcı olabilirim?") {
		t.Errorf("menu body missing: %q", out)
	}
	if !strings.Contains(out, "1. Kilo vermek istiyorum") {
		t.Errorf("expected numbered first option, got:\n%s", out)
	}
	if !strings.Contains(out, "5. İş fırsatı hakkında bilgi almak istiyorum") {
		t.Errorf("expected numbered last option, got:\n%s", out)
	}
}

func TestMenuTrackerResolve(t *testing.T) {
	tracker := newMenuTracker()
	tracker.Remember("905551112233", models.TimeMenuOptions())

	token, ok := tracker.Resolve("905551112233", " 2 ")
	if !ok || token != models.TimeToken(models.TimeSlotMidday) {
		t.Errorf("expected midday token, got %q (ok=%v)", token, ok)
	}

	if _, ok := tracker.Resolve("905551112233", "9"); ok {
		t.Error("expected out-of-range digit to stay free text")
	}
	if _, ok := tracker.Resolve("905551112233", "merhaba"); ok {
		t.Error("expected plain text to stay free text")
	}
	if _, ok := tracker.Resolve("905551112233", "12"); ok {
		t.Error("expected multi-digit reply to stay free text")
	}
	if _, ok := tracker.Resolve("905559998877", "1"); ok {
		t.Error("expected unknown conversation to stay free text")
	}
}

func TestWhatsAppServiceSendMenuTracksOptions(t *testing.T) {
	service := NewWhatsAppService(whatsapp.NewMockClient())
	ctx := context.Background()

	if err := service.SendMenu(ctx, "+905551112233", "Hedefin nedir?", models.GoalMenuOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, ok := service.menus.Resolve("905551112233", "3")
	if !ok || token != models.GoalToken(models.GoalHealthyEating) {
		t.Errorf("expected healthy-eating token, got %q (ok=%v)", token, ok)
	}
}

func TestWhatsAppServiceRejectsInvalidRecipient(t *testing.T) {
	service := NewWhatsAppService(whatsapp.NewMockClient())
	if err := service.SendMessage(context.Background(), "not-a-number", "merhaba"); err == nil {
		t.Error("expected validation error")
	}
}

func TestTwilioServiceStopped(t *testing.T) {
	service := NewTwilioService(twiliowhatsapp.NewMockClient())
	if err := service.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.SendMessage(context.Background(), "905551112233", "merhaba"); err != ErrServiceStopped {
		t.Errorf("expected ErrServiceStopped, got %v", err)
	}
	// Double stop must not panic.
	if err := service.Stop(); err != nil {
		t.Fatalf("unexpected error on second stop: %v", err)
	}
}

func TestMockServiceInjectResolvesMenu(t *testing.T) {
	service := NewMockService()
	ctx := context.Background()

	if err := service.SendMenu(ctx, "905551112233", "Hedefin nedir?", models.GoalMenuOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.Inject(models.Event{Type: models.EventTypeText, ConversationID: "905551112233", Text: "1"})

	event := <-service.Events()
	if event.Type != models.EventTypeMenuSelection {
		t.Fatalf("expected menu selection, got %s", event.Type)
	}
	if event.Token != models.GoalToken(models.GoalWeightLoss) {
		t.Errorf("expected weight-loss token, got %q", event.Token)
	}
}
