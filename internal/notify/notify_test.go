package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/BTreeMap/LeadFunnel/internal/messaging"
	"github.com/BTreeMap/LeadFunnel/internal/models"
)

func testLead() models.Lead {
	return models.Lead{
		ID:             "lead-1",
		ConversationID: "905551112233",
		Goal:           models.GoalWeightLoss,
		TimeSlot:       models.TimeSlotMorning,
		Contact:        models.ContactRecord{Name: "Ali Veli", Phone: "0555 123 45 67"},
	}
}

func TestNotifyDeliversFormattedLead(t *testing.T) {
	service := messaging.NewMockService()
	notifier, err := NewMessengerNotifier(service, "+90 555 000 11 22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := notifier.Notify(context.Background(), testLead()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(service.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(service.Messages))
	}
	msg := service.Messages[0]
	if msg.To != "905550001122" {
		t.Errorf("expected canonical operator id, got %q", msg.To)
	}
	if !strings.Contains(msg.Body, "Yeni Lead Geldi") || !strings.Contains(msg.Body, "Ali Veli") {
		t.Errorf("unexpected notification body:\n%s", msg.Body)
	}
}

func TestNotifyRejectsInvalidOperator(t *testing.T) {
	if _, err := NewMessengerNotifier(messaging.NewMockService(), "nope"); err == nil {
		t.Error("expected error for invalid operator id")
	}
}

func TestNotifyRejectsInsufficientLead(t *testing.T) {
	notifier, err := NewMessengerNotifier(messaging.NewMockService(), "905550001122")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lead := testLead()
	lead.Contact = models.ContactRecord{Name: "Ali"}
	if err := notifier.Notify(context.Background(), lead); !errors.Is(err, models.ErrInsufficientContact) {
		t.Errorf("expected ErrInsufficientContact, got %v", err)
	}
}

func TestNotifyPropagatesSendFailure(t *testing.T) {
	service := messaging.NewMockService()
	notifier, err := NewMessengerNotifier(service, "905550001122")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.SendErr = errors.New("transport down")
	if err := notifier.Notify(context.Background(), testLead()); err == nil {
		t.Error("expected delivery error")
	}
}
