// Package notify delivers captured leads to the operator.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/LeadFunnel/internal/messaging"
	"github.com/BTreeMap/LeadFunnel/internal/models"
)

// Notifier delivers a captured lead to the operator. Delivery is best effort:
// callers log failures and move on, they never retry or surface them to the
// end user.
type Notifier interface {
	Notify(ctx context.Context, lead models.Lead) error
}

// MessengerNotifier sends the lead summary to the operator's own conversation
// over the same messaging channel the funnel uses.
type MessengerNotifier struct {
	msgService messaging.Service
	operatorID string
}

// NewMessengerNotifier creates a notifier targeting the given operator
// conversation id.
func NewMessengerNotifier(msgService messaging.Service, operatorID string) (*MessengerNotifier, error) {
	canonical, err := msgService.ValidateAndCanonicalizeRecipient(operatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid operator id: %w", err)
	}
	return &MessengerNotifier{msgService: msgService, operatorID: canonical}, nil
}

// Notify sends the formatted lead to the operator.
func (n *MessengerNotifier) Notify(ctx context.Context, lead models.Lead) error {
	if err := lead.Validate(); err != nil {
		return fmt.Errorf("lead not deliverable: %w", err)
	}
	if err := n.msgService.SendMessage(ctx, n.operatorID, lead.FormatForOperator()); err != nil {
		slog.Error("Notifier failed to deliver lead", "error", err, "lead_id", lead.ID, "operator", n.operatorID)
		return fmt.Errorf("failed to notify operator: %w", err)
	}
	slog.Info("Notifier delivered lead to operator", "lead_id", lead.ID, "operator", n.operatorID)
	return nil
}
