package messaging

import (
	"context"
	"log/slog"
	"sync"

	"github.com/BTreeMap/LeadFunnel/internal/models"
	"github.com/BTreeMap/LeadFunnel/internal/twiliowhatsapp"
)

// TwilioService implements Service using the Twilio REST API. It is a
// send-only transport: inbound events require the Whatsmeow channel, so its
// event channel never produces.
type TwilioService struct {
	client  twiliowhatsapp.Sender
	menus   *menuTracker
	inbound chan models.Event
	mu      sync.RWMutex
	stopped bool
}

// NewTwilioService creates a new TwilioService wrapping the given sender.
func NewTwilioService(client twiliowhatsapp.Sender) *TwilioService {
	return &TwilioService{
		client:  client,
		menus:   newMenuTracker(),
		inbound: make(chan models.Event, DefaultChannelBufferSize),
	}
}

// ValidateAndCanonicalizeRecipient reduces a recipient to bare digits.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

// Start is a no-op: Twilio delivers no live events here.
func (s *TwilioService) Start(ctx context.Context) error {
	return nil
}

// Stop closes the event channel and marks the service stopped.
func (s *TwilioService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.inbound)
	return nil
}

// SendMessage sends a plain text message via Twilio.
func (s *TwilioService) SendMessage(ctx context.Context, to string, body string) error {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		return ErrServiceStopped
	}

	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("TwilioService SendMessage validation error", "error", err, "to", to)
		return err
	}
	return s.client.SendMessage(ctx, canonicalTo, body)
}

// SendMenu sends the prompt as a numbered list, same contract as the
// Whatsmeow channel.
func (s *TwilioService) SendMenu(ctx context.Context, to string, body string, options []models.MenuOption) error {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("TwilioService SendMenu validation error", "error", err, "to", to)
		return err
	}
	if err := s.SendMessage(ctx, canonicalTo, renderMenu(body, options)); err != nil {
		return err
	}
	s.menus.Remember(canonicalTo, options)
	return nil
}

// SendTyping is a no-op: the Twilio API has no typing indicator.
func (s *TwilioService) SendTyping(ctx context.Context, to string) error {
	slog.Debug("TwilioService SendTyping ignored (unsupported)", "to", to)
	return nil
}

// Events returns the (never-producing) inbound event channel.
func (s *TwilioService) Events() <-chan models.Event {
	return s.inbound
}
