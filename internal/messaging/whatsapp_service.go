package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/BTreeMap/LeadFunnel/internal/models"
	"github.com/BTreeMap/LeadFunnel/internal/whatsapp"
	"go.mau.fi/whatsmeow/types/events"
)

// WhatsAppService implements Service using the Whatsmeow-based whatsapp client.
type WhatsAppService struct {
	client   whatsapp.Sender
	waClient *whatsapp.Client // set when the client supports event handling
	menus    *menuTracker
	inbound  chan models.Event
	done     chan struct{}
}

// NewWhatsAppService creates a new WhatsAppService wrapping the given sender.
func NewWhatsAppService(client whatsapp.Sender) *WhatsAppService {
	service := &WhatsAppService{
		client:  client,
		menus:   newMenuTracker(),
		inbound: make(chan models.Event, DefaultChannelBufferSize),
		done:    make(chan struct{}),
	}

	// Only a full client can feed inbound events; a mock stays send-only.
	if waClient, ok := client.(*whatsapp.Client); ok {
		service.waClient = waClient
		slog.Debug("WhatsAppService created with full client for event handling")
	} else {
		slog.Debug("WhatsAppService created with interface client (likely mock)")
	}

	return service
}

// ValidateAndCanonicalizeRecipient reduces a WhatsApp recipient to bare digits.
func (s *WhatsAppService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

// Start begins processing transport events.
func (s *WhatsAppService) Start(ctx context.Context) error {
	slog.Debug("WhatsAppService Start invoked")
	if s.waClient != nil {
		go s.handleEvents(ctx)
		slog.Debug("WhatsAppService event handler started")
	}
	return nil
}

// Stop stops background processing and closes the event channel.
func (s *WhatsAppService) Stop() error {
	slog.Info("WhatsAppService Stop invoked")
	close(s.done)
	close(s.inbound)
	if s.waClient != nil {
		s.waClient.Disconnect()
	}
	return nil
}

// SendMessage sends a plain text message.
func (s *WhatsAppService) SendMessage(ctx context.Context, to string, body string) error {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("WhatsAppService SendMessage validation error", "error", err, "to", to)
		return err
	}
	if err := s.client.SendMessage(ctx, canonicalTo, body); err != nil {
		slog.Error("WhatsAppService SendMessage error", "error", err, "to", canonicalTo)
		return err
	}
	slog.Debug("WhatsAppService message sent", "to", canonicalTo, "body_length", len(body))
	return nil
}

// SendMenu sends the prompt as a numbered list and remembers the options so
// a digit reply can be resolved to the selected token.
func (s *WhatsAppService) SendMenu(ctx context.Context, to string, body string, options []models.MenuOption) error {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("WhatsAppService SendMenu validation error", "error", err, "to", to)
		return err
	}
	if err := s.client.SendMessage(ctx, canonicalTo, renderMenu(body, options)); err != nil {
		slog.Error("WhatsAppService SendMenu error", "error", err, "to", canonicalTo)
		return err
	}
	s.menus.Remember(canonicalTo, options)
	slog.Debug("WhatsAppService menu sent", "to", canonicalTo, "options", len(options))
	return nil
}

// SendTyping shows a composing indicator, best effort.
func (s *WhatsAppService) SendTyping(ctx context.Context, to string) error {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}
	return s.client.SendTyping(ctx, canonicalTo)
}

// Events returns the channel of inbound events.
func (s *WhatsAppService) Events() <-chan models.Event {
	return s.inbound
}

// handleEvents registers with the whatsmeow client and feeds text messages
// into the inbound channel until the context is cancelled.
func (s *WhatsAppService) handleEvents(ctx context.Context) {
	if s.waClient == nil || s.waClient.GetClient() == nil {
		slog.Error("WhatsAppService handleEvents: no client available")
		return
	}

	s.waClient.GetClient().AddEventHandler(func(evt interface{}) {
		if msg, ok := evt.(*events.Message); ok {
			s.handleIncomingMessage(msg)
		}
	})
	slog.Debug("WhatsAppService event handler registered")

	<-ctx.Done()
	slog.Debug("WhatsAppService handleEvents stopping due to context cancellation")
}

// handleIncomingMessage converts a WhatsApp message into an inbound event.
// A bare digit reply matching the active menu becomes a menu selection;
// anything else is free text. Non-text payloads are ignored.
func (s *WhatsAppService) handleIncomingMessage(evt *events.Message) {
	if evt.Message == nil || evt.Info.IsFromMe {
		return
	}

	var messageText string
	if evt.Message.Conversation != nil {
		messageText = *evt.Message.Conversation
	} else if evt.Message.ExtendedTextMessage != nil && evt.Message.ExtendedTextMessage.Text != nil {
		messageText = *evt.Message.ExtendedTextMessage.Text
	} else {
		slog.Debug("WhatsAppService ignoring non-text message", "from", evt.Info.Sender.String())
		return
	}

	conversationID, err := s.ValidateAndCanonicalizeRecipient(evt.Info.Sender.User)
	if err != nil {
		slog.Debug("WhatsAppService ignoring message from invalid sender", "error", err, "from", evt.Info.Sender.String())
		return
	}

	event := models.Event{
		Type:           models.EventTypeText,
		ConversationID: conversationID,
		Text:           messageText,
		SenderName:     evt.Info.PushName,
		Time:           evt.Info.Timestamp.Unix(),
	}
	if token, ok := s.menus.Resolve(conversationID, messageText); ok {
		event = models.Event{
			Type:           models.EventTypeMenuSelection,
			ConversationID: conversationID,
			Token:          token,
			SenderName:     evt.Info.PushName,
			Time:           evt.Info.Timestamp.Unix(),
		}
	}

	select {
	case s.inbound <- event:
		slog.Debug("WhatsAppService inbound event forwarded", "from", conversationID, "type", event.Type)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("WhatsAppService inbound channel blocked, dropping event", "from", conversationID, "timeout", DefaultChannelTimeout)
	}
}
