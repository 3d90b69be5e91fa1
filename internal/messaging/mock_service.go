package messaging

import (
	"context"
	"sync"

	"github.com/BTreeMap/LeadFunnel/internal/models"
)

// MockService implements Service for tests. It records outbound traffic and
// lets tests inject inbound events and send failures.
type MockService struct {
	mu          sync.Mutex
	Messages    []MockMessage
	Menus       []MockMenu
	TypingCalls []string
	SendErr     error

	menus   *menuTracker
	inbound chan models.Event
}

// MockMessage is one recorded outbound text message.
type MockMessage struct {
	To   string
	Body string
}

// MockMenu is one recorded outbound menu.
type MockMenu struct {
	To      string
	Body    string
	Options []models.MenuOption
}

// NewMockService creates a MockService with a buffered inbound channel.
func NewMockService() *MockService {
	return &MockService{
		menus:   newMenuTracker(),
		inbound: make(chan models.Event, DefaultChannelBufferSize),
	}
}

func (s *MockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

func (s *MockService) SendMessage(ctx context.Context, to string, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendErr != nil {
		return s.SendErr
	}
	s.Messages = append(s.Messages, MockMessage{To: to, Body: body})
	return nil
}

func (s *MockService) SendMenu(ctx context.Context, to string, body string, options []models.MenuOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendErr != nil {
		return s.SendErr
	}
	s.Menus = append(s.Menus, MockMenu{To: to, Body: body, Options: options})
	s.menus.Remember(to, options)
	return nil
}

func (s *MockService) SendTyping(ctx context.Context, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TypingCalls = append(s.TypingCalls, to)
	return nil
}

func (s *MockService) Start(ctx context.Context) error { return nil }

func (s *MockService) Stop() error {
	close(s.inbound)
	return nil
}

func (s *MockService) Events() <-chan models.Event {
	return s.inbound
}

// Inject delivers an inbound event as if it came from the transport,
// resolving digit replies against the active menu like the real channels do.
func (s *MockService) Inject(event models.Event) {
	if event.Type == models.EventTypeText {
		if token, ok := s.menus.Resolve(event.ConversationID, event.Text); ok {
			event = models.Event{
				Type:           models.EventTypeMenuSelection,
				ConversationID: event.ConversationID,
				Token:          token,
				SenderName:     event.SenderName,
				Time:           event.Time,
			}
		}
	}
	s.inbound <- event
}

// MessageCount returns the number of recorded text messages.
func (s *MockService) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Messages)
}

// MenuCount returns the number of recorded menus.
func (s *MockService) MenuCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Menus)
}
