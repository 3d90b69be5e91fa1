// Package messaging provides the pluggable channel abstraction between the
// funnel and the actual chat transports (Whatsmeow or Twilio WhatsApp).
package messaging

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/BTreeMap/LeadFunnel/internal/models"
)

// Constants for channel configuration
const (
	// DefaultChannelBufferSize defines the buffer size for the inbound event channel
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout defines the timeout for non-blocking channel emission
	DefaultChannelTimeout = 1 * time.Second
)

// ErrServiceStopped is returned when sending through a stopped service.
var ErrServiceStopped = errors.New("messaging service is stopped")

// phoneNumberRegex strips everything that is not a digit during recipient
// canonicalization.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// Service defines a pluggable message delivery abstraction. It supports
// sending text, menus, and typing indicators, and delivers inbound events
// (menu selections and free text) on a channel.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient
	// identifier. Returns the canonicalized recipient or an error.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a plain text message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error

	// SendMenu sends a prompt with an ordered list of selectable options.
	// A later bare-number reply from the recipient is reported as a
	// menu-selection event carrying the chosen option's token.
	SendMenu(ctx context.Context, to string, body string, options []models.MenuOption) error

	// SendTyping shows a typing indicator to the recipient, best effort.
	SendTyping(ctx context.Context, to string) error

	// Start begins any background processing (e.g., transport event handling).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Events returns the channel of inbound events.
	Events() <-chan models.Event
}

// canonicalizePhone reduces a recipient identifier to bare digits and
// validates a plausible length.
func canonicalizePhone(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}
	return canonical, nil
}

// renderMenu formats a menu prompt as a numbered list, the WhatsApp stand-in
// for inline buttons.
func renderMenu(body string, options []models.MenuOption) string {
	var b strings.Builder
	b.WriteString(body)
	for i, opt := range options {
		fmt.Fprintf(&b, "\n%d. %s", i+1, opt.Label)
	}
	b.WriteString("\n\n(Numarayla cevap verebilirsin 👇)")
	return b.String()
}

// menuTracker remembers the last menu sent per conversation so that a bare
// digit reply can be resolved back to the selected option's token. The menu
// stays active until replaced, which lets a replayed selection resolve to the
// same token (the engine treats out-of-order selections as no-ops).
type menuTracker struct {
	mu    sync.RWMutex
	menus map[string][]models.MenuOption
}

func newMenuTracker() *menuTracker {
	return &menuTracker{menus: make(map[string][]models.MenuOption)}
}

// Remember records the active menu for a conversation.
func (m *menuTracker) Remember(conversationID string, options []models.MenuOption) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menus[conversationID] = options
}

// Resolve maps a reply to the active menu's token. Only a lone digit
// selecting an existing option resolves; anything else is free text.
func (m *menuTracker) Resolve(conversationID, text string) (string, bool) {
	reply := strings.TrimSpace(text)
	if len(reply) != 1 || reply < "1" || reply > "9" {
		return "", false
	}

	m.mu.RLock()
	options := m.menus[conversationID]
	m.mu.RUnlock()

	index := int(reply[0] - '1')
	if index < 0 || index >= len(options) {
		return "", false
	}
	return options[index].Token, true
}
