package funnel

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BTreeMap/LeadFunnel/internal/messaging"
	"github.com/BTreeMap/LeadFunnel/internal/models"
	"github.com/BTreeMap/LeadFunnel/internal/session"
)

// Restart commands recognized in free text. "/start" matches the bot
// command users already know from other messengers.
var restartCommands = map[string]bool{
	"/start":   true,
	"/restart": true,
}

// Orchestrator connects the messaging channel to the dialogue engine. It
// consumes inbound events, serializes them per conversation, and dispatches
// them to the engine. It performs no funnel logic of its own.
type Orchestrator struct {
	engine     *Engine
	msgService messaging.Service
	sessions   session.Store
}

// NewOrchestrator creates an orchestrator over the given engine.
func NewOrchestrator(engine *Engine, msgService messaging.Service, sessions session.Store) *Orchestrator {
	return &Orchestrator{
		engine:     engine,
		msgService: msgService,
		sessions:   sessions,
	}
}

// Start begins consuming inbound events until the context is cancelled or
// the messaging service closes its event channel. Each event is handled in
// its own goroutine under the per-conversation lock, so a slow completion
// call for one conversation never stalls another conversation's events.
func (o *Orchestrator) Start(ctx context.Context) {
	slog.Info("Orchestrator starting event processing")

	go func() {
		defer slog.Info("Orchestrator stopped event processing")
		for {
			select {
			case event, ok := <-o.msgService.Events():
				if !ok {
					slog.Debug("Orchestrator event channel closed")
					return
				}
				go o.dispatch(ctx, event)
			case <-ctx.Done():
				slog.Debug("Orchestrator stopping due to context cancellation")
				return
			}
		}
	}()
}

// dispatch handles one inbound event under the conversation's lock.
func (o *Orchestrator) dispatch(ctx context.Context, event models.Event) {
	if event.ConversationID == "" {
		slog.Warn("Orchestrator dropping event without conversation id", "type", event.Type)
		return
	}

	o.sessions.Lock(event.ConversationID)
	defer o.sessions.Unlock(event.ConversationID)

	if event.Type == models.EventTypeText {
		trimmed := strings.TrimSpace(event.Text)
		if restartCommands[strings.ToLower(trimmed)] {
			o.engine.HandleRestart(event.ConversationID)
			return
		}
		// Other slash commands are not part of the funnel.
		if strings.HasPrefix(trimmed, "/") {
			slog.Debug("Orchestrator ignoring unrecognized command", "conversation_id", event.ConversationID, "command", trimmed)
			return
		}
		if trimmed == "" {
			return
		}
	}

	if err := o.engine.HandleEvent(ctx, event); err != nil {
		slog.Error("Orchestrator event handling failed", "error", err, "conversation_id", event.ConversationID, "type", event.Type)
	}
}
