// Package funnel implements the per-conversation qualification dialogue:
// a strictly linear, forward-only state machine that greets the user, collects
// goal, time slot, and contact details, emits the captured lead, and then
// hands the conversation to the generative assistant.
package funnel

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BTreeMap/LeadFunnel/internal/extract"
	"github.com/BTreeMap/LeadFunnel/internal/messaging"
	"github.com/BTreeMap/LeadFunnel/internal/models"
	"github.com/BTreeMap/LeadFunnel/internal/notify"
	"github.com/BTreeMap/LeadFunnel/internal/session"
	"github.com/google/uuid"
)

// Completer generates an assistant answer for open-ended chat after the
// funnel completes. Implemented by genai.Client.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userText string, temperature float64) (string, error)
}

// LeadArchiver records captured leads for later inspection. Implemented by
// store.Store. Archival is best effort, like operator notification.
type LeadArchiver interface {
	AddLead(lead models.Lead) error
}

// Engine is the dialogue state machine. All methods must be called with the
// session store's per-conversation lock held (the Orchestrator does this), so
// events for one conversation are processed strictly in arrival order.
type Engine struct {
	sessions   session.Store
	msgService messaging.Service
	completer  Completer
	notifier   notify.Notifier
	archive    LeadArchiver
}

// NewEngine creates a dialogue engine. notifier and archive may be nil, in
// which case lead delivery or archival is skipped with a warning.
func NewEngine(sessions session.Store, msgService messaging.Service, completer Completer, notifier notify.Notifier, archive LeadArchiver) *Engine {
	return &Engine{
		sessions:   sessions,
		msgService: msgService,
		completer:  completer,
		notifier:   notifier,
		archive:    archive,
	}
}

// HandleEvent dispatches one inbound event for its conversation. Collaborator
// failures are recovered locally; the error return reports them for logging
// only and never indicates an inconsistent session.
func (e *Engine) HandleEvent(ctx context.Context, event models.Event) error {
	if event.ConversationID == "" {
		return models.ErrEmptyConversationID
	}

	sess := e.sessions.GetOrCreate(event.ConversationID)
	if event.SenderName != "" {
		sess.SenderName = event.SenderName
	}

	switch event.Type {
	case models.EventTypeMenuSelection:
		return e.handleMenuSelection(ctx, sess, event.Token)
	case models.EventTypeText:
		return e.handleText(ctx, sess, event.Text)
	default:
		slog.Warn("Engine ignoring unknown event type", "type", event.Type, "conversation_id", event.ConversationID)
		return nil
	}
}

// HandleRestart clears the session back to idle from any stage. The next
// event from the conversation is then treated as first contact.
func (e *Engine) HandleRestart(conversationID string) {
	sess := e.sessions.GetOrCreate(conversationID)
	slog.Info("Engine restarting session", "conversation_id", conversationID, "previous_stage", sess.Stage)
	sess.Reset()
}

// handleMenuSelection advances the funnel on a valid, in-order selection.
// Selections that do not match the current stage are no-ops so that replayed
// or duplicate events cannot move the funnel backwards or skip a stage.
func (e *Engine) handleMenuSelection(ctx context.Context, sess *session.Session, token string) error {
	// First contact auto-starts the funnel regardless of event shape.
	if sess.Stage == models.StageIdle {
		return e.sendWelcome(ctx, sess)
	}

	switch {
	case strings.HasPrefix(token, models.GoalTokenPrefix):
		goal := models.Goal(strings.TrimPrefix(token, models.GoalTokenPrefix))
		if sess.Stage != models.StageAwaitGoal || !models.IsValidGoal(goal) {
			slog.Debug("Engine ignoring out-of-order goal selection", "conversation_id", sess.ConversationID, "stage", sess.Stage, "token", token)
			return nil
		}
		sess.Goal = goal
		return e.sendTimeMenu(ctx, sess)

	case strings.HasPrefix(token, models.TimeTokenPrefix):
		slot := models.TimeSlot(strings.TrimPrefix(token, models.TimeTokenPrefix))
		if sess.Stage != models.StageAwaitTime || !models.IsValidTimeSlot(slot) {
			slog.Debug("Engine ignoring out-of-order time selection", "conversation_id", sess.ConversationID, "stage", sess.Stage, "token", token)
			return nil
		}
		sess.TimeSlot = slot
		return e.sendContactAsk(ctx, sess)

	default:
		slog.Debug("Engine ignoring unknown menu token", "conversation_id", sess.ConversationID, "token", token)
		return models.ErrUnknownToken
	}
}

// handleText routes free text by stage: menu stages nudge, the contact stage
// runs the extractor, and the done stage defers to the assistant.
func (e *Engine) handleText(ctx context.Context, sess *session.Session, text string) error {
	switch sess.Stage {
	case models.StageIdle:
		return e.sendWelcome(ctx, sess)
	case models.StageAwaitGoal:
		return e.nudgeGoal(ctx, sess)
	case models.StageAwaitTime:
		return e.nudgeTime(ctx, sess)
	case models.StageAwaitContact:
		return e.handleContactText(ctx, sess, text)
	case models.StageDone:
		return e.handleAssistantChat(ctx, sess, text)
	default:
		// Unknown stage value: recover by restarting the funnel.
		slog.Warn("Engine found session in unknown stage, restarting", "conversation_id", sess.ConversationID, "stage", sess.Stage)
		sess.Reset()
		return e.sendWelcome(ctx, sess)
	}
}

// sendWelcome starts the funnel. The stage is committed before the send: the
// goal menu is idempotent, so a failed send just means the next event
// re-nudges rather than leaving the user stuck.
func (e *Engine) sendWelcome(ctx context.Context, sess *session.Session) error {
	sess.Stage = models.StageAwaitGoal
	sess.LastPrompt = models.PromptKindGoalMenu
	sess.Touch()
	slog.Info("Engine starting funnel", "conversation_id", sess.ConversationID)
	return e.msgService.SendMenu(ctx, sess.ConversationID, welcomeBody, models.GoalMenuOptions())
}

func (e *Engine) sendTimeMenu(ctx context.Context, sess *session.Session) error {
	sess.Stage = models.StageAwaitTime
	sess.LastPrompt = models.PromptKindTimeMenu
	sess.Touch()
	slog.Info("Engine goal captured", "conversation_id", sess.ConversationID, "goal", sess.Goal)
	return e.msgService.SendMenu(ctx, sess.ConversationID, timeMenuBody, models.TimeMenuOptions())
}

func (e *Engine) sendContactAsk(ctx context.Context, sess *session.Session) error {
	sess.Stage = models.StageAwaitContact
	sess.LastPrompt = models.PromptKindContactAsk
	sess.Touch()
	slog.Info("Engine time slot captured", "conversation_id", sess.ConversationID, "time_slot", sess.TimeSlot)
	return e.msgService.SendMessage(ctx, sess.ConversationID, contactAskBody)
}

// nudgeGoal re-prompts the goal menu, suppressed when the identical nudge was
// the last thing sent.
func (e *Engine) nudgeGoal(ctx context.Context, sess *session.Session) error {
	if sess.LastPrompt == models.PromptKindGoalNudge {
		slog.Debug("Engine suppressing duplicate goal nudge", "conversation_id", sess.ConversationID)
		return nil
	}
	sess.LastPrompt = models.PromptKindGoalNudge
	sess.Touch()
	if err := e.msgService.SendMessage(ctx, sess.ConversationID, goalNudgeBody); err != nil {
		return err
	}
	return e.msgService.SendMenu(ctx, sess.ConversationID, welcomeBody, models.GoalMenuOptions())
}

// nudgeTime re-prompts the time menu, suppressed when repeated.
func (e *Engine) nudgeTime(ctx context.Context, sess *session.Session) error {
	if sess.LastPrompt == models.PromptKindTimeNudge {
		slog.Debug("Engine suppressing duplicate time nudge", "conversation_id", sess.ConversationID)
		return nil
	}
	sess.LastPrompt = models.PromptKindTimeNudge
	sess.Touch()
	if err := e.msgService.SendMessage(ctx, sess.ConversationID, timeNudgeBody); err != nil {
		return err
	}
	return e.msgService.SendMenu(ctx, sess.ConversationID, timeMenuBody, models.TimeMenuOptions())
}

// handleContactText runs the extractor over the contact reply. Insufficient
// records re-prompt (suppressed when repeated) and leave the stage unchanged;
// a sufficient record completes the funnel.
func (e *Engine) handleContactText(ctx context.Context, sess *session.Session, text string) error {
	record, sufficient := extract.Extract(text)
	if !sufficient {
		if sess.LastPrompt == models.PromptKindContactNudge {
			slog.Debug("Engine suppressing duplicate contact nudge", "conversation_id", sess.ConversationID)
			return nil
		}
		sess.LastPrompt = models.PromptKindContactNudge
		sess.Touch()
		return e.msgService.SendMessage(ctx, sess.ConversationID, contactNudgeBody)
	}

	// Commit the completed funnel before any outbound call so that a failed
	// acknowledgment or notification can never lose the captured contact.
	sess.Contact = &record
	sess.Stage = models.StageDone
	sess.LastPrompt = models.PromptKindNone
	sess.Touch()

	lead := models.Lead{
		ID:             uuid.NewString(),
		ConversationID: sess.ConversationID,
		SenderName:     sess.SenderName,
		Goal:           sess.Goal,
		TimeSlot:       sess.TimeSlot,
		Contact:        record,
		CapturedAt:     time.Now(),
	}
	slog.Info("Engine lead captured", "conversation_id", sess.ConversationID, "lead_id", lead.ID,
		"has_phone", record.Phone != "", "has_email", record.Email != "")

	if err := e.msgService.SendMessage(ctx, sess.ConversationID, thanksBody); err != nil {
		slog.Error("Engine failed to send completion acknowledgment", "error", err, "conversation_id", sess.ConversationID)
	}

	e.deliverLead(ctx, lead)
	return nil
}

// deliverLead hands the lead to the operator notifier and the archive.
// Both are best effort: failures are logged and never retried, never rolled
// back, and never shown to the end user.
func (e *Engine) deliverLead(ctx context.Context, lead models.Lead) {
	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, lead); err != nil {
			slog.Error("Engine operator notification failed", "error", err, "lead_id", lead.ID)
		}
	} else {
		slog.Warn("Engine has no operator notifier configured, lead not delivered", "lead_id", lead.ID)
	}

	if e.archive != nil {
		if err := e.archive.AddLead(lead); err != nil {
			slog.Error("Engine lead archival failed", "error", err, "lead_id", lead.ID)
		}
	}
}

// handleAssistantChat forwards post-funnel chat to the completion service,
// grounded in the captured qualification context. Any failure becomes the
// fixed fallback message; the stage never changes.
func (e *Engine) handleAssistantChat(ctx context.Context, sess *session.Session, text string) error {
	if err := e.msgService.SendTyping(ctx, sess.ConversationID); err != nil {
		slog.Debug("Engine typing indicator failed", "error", err, "conversation_id", sess.ConversationID)
	}

	if e.completer == nil {
		return e.msgService.SendMessage(ctx, sess.ConversationID, completionFallbackBody)
	}

	answer, err := e.completer.Complete(ctx, buildSystemPrompt(sess), text, assistantTemperature)
	if err != nil {
		slog.Error("Engine completion failed, sending fallback", "error", err, "conversation_id", sess.ConversationID)
		return e.msgService.SendMessage(ctx, sess.ConversationID, completionFallbackBody)
	}
	return e.msgService.SendMessage(ctx, sess.ConversationID, answer)
}
