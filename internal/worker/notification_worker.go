package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/resolveit/helpdesk/internal/events"
	"github.com/resolveit/helpdesk/internal/service"
)

// NotificationWorker turns domain events into outbound notifications.
type NotificationWorker struct {
	notifier service.NotificationService
	logger   *zap.Logger
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(notifier service.NotificationService, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{notifier: notifier, logger: logger}
}

// Register subscribes the worker to the events it reacts to.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, w.onTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, w.onTicketStatusChanged)
	dispatcher.Subscribe(events.EventTicketAssigned, w.onTicketAssigned)
	dispatcher.Subscribe(events.EventInviteCreated, w.onInvite)
	dispatcher.Subscribe(events.EventInviteResent, w.onInvite)
	dispatcher.Subscribe(events.EventPasswordResetRequested, w.onPasswordResetRequested)
}

func (w *NotificationWorker) onTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("Ticket %s received", payload.TicketCode)
	return w.notifier.SendWebhook(ctx, string(event.Type), map[string]any{
		"ticket_id":   event.SubjectID,
		"ticket_code": payload.TicketCode,
		"subject":     subject,
	})
}

func (w *NotificationWorker) onTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	return w.notifier.SendWebhook(ctx, string(event.Type), map[string]any{
		"ticket_id":  event.SubjectID,
		"old_status": payload.OldStatus,
		"new_status": payload.NewStatus,
	})
}

func (w *NotificationWorker) onTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok || payload.NewAssigneeID == nil {
		return nil
	}
	return w.notifier.SendWebhook(ctx, string(event.Type), map[string]any{
		"ticket_id":   event.SubjectID,
		"assignee_id": *payload.NewAssigneeID,
	})
}

func (w *NotificationWorker) onInvite(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.InvitePayload)
	if !ok {
		return nil
	}
	subject := "You have been invited to ResolveIt"
	if event.Type == events.EventInviteResent {
		subject = "Reminder: your ResolveIt invitation"
	}
	return w.notifier.SendEmail(ctx, payload.Email, subject,
		fmt.Sprintf("You have been invited with the %s role.", payload.Role))
}

func (w *NotificationWorker) onPasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return nil
	}
	w.logger.Info("password reset notification queued",
		zap.String("reset_id", payload.ResetID),
		zap.String("user_id", payload.UserID),
	)
	return nil
}
