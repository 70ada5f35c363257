package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/helpdesk-br/chamados-service/internal/email"
	"github.com/helpdesk-br/chamados-service/internal/events"
	"github.com/helpdesk-br/chamados-service/internal/repository"
)

// NotificationService mails the destination department's active attendants
// when a ticket is opened. Delivery is best-effort: failures are logged and
// never surface to the request that produced the event.
type NotificationService struct {
	users  repository.UserRepository
	sender email.Sender
	logger *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(users repository.UserRepository, sender email.Sender, logger *zap.Logger) *NotificationService {
	return &NotificationService{users: users, sender: sender, logger: logger}
}

// RegisterHandlers wires the service into the event dispatcher.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.handleTicketCreated)
}

func (s *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		s.logger.Warn("unexpected payload for ticket created event", zap.String("event_id", event.ID))
		return nil
	}

	deptID := payload.DestDeptID
	recipients, err := s.users.ListActiveAttendants(ctx, &deptID)
	if err != nil {
		s.logger.Error("loading attendants for notification failed",
			zap.Int64("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}
	if len(recipients) == 0 {
		// No attendant in the destination department yet; fall back to
		// every active attendant so the ticket is not silently stranded.
		recipients, err = s.users.ListActiveAttendants(ctx, nil)
		if err != nil {
			s.logger.Error("loading fallback attendants failed",
				zap.Int64("ticket_id", event.TicketID), zap.Error(err))
			return nil
		}
	}

	msg := email.TicketCreatedMessage{
		Title:         payload.Title,
		Description:   payload.Description,
		Priority:      string(payload.Priority),
		RequesterName: payload.RequesterName,
	}
	sent := 0
	for _, recipient := range recipients {
		if recipient.Email == nil || *recipient.Email == "" {
			continue
		}
		if err := s.sender.SendTicketCreated(*recipient.Email, recipient.Name, msg); err != nil {
			s.logger.Warn("ticket notification delivery failed",
				zap.Int64("ticket_id", event.TicketID),
				zap.Int64("recipient_id", recipient.ID),
				zap.Error(err))
			continue
		}
		sent++
	}
	s.logger.Info("ticket notifications dispatched",
		zap.Int64("ticket_id", event.TicketID),
		zap.Int("recipients", sent))
	return nil
}
