package worker

import (
	"github.com/helpdesk-br/chamados-service/internal/events"
	"github.com/helpdesk-br/chamados-service/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the
// event dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers(dispatcher)
}
