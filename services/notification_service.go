package services

import (
	"log"

	"github.com/marcus-holt/materials-tracker-api/config"
	"github.com/marcus-holt/materials-tracker-api/models"
)

// NotificationService turns lifecycle events into persistent stakeholder
// notifications. It owns no engine state: it only listens.
type NotificationService struct{}

var notificationServiceInstance *NotificationService

// InitNotificationService subscribes the notification service to the event bus
func InitNotificationService(bus *EventBus) *NotificationService {
	s := &NotificationService{}
	bus.Subscribe(EventOrderCreated, s.handle(models.NotificationOrderCreated))
	bus.Subscribe(EventStatusChanged, s.handle(models.NotificationStatusUpdate))
	bus.Subscribe(EventDriverAssigned, s.handle(models.NotificationStatusUpdate))
	bus.Subscribe(EventBackOrdered, s.handle(models.NotificationBackOrdered))
	bus.Subscribe(EventDeliveryScheduled, s.handle(models.NotificationDeliveryScheduled))
	notificationServiceInstance = s
	return s
}

// GetNotificationService returns the initialized notification service instance
func GetNotificationService() *NotificationService {
	return notificationServiceInstance
}

// handle builds an event handler that persists a notification of the given type
func (s *NotificationService) handle(notificationType models.NotificationType) EventHandler {
	return func(event Event) {
		notification := models.Notification{
			Type:        notificationType,
			OrderID:     event.OrderID,
			OrderNumber: event.OrderNumber,
			Message:     event.Message,
			UpdatedByID: event.Actor.ID,
		}

		db := config.GetDB()
		if db == nil {
			log.Printf("notification dropped, no database configured: %s", event.Message)
			return
		}
		if err := db.Create(&notification).Error; err != nil {
			// A failed notification must not fail the mutation that caused it
			log.Printf("failed to persist notification for order %s: %v", event.OrderNumber, err)
		}
	}
}
