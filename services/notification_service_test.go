package services

import (
	"testing"

	"github.com/marcus-holt/materials-tracker-api/config"
	"github.com/marcus-holt/materials-tracker-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupNotificationTest(t *testing.T) (*gorm.DB, *EventBus) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Notification{}))

	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(nil) })

	bus := NewEventBus()
	InitNotificationService(bus)
	return db, bus
}

func TestNotificationService_StatusChanged(t *testing.T) {
	db, bus := setupNotificationTest(t)

	actor := models.User{ID: 4, Name: "Shop Manager", Role: models.RoleShopManager}
	notes := "Pulling started"
	bus.Publish(Event{
		Type:        EventStatusChanged,
		OrderID:     12,
		OrderNumber: "ORD-2026-012",
		OldStatus:   models.StatusInShop,
		NewStatus:   models.StatusBeingPulled,
		Actor:       actor,
		Notes:       &notes,
		Message:     StatusChangeMessage(models.StatusBeingPulled, &notes),
	})

	var notification models.Notification
	require.NoError(t, db.First(&notification).Error)

	assert.Equal(t, models.NotificationStatusUpdate, notification.Type)
	assert.Equal(t, uint(12), notification.OrderID)
	assert.Equal(t, "ORD-2026-012", notification.OrderNumber)
	assert.Equal(t, `Order status updated to "BEING PULLED" - Pulling started`, notification.Message)
	assert.Equal(t, actor.ID, notification.UpdatedByID)
	assert.False(t, notification.Read)
}

func TestNotificationService_TypeMapping(t *testing.T) {
	tests := []struct {
		event    EventType
		expected models.NotificationType
	}{
		{EventOrderCreated, models.NotificationOrderCreated},
		{EventStatusChanged, models.NotificationStatusUpdate},
		{EventDriverAssigned, models.NotificationStatusUpdate},
		{EventBackOrdered, models.NotificationBackOrdered},
		{EventDeliveryScheduled, models.NotificationDeliveryScheduled},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			db, bus := setupNotificationTest(t)

			bus.Publish(Event{
				Type:        tt.event,
				OrderID:     1,
				OrderNumber: "ORD-2026-001",
				Message:     "test message",
			})

			var notification models.Notification
			require.NoError(t, db.First(&notification).Error)
			assert.Equal(t, tt.expected, notification.Type)
		})
	}
}

func TestNotificationService_NoDatabaseDoesNotPanic(t *testing.T) {
	config.SetDB(nil)

	bus := NewEventBus()
	InitNotificationService(bus)

	assert.NotPanics(t, func() {
		bus.Publish(Event{
			Type:        EventStatusChanged,
			OrderNumber: "ORD-2026-001",
			Message:     "dropped on the floor",
		})
	})
}

func TestNotificationService_EveryTransitionNotifies(t *testing.T) {
	db, bus := setupNotificationTest(t)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderMaterial{}, &models.StatusUpdate{}, &models.TruckDriver{}))

	svc := &LifecycleService{events: bus}
	foreman := createTestUser(t, db, "foreman", models.RoleSiteForeman)
	manager := createTestUser(t, db, "manager", models.RoleShopManager)

	order, err := svc.CreateOrder(db, CreateOrderInput{
		ProjectName: "Northside Parking Deck",
		JobSite:     "230 Mill Ave",
		Materials:   []MaterialInput{{Name: "Form Ply", Unit: "sheets", QuantityRequested: 30}},
	}, foreman)
	require.NoError(t, err)

	_, err = svc.Transition(db, order.ID, models.StatusInShop, manager, nil)
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Order("id ASC").Find(&notifications).Error)
	require.Len(t, notifications, 2)

	assert.Equal(t, models.NotificationOrderCreated, notifications[0].Type)
	assert.Equal(t, "New order created for Northside Parking Deck", notifications[0].Message)
	assert.Equal(t, models.NotificationStatusUpdate, notifications[1].Type)
	assert.Equal(t, `Order status updated to "IN SHOP"`, notifications[1].Message)
}
