package services

import (
	"github.com/marcus-holt/materials-tracker-api/models"
)

// Order list views
const (
	ViewActiveOrders    = "active-orders"
	ViewCompletedOrders = "completed-orders"
	ViewShopQueue       = "shop-queue"
	ViewMyDeliveries    = "my-deliveries"
	ViewMyTasks         = "my-tasks"
)

// FilterOrders maps a view name to a filtered slice of orders for the given
// user. It is pure: the input slice is never mutated and relative order is
// preserved. An unknown view returns the input unchanged.
func FilterOrders(orders []models.Order, user *models.User, view string) []models.Order {
	if user == nil {
		return []models.Order{}
	}

	switch view {
	case ViewActiveOrders:
		if user.Role == models.RoleSiteForeman {
			return filter(orders, func(o *models.Order) bool {
				return o.RequestedByID == user.ID && !isCompleted(o.Status)
			})
		}
		return filter(orders, func(o *models.Order) bool {
			return !isCompleted(o.Status)
		})

	case ViewCompletedOrders:
		return filter(orders, func(o *models.Order) bool {
			return isCompleted(o.Status)
		})

	case ViewShopQueue:
		return filter(orders, func(o *models.Order) bool {
			switch o.Status {
			case models.StatusPending, models.StatusInShop, models.StatusBeingPulled, models.StatusReadyToLoad:
				return true
			}
			return false
		})

	case ViewMyDeliveries:
		return filter(orders, func(o *models.Order) bool {
			if o.AssignedToID == nil || *o.AssignedToID != user.ID {
				return false
			}
			return o.Status == models.StatusLoaded || o.Status == models.StatusOutForDelivery
		})

	case ViewMyTasks:
		return filter(orders, func(o *models.Order) bool {
			return o.Status == models.StatusInShop || o.Status == models.StatusBeingPulled
		})

	default:
		return orders
	}
}

func isCompleted(status models.OrderStatus) bool {
	return status == models.StatusDelivered || status == models.StatusForemanConfirmed
}

func filter(orders []models.Order, keep func(*models.Order) bool) []models.Order {
	result := make([]models.Order, 0, len(orders))
	for i := range orders {
		if keep(&orders[i]) {
			result = append(result, orders[i])
		}
	}
	return result
}
