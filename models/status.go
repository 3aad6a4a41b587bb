package models

// OrderStatus is the lifecycle state of an order
type OrderStatus string

// Order lifecycle statuses. Orders move pending -> in_shop -> being_pulled ->
// ready_to_load -> loaded -> out_for_delivery -> delivered -> foreman_confirmed,
// with back_ordered as a detour from in_shop and cancelled as an early exit.
const (
	StatusPending          OrderStatus = "pending"
	StatusInShop           OrderStatus = "in_shop"
	StatusBeingPulled      OrderStatus = "being_pulled"
	StatusReadyToLoad      OrderStatus = "ready_to_load"
	StatusLoaded           OrderStatus = "loaded"
	StatusOutForDelivery   OrderStatus = "out_for_delivery"
	StatusDelivered        OrderStatus = "delivered"
	StatusForemanConfirmed OrderStatus = "foreman_confirmed"
	StatusBackOrdered      OrderStatus = "back_ordered"
	StatusCancelled        OrderStatus = "cancelled"
)

// AllOrderStatuses lists every valid order status
var AllOrderStatuses = []OrderStatus{
	StatusPending,
	StatusInShop,
	StatusBeingPulled,
	StatusReadyToLoad,
	StatusLoaded,
	StatusOutForDelivery,
	StatusDelivered,
	StatusForemanConfirmed,
	StatusBackOrdered,
	StatusCancelled,
}

// IsValidOrderStatus reports whether s is a known order status
func IsValidOrderStatus(s OrderStatus) bool {
	for _, status := range AllOrderStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions
func (s OrderStatus) IsTerminal() bool {
	return s == StatusForemanConfirmed || s == StatusCancelled
}

// Priority is the urgency of an order
type Priority string

// Order priorities
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValidPriority reports whether p is a known priority
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
