package services

import (
	"testing"

	"github.com/marcus-holt/materials-tracker-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixtures() ([]models.Order, *models.User, *models.User, *models.User) {
	foreman := &models.User{ID: 1, Name: "Foreman", Role: models.RoleSiteForeman}
	manager := &models.User{ID: 2, Name: "Manager", Role: models.RoleShopManager}
	driver := &models.User{ID: 3, Name: "Driver", Role: models.RoleTruckDriver}

	driverID := driver.ID
	otherDriverID := uint(9)

	orders := []models.Order{
		{ID: 1, OrderNumber: "ORD-2026-001", Status: models.StatusPending, RequestedByID: foreman.ID},
		{ID: 2, OrderNumber: "ORD-2026-002", Status: models.StatusInShop, RequestedByID: foreman.ID},
		{ID: 3, OrderNumber: "ORD-2026-003", Status: models.StatusBeingPulled, RequestedByID: 5},
		{ID: 4, OrderNumber: "ORD-2026-004", Status: models.StatusReadyToLoad, RequestedByID: 5},
		{ID: 5, OrderNumber: "ORD-2026-005", Status: models.StatusLoaded, RequestedByID: foreman.ID, AssignedToID: &driverID},
		{ID: 6, OrderNumber: "ORD-2026-006", Status: models.StatusOutForDelivery, RequestedByID: 5, AssignedToID: &otherDriverID},
		{ID: 7, OrderNumber: "ORD-2026-007", Status: models.StatusDelivered, RequestedByID: foreman.ID},
		{ID: 8, OrderNumber: "ORD-2026-008", Status: models.StatusForemanConfirmed, RequestedByID: 5},
		{ID: 9, OrderNumber: "ORD-2026-009", Status: models.StatusBackOrdered, RequestedByID: foreman.ID},
		{ID: 10, OrderNumber: "ORD-2026-010", Status: models.StatusCancelled, RequestedByID: foreman.ID},
	}
	return orders, foreman, manager, driver
}

func orderIDs(orders []models.Order) []uint {
	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestFilterOrders_ActiveOrders_ForemanSeesOwnOnly(t *testing.T) {
	orders, foreman, _, _ := filterFixtures()

	result := FilterOrders(orders, foreman, ViewActiveOrders)

	// Own orders that are neither delivered, confirmed, nor filtered out.
	// Cancelled is not completed, so it stays visible to its requester.
	assert.Equal(t, []uint{1, 2, 5, 9, 10}, orderIDs(result))
}

func TestFilterOrders_ActiveOrders_ShopSeesAll(t *testing.T) {
	orders, _, manager, _ := filterFixtures()

	result := FilterOrders(orders, manager, ViewActiveOrders)

	assert.Equal(t, []uint{1, 2, 3, 4, 5, 6, 9, 10}, orderIDs(result))
}

func TestFilterOrders_CompletedOrders(t *testing.T) {
	orders, _, manager, _ := filterFixtures()

	result := FilterOrders(orders, manager, ViewCompletedOrders)

	assert.Equal(t, []uint{7, 8}, orderIDs(result))
}

func TestFilterOrders_ShopQueue(t *testing.T) {
	orders, _, manager, _ := filterFixtures()

	result := FilterOrders(orders, manager, ViewShopQueue)

	assert.Equal(t, []uint{1, 2, 3, 4}, orderIDs(result))
}

func TestFilterOrders_MyDeliveries(t *testing.T) {
	orders, _, _, driver := filterFixtures()

	result := FilterOrders(orders, driver, ViewMyDeliveries)

	// Only orders assigned to this driver that are loaded or out for delivery
	assert.Equal(t, []uint{5}, orderIDs(result))
}

func TestFilterOrders_MyDeliveries_OtherDriverExcluded(t *testing.T) {
	orders, _, _, _ := filterFixtures()
	otherDriver := &models.User{ID: 9, Role: models.RoleTruckDriver}

	result := FilterOrders(orders, otherDriver, ViewMyDeliveries)

	assert.Equal(t, []uint{6}, orderIDs(result))
}

func TestFilterOrders_MyTasks(t *testing.T) {
	orders, _, manager, _ := filterFixtures()

	result := FilterOrders(orders, manager, ViewMyTasks)

	assert.Equal(t, []uint{2, 3}, orderIDs(result))
}

func TestFilterOrders_UnknownViewReturnsInput(t *testing.T) {
	orders, _, manager, _ := filterFixtures()

	result := FilterOrders(orders, manager, "everything")

	assert.Equal(t, orderIDs(orders), orderIDs(result))
}

func TestFilterOrders_NilUser(t *testing.T) {
	orders, _, _, _ := filterFixtures()

	result := FilterOrders(orders, nil, ViewActiveOrders)

	assert.Empty(t, result)
}

func TestFilterOrders_EmptyInput(t *testing.T) {
	_, _, manager, _ := filterFixtures()

	result := FilterOrders([]models.Order{}, manager, ViewShopQueue)

	assert.Empty(t, result)
}

func TestFilterOrders_DoesNotMutateInput(t *testing.T) {
	orders, _, manager, _ := filterFixtures()
	before := orderIDs(orders)

	_ = FilterOrders(orders, manager, ViewCompletedOrders)
	_ = FilterOrders(orders, manager, ViewShopQueue)

	assert.Equal(t, before, orderIDs(orders))
}

func TestFilterOrders_Idempotent(t *testing.T) {
	orders, _, manager, _ := filterFixtures()

	once := FilterOrders(orders, manager, ViewShopQueue)
	twice := FilterOrders(once, manager, ViewShopQueue)

	require.Equal(t, orderIDs(once), orderIDs(twice))
}
