package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marcus-holt/materials-tracker-api/models"
	"github.com/marcus-holt/materials-tracker-api/services"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func createOrderInStatus(t *testing.T, db *gorm.DB, requestedBy *models.User, status models.OrderStatus) *models.Order {
	order := &models.Order{
		OrderNumber:   "ORD-2026-001",
		ProjectName:   "Harbor Warehouse",
		JobSite:       "Dock 4",
		Status:        status,
		Priority:      models.PriorityMedium,
		RequestedByID: requestedBy.ID,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}
	return order
}

func patchStatus(router http.Handler, orderID string, body map[string]interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPatch, "/orders/"+orderID+"/status", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUpdateOrderStatus_Success(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	shopManager := createUserWithRole(t, db, "auth0|shop", models.RoleShopManager)
	order := createOrderInStatus(t, db, foreman, models.StatusPending)

	router := setupTestRouter()
	router.PATCH("/orders/:id/status",
		mockAuthMiddleware(shopManager.Auth0ID, "shop_manager", "mock-token"),
		UpdateOrderStatus,
	)

	w := patchStatus(router, "1", map[string]interface{}{
		"status": "in_shop",
		"notes":  "Accepted into the shop",
	})

	assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "in_shop", data["status"])

	history := data["status_history"].([]interface{})
	latest := history[len(history)-1].(map[string]interface{})
	assert.Equal(t, "in_shop", latest["status"])
	assert.Equal(t, "Accepted into the shop", latest["notes"])

	var reloaded models.Order
	db.First(&reloaded, order.ID)
	assert.Equal(t, models.StatusInShop, reloaded.Status)
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	shopManager := createUserWithRole(t, db, "auth0|shop", models.RoleShopManager)
	createOrderInStatus(t, db, foreman, models.StatusPending)

	router := setupTestRouter()
	router.PATCH("/orders/:id/status",
		mockAuthMiddleware(shopManager.Auth0ID, "shop_manager", "mock-token"),
		UpdateOrderStatus,
	)

	w := patchStatus(router, "1", map[string]interface{}{"status": "delivered"})

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.False(t, response["success"].(bool))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_TRANSITION", errorData["code"])
}

func TestUpdateOrderStatus_RoleForbidden(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	createOrderInStatus(t, db, foreman, models.StatusPending)

	router := setupTestRouter()
	router.PATCH("/orders/:id/status",
		mockAuthMiddleware(foreman.Auth0ID, "site_foreman", "mock-token"),
		UpdateOrderStatus,
	)

	// Site foremen have no say over pending orders
	w := patchStatus(router, "1", map[string]interface{}{"status": "in_shop"})

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "UNAUTHORIZED", errorData["code"])
}

func TestUpdateOrderStatus_UnknownStatus(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	shopManager := createUserWithRole(t, db, "auth0|shop", models.RoleShopManager)
	createOrderInStatus(t, db, foreman, models.StatusPending)

	router := setupTestRouter()
	router.PATCH("/orders/:id/status",
		mockAuthMiddleware(shopManager.Auth0ID, "shop_manager", "mock-token"),
		UpdateOrderStatus,
	)

	w := patchStatus(router, "1", map[string]interface{}{"status": "approved"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
}

func TestUpdateOrderStatus_MissingStatusField(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	shopManager := createUserWithRole(t, db, "auth0|shop", models.RoleShopManager)
	createOrderInStatus(t, db, foreman, models.StatusPending)

	router := setupTestRouter()
	router.PATCH("/orders/:id/status",
		mockAuthMiddleware(shopManager.Auth0ID, "shop_manager", "mock-token"),
		UpdateOrderStatus,
	)

	w := patchStatus(router, "1", map[string]interface{}{"notes": "no status here"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
}

func TestUpdateOrderStatus_OrderNotFound(t *testing.T) {
	db := setupEngineTest(t)
	shopManager := createUserWithRole(t, db, "auth0|shop", models.RoleShopManager)

	router := setupTestRouter()
	router.PATCH("/orders/:id/status",
		mockAuthMiddleware(shopManager.Auth0ID, "shop_manager", "mock-token"),
		UpdateOrderStatus,
	)

	w := patchStatus(router, "42", map[string]interface{}{"status": "in_shop"})

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errorData["code"])
}

func TestScheduleFutureDeliveryEndpoint(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	shopManager := createUserWithRole(t, db, "auth0|shop", models.RoleShopManager)
	createOrderInStatus(t, db, foreman, models.StatusBackOrdered)

	router := setupTestRouter()
	router.POST("/orders/:id/schedule-delivery",
		mockAuthMiddleware(shopManager.Auth0ID, "shop_manager", "mock-token"),
		ScheduleFutureDelivery,
	)

	payload, _ := json.Marshal(map[string]interface{}{"delivery_date": "2026-10-15"})
	req, _ := http.NewRequest(http.MethodPost, "/orders/1/schedule-delivery", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	history := data["status_history"].([]interface{})
	latest := history[len(history)-1].(map[string]interface{})
	assert.Equal(t, "Future delivery scheduled for 2026-10-15 - Awaiting Site Foreman approval", latest["notes"])
}

func TestScheduleFutureDelivery_BadDate(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	shopManager := createUserWithRole(t, db, "auth0|shop", models.RoleShopManager)
	createOrderInStatus(t, db, foreman, models.StatusBackOrdered)

	router := setupTestRouter()
	router.POST("/orders/:id/schedule-delivery",
		mockAuthMiddleware(shopManager.Auth0ID, "shop_manager", "mock-token"),
		ScheduleFutureDelivery,
	)

	payload, _ := json.Marshal(map[string]interface{}{"delivery_date": "15/10/2026"})
	req, _ := http.NewRequest(http.MethodPost, "/orders/1/schedule-delivery", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
}

func TestScheduleFutureDelivery_ShopManagerOnly(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	createOrderInStatus(t, db, foreman, models.StatusBackOrdered)

	router := setupTestRouter()
	router.POST("/orders/:id/schedule-delivery",
		mockAuthMiddleware(foreman.Auth0ID, "site_foreman", "mock-token"),
		ScheduleFutureDelivery,
	)

	payload, _ := json.Marshal(map[string]interface{}{"delivery_date": "2026-10-15"})
	req, _ := http.NewRequest(http.MethodPost, "/orders/1/schedule-delivery", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "UNAUTHORIZED", errorData["code"])
}

// buildPhotoRequest builds a multipart request with a small fake photo
func buildPhotoRequest(t *testing.T, url, filename string) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write([]byte("fake image bytes"))
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadDeliveryPhoto_Success(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	driver := createUserWithRole(t, db, "auth0|driver", models.RoleTruckDriver)

	order := createOrderInStatus(t, db, foreman, models.StatusOutForDelivery)
	db.Model(order).Update("assigned_to_id", driver.ID)

	mockPhotos := services.NewMockPhotoService()
	mockPhotos.SetAsMockForTesting()
	defer services.SetPhotoService(nil)

	router := setupTestRouter()
	router.POST("/orders/:id/photo",
		mockAuthMiddleware(driver.Auth0ID, "truck_driver", "mock-token"),
		UploadDeliveryPhoto,
	)

	req := buildPhotoRequest(t, "/orders/1/photo", "proof.jpg")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, "Response body: %s", w.Body.String())

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	photoKey := data["delivery_photo_s3_key"].(string)
	assert.True(t, mockPhotos.PhotoExists(photoKey))
	assert.NotEmpty(t, data["delivery_photo_url"])

	var reloaded models.Order
	db.First(&reloaded, order.ID)
	assert.NotNil(t, reloaded.DeliveryPhotoS3Key)
}

func TestUploadDeliveryPhoto_OnlyAssignedDriver(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	driver := createUserWithRole(t, db, "auth0|driver", models.RoleTruckDriver)
	otherDriver := createUserWithRole(t, db, "auth0|driver2", models.RoleTruckDriver)

	order := createOrderInStatus(t, db, foreman, models.StatusOutForDelivery)
	db.Model(order).Update("assigned_to_id", driver.ID)

	services.NewMockPhotoService().SetAsMockForTesting()
	defer services.SetPhotoService(nil)

	router := setupTestRouter()
	router.POST("/orders/:id/photo",
		mockAuthMiddleware(otherDriver.Auth0ID, "truck_driver", "mock-token"),
		UploadDeliveryPhoto,
	)

	req := buildPhotoRequest(t, "/orders/1/photo", "proof.jpg")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "UNAUTHORIZED", errorData["code"])
}

func TestUploadDeliveryPhoto_WrongStatus(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	driver := createUserWithRole(t, db, "auth0|driver", models.RoleTruckDriver)

	order := createOrderInStatus(t, db, foreman, models.StatusLoaded)
	db.Model(order).Update("assigned_to_id", driver.ID)

	services.NewMockPhotoService().SetAsMockForTesting()
	defer services.SetPhotoService(nil)

	router := setupTestRouter()
	router.POST("/orders/:id/photo",
		mockAuthMiddleware(driver.Auth0ID, "truck_driver", "mock-token"),
		UploadDeliveryPhoto,
	)

	req := buildPhotoRequest(t, "/orders/1/photo", "proof.jpg")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_TRANSITION", errorData["code"])
}

func TestUploadDeliveryPhoto_RejectsBadFormat(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	driver := createUserWithRole(t, db, "auth0|driver", models.RoleTruckDriver)

	order := createOrderInStatus(t, db, foreman, models.StatusDelivered)
	db.Model(order).Update("assigned_to_id", driver.ID)

	services.NewMockPhotoService().SetAsMockForTesting()
	defer services.SetPhotoService(nil)

	router := setupTestRouter()
	router.POST("/orders/:id/photo",
		mockAuthMiddleware(driver.Auth0ID, "truck_driver", "mock-token"),
		UploadDeliveryPhoto,
	)

	req := buildPhotoRequest(t, "/orders/1/photo", "proof.gif")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_FILE_FORMAT", errorData["code"])
}

func TestUploadDeliveryPhoto_StorageNotConfigured(t *testing.T) {
	db := setupEngineTest(t)
	foreman := createUserWithRole(t, db, "auth0|foreman", models.RoleSiteForeman)
	driver := createUserWithRole(t, db, "auth0|driver", models.RoleTruckDriver)

	order := createOrderInStatus(t, db, foreman, models.StatusOutForDelivery)
	db.Model(order).Update("assigned_to_id", driver.ID)

	services.SetPhotoService(nil)

	router := setupTestRouter()
	router.POST("/orders/:id/photo",
		mockAuthMiddleware(driver.Auth0ID, "truck_driver", "mock-token"),
		UploadDeliveryPhoto,
	)

	req := buildPhotoRequest(t, "/orders/1/photo", "proof.jpg")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "UPLOAD_ERROR", errorData["code"])
}
