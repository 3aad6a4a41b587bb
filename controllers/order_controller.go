package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marcus-holt/materials-tracker-api/config"
	"github.com/marcus-holt/materials-tracker-api/models"
	"github.com/marcus-holt/materials-tracker-api/services"
	"gorm.io/gorm"
)

// MaterialRequest represents a single material line in an order request
type MaterialRequest struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Unit              string  `json:"unit"`
	QuantityRequested int     `json:"quantity_requested"`
	QuantityAvailable int     `json:"quantity_available"`
	UnitPrice         float64 `json:"unit_price"`
	Supplier          string  `json:"supplier"`
	Category          string  `json:"category"`
}

// OrderRequest represents the request body for creating or editing an order
type OrderRequest struct {
	ProjectName  string            `json:"project_name"`
	JobSite      string            `json:"job_site"`
	Priority     string            `json:"priority"`
	DeliveryDate string            `json:"delivery_date"` // YYYY-MM-DD
	SpecialNotes string            `json:"special_notes"`
	Materials    []MaterialRequest `json:"materials"`
}

// toInput converts the request body into the engine's input shape
func (r *OrderRequest) toInput() (services.CreateOrderInput, error) {
	input := services.CreateOrderInput{
		ProjectName:  r.ProjectName,
		JobSite:      r.JobSite,
		Priority:     models.Priority(r.Priority),
		SpecialNotes: r.SpecialNotes,
	}

	if r.DeliveryDate != "" {
		date, err := time.Parse("2006-01-02", r.DeliveryDate)
		if err != nil {
			return input, err
		}
		input.DeliveryDate = date
	}

	for _, m := range r.Materials {
		input.Materials = append(input.Materials, services.MaterialInput{
			Name:              m.Name,
			Description:       m.Description,
			Unit:              m.Unit,
			QuantityRequested: m.QuantityRequested,
			QuantityAvailable: m.QuantityAvailable,
			UnitPrice:         m.UnitPrice,
			Supplier:          m.Supplier,
			Category:          m.Category,
		})
	}

	return input, nil
}

// CreateOrder handles POST /api/v1/orders - creates a new order (originator roles only)
func CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Delivery date must be in YYYY-MM-DD format",
			},
		})
		return
	}

	order, err := services.GetLifecycleService().CreateOrder(config.GetDB(), input, user)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists orders, optionally through a
// named view (?view=active-orders|completed-orders|shop-queue|my-deliveries|my-tasks)
func ListOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var orders []models.Order
	err := db.Preload("RequestedBy").
		Preload("AssignedTo").
		Preload("Materials").
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	if view := c.Query("view"); view != "" {
		orders = services.FilterOrders(orders, user, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"count":   len(orders),
	})
}

// GetOrder handles GET /api/v1/orders/:id - gets a single order with its
// history, materials and delivery photo URL
func GetOrder(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	err := db.Preload("RequestedBy").
		Preload("AssignedTo").
		Preload("Materials").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("status_updates.id ASC")
		}).
		Preload("StatusHistory.UpdatedBy").
		First(&order, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	attachPhotoURL(&order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id - edits an order's details and
// materials while it is still editable for the caller's role
func UpdateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Delivery date must be in YYYY-MM-DD format",
			},
		})
		return
	}

	order, err := services.GetLifecycleService().EditOrder(config.GetDB(), orderID, input, user)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// parseOrderID reads the :id path parameter. On failure it writes the error
// response and returns false.
func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Order ID must be a number",
			},
		})
		return 0, false
	}
	return uint(id), true
}
