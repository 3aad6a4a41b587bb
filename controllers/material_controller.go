package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/marcus-holt/materials-tracker-api/config"
	"github.com/marcus-holt/materials-tracker-api/models"
	"github.com/marcus-holt/materials-tracker-api/services"
)

// UpdateMaterialRequest represents the request body for updating a catalog item
type UpdateMaterialRequest struct {
	QuantityAvailable *int     `json:"quantity_available"`
	UnitPrice         *float64 `json:"unit_price"`
	Supplier          *string  `json:"supplier"`
}

// MaterialAvailabilityRequest represents the request body for flagging an
// order's material line as back ordered
type MaterialAvailabilityRequest struct {
	BackOrdered *bool `json:"back_ordered" binding:"required"`
}

// ListMaterials handles GET /api/v1/materials - lists the warehouse catalog
// with optional category, supplier and low_stock filters
func ListMaterials(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	db := config.GetDB()
	query := db.Order("category ASC, name ASC")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if supplier := c.Query("supplier"); supplier != "" {
		query = query.Where("supplier = ?", supplier)
	}
	if c.Query("low_stock") == "true" {
		query = query.Where("quantity_available < ?", models.LowStockThreshold)
	}

	var materials []models.MaterialItem
	if err := query.Find(&materials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch materials",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    materials,
	})
}

// UpdateMaterial handles PATCH /api/v1/materials/:id - updates a catalog
// item's stock level, price or supplier (shop roles only)
func UpdateMaterial(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	switch user.Role {
	case models.RoleShopManager, models.RoleAssistantShopManager, models.RoleShopEmployee:
	default:
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Only shop staff can update the material catalog",
			},
		})
		return
	}

	db := config.GetDB()
	var material models.MaterialItem
	if err := db.First(&material, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MATERIAL_NOT_FOUND",
				"message": "Material not found",
			},
		})
		return
	}

	var req UpdateMaterialRequest
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

	updates := make(map[string]interface{})
	if req.QuantityAvailable != nil {
		if *req.QuantityAvailable < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Quantity available cannot be negative",
				},
			})
			return
		}
		updates["quantity_available"] = *req.QuantityAvailable
	}
	if req.UnitPrice != nil {
		updates["unit_price"] = *req.UnitPrice
	}
	if req.Supplier != nil {
		updates["supplier"] = *req.Supplier
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    material,
		})
		return
	}

	if err := db.Model(&material).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update material",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    material,
	})
}

// UpdateOrderMaterialAvailability handles PATCH /api/v1/orders/:id/materials/:materialId -
// flags one of the order's material lines as back ordered (or available again)
func UpdateOrderMaterialAvailability(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	materialID, err := strconv.ParseUint(c.Param("materialId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Material ID must be a number",
			},
		})
		return
	}

	var req MaterialAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BackOrdered == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "back_ordered is required",
			},
		})
		return
	}

	order, err := services.GetLifecycleService().MarkMaterialBackOrdered(
		config.GetDB(), orderID, uint(materialID), *req.BackOrdered, user)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
