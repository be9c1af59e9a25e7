package user

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shop_back_end/internal/database"
	"shop_back_end/internal/middleware"
	"shop_back_end/internal/models"
	"shop_back_end/internal/services"
	"shop_back_end/internal/utils"
)

//
// 🛒 POST /checkout
//
func Checkout(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	order, err := services.Checkout(database.DB, userID)
	if err != nil {
		var unavailable *services.ProductUnavailableError
		var insufficient *services.InsufficientStockError

		switch {
		case errors.Is(err, services.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide", "code": "EMPTY_CART"})
		case errors.As(err, &unavailable):
			c.JSON(http.StatusConflict, gin.H{
				"error":      err.Error(),
				"code":       "PRODUCT_UNAVAILABLE",
				"product_id": unavailable.ProductID,
			})
		case errors.As(err, &insufficient):
			c.JSON(http.StatusConflict, gin.H{
				"error":     err.Error(),
				"code":      "INSUFFICIENT_STOCK",
				"product":   insufficient.ProductName,
				"available": insufficient.Available,
				"requested": insufficient.Requested,
			})
		default:
			log.Println("❌ Erreur checkout:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du checkout"})
		}
		return
	}

	// La commande est durablement commitée : la facture se génère hors transaction
	if _, err := services.EnsureInvoice(database.DB, order); err != nil {
		// Non bloquant : GET /orders/:id/invoice regénèrera à la demande
		log.Println("⚠️ Erreur génération facture:", err)
	}

	go sendOrderConfirmation(*order)

	c.JSON(http.StatusCreated, models.CheckoutOut{
		OrderID:     order.ID,
		Reference:   order.Reference,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		InvoiceURL:  fmt.Sprintf("/orders/%d/invoice", order.ID),
	})
}

func sendOrderConfirmation(order models.Order) {
	var buyer models.User
	if err := database.DB.First(&buyer, order.UserID).Error; err != nil {
		return
	}

	var pdfBytes []byte
	if b, err := services.InvoiceBytes(database.DB, &order); err == nil {
		pdfBytes = b
	}

	htmlBody := utils.GenerateOrderConfirmationHTML(order)
	if err := utils.SendConfirmationEmail(buyer.Email, "Confirmation de votre commande", htmlBody, pdfBytes); err != nil {
		log.Println("⚠️ Erreur envoi mail de confirmation:", err)
	}
}

//
// 📦 GET /orders
//
func GetMyOrders(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var orders []models.Order
	err := database.DB.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

//
// 📦 GET /orders/:id
//
func GetOrderByID(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID invalide", "code": "VALIDATION_ERROR"})
		return
	}

	// ✅ Sécurité : on vérifie que la commande appartient bien à l'utilisateur
	var order models.Order
	err = database.DB.Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, order)
}

//
// 📦 GET /orders/items — toutes les lignes achetées, à plat
//
func GetOrderedItems(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var orders []models.Order
	err := database.DB.Preload("Items").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	type orderedItem struct {
		OrderID      uint    `json:"order_id"`
		ProductID    uint    `json:"product_id"`
		NameSnapshot string  `json:"name_snapshot"`
		UnitPrice    float64 `json:"unit_price"`
		Quantity     int     `json:"quantity"`
		Subtotal     float64 `json:"subtotal"`
	}

	flat := []orderedItem{}
	for _, o := range orders {
		for _, it := range o.Items {
			flat = append(flat, orderedItem{
				OrderID:      o.ID,
				ProductID:    it.ProductID,
				NameSnapshot: it.NameSnapshot,
				UnitPrice:    it.UnitPrice,
				Quantity:     it.Quantity,
				Subtotal:     it.Subtotal,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": flat})
}

//
// 🧾 GET /orders/:id/invoice
//
func DownloadInvoice(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID invalide", "code": "VALIDATION_ERROR"})
		return
	}

	var order models.Order
	err = database.DB.Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable", "code": "NOT_FOUND"})
		return
	}

	// Regénère à la demande si le fichier a disparu ; la facture est une
	// fonction pure de la commande, le contenu ne change jamais
	pdfBytes, err := services.InvoiceBytes(database.DB, &order)
	if err != nil {
		log.Println("❌ Erreur génération facture:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération facture"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice_order_%d.pdf"`, order.ID))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
