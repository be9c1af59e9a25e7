package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shop_back_end/internal/database"
	"shop_back_end/internal/middleware"
	"shop_back_end/internal/models"
	"shop_back_end/internal/services"
)

//
// 🟢 POST /cart/add
//
func AddToCart(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var input struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "code": "VALIDATION_ERROR"})
		return
	}

	if input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide", "code": "VALIDATION_ERROR"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, input.ProductID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable", "code": "NOT_FOUND"})
		return
	}

	// Vérification de courtoisie : la réservation réelle a lieu au checkout,
	// mais on refuse d'emblée une quantité que le stock actuel ne couvre pas
	if input.Quantity > product.Stock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock insuffisant", "code": "INSUFFICIENT_STOCK"})
		return
	}

	// 🔁 Une ligne par (user, produit), garantie par l'index unique : l'ajout
	// est un upsert (fusion additive côté SQL), correct sous requêtes concurrentes
	item := models.CartItem{
		UserID:    userID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"quantity": gorm.Expr("quantity + ?", input.Quantity)}),
	}).Create(&item).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout panier"})
		return
	}
	// relecture de la ligne fusionnée pour renvoyer la quantité réelle
	if err := database.DB.Where("user_id = ? AND product_id = ?", userID, input.ProductID).First(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout panier"})
		return
	}

	c.JSON(http.StatusCreated, models.CartItemOut{
		ID:          item.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    item.Quantity,
		Subtotal:    services.Round2(product.Price * float64(item.Quantity)),
	})
}

//
// 👀 GET /cart
//
func GetCart(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var items []models.CartItem
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}

	// Les prix affichés sont TOUJOURS les prix catalogue actuels
	out := make([]models.CartItemOut, 0, len(items))
	for _, ci := range items {
		var product models.Product
		if err := database.DB.First(&product, ci.ProductID).Error; err != nil {
			// Produit retiré du catalogue depuis l'ajout : la ligne reste
			// visible, le checkout la refusera
			out = append(out, models.CartItemOut{
				ID:          ci.ID,
				ProductID:   ci.ProductID,
				ProductName: "(produit retiré)",
				Quantity:    ci.Quantity,
			})
			continue
		}
		out = append(out, models.CartItemOut{
			ID:          ci.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    ci.Quantity,
			Subtotal:    services.Round2(product.Price * float64(ci.Quantity)),
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": out})
}

//
// ✏️ PUT /cart/:id
//
func UpdateCartItem(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID invalide", "code": "VALIDATION_ERROR"})
		return
	}

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "code": "VALIDATION_ERROR"})
		return
	}
	if input.Quantity <= 0 {
		// quantité 0 → utiliser DELETE
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide", "code": "VALIDATION_ERROR"})
		return
	}

	var item models.CartItem
	if err := database.DB.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ligne de panier introuvable", "code": "NOT_FOUND"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, item.ProductID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable", "code": "NOT_FOUND"})
		return
	}

	// Même vérification de courtoisie qu'à l'ajout
	if input.Quantity > product.Stock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock insuffisant", "code": "INSUFFICIENT_STOCK"})
		return
	}

	item.Quantity = input.Quantity
	if err := database.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	c.JSON(http.StatusOK, models.CartItemOut{
		ID:          item.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    item.Quantity,
		Subtotal:    services.Round2(product.Price * float64(item.Quantity)),
	})
}

//
// ❌ DELETE /cart/:id
//
func RemoveCartItem(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID invalide", "code": "VALIDATION_ERROR"})
		return
	}

	res := database.DB.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ligne de panier introuvable", "code": "NOT_FOUND"})
		return
	}

	c.Status(http.StatusNoContent)
}

//
// 🧹 DELETE /cart
//
func ClearCart(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	if err := database.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du vidage du panier"})
		return
	}

	c.Status(http.StatusNoContent)
}
