package product

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shop_back_end/internal/cache"
	"shop_back_end/internal/database"
	"shop_back_end/internal/models"
	"shop_back_end/internal/services"
)

func validateInput(in models.ProductInput) string {
	if strings.TrimSpace(in.Name) == "" {
		return "Le champ 'name' est obligatoire"
	}
	if in.Price < 0 {
		return "Le prix ne peut pas être négatif"
	}
	if in.Stock < 0 {
		return "Le stock ne peut pas être négatif"
	}
	return ""
}

func CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	if msg := validateInput(input); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "VALIDATION_ERROR"})
		return
	}

	if input.Currency == "" {
		input.Currency = "USD"
	}

	p := models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Currency:    input.Currency,
		SKU:         input.SKU,
		Stock:       input.Stock,
	}
	if err := database.DB.Create(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	cache.InvalidateProducts()

	// 🔄 Indexation Elasticsearch
	go services.IndexProduct(p)

	c.JSON(http.StatusCreated, p)
}

func GetAllProducts(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	// ✅ Le cache ne couvre que la première page par défaut
	cacheable := skip == 0 && limit == 50
	if cacheable {
		if cached, ok := cache.GetProductList(); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	var products []models.Product
	if err := database.DB.Order("id ASC").Offset(skip).Limit(limit).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produits"})
		return
	}

	if cacheable {
		cache.SetProductList(products)
	}

	c.JSON(http.StatusOK, products)
}

func GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide", "code": "VALIDATION_ERROR"})
		return
	}

	var p models.Product
	if err := database.DB.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, p)
}

func UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide", "code": "VALIDATION_ERROR"})
		return
	}

	var p models.Product
	if err := database.DB.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable", "code": "NOT_FOUND"})
		return
	}

	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	if msg := validateInput(input); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "VALIDATION_ERROR"})
		return
	}

	if input.Currency == "" {
		input.Currency = p.Currency
	}

	p.Name = input.Name
	p.Description = input.Description
	p.Price = input.Price
	p.Currency = input.Currency
	p.SKU = input.SKU
	p.Stock = input.Stock

	if err := database.DB.Save(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	cache.InvalidateProducts()
	go services.IndexProduct(p)

	c.JSON(http.StatusOK, p)
}

// DeleteProduct supprime un produit du catalogue. Les commandes passées
// restent intactes : leurs lignes portent un snapshot nom/prix.
func DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide", "code": "VALIDATION_ERROR"})
		return
	}

	var p models.Product
	if err := database.DB.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable", "code": "NOT_FOUND"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	if err := database.DB.Delete(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	cache.InvalidateProducts()
	go services.RemoveProductFromIndex(p.ID)

	c.Status(http.StatusNoContent)
}

func SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'q' obligatoire", "code": "VALIDATION_ERROR"})
		return
	}

	products, err := services.SearchProducts(database.DB, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche produits"})
		return
	}

	c.JSON(http.StatusOK, products)
}
