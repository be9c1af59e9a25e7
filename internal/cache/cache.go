package cache

import (
	"context"
	"encoding/json"
	"time"

	"shop_back_end/internal/database"
	"shop_back_end/internal/models"
)

const (
	ProductCacheTTL = 10 * time.Minute
	productListKey  = "products:all"
)

// GetProductList récupère la liste des produits depuis Redis.
// Le cache ne sert que les lectures du catalogue : le checkout relit
// toujours la base dans sa transaction.
func GetProductList() ([]models.Product, bool) {
	if database.Redis == nil {
		return nil, false
	}

	data, err := database.Redis.Get(context.Background(), productListKey).Result()
	if err != nil || data == "" {
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		return nil, false
	}
	return products, true
}

// SetProductList met la liste des produits en cache
func SetProductList(products []models.Product) {
	if database.Redis == nil {
		return
	}

	jsonData, err := json.Marshal(products)
	if err != nil {
		return
	}
	database.Redis.Set(context.Background(), productListKey, jsonData, ProductCacheTTL)
}

// InvalidateProducts invalide le cache après toute écriture catalogue
func InvalidateProducts() {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(context.Background(), productListKey)
}
