package user_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop_back_end/internal/database"
	"shop_back_end/internal/models"
)

func getCartItems(t *testing.T, r *gin.Engine, token string) []models.CartItemOut {
	t.Helper()
	w := doRequest(t, r, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []models.CartItemOut `json:"items"`
	}
	decode(t, w, &resp)
	return resp.Items
}

// Loi de fusion : q1 puis q2 ≡ une seule ligne de q1+q2
func TestAddToCartMergesQuantities(t *testing.T) {
	r := setupRouter(t)
	token := signup(t, r, "a@x.com")
	pid := createProduct(t, r, token, "Clavier", 9.99, 20)

	addToCart(t, r, token, pid, 2)
	addToCart(t, r, token, pid, 3)

	items := getCartItems(t, r, token)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 49.95, items[0].Subtotal)
}

func TestAddToCartValidation(t *testing.T) {
	r := setupRouter(t)
	token := signup(t, r, "a@x.com")
	pid := createProduct(t, r, token, "Clavier", 9.99, 5)

	// Produit inexistant
	w := doRequest(t, r, http.MethodPost, "/cart/add", token, gin.H{"product_id": 9999, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Quantité nulle
	w = doRequest(t, r, http.MethodPost, "/cart/add", token, gin.H{"product_id": pid, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Quantité au-delà du stock : refusée d'emblée, même si la
	// réservation réelle n'a lieu qu'au checkout
	w = doRequest(t, r, http.MethodPost, "/cart/add", token, gin.H{"product_id": pid, "quantity": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Code string `json:"code"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Code)
}

// Les prix du panier sont live : une modification catalogue change le sous-total affiché
func TestCartPricesAreLive(t *testing.T) {
	r := setupRouter(t)
	token := signup(t, r, "a@x.com")
	pid := createProduct(t, r, token, "Clavier", 10.00, 5)
	addToCart(t, r, token, pid, 2)

	items := getCartItems(t, r, token)
	require.Len(t, items, 1)
	assert.Equal(t, 20.00, items[0].Subtotal)

	require.NoError(t, database.DB.Model(&models.Product{}).
		Where("id = ?", pid).Update("price", 15.00).Error)

	items = getCartItems(t, r, token)
	assert.Equal(t, 30.00, items[0].Subtotal)
	assert.Equal(t, 15.00, items[0].UnitPrice)
}

func TestUpdateCartItem(t *testing.T) {
	r := setupRouter(t)
	token := signup(t, r, "a@x.com")
	pid := createProduct(t, r, token, "Clavier", 9.99, 10)
	addToCart(t, r, token, pid, 2)

	items := getCartItems(t, r, token)
	require.Len(t, items, 1)

	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/cart/%d", items[0].ID), token, gin.H{"quantity": 7})
	assert.Equal(t, http.StatusOK, w.Code)

	items = getCartItems(t, r, token)
	assert.Equal(t, 7, items[0].Quantity)

	// Quantité 0 refusée : utiliser DELETE
	w = doRequest(t, r, http.MethodPut, fmt.Sprintf("/cart/%d", items[0].ID), token, gin.H{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Quantité au-delà du stock refusée aussi à la mise à jour
	w = doRequest(t, r, http.MethodPut, fmt.Sprintf("/cart/%d", items[0].ID), token, gin.H{"quantity": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	items = getCartItems(t, r, token)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestCartOwnership(t *testing.T) {
	r := setupRouter(t)
	tokenA := signup(t, r, "a@x.com")
	tokenB := signup(t, r, "b@x.com")
	pid := createProduct(t, r, tokenA, "Clavier", 9.99, 10)
	addToCart(t, r, tokenA, pid, 2)

	items := getCartItems(t, r, tokenA)
	require.Len(t, items, 1)

	// B ne voit pas le panier de A
	assert.Empty(t, getCartItems(t, r, tokenB))

	// B ne peut ni modifier ni supprimer la ligne de A
	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/cart/%d", items[0].ID), tokenB, gin.H{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/cart/%d", items[0].ID), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// La ligne de A est intacte
	require.Len(t, getCartItems(t, r, tokenA), 1)
}

func TestRemoveCartItem(t *testing.T) {
	r := setupRouter(t)
	token := signup(t, r, "a@x.com")
	pid := createProduct(t, r, token, "Clavier", 9.99, 10)
	addToCart(t, r, token, pid, 2)

	items := getCartItems(t, r, token)
	require.Len(t, items, 1)

	w := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/cart/%d", items[0].ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, getCartItems(t, r, token))

	// Déjà supprimée
	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/cart/%d", items[0].ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearCart(t *testing.T) {
	r := setupRouter(t)
	token := signup(t, r, "a@x.com")
	p1 := createProduct(t, r, token, "Clavier", 9.99, 10)
	p2 := createProduct(t, r, token, "Souris", 4.50, 10)
	addToCart(t, r, token, p1, 1)
	addToCart(t, r, token, p2, 2)

	w := doRequest(t, r, http.MethodDelete, "/cart", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, getCartItems(t, r, token))
}

func TestCartInsertionOrder(t *testing.T) {
	r := setupRouter(t)
	token := signup(t, r, "a@x.com")
	p1 := createProduct(t, r, token, "Premier", 1.00, 10)
	p2 := createProduct(t, r, token, "Deuxième", 2.00, 10)
	p3 := createProduct(t, r, token, "Troisième", 3.00, 10)
	addToCart(t, r, token, p2, 1)
	addToCart(t, r, token, p3, 1)
	addToCart(t, r, token, p1, 1)

	items := getCartItems(t, r, token)
	require.Len(t, items, 3)
	assert.Equal(t, "Deuxième", items[0].ProductName)
	assert.Equal(t, "Troisième", items[1].ProductName)
	assert.Equal(t, "Premier", items[2].ProductName)
}

// L'index unique (user, produit) interdit les lignes dupliquées au niveau du schéma
func TestCartRejectsDuplicateUserProductRow(t *testing.T) {
	r := setupRouter(t)
	token := signup(t, r, "a@x.com")
	pid := createProduct(t, r, token, "Clavier", 9.99, 20)
	addToCart(t, r, token, pid, 1)

	var existing models.CartItem
	require.NoError(t, database.DB.Where("product_id = ?", pid).First(&existing).Error)

	dup := models.CartItem{UserID: existing.UserID, ProductID: existing.ProductID, Quantity: 1}
	assert.Error(t, database.DB.Create(&dup).Error)
}

// Des ajouts concurrents du même produit fusionnent toujours en une seule ligne
func TestAddToCartConcurrentMerge(t *testing.T) {
	r := setupRouter(t)
	token := signup(t, r, "a@x.com")
	pid := createProduct(t, r, token, "Clavier", 9.99, 100)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := doRequest(t, r, http.MethodPost, "/cart/add", token, gin.H{"product_id": pid, "quantity": 2})
			assert.Equal(t, http.StatusCreated, w.Code)
		}()
	}
	wg.Wait()

	items := getCartItems(t, r, token)
	require.Len(t, items, 1)
	assert.Equal(t, 8, items[0].Quantity)
}
