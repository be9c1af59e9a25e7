package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shop_back_end/internal/models"
)

// Erreurs métier du checkout. Toutes laissent l'état intact :
// soit la commande entière passe, soit rien n'est écrit.
var ErrEmptyCart = errors.New("le panier est vide")

type ProductUnavailableError struct {
	ProductID uint
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("produit %d introuvable ou retiré du catalogue", e.ProductID)
}

type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuffisant pour %q : %d demandé, %d disponible",
		e.ProductName, e.Requested, e.Available)
}

// Nombre de re-tentatives sur contention transitoire de la base.
// Au-delà, l'erreur remonte au client qui doit resoumettre.
const checkoutRetries = 3

// Checkout convertit l'intégralité du panier de l'utilisateur en une commande,
// dans une transaction unique :
//  1. relecture du panier et des produits (jamais les prix vus côté panier) ;
//  2. validation de toutes les lignes avant la moindre écriture ;
//  3. décrément gardé du stock (stock = stock - ? WHERE stock >= ?) — si une
//     course a consommé le stock entre validation et décrément, RowsAffected
//     vaut 0 et la transaction est annulée : impossible de survendre ;
//  4. création de la commande + lignes avec snapshot nom/prix, puis purge du panier.
func Checkout(db *gorm.DB, userID uint) (*models.Order, error) {
	var lastErr error

	for attempt := 0; attempt <= checkoutRetries; attempt++ {
		order, err := checkoutOnce(db, userID)
		if err == nil {
			return order, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}

	return nil, lastErr
}

func checkoutOnce(db *gorm.DB, userID uint) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		// 1. Charger le panier (ordre d'insertion)
		var cartItems []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&cartItems).Error; err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		// 2. Relire chaque produit dans la transaction
		products := make(map[uint]models.Product, len(cartItems))
		for _, ci := range cartItems {
			var p models.Product
			if err := tx.First(&p, ci.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ProductUnavailableError{ProductID: ci.ProductID}
				}
				return err
			}
			products[ci.ProductID] = p
		}

		// 3. Valider TOUTES les lignes avant la moindre écriture
		for _, ci := range cartItems {
			p := products[ci.ProductID]
			if ci.Quantity > p.Stock {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.Stock,
					Requested:   ci.Quantity,
				}
			}
		}

		// 4. Décrément gardé : perdre la course annule toute la transaction
		for _, ci := range cartItems {
			p := products[ci.ProductID]
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", ci.ProductID, ci.Quantity).
				Update("stock", gorm.Expr("stock - ?", ci.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.Stock,
					Requested:   ci.Quantity,
				}
			}
		}

		// 5. Total et devise (la devise suit les produits, comme le panier)
		total := 0.0
		currency := "USD"
		for _, ci := range cartItems {
			p := products[ci.ProductID]
			total += p.Price * float64(ci.Quantity)
			if p.Currency != "" {
				currency = p.Currency
			}
		}

		order = models.Order{
			UserID:      userID,
			Reference:   uuid.NewString(),
			TotalAmount: Round2(total),
			Currency:    currency,
			Status:      models.OrderStatusPaid,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// 6. Lignes de commande avec snapshot nom/prix
		orderItems := make([]models.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			p := products[ci.ProductID]
			orderItems = append(orderItems, models.OrderItem{
				OrderID:      order.ID,
				ProductID:    p.ID,
				NameSnapshot: p.Name,
				UnitPrice:    p.Price,
				Quantity:     ci.Quantity,
				Subtotal:     Round2(p.Price * float64(ci.Quantity)),
			})
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return err
		}
		order.Items = orderItems

		// 7. Vider le panier
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// isRetryable : uniquement la contention transitoire de la base.
// Les erreurs métier ne sont jamais re-tentées.
func isRetryable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access")
}

// Round2 arrondit au centime
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
