package models

import "time"

const OrderStatusPaid = "PAID"

type Order struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	Reference   string      `gorm:"uniqueIndex" json:"reference"`
	TotalAmount float64     `gorm:"not null" json:"total_amount"`
	Currency    string      `gorm:"default:USD" json:"currency"`
	Status      string      `gorm:"default:PAID" json:"status"`
	InvoicePath string      `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// OrderItem fige le nom et le prix du produit au moment de l'achat.
// La ligne reste valable même si le produit est modifié ou supprimé ensuite.
type OrderItem struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID      uint    `gorm:"index;not null" json:"order_id"`
	ProductID    uint    `json:"product_id"`
	NameSnapshot string  `gorm:"not null" json:"name_snapshot"`
	UnitPrice    float64 `gorm:"not null" json:"unit_price"`
	Quantity     int     `gorm:"not null" json:"quantity"`
	Subtotal     float64 `gorm:"not null" json:"subtotal"`
}

// CheckoutOut : réponse du POST /checkout
type CheckoutOut struct {
	OrderID     uint    `json:"order_id"`
	Reference   string  `json:"reference"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
	InvoiceURL  string  `json:"invoice_url"`
}
