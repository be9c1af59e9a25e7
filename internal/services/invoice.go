package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"shop_back_end/internal/database"
	"shop_back_end/internal/models"
	"shop_back_end/internal/utils"
)

func InvoiceDir() string {
	dir := os.Getenv("INVOICE_DIR")
	if dir == "" {
		dir = "./invoices"
	}
	return dir
}

func invoiceFilename(orderID uint) string {
	return fmt.Sprintf("invoice_order_%d.pdf", orderID)
}

// EnsureInvoice génère la facture PDF d'une commande si elle n'existe pas encore
// et retourne son chemin local. La génération est idempotente : le contenu ne
// dépend que de la commande (figée), donc regénérer donne les mêmes octets.
func EnsureInvoice(db *gorm.DB, order *models.Order) (string, error) {
	path := filepath.Join(InvoiceDir(), invoiceFilename(order.ID))

	if order.InvoicePath != "" {
		if _, err := os.Stat(order.InvoicePath); err == nil {
			return order.InvoicePath, nil
		}
		// Fichier disparu : on regénère au même endroit
	}

	pdfBytes, err := renderOrderInvoice(db, order)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(InvoiceDir(), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
		return "", err
	}

	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("invoice_path", path).Error; err != nil {
		return "", err
	}
	order.InvoicePath = path

	archiveInvoice(order.ID, pdfBytes)

	return path, nil
}

// InvoiceBytes retourne le PDF de la facture, depuis le cache disque si possible
func InvoiceBytes(db *gorm.DB, order *models.Order) ([]byte, error) {
	path, err := EnsureInvoice(db, order)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func renderOrderInvoice(db *gorm.DB, order *models.Order) ([]byte, error) {
	// Les lignes sont nécessaires au rendu
	if len(order.Items) == 0 {
		if err := db.Where("order_id = ?", order.ID).Order("id ASC").Find(&order.Items).Error; err != nil {
			return nil, err
		}
	}

	var buyer models.User
	if err := db.First(&buyer, order.UserID).Error; err != nil {
		return nil, err
	}

	return utils.RenderInvoicePDF(*order, buyer.Email)
}

// archiveInvoice pousse une copie de la facture dans MinIO si configuré
func archiveInvoice(orderID uint, pdfBytes []byte) {
	if database.MinIO == nil {
		return
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "invoices"
	}

	objectName := "invoices/" + invoiceFilename(orderID)
	_, err := database.MinIO.PutObject(context.Background(), bucket, objectName,
		bytes.NewReader(pdfBytes), int64(len(pdfBytes)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		log.Println("⚠️ Erreur archivage facture MinIO:", err)
		return
	}
	log.Println("🪣 Facture archivée :", objectName)
}
