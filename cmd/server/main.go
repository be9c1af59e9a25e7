package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"shop_back_end/internal/config"
	"shop_back_end/internal/database"
	"shop_back_end/internal/routes"
)

func main() {
	config.Load()

	database.ConnectDatabases()

	r := gin.Default()
	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur lancé sur le port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("❌ Erreur serveur:", err)
	}
}
