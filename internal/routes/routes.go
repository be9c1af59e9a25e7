package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shop_back_end/internal/handlers/product"
	"shop_back_end/internal/handlers/user"
	"shop_back_end/internal/middleware"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.Default())

	// Auth
	auth := r.Group("/auth")
	{
		auth.POST("/signup", user.Signup)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
	}

	// Catalogue — lecture publique, écriture authentifiée
	r.GET("/products", product.GetAllProducts)
	r.GET("/products/search", product.SearchProducts)
	r.GET("/products/:id", product.GetProduct)

	products := r.Group("/products", middleware.AuthRequired())
	{
		products.POST("", product.CreateProduct)
		products.PUT("/:id", product.UpdateProduct)
		products.DELETE("/:id", product.DeleteProduct)
	}

	// Panier
	cart := r.Group("/cart", middleware.AuthRequired())
	{
		cart.POST("/add", user.AddToCart)
		cart.GET("", user.GetCart)
		cart.PUT("/:id", user.UpdateCartItem)
		cart.DELETE("/:id", user.RemoveCartItem)
		cart.DELETE("", user.ClearCart)
	}

	// Checkout + commandes
	r.POST("/checkout", middleware.AuthRequired(), user.Checkout)

	orders := r.Group("/orders", middleware.AuthRequired())
	{
		orders.GET("", user.GetMyOrders)
		orders.GET("/items", user.GetOrderedItems)
		orders.GET("/:id", user.GetOrderByID)
		orders.GET("/:id/invoice", user.DownloadInvoice)
	}
}
