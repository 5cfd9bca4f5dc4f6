package paymentRoutes

import (
	paymentController "edumart/controllers/payment"
	"edumart/middleware"
	paymentValidator "edumart/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupPaymentRoutes sets up checkout and settlement routes
func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payment")

	paymentGroup.Post("/order", middleware.JWTMiddleware, paymentValidator.CreateOrder(), paymentController.CreateOrder)
	paymentGroup.Post("/verify", middleware.JWTMiddleware, paymentValidator.VerifyPayment(), paymentController.VerifyPayment)
	paymentGroup.Get("/history", middleware.JWTMiddleware, paymentController.GetPaymentHistory)
}
