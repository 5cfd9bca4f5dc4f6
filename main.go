package main

import (
	"edumart/config"
	paymentController "edumart/controllers/payment"
	"edumart/database"
	"edumart/events"
	"edumart/gateway"
	authRoutes "edumart/routers/authRoutes"
	courseRoutes "edumart/routers/courseRoutes"
	paymentRoutes "edumart/routers/paymentRoutes"
	"edumart/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	// Payment gateway client for checkout
	paymentController.Gateway = gateway.NewClient(
		config.AppConfig.GatewayBaseURL,
		config.AppConfig.GatewayKeyID,
		config.AppConfig.GatewayKeySecret,
	)

	// Post-commit side effects run off the event bus
	utils.RegisterEventHandlers()
	events.Bus.Start()

	// Background sweeps: entitlement repair and subscription expiry
	utils.InitializeReconciliationScheduler()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
