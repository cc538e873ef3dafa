package routes

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	billingControllers "github.com/carebridge/hms-backend/internal/billing/controllers"
	billingServices "github.com/carebridge/hms-backend/internal/billing/services"
	clinicalControllers "github.com/carebridge/hms-backend/internal/clinical/controllers"
	clinicalServices "github.com/carebridge/hms-backend/internal/clinical/services"
	"github.com/carebridge/hms-backend/internal/common/middlewares"
	inventoryControllers "github.com/carebridge/hms-backend/internal/inventory/controllers"
	inventoryServices "github.com/carebridge/hms-backend/internal/inventory/services"
	operationsControllers "github.com/carebridge/hms-backend/internal/operations/controllers"
	operationsServices "github.com/carebridge/hms-backend/internal/operations/services"
	"github.com/carebridge/hms-backend/ws"
)

// Init wires every service and controller and registers the HTTP surface
// on the Echo instance.
func Init(e *echo.Echo, db *sql.DB, hub *ws.Hub) {
	// Services
	chargeService := billingServices.NewChargeService(db)
	invoiceService := billingServices.NewInvoiceService(db)
	catalogService := billingServices.NewCatalogService(db)
	patientService := clinicalServices.NewPatientService(db)
	appointmentService := clinicalServices.NewAppointmentService(db)
	admissionService := clinicalServices.NewAdmissionService(db)
	authService := operationsServices.NewAuthService(db)
	bedService := operationsServices.NewBedService(db)
	directoryService := operationsServices.NewDirectoryService(db)
	stockService := inventoryServices.NewStockService(db)

	// Controllers
	chargeController := billingControllers.NewChargeController(chargeService)
	invoiceController := billingControllers.NewInvoiceController(invoiceService, hub)
	catalogController := billingControllers.NewCatalogController(catalogService)
	patientController := clinicalControllers.NewPatientController(patientService)
	appointmentController := clinicalControllers.NewAppointmentController(appointmentService, hub)
	admissionController := clinicalControllers.NewAdmissionController(admissionService, hub)
	authController := operationsControllers.NewAuthController(authService)
	bedController := operationsControllers.NewBedController(bedService)
	directoryController := operationsControllers.NewDirectoryController(directoryService)
	inventoryController := inventoryControllers.NewInventoryController(stockService)

	api := e.Group("/api")

	// Auth
	api.POST("/auth/login", authController.Login)

	// Directory
	directory := api.Group("/directory", middlewares.JWTMiddleware())
	directory.GET("/organization", directoryController.GetOrganization)
	directory.GET("/branches", directoryController.ListBranches)

	// Service catalog
	catalog := api.Group("/services", middlewares.JWTMiddleware())
	catalog.GET("", catalogController.ListServices)
	catalog.POST("", catalogController.CreateService, middlewares.RequireRoles("ADMIN"))
	catalog.PUT("/:id", catalogController.UpdateService, middlewares.RequireRoles("ADMIN"))
	catalog.DELETE("/:id", catalogController.DeleteService, middlewares.RequireRoles("ADMIN"))

	// Charges
	charges := api.Group("/charges", middlewares.JWTMiddleware())
	charges.POST("", chargeController.CreateCharge)
	charges.GET("", chargeController.ListCharges)
	charges.PUT("/:id/quantity", chargeController.UpdateChargeQuantity)
	charges.PUT("/:id/cancel", chargeController.CancelCharge)

	// Invoices
	invoices := api.Group("/invoices", middlewares.JWTMiddleware())
	invoices.POST("/generate", invoiceController.GenerateInvoice)
	invoices.GET("", invoiceController.ListInvoices)
	invoices.GET("/:id", invoiceController.GetInvoice)

	// Patients
	patients := api.Group("/patients", middlewares.JWTMiddleware())
	patients.POST("/register", patientController.RegisterPatient)
	patients.GET("", patientController.ListPatients)
	patients.GET("/:id", patientController.GetPatient)

	// Appointments
	appointments := api.Group("/appointments", middlewares.JWTMiddleware())
	appointments.POST("", appointmentController.CreateAppointment)
	appointments.GET("", appointmentController.ListAppointments)
	appointments.PUT("/:id/complete", appointmentController.CompleteAppointment)

	// Admissions
	admissions := api.Group("/admissions", middlewares.JWTMiddleware())
	admissions.POST("", admissionController.AdmitPatient)
	admissions.GET("", admissionController.ListAdmissions)
	admissions.GET("/:id", admissionController.GetAdmissionDetail)
	admissions.PUT("/:id/discharge", admissionController.DischargePatient)
	admissions.POST("/:id/rounds", admissionController.LogActivity)

	// Beds
	beds := api.Group("/beds", middlewares.JWTMiddleware())
	beds.GET("", bedController.ListBeds)
	beds.POST("", bedController.CreateBed, middlewares.RequireRoles("ADMIN"))
	beds.PUT("/:id/maintenance", bedController.SetMaintenance, middlewares.RequireRoles("ADMIN"))
	beds.PUT("/:id/available", bedController.ReturnToService, middlewares.RequireRoles("ADMIN"))

	// Inventory
	inventory := api.Group("/inventory", middlewares.JWTMiddleware())
	inventory.GET("/stock", inventoryController.CheckStock)
	inventory.GET("/medications", inventoryController.ListMedications)
	inventory.POST("/medications", inventoryController.CreateMedication, middlewares.RequireRoles("ADMIN"))
	inventory.PUT("/stocks", inventoryController.UpsertStock, middlewares.RequireRoles("ADMIN"))

	// Event stream
	e.GET("/ws", ws.ServeWS(hub))
}
