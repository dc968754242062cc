package routes

import (
	"time"

	"gymdesk-backend/config"
	"gymdesk-backend/controllers"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRouter(cfg config.Config, db *gorm.DB, reminders *services.ReminderService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURLs,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(cfg.SlowRequestThreshold))
	r.Static("/uploads", cfg.UploadDir)

	memberService := services.NewMemberService(db)
	staffService := services.NewStaffService(db, cfg.BcryptCost)
	reportService := services.NewReportService(db)
	notificationService := services.NewNotificationService(db)
	if reminders == nil {
		reminders = services.NewReminderService(db)
	}

	memberController := controllers.NewMemberController(memberService, cfg.UploadDir)
	productController := controllers.NewProductController(services.NewProductService(db))
	invoiceController := controllers.NewInvoiceController(services.NewBillingService(db))
	saleController := controllers.NewSaleController(services.NewSalesService(db))
	classController := controllers.NewClassController(services.NewClassService(db))
	appointmentController := controllers.NewAppointmentController(services.NewAppointmentService(db))
	attendanceController := controllers.NewAttendanceController(services.NewAttendanceService(db))
	reportController := controllers.NewReportController(reportService)
	dashboardController := controllers.NewDashboardController(reportService, memberService)
	notificationController := controllers.NewNotificationController(notificationService, reminders)
	staffController := controllers.NewStaffController(staffService)
	enquiryController := controllers.NewEnquiryController(services.NewEnquiryService(db))
	authController := controllers.NewAuthController(staffService, cfg.JWTSecret, cfg.JWTExpiry, cfg.IsProduction())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if cfg.AuthEnabled() {
		auth := r.Group("/auth")
		{
			auth.POST("/login", authController.Login)

			auth.Use(utils.AuthMiddleware(cfg.JWTSecret))
			auth.GET("/me", authController.Me)
		}
	}

	api := r.Group("/api")
	if cfg.AuthEnabled() {
		api.Use(utils.AuthMiddleware(cfg.JWTSecret))
	}
	{
		// Member routes
		members := api.Group("/members")
		{
			members.POST("", memberController.CreateMember)
			members.GET("", memberController.GetMembers)
			members.GET("/expiring", memberController.GetExpiring)
			members.GET("/expired", memberController.GetExpired)
			members.GET("/:id", memberController.GetMember)
			members.PUT("/:id", memberController.UpdateMember)
			members.DELETE("/:id", memberController.DeleteMember)
			members.POST("/:id/renew", memberController.RenewMembership)
			members.POST("/:id/freeze", memberController.FreezeMembership)
			members.POST("/:id/unfreeze", memberController.UnfreezeMembership)
			members.POST("/:id/biometric", memberController.EnrollBiometric)
			members.GET("/:id/outstanding", memberController.GetOutstanding)
			members.POST("/:id/profile-picture", memberController.UploadProfilePicture)
		}

		// Product routes
		products := api.Group("/products")
		{
			products.POST("", productController.CreateProduct)
			products.GET("", productController.GetProducts)
			products.GET("/:id", productController.GetProduct)
			products.PUT("/:id", productController.UpdateProduct)
			products.DELETE("/:id", productController.DeleteProduct)
		}

		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.POST("", invoiceController.CreateInvoice)
			invoices.GET("", invoiceController.GetInvoices)
			invoices.GET("/member/:memberId", invoiceController.GetMemberInvoices)
			invoices.GET("/:id", invoiceController.GetInvoice)
			invoices.PUT("/:id", invoiceController.UpdateInvoice)
			invoices.DELETE("/:id", invoiceController.DeleteInvoice)
			invoices.POST("/:id/record-payment", invoiceController.RecordPayment)
		}

		payments := api.Group("/payments")
		{
			payments.POST("", invoiceController.CreatePayment)
			payments.GET("", invoiceController.GetPayments)
			payments.GET("/member/:memberId", invoiceController.GetMemberPayments)
			payments.GET("/:id", invoiceController.GetPayment)
		}

		sales := api.Group("/sales")
		{
			sales.POST("/add", saleController.AddSale)
			sales.GET("", saleController.GetSales)
			sales.GET("/:id", saleController.GetSale)
		}

		classes := api.Group("/classes")
		{
			classes.POST("", classController.CreateClass)
			classes.GET("", classController.GetClasses)
			classes.GET("/schedule/view", classController.GetSchedule)
			classes.GET("/member/:memberId", classController.GetMemberBookings)
			classes.GET("/:id", classController.GetClass)
			classes.PUT("/:id", classController.UpdateClass)
			classes.DELETE("/:id", classController.DeleteClass)
			classes.GET("/:id/bookings", classController.GetBookings)
			classes.POST("/:id/book", classController.BookClass)
			classes.POST("/:id/cancel-booking", classController.CancelBooking)
			classes.POST("/:id/mark-attendance", classController.MarkAttendance)
		}

		appointments := api.Group("/appointments")
		{
			appointments.POST("/add", appointmentController.AddAppointment)
			appointments.GET("", appointmentController.GetAppointments)
			appointments.GET("/by-session-type", appointmentController.GetBySessionType)
			appointments.GET("/available-sessions/:memberId", appointmentController.GetAvailableSessions)
			appointments.GET("/:id", appointmentController.GetAppointment)
			appointments.PUT("/:id", appointmentController.UpdateAppointment)
			appointments.PUT("/:id/complete", appointmentController.CompleteAppointment)
			appointments.POST("/:id/complete", appointmentController.CompleteAppointment)
			appointments.DELETE("/:id", appointmentController.DeleteAppointment)
		}

		attendance := api.Group("/attendance")
		{
			attendance.POST("/checkin", attendanceController.CheckIn)
			attendance.POST("/checkout", attendanceController.CheckOut)
			attendance.GET("", attendanceController.GetAttendance)
			attendance.GET("/current", attendanceController.GetCurrent)
			attendance.GET("/stats", attendanceController.GetStats)
			attendance.GET("/member/:memberId", attendanceController.GetMemberAttendance)
		}

		//Reports routes
		reports := api.Group("/reports")
		{
			reports.GET("", reportController.GetReportAnalytics)
			reports.GET("/dsr", reportController.GetDSR)
			reports.GET("/monthly", reportController.GetMonthly)
			reports.GET("/product-wise", reportController.GetProductWise)
			reports.GET("/category-wise", reportController.GetCategoryWise)
			reports.GET("/staff-performance", reportController.GetStaffPerformance)
			reports.GET("/payment-mode", reportController.GetPaymentModes)
			reports.GET("/financial", reportController.GetFinancial)
			reports.POST("/snapshots", reportController.CreateSnapshot)
			reports.GET("/snapshots", reportController.GetSnapshots)
			reports.GET("/snapshots/:id", reportController.GetSnapshot)
			reports.DELETE("/snapshots/:id", reportController.DeleteSnapshot)
		}

		// Dashboard routes
		api.GET("/dashboard", dashboardController.GetDashboardOverview)

		notifications := api.Group("/notifications")
		{
			notifications.POST("/send", notificationController.SendNotification)
			notifications.POST("/bulk-send", notificationController.BulkSend)
			notifications.GET("/history", notificationController.GetHistory)
			notifications.GET("/pending", notificationController.GetPending)
			notifications.PUT("/:id/sent", notificationController.MarkSent)
			notifications.PUT("/:id/failed", notificationController.MarkFailed)
			notifications.POST("/run-daily", notificationController.RunDaily)
		}

		staff := api.Group("/staff")
		{
			staff.GET("", staffController.GetStaff)
			staff.POST("", staffController.AddStaff)
			staff.GET("/availability", staffController.GetAvailability)
			staff.GET("/:id", staffController.GetStaffMember)
			staff.PUT("/:id", staffController.UpdateStaff)
			staff.DELETE("/:id", staffController.DeleteStaff)
			staff.POST("/:id/request-leave", staffController.RequestLeave)
		}

		enquiries := api.Group("/enquiries")
		{
			enquiries.GET("", enquiryController.GetEnquiries)
			enquiries.POST("", enquiryController.CreateEnquiry)
			enquiries.GET("/:id", enquiryController.GetEnquiry)
			enquiries.PUT("/:id", enquiryController.UpdateEnquiry)
			enquiries.DELETE("/:id", enquiryController.DeleteEnquiry)
			enquiries.POST("/:id/convert", enquiryController.ConvertEnquiry)
		}
	}

	return r
}
