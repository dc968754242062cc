package main

import (
	"fmt"
	"log/slog"
	"os"

	"gymdesk-backend/config"
	"gymdesk-backend/routes"
	"gymdesk-backend/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := config.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	reminders := services.NewReminderService(db)
	if cfg.SchedulerEnabled {
		if err := reminders.StartScheduler(cfg.ReminderCron); err != nil {
			slog.Error("scheduler start failed", "error", err)
			os.Exit(1)
		}
		defer reminders.Stop()
	}
	if !cfg.AuthEnabled() {
		slog.Warn("JWT_SECRET not set, API is running without authentication")
	}

	r := routes.SetupRouter(cfg, db, reminders)
	if !cfg.IsProduction() {
		printRoutes(r)
	}
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "error", err)
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
