package main

import (
	"log"

	"github.com/joho/godotenv"

	"vetclinic-backend/config"
	"vetclinic-backend/controllers"
	"vetclinic-backend/logger"
	"vetclinic-backend/repository"
	"vetclinic-backend/routes"
	"vetclinic-backend/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog := logger.New()
	defer zlog.Sync()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		zlog.Fatalw("database setup failed", "error", err)
	}

	users := repository.NewGormUserStore(db)
	reservations := repository.NewGormReservationStore(db)
	smsArchive := repository.NewGormSMSStore(db)

	tokens := services.NewTokenService(cfg.JWT, users)
	auth := services.NewAuthService(users, tokens)
	sms := services.NewSMSService(services.NewChannel(cfg.SMS), smsArchive, cfg.SMS.Timeout, zlog)
	bookings := services.NewBookingService(reservations, sms, zlog)
	archive := services.NewArchiveService(smsArchive, reservations)

	reminders := services.NewReminderService(reservations, sms, zlog)
	if err := reminders.StartScheduler(); err != nil {
		zlog.Fatalw("reminder scheduler failed to start", "error", err)
	}
	defer reminders.Stop()

	r := routes.SetupRouter(routes.Controllers{
		Auth:        controllers.NewAuthController(auth, tokens),
		Reservation: controllers.NewReservationController(bookings, archive),
		SMS:         controllers.NewSMSController(sms, archive),
	}, tokens, zlog)

	zlog.Infow("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatalw("server stopped", "error", err)
	}
}
