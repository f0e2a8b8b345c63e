package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jdmdelivery/pawn-service/internal/config"
	"github.com/jdmdelivery/pawn-service/internal/handler"
	"github.com/jdmdelivery/pawn-service/internal/integrations/metals"
	"github.com/jdmdelivery/pawn-service/internal/middleware"
	"github.com/jdmdelivery/pawn-service/internal/repository"
	"github.com/jdmdelivery/pawn-service/internal/service"
	"github.com/jdmdelivery/pawn-service/internal/utils/email"
)

// appraisalRatio is the share of the melt value offered on a pledge.
const appraisalRatio = 0.7

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	if err := repo.InitSchema(); err != nil {
		logger.Fatalf("Failed to initialize schema: %v", err)
	}
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(repo, logger, cfg, mailer)
	h := handler.NewHandler(svc, logger, cfg.UploadDir)
	metalsClient := metals.NewClient(cfg, logger)

	// Daily digest of loans coming due
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 8 * * *", func() {
		if err := svc.DueSoonDigest(); err != nil {
			logger.Errorf("Due-soon digest failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule digest: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/recover-password", h.RecoverPasswords).Methods("POST")
	r.HandleFunc("/reset-password", h.ResetPassword).Methods("POST")
	r.HandleFunc("/uploads/{name}", h.ServeUpload).Methods("GET")

	// Gold melt-value appraisal hint
	r.HandleFunc("/appraise", func(w http.ResponseWriter, req *http.Request) {
		weight, err := strconv.ParseFloat(req.URL.Query().Get("weight_grams"), 64)
		if err != nil || weight <= 0 {
			http.Error(w, "weight_grams must be a positive number", http.StatusBadRequest)
			return
		}
		rate, err := metalsClient.GetGoldRate()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get gold rate: %v", err), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{
			"gold_rate":        rate,
			"melt_value":       weight * rate,
			"suggested_amount": weight * rate * appraisalRatio,
		})
	}).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))

	authRouter.HandleFunc("/dashboard", h.Dashboard).Methods("GET")

	authRouter.HandleFunc("/loans", h.CreateLoan).Methods("POST")
	authRouter.HandleFunc("/loans", h.ListLoans).Methods("GET")
	authRouter.HandleFunc("/loans/export.csv", h.ExportLoansCSV).Methods("GET")
	authRouter.HandleFunc("/loans/lost", h.ListLostLoans).Methods("GET")
	authRouter.HandleFunc("/loans/{id:[0-9]+}", h.GetLoan).Methods("GET")
	authRouter.HandleFunc("/loans/{id:[0-9]+}", h.UpdateLoan).Methods("PUT")
	authRouter.HandleFunc("/loans/{id:[0-9]+}", h.DeleteLoan).Methods("DELETE")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/redeem", h.RedeemLoan).Methods("POST")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/lost", h.MarkLoanLost).Methods("POST")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/sell", h.SellLostLoan).Methods("POST")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/media/{field}", h.UploadLoanMedia).Methods("POST")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/signature", h.UploadSignature).Methods("POST")

	authRouter.HandleFunc("/loans/{id:[0-9]+}/payments/quote", h.QuotePayment).Methods("GET")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/payments", h.ApplyPayment).Methods("POST")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/receipts", h.ListReceipts).Methods("GET")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/receipts/{paymentID:[0-9]+}/undo", h.UndoReceipt).Methods("POST")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/monthly-breakdown", h.MonthlyBreakdown).Methods("GET")

	authRouter.HandleFunc("/reports/daily-cash", h.DailyCash).Methods("GET")
	authRouter.HandleFunc("/reports/cash-movements", h.CashMovements).Methods("GET")
	authRouter.HandleFunc("/reports/interest", h.InterestReport).Methods("GET")
	authRouter.HandleFunc("/reports/capital", h.CapitalReport).Methods("GET")
	authRouter.HandleFunc("/reports/at-risk", h.AtRiskLoans).Methods("GET")

	authRouter.HandleFunc("/clients", h.CreateClient).Methods("POST")
	authRouter.HandleFunc("/clients", h.ListClients).Methods("GET")
	authRouter.HandleFunc("/clients/{id:[0-9]+}", h.DeleteClient).Methods("DELETE")

	authRouter.HandleFunc("/sales", h.CreateSaleItem).Methods("POST")
	authRouter.HandleFunc("/sales", h.ListSaleItems).Methods("GET")
	authRouter.HandleFunc("/sales/{id:[0-9]+}/sell", h.SellSaleItem).Methods("POST")
	authRouter.HandleFunc("/sales/{id:[0-9]+}", h.DeleteSaleItem).Methods("DELETE")
	authRouter.HandleFunc("/inventory", h.ListInventory).Methods("GET")

	authRouter.HandleFunc("/settings", h.GetSettings).Methods("GET")

	// Admin routes
	adminRouter := authRouter.PathPrefix("/").Subrouter()
	adminRouter.Use(middleware.RequireAdmin)
	adminRouter.HandleFunc("/users", h.CreateUser).Methods("POST")
	adminRouter.HandleFunc("/users", h.ListUsers).Methods("GET")
	adminRouter.HandleFunc("/users/{id:[0-9]+}", h.DeleteUser).Methods("DELETE")
	adminRouter.HandleFunc("/settings", h.UpdateSettings).Methods("PUT")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
