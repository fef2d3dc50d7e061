package main

import (
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/projecthub-dev/projecthub/internal/admin"
	"github.com/projecthub-dev/projecthub/internal/alerts"
	"github.com/projecthub-dev/projecthub/internal/auth"
	"github.com/projecthub-dev/projecthub/internal/bid"
	"github.com/projecthub-dev/projecthub/internal/blob"
	"github.com/projecthub-dev/projecthub/internal/config"
	"github.com/projecthub-dev/projecthub/internal/db"
	"github.com/projecthub-dev/projecthub/internal/logger"
	appmw "github.com/projecthub-dev/projecthub/internal/middleware"
	"github.com/projecthub-dev/projecthub/internal/notification"
	"github.com/projecthub-dev/projecthub/internal/payment"
	"github.com/projecthub-dev/projecthub/internal/project"
	"github.com/projecthub-dev/projecthub/internal/rating"
	"github.com/projecthub-dev/projecthub/internal/scheduler"
	"github.com/projecthub-dev/projecthub/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	// Init subsystems
	pool := db.Init(cfg.Database)
	alerts.Init(cfg)
	defer alerts.Close()

	blobs, err := blob.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
	if err != nil {
		logger.Fatal("uploads: %v", err)
	}

	// Stores
	users := user.NewStore(pool)
	projects := project.NewStore(pool)
	bids := bid.NewStore(pool)
	purchases := payment.NewStore(pool)
	ratings := rating.NewStore(pool)
	notifs := notification.NewStore(pool)
	savedAlerts := alerts.NewSavedStore(pool)

	queue := alerts.Queue{}

	// Services
	bidSvc := bid.NewService(bids, projects, users, notifs)
	projectSvc := project.NewService(projects, bids, users, purchases, notifs)
	paymentSvc := payment.NewService(purchases, projects, bids, users, notifs,
		payment.NewClient(cfg.Gateway), cfg.Gateway)
	ratingSvc := rating.NewService(ratings, projects, bids, users)

	// Handlers
	authH := auth.NewHandler(users, queue, cfg.JWT)
	userH := user.NewHandler(users, blobs)
	projectH := project.NewHandler(projectSvc, blobs)
	bidH := bid.NewHandler(bidSvc)
	paymentH := payment.NewHandler(paymentSvc)
	ratingH := rating.NewHandler(ratingSvc)
	notifH := notification.NewHandler(notifs)
	savedH := alerts.NewSavedHandler(savedAlerts)
	adminH := admin.NewHandler(pool, bids, ratings, purchases, notifs)

	// Background jobs
	dispatcher, err := notification.NewDispatcher(notifs, users, queue, 4)
	if err != nil {
		logger.Fatal("dispatcher: %v", err)
	}
	defer dispatcher.Release()
	matcher := alerts.NewMatcher(projects, savedAlerts, users, queue)

	sched, err := scheduler.New()
	if err != nil {
		logger.Fatal("scheduler: %v", err)
	}
	if err := sched.Every(time.Duration(cfg.Scheduler.OutboxIntervalSeconds)*time.Second,
		"notification-outbox", dispatcher.Run); err != nil {
		logger.Fatal("scheduler: %v", err)
	}
	if err := sched.Every(time.Duration(cfg.Scheduler.AlertIntervalMinutes)*time.Minute,
		"saved-alert-matcher", matcher.Run); err != nil {
		logger.Fatal("scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Health
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// Uploaded files
	e.Static("/uploads", cfg.Uploads.Dir)

	// Public auth routes, rate limited against credential stuffing
	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10)))
	authGroup.POST("/signup", authH.Signup)
	authGroup.POST("/login", authH.Login)
	authGroup.GET("/verify-email", authH.VerifyEmail)
	authGroup.POST("/forgot-password", authH.ForgotPassword)
	authGroup.POST("/verify-otp", authH.VerifyOTP)
	authGroup.POST("/reset-password", authH.ResetPassword)

	// Public discovery
	e.GET("/projects", projectH.List)
	e.GET("/projects/:id", projectH.Get)
	e.GET("/categories", projectH.Categories)
	e.GET("/users/:id", userH.PublicProfile)
	e.GET("/users/:id/ratings", ratingH.ListForUser)

	// Payment gateway webhook; trust comes from the signature
	e.POST("/webhooks/payment", paymentH.Webhook)

	// Authenticated group
	g := e.Group("")
	g.Use(appmw.JWT(cfg.JWT.Secret))

	g.GET("/me", userH.Me)
	g.PATCH("/users/me", userH.UpdateProfile)
	g.POST("/users/me/password", userH.ChangePassword)
	g.POST("/users/me/avatar", userH.UploadAvatar)
	g.GET("/users/search", userH.Search)
	g.POST("/auth/resend-verification", authH.ResendVerification)

	// Projects
	g.POST("/projects", projectH.Create)
	g.POST("/projects/attachments", projectH.UploadAttachments)
	g.GET("/projects/my-posted", projectH.MyPosted)
	g.GET("/projects/my-assigned", projectH.MyAssigned)
	g.POST("/projects/:id/submit-work", projectH.SubmitWork)
	g.POST("/projects/:id/confirm-complete", projectH.OwnerConfirm)
	g.POST("/projects/:id/complete", projectH.MarkComplete)

	// Bids
	g.POST("/projects/:id/bids", bidH.Place)
	g.GET("/projects/:id/bids", bidH.ListForProject)
	g.GET("/bids/my", bidH.MyBids)
	g.PATCH("/bids/:id/decision", bidH.OwnerDecide)

	// Payments
	g.POST("/projects/:id/payment/order", paymentH.CreateOrder)
	g.POST("/projects/:id/payment/verify", paymentH.Verify)
	g.GET("/projects/:id/payment", paymentH.Status)
	g.GET("/payments/my", paymentH.MyPurchases)

	// Ratings
	g.POST("/projects/:id/rating", ratingH.Submit)
	g.GET("/projects/:id/rating/check", ratingH.Check)

	// Notifications
	g.GET("/notifications", notifH.List)
	g.PATCH("/notifications/:id/read", notifH.MarkRead)
	g.PATCH("/notifications/read-all", notifH.MarkAllRead)

	// Saved alerts
	g.POST("/alerts", savedH.Create)
	g.GET("/alerts", savedH.List)
	g.DELETE("/alerts/:id", savedH.Delete)

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(appmw.JWT(cfg.JWT.Secret))
	adminGroup.Use(appmw.AdminGuard)
	adminGroup.GET("/stats", adminH.Stats)
	adminGroup.GET("/analytics", adminH.Analytics)
	adminGroup.GET("/projects", projectH.List) // status filter shows pending reviews
	adminGroup.PATCH("/projects/:id/approve", projectH.Approve)
	adminGroup.PATCH("/projects/:id/reject", projectH.Reject)
	adminGroup.POST("/projects/:id/confirm-complete", projectH.AdminConfirm)
	adminGroup.GET("/bids", adminH.ListBids)
	adminGroup.PATCH("/bids/:id/review", bidH.AdminReview)
	adminGroup.GET("/ratings", adminH.ListRatings)
	adminGroup.GET("/payments", adminH.ListPayments)
	adminGroup.GET("/notifications", adminH.Notifications)
	adminGroup.PATCH("/notifications/:id/read", adminH.MarkNotificationRead)
	adminGroup.PATCH("/notifications/read-all", adminH.MarkAllNotificationsRead)

	logger.Info("API server listening on :%s", cfg.Server.Port)
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server error: %v", err)
	}
}
