package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"rocketlearn/internal/config"
	"rocketlearn/internal/database"
	"rocketlearn/internal/directory"
	"rocketlearn/internal/handlers"
	"rocketlearn/internal/leaderboard"
	"rocketlearn/internal/notify"
	"rocketlearn/internal/progress"
	"rocketlearn/internal/repository"
	"rocketlearn/internal/security"
	"rocketlearn/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	stateRepo := repository.NewStateRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	completionRepo := repository.NewCompletionRepository(db)

	// The directory client points at this server's own /data mount
	// unless configured otherwise.
	dirClient := directory.NewClient(cfg.DirectoryBaseURL, cfg.DirectoryDelay)

	// Session store, restoring any persisted session
	store, err := session.NewStore(dirClient, stateRepo)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	if store.Authenticated() {
		log.Println("Restored persisted session")
	}

	issuer := security.NewTokenIssuer(cfg.SessionSecret, cfg.SessionDuration)
	limiter := security.NewRateLimiter(10, time.Minute)

	mailer, err := notify.NewMailer(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}

	board := leaderboard.New(cfg.RedisAddr)
	if board.Enabled() {
		if err := board.Ping(context.Background()); err != nil {
			log.Printf("Warning: Redis unreachable, leaderboard degraded: %v", err)
		} else {
			log.Printf("Leaderboard enabled (redis: %s)", cfg.RedisAddr)
		}
	}
	defer board.Close()

	// Initialize handlers
	middleware := handlers.NewMiddleware(store, issuer, limiter)
	authHandler := handlers.NewAuthHandler(store, issuer, mailer)
	contentHandler := handlers.NewContentHandler(dirClient)
	completeHandler := handlers.NewCompleteHandler(dirClient, store, completionRepo, board)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo)
	leaderboardHandler := handlers.NewLeaderboardHandler(board, store)
	activityHandler := handlers.NewActivityHandler(completionRepo)

	// Setup routes
	mux := http.NewServeMux()

	// Static fixture catalogs
	mux.Handle("GET /data/", http.StripPrefix("/data/", http.FileServer(http.Dir(cfg.FixturesPath))))

	// Auth routes
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/switch/{id}", middleware.RequireAuth(authHandler.Switch))
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("PATCH /api/me", middleware.RequireAuth(authHandler.UpdateMe))
	mux.HandleFunc("GET /api/me/activity", middleware.RequireAuth(activityHandler.Recent))

	// Catalog routes
	mux.HandleFunc("GET /api/games", middleware.RequireAuth(contentHandler.ListGames))
	mux.HandleFunc("GET /api/games/{id}", middleware.RequireAuth(contentHandler.GetGame))
	mux.HandleFunc("GET /api/stories", middleware.RequireAuth(contentHandler.ListStories))
	mux.HandleFunc("GET /api/stories/{id}", middleware.RequireAuth(contentHandler.GetStory))
	mux.HandleFunc("GET /api/achievements", middleware.RequireAuth(contentHandler.ListAchievements))
	mux.HandleFunc("GET /api/plans", contentHandler.ListPlans)

	// Progress routes
	mux.HandleFunc("POST /api/complete", middleware.RequireAuth(completeHandler.Complete))
	mux.HandleFunc("GET /api/leaderboard", leaderboardHandler.Top)

	// Settings routes
	mux.HandleFunc("GET /api/settings", settingsHandler.Get)
	mux.HandleFunc("PUT /api/settings", middleware.RequireAuth(settingsHandler.Put))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Scheduled jobs
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("15 3 * * *", func() {
		rebuildLeaderboard(dirClient, board)
	}); err != nil {
		log.Fatalf("Failed to schedule leaderboard rebuild: %v", err)
	}
	if _, err := scheduler.AddFunc("30 0 * * *", func() {
		auditStreak(store)
	}); err != nil {
		log.Fatalf("Failed to schedule streak audit: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// rebuildLeaderboard repopulates the Redis board from the user
// directory. The board is a cache; a failed rebuild just leaves the
// previous ranking in place.
func rebuildLeaderboard(dir *directory.Client, board *leaderboard.Board) {
	if !board.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	users, err := dir.Users(ctx)
	if err != nil {
		log.Printf("Leaderboard rebuild: listing users failed: %v", err)
		return
	}
	if err := board.Rebuild(ctx, users); err != nil {
		log.Printf("Leaderboard rebuild failed: %v", err)
		return
	}
	log.Printf("Leaderboard rebuilt (%d users)", len(users))
}

// auditStreak resets the active user's streak when more than a full
// day has passed since the last activity.
func auditStreak(store *session.Store) {
	user := store.CurrentUser()
	if user == nil || user.Progress == nil || user.Progress.StreakDays == 0 {
		return
	}
	if !progress.StreakExpired(*user.Progress, time.Now().UTC()) {
		return
	}

	next := user.Progress.Clone()
	next.StreakDays = 0
	store.ApplyProgress(next)
	log.Printf("Streak expired for %s, reset to 0", user.ID)
}
