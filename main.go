package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"selfie/config"
	"selfie/handler"
	"selfie/logger"
	"selfie/middleware"
	"selfie/repository"
	"selfie/services"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// repositories are the storage ports the use cases run on.
type repositories struct {
	users      usecase.UserRepository
	sessions   usecase.SessionRepository
	events     usecase.EventRepository
	activities usecase.ActivityRepository
	notes      usecase.NoteRepository
	workouts   usecase.WorkoutRepository
	media      usecase.MediaRepository
}

func mongoRepositories(db *mongo.Database) repositories {
	return repositories{
		users:      repository.NewUserRepo(db),
		sessions:   repository.NewSessionRepo(db),
		events:     repository.NewEventRepo(db),
		activities: repository.NewActivityRepo(db),
		notes:      repository.NewNotesRepo(db),
		workouts:   repository.NewWorkoutRepo(db),
		media:      repository.NewMediaRepo(db),
	}
}

// app holds everything the router and the background jobs share.
type app struct {
	cfg       *config.Config
	tokens    *services.TokenService
	blacklist *services.TokenBlacklist

	auth      *usecase.AuthService
	twoFactor *usecase.TwoFactorService
	users     *usecase.UserService
	events    *usecase.EventService
	reminders *usecase.ReminderDispatcher

	authLimiter *middleware.RateLimiter
	apiLimiter  *middleware.RateLimiter

	handlers struct {
		auth        *handler.AuthHandler
		sessions    *handler.SessionHandler
		users       *handler.UserHandler
		twoFactor   *handler.TwoFactorHandler
		timeMachine *handler.TimeMachineHandler
		events      *handler.EventHandler
		activities  *handler.ActivityHandler
		notes       *handler.NoteHandler
		workouts    *handler.WorkoutHandler
		media       *handler.MediaHandler
		push        *handler.PushHandler
		stats       *handler.StatsHandler
	}

	// health reports whether the backing stores answer; nil means always healthy.
	health func(ctx context.Context) error
}

// newApp wires the use cases. rdb may be nil, which disables the access
// token blacklist, the session cache and shared reminder de-duplication.
func newApp(cfg *config.Config, repos repositories, rdb *redis.Client) *app {
	a := &app{cfg: cfg}
	a.tokens = services.NewTokenService(cfg.Auth.JWTSecretKey, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	a.blacklist = services.NewTokenBlacklist(rdb)

	authOpts := []usecase.AuthOption{}
	if rdb != nil {
		authOpts = append(authOpts,
			usecase.WithTokenRevoker(a.blacklist),
			usecase.WithSessionCache(services.NewSessionCache(rdb)))
	}

	a.twoFactor = usecase.NewTwoFactorService(repos.users, cfg.Auth.Issuer)
	a.auth = usecase.NewAuthService(repos.users, repos.sessions, a.tokens, a.twoFactor, cfg.Auth.MaxActiveSession, authOpts...)

	deps := usecase.UserDeps{
		Users:      repos.users,
		Sessions:   repos.sessions,
		Events:     repos.events,
		Activities: repos.activities,
		Notes:      repos.notes,
		Workouts:   repos.workouts,
		Media:      repos.media,
	}
	a.users = usecase.NewUserService(deps, a.auth)
	a.events = usecase.NewEventService(repos.events, repos.users, nil)
	activities := usecase.NewActivityService(repos.activities, repos.users, nil)
	notes := usecase.NewNotesService(repos.notes, repos.users, services.NewContentSanitizer(), nil)
	workouts := usecase.NewWorkoutService(repos.workouts, nil)
	media := usecase.NewMediaService(repos.media, cfg.MaxMediaBytes, nil)

	var sender usecase.PushSender
	if cfg.Push.Enabled() {
		sender = services.NewPushSender(cfg.Push, nil)
	}
	push := usecase.NewPushService(repos.users, sender, nil)
	ledger := services.NewReminderLedger(rdb, 24*time.Hour)
	a.reminders = usecase.NewReminderDispatcher(repos.users, repos.events, repos.activities, push, ledger,
		cfg.Reminders.Window, cfg.Reminders.ActivityLead, nil)
	stats := usecase.NewStatsService(deps, nil)

	a.authLimiter = middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute)
	a.apiLimiter = middleware.NewRateLimiter(cfg.RateLimit.APIPerMinute)

	a.handlers.auth = handler.NewAuthHandler(a.auth, cfg.Auth)
	a.handlers.sessions = handler.NewSessionHandler(a.auth)
	a.handlers.users = handler.NewUserHandler(a.users)
	a.handlers.twoFactor = handler.NewTwoFactorHandler(a.twoFactor)
	a.handlers.timeMachine = handler.NewTimeMachineHandler(a.users)
	a.handlers.events = handler.NewEventHandler(a.events)
	a.handlers.activities = handler.NewActivityHandler(activities)
	a.handlers.notes = handler.NewNoteHandler(notes)
	a.handlers.workouts = handler.NewWorkoutHandler(workouts)
	a.handlers.media = handler.NewMediaHandler(media)
	a.handlers.push = handler.NewPushHandler(push)
	a.handlers.stats = handler.NewStatsHandler(stats)
	return a
}

func (a *app) close() {
	a.authLimiter.Stop()
	a.apiLimiter.Stop()
}

func setupRouter(a *app) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.EnhancedRecoveryMiddleware(),
		middleware.RequestTracingMiddleware(),
		middleware.RequestLogger(slog.Default()),
		middleware.MetricsMiddleware(),
		middleware.CORSMiddleware(a.cfg.CORSAllowedOrigins),
		middleware.SecurityHeaders(),
		middleware.RequestSizeLimiter(a.cfg.MaxMediaBytes+1<<20),
	)

	router.GET("/healthz", func(c *gin.Context) {
		if a.health != nil {
			if err := a.health(c.Request.Context()); err != nil {
				slog.Warn("health check failed", "error", err)
				utils.ErrorResponse(c, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		utils.Success(c, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes (no authentication required)
	auth := router.Group("/auth")
	auth.Use(middleware.NoStore(), a.authLimiter.ByIP())
	a.handlers.auth.RegisterRoutes(auth)

	public := router.Group("/api")
	a.handlers.media.RegisterPublicRoutes(public)

	// Protected routes (authentication required)
	protected := router.Group("/api")
	protected.Use(
		middleware.NoStore(),
		middleware.AuthMiddleware(a.tokens, a.blacklist),
		a.apiLimiter.ByUser(),
		middleware.TimeMachineMiddleware(a.users),
	)
	{
		a.handlers.sessions.RegisterRoutes(protected)
		a.handlers.users.RegisterRoutes(protected)
		a.handlers.twoFactor.RegisterRoutes(protected)
		a.handlers.timeMachine.RegisterRoutes(protected)
		a.handlers.events.RegisterRoutes(protected)
		a.handlers.activities.RegisterRoutes(protected)
		a.handlers.notes.RegisterRoutes(protected)
		a.handlers.workouts.RegisterRoutes(protected)
		a.handlers.media.RegisterRoutes(protected)
		a.handlers.push.RegisterRoutes(protected)
		a.handlers.stats.RegisterRoutes(protected)
	}

	return router
}

// startJobs schedules reminder dispatch and the nightly Pomodoro carry-over.
func startJobs(a *app) (*services.Scheduler, error) {
	scheduler := services.NewScheduler(time.UTC)
	if _, err := scheduler.Schedule("reminders", a.cfg.Reminders.Schedule, a.reminders.Run); err != nil {
		return nil, err
	}
	if _, err := scheduler.Schedule("pomodoro-carry-over", a.cfg.Reminders.CarryOverSchedule, a.events.CarryOverAll); err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.SetupDefault(os.Stdout, cfg.LogLevel)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.InitValidator()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := utils.NewMongoClient(ctx, cfg.MongoOptions())
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Error("failed to disconnect from MongoDB", "error", err)
		}
	}()

	db := client.Database(cfg.Database.DatabaseName)
	if err := repository.SetupIndexes(ctx, db); err != nil {
		slog.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("continuing without Redis", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	a := newApp(cfg, mongoRepositories(db), rdb)
	defer a.close()
	a.health = func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}

	scheduler, err := startJobs(a)
	if err != nil {
		slog.Error("failed to schedule background jobs", "error", err)
		os.Exit(1)
	}

	go utils.RunSystemCollector(ctx, 15*time.Second)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	scheduler.Stop(shutdownCtx)
}
