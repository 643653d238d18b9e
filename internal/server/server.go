package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/cfptracker/internal/config"
	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/internal/middleware"
	"anoa.com/cfptracker/internal/scheduler"
	"anoa.com/cfptracker/pkg/database"
	"anoa.com/cfptracker/pkg/logger"
	"anoa.com/cfptracker/pkg/metrics"
	"anoa.com/cfptracker/pkg/redislock"
	"anoa.com/cfptracker/pkg/storage"

	adminHttp "anoa.com/cfptracker/internal/modules/admin/delivery/http"
	adminService "anoa.com/cfptracker/internal/modules/admin/service"

	activityHttp "anoa.com/cfptracker/internal/modules/activity/delivery/http"
	activityRepo "anoa.com/cfptracker/internal/modules/activity/repository"
	activityService "anoa.com/cfptracker/internal/modules/activity/service"

	cfpHttp "anoa.com/cfptracker/internal/modules/cfp/delivery/http"
	cfpService "anoa.com/cfptracker/internal/modules/cfp/service"

	eventHttp "anoa.com/cfptracker/internal/modules/event/delivery/http"
	eventRepo "anoa.com/cfptracker/internal/modules/event/repository"
	eventService "anoa.com/cfptracker/internal/modules/event/service"

	notifHttp "anoa.com/cfptracker/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/cfptracker/internal/modules/notification/repository"
	notifService "anoa.com/cfptracker/internal/modules/notification/service"

	participationHttp "anoa.com/cfptracker/internal/modules/participation/delivery/http"
	participationRepo "anoa.com/cfptracker/internal/modules/participation/repository"
	participationService "anoa.com/cfptracker/internal/modules/participation/service"

	proposalHttp "anoa.com/cfptracker/internal/modules/proposal/delivery/http"
	proposalRepo "anoa.com/cfptracker/internal/modules/proposal/repository"
	proposalService "anoa.com/cfptracker/internal/modules/proposal/service"

	scoringHttp "anoa.com/cfptracker/internal/modules/scoring/delivery/http"
	scoringRepo "anoa.com/cfptracker/internal/modules/scoring/repository"
	scoringService "anoa.com/cfptracker/internal/modules/scoring/service"

	searchService "anoa.com/cfptracker/internal/modules/search/service"

	statHttp "anoa.com/cfptracker/internal/modules/stat/delivery/http"
	statService "anoa.com/cfptracker/internal/modules/stat/service"

	talkHttp "anoa.com/cfptracker/internal/modules/talk/delivery/http"
	talkRepo "anoa.com/cfptracker/internal/modules/talk/repository"
	talkService "anoa.com/cfptracker/internal/modules/talk/service"

	userHttp "anoa.com/cfptracker/internal/modules/user/delivery/http"
	userRepo "anoa.com/cfptracker/internal/modules/user/repository"
	userService "anoa.com/cfptracker/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	shutdownTimeout = 10 * time.Second
	scanTimeout     = 5 * time.Minute
)

type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *scheduler.Scheduler
	log         *zap.Logger
}

// NewDeadlineScanner wires the CFP scanner on its own so the CLI can run it without HTTP.
func NewDeadlineScanner(db *gorm.DB, redisClient *redis.Client, loc *time.Location, log *zap.Logger) cfpService.DeadlineScanner {
	notifier := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), redisClient, log)
	return cfpService.NewDeadlineScanner(
		userRepo.NewUserRepository(db),
		eventRepo.NewEventRepository(db),
		notifier,
		redislock.New(redisClient),
		loc,
		log,
	)
}

func newSearch(cfg *config.Config, log *zap.Logger) searchService.SearchService {
	if cfg.MeiliSearchHost == "" {
		log.Info("MEILISEARCH_HOST not set, search falls back to the database")
		return searchService.NewSearchService(nil, log)
	}
	host := cfg.MeiliSearchHost
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	client := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return searchService.NewSearchService(client, log)
}

func newStorage(cfg *config.Config, log *zap.Logger) (storage.FileStorage, error) {
	if cfg.CloudinaryURL == "" {
		log.Info("CLOUDINARY_URL not set, slide uploads are disabled")
		return nil, nil
	}
	return storage.NewCloudinaryStorage(cfg.CloudinaryURL)
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *zap.Logger) (*Server, error) {
	tx := database.NewTransactor(db)

	fileStorage, err := newStorage(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary storage: %w", err)
	}
	search := newSearch(cfg, log)

	// Repositories
	users := userRepo.NewUserRepository(db)
	events := eventRepo.NewEventRepository(db)
	talks := talkRepo.NewTalkRepository(db)
	proposals := proposalRepo.NewProposalRepository(db)
	activities := activityRepo.NewActivityRepository(db)
	notifications := notifRepo.NewNotificationRepository(db)
	scores := scoringRepo.NewScoringRepository(db)
	participations := participationRepo.NewParticipationRepository(db)

	// Services
	notificationSvc := notifService.NewNotificationService(notifications, redisClient, log)
	userSvc := userService.NewUserService(users, cfg.JWTSecret, cfg.JWTTTL)
	activitySvc := activityService.NewActivityService(activities, users, notificationSvc, tx, redisClient, cfg.RateLimitComment, log)
	proposalSvc := proposalService.NewProposalService(proposals, users, activities, activitySvc, notificationSvc, tx, log)
	talkSvc := talkService.NewTalkService(talks, proposals, activities, fileStorage, search, tx, cfg.CloudinaryUploadFolder, log)
	eventSvc := eventService.NewEventService(eventService.Repositories{
		Events:         events,
		Proposals:      proposals,
		Activities:     activities,
		Scores:         scores,
		Participations: participations,
		Notifications:  notifications,
	}, search, tx, log)
	scoringSvc := scoringService.NewScoringService(scores, events, tx, cfg.DefaultScoreThreshold)
	participationSvc := participationService.NewParticipationService(participations, events)
	adminSvc := adminService.NewAdminService(users)
	statSvc := statService.NewStatService(users, events, proposals)
	scanner := cfpService.NewDeadlineScanner(users, events, notificationSvc, redislock.New(redisClient), cfg.CFPScanLocation, log)

	// Handlers
	userHandler := userHttp.NewUserHandler(userSvc)
	eventHandler := eventHttp.NewEventHandler(eventSvc)
	talkHandler := talkHttp.NewTalkHandler(talkSvc)
	proposalHandler := proposalHttp.NewProposalHandler(proposalSvc)
	activityHandler := activityHttp.NewActivityHandler(activitySvc)
	scoringHandler := scoringHttp.NewScoringHandler(scoringSvc)
	participationHandler := participationHttp.NewParticipationHandler(participationSvc)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)
	statHandler := statHttp.NewStatHandler(statSvc)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc)
	streamHandler := notifHttp.NewStreamHandler(redisClient, origins(cfg), log)
	cfpHandler := cfpHttp.NewCFPHandler(scanner, eventSvc, cfg.CronSecret, cfg.BaseURL, log)

	sched := scheduler.New(cfg.CFPScanLocation, scanTimeout, log)
	if err := sched.Register(cfpService.NewScanJob(scanner, cfg.CFPScanSchedule)); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, origins(cfg))

	router.Use(gin.Recovery())
	router.Use(logger.GinLogger(log, "/health", "/metrics"))
	router.Use(metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	authMiddleware := middleware.NewAuthMiddleware(users, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	api.POST("/auth/login", userHandler.Login)
	api.GET("/feeds/cfp.rss", cfpHandler.Feed)
	api.GET("/cron/cfp-deadlines", cfpHandler.TriggerScan)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/users", userHandler.Search)
		protected.GET("/users/me", userHandler.Me)

		// Event routes
		protected.POST("/events", eventHandler.CreateEvent)
		protected.GET("/events", eventHandler.GetEvents)
		protected.GET("/events/search", eventHandler.SearchEvents)
		protected.GET("/events/:event_id", eventHandler.GetEvent)
		protected.PUT("/events/:event_id", eventHandler.UpdateEvent)
		protected.DELETE("/events/:event_id", eventHandler.DeleteEvent)
		protected.GET("/events/:event_id/score", scoringHandler.GetEventScore)
		protected.PUT("/events/:event_id/scores", scoringHandler.SaveScores)
		protected.PUT("/events/:event_id/scores/:category_id", scoringHandler.ScoreEvent)
		protected.GET("/events/:event_id/participations", participationHandler.List)
		protected.PUT("/events/:event_id/participation", participationHandler.Set)
		protected.DELETE("/events/:event_id/participation", participationHandler.Remove)
		protected.GET("/events/:event_id/activities", activityHandler.ListByTarget(entity.TargetEvent, "event_id"))

		// Talk routes
		protected.POST("/talks", talkHandler.CreateTalk)
		protected.GET("/talks", talkHandler.GetTalks)
		protected.GET("/talks/:talk_id", talkHandler.GetTalk)
		protected.PUT("/talks/:talk_id", talkHandler.UpdateTalk)
		protected.DELETE("/talks/:talk_id", talkHandler.DeleteTalk)
		protected.POST("/talks/:talk_id/slides", talkHandler.UploadSlides)
		protected.GET("/talks/:talk_id/activities", activityHandler.ListByTarget(entity.TargetTalk, "talk_id"))

		// Proposal routes
		protected.POST("/proposals", proposalHandler.CreateProposal)
		protected.GET("/proposals", proposalHandler.GetProposals)
		protected.GET("/proposals/:proposal_id", proposalHandler.GetProposal)
		protected.PUT("/proposals/:proposal_id", proposalHandler.UpdateProposal)
		protected.DELETE("/proposals/:proposal_id", proposalHandler.DeleteProposal)
		protected.GET("/proposals/:proposal_id/activities", activityHandler.ListByTarget(entity.TargetProposal, "proposal_id"))

		// Activity routes
		protected.POST("/activities", activityHandler.CreateComment)
		protected.GET("/activities/feed", activityHandler.Feed)
		protected.PUT("/activities/:activity_id", activityHandler.UpdateComment)
		protected.DELETE("/activities/:activity_id", activityHandler.DeleteComment)

		// Scoring routes
		protected.GET("/scoring/categories", scoringHandler.ListCategories)
		protected.GET("/scoring/threshold", scoringHandler.GetThreshold)
		protected.GET("/scoring/rankings", scoringHandler.Rankings)

		scoringAdmin := protected.Group("/scoring")
		scoringAdmin.Use(authMiddleware.RequireAdmin())
		{
			scoringAdmin.POST("/categories", scoringHandler.CreateCategory)
			scoringAdmin.PUT("/categories/:category_id", scoringHandler.UpdateCategory)
			scoringAdmin.DELETE("/categories/:category_id", scoringHandler.DeleteCategory)
			scoringAdmin.PUT("/threshold", scoringHandler.UpdateThreshold)
		}

		protected.GET("/stats", statHandler.Overview)

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.PUT("/users/:user_id", adminHandler.UpdateUser)
		}

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/preferences", notificationHandler.GetPreferences)
		protected.PUT("/notifications/preferences", notificationHandler.UpdatePreferences)
		protected.GET("/notifications/ws", streamHandler.HandleWebSocket)
	}

	return &Server{
		cfg:         cfg,
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   sched,
		log:         log,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP and the CFP schedule until ctx is cancelled, then shuts both down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down")
	s.scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}

func origins(cfg *config.Config) []string {
	var list []string
	for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			list = append(list, o)
		}
	}
	if len(list) == 0 {
		list = []string{"http://localhost:3000"}
	}
	return list
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
