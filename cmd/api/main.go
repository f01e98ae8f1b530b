package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/enquiry-api/internal/application/service"
	"github.com/sangkips/enquiry-api/internal/config"
	domainRepo "github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/internal/infrastructure/database"
	"github.com/sangkips/enquiry-api/internal/infrastructure/memstore"
	"github.com/sangkips/enquiry-api/internal/infrastructure/repository"
	"github.com/sangkips/enquiry-api/internal/infrastructure/search"
	"github.com/sangkips/enquiry-api/internal/presentation/http/handler"
	"github.com/sangkips/enquiry-api/internal/presentation/http/middleware"
	"github.com/sangkips/enquiry-api/internal/presentation/http/routes"
	"github.com/sangkips/enquiry-api/pkg/email"
	"github.com/sangkips/enquiry-api/pkg/eventbus"
	"github.com/sangkips/enquiry-api/pkg/logger"
	"github.com/sangkips/enquiry-api/pkg/metrics"
	"github.com/sangkips/enquiry-api/pkg/oauth"
	"github.com/sangkips/enquiry-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	store := openStore(ctx, cfg, log)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	// Idempotency keys live in Postgres when it is configured
	var idempotencyRepo domainRepo.IdempotencyRepository
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		if err := database.AutoMigrate(db, log); err != nil {
			log.WithError(err).Fatal("Failed to run migrations")
		}
		idempotencyRepo = repository.NewIdempotencyRepository(db)
		purgeCtx, stopPurge := context.WithCancel(ctx)
		defer stopPurge()
		go purgeIdempotencyKeys(purgeCtx, idempotencyRepo, log)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories; all share one store instance
	userRepo := repository.NewUserRepository(store)
	execRepo := repository.NewExecutiveServiceRepository(store)
	visitorRepo := repository.NewVisitorRepository(store)
	enquiryRepo := repository.NewEnquiryRepository(store)
	chatRepo := repository.NewChatMessageRepository(store)
	faqRepo := repository.NewFAQRepository(store)
	articleRepo := repository.NewArticleRepository(store)

	m := metrics.New()
	bus := eventbus.NewEventPublisher(log)

	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.Host,
		SMTPPort:     cfg.Email.Port,
		SMTPUsername: cfg.Email.Username,
		SMTPPassword: cfg.Email.Password,
		FromName:     cfg.App.Name,
		FromEmail:    cfg.Email.From,
		Enabled:      cfg.Email.Enabled,
	})

	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
	})

	faqIndex, err := search.NewFAQIndex()
	if err != nil {
		log.WithError(err).Fatal("Failed to create FAQ index")
	}
	defer faqIndex.Close()

	// Initialize services
	classifier := service.NewStatusClassifier(cfg.Status.Lead, cfg.Status.Pending)
	scopeService := service.NewScopeService(execRepo)
	authService := service.NewAuthService(userRepo, jwtManager, googleOAuthService, log)
	userService := service.NewUserService(userRepo, execRepo, log)
	visitorService := service.NewVisitorService(visitorRepo, log)
	enquiryService := service.NewEnquiryService(enquiryRepo, visitorRepo, log)
	assignmentService := service.NewAssignmentService(visitorRepo, enquiryRepo, userRepo, bus, m, log)
	statusService := service.NewStatusService(visitorRepo, enquiryRepo, classifier, bus, log)
	contentService := service.NewContentService(faqRepo, articleRepo, faqIndex, log)
	chatService := service.NewChatService(chatRepo, visitorRepo, visitorService, faqIndex,
		cfg.Chatbot.FallbackReply, cfg.Chatbot.MinScore, log)
	dashboardService := service.NewDashboardService(visitorRepo, enquiryRepo, classifier)

	notifier := service.NewAssignmentNotifier(userRepo, emailService, log)
	bus.Subscribe(notifier.Handle)
	bus.Subscribe(service.NewStatusRecorder(m).Handle)

	if created, err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		log.WithError(err).Warn("Failed to seed admin account")
	} else if created {
		log.WithField("email", cfg.Admin.Email).Info("Seeded admin account")
	}
	if n, err := contentService.RebuildIndex(ctx); err != nil {
		log.WithError(err).Warn("Failed to build FAQ index")
	} else {
		log.WithField("faqs", n).Info("FAQ index built")
	}

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Visitor:   handler.NewVisitorHandler(visitorService, assignmentService, statusService, chatService, scopeService),
		Enquiry:   handler.NewEnquiryHandler(enquiryService, statusService, scopeService),
		Chat:      handler.NewChatHandler(chatService),
		Content:   handler.NewContentHandler(contentService),
		Dashboard: handler.NewDashboardHandler(dashboardService, scopeService),
		Admin:     handler.NewAdminHandler(assignmentService, contentService),
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))
	defer rateLimiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Store:           store,
		Log:             log,
		Metrics:         m,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":  port,
			"env":   cfg.App.Env,
			"store": store.Kind(),
		}).Infof("Starting %s server", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Server shutdown failed")
	}
}

// openStore connects to MongoDB. When Mongo is unreachable and
// STORE_FALLBACK=memory, a single in-memory store serves every repository.
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) domainRepo.Store {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout*time.Duration(max(cfg.Mongo.MaxRetry, 1))+5*time.Second)
	defer cancel()

	mongoStore, err := database.ConnectMongo(connectCtx, cfg.Mongo, log)
	if err == nil {
		if err := database.EnsureIndexes(connectCtx, mongoStore); err != nil {
			log.WithError(err).Warn("Failed to ensure MongoDB indexes")
		}
		return mongoStore
	}
	if cfg.Store.Fallback != "memory" {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.WithError(err).Warn("MongoDB unreachable, using in-memory store; data will not survive a restart")
	return memstore.New()
}

// purgeIdempotencyKeys deletes expired idempotency keys once an hour
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *logrus.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.WithError(err).Warn("Failed to purge idempotency keys")
				continue
			}
			if n > 0 {
				log.WithField("deleted", n).Debug("Purged expired idempotency keys")
			}
		}
	}
}
