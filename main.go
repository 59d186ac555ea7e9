package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/config"
	"main/handler"
	"main/middleware"
	"main/repository"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file loaded: %v", err)
	}

	requiredEnvVars := []string{
		"MONGO_URI",
		"MONGO_DB",
		"JWT_SECRET_KEY",
		"JWT_EXPIRATION_TIME",
		"REFRESH_TOKEN_EXPIRATION_TIME",
		"APP_BASE_URL",
		"PORT",
	}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" && os.Getenv("GO_ENV") != "test" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	utils.InitValidator()
	utils.InitJWT()
}

// deps holds everything constructed at startup. Clients are built here and
// passed down; no package holds them as globals.
type deps struct {
	usersRepo       *repository.UsersRepo
	sessionRepo     *repository.SessionRepo
	articlesService *usecase.ArticlesService
	transferService *usecase.TransferService
	userService     *usecase.UserService
	blobs           *services.BlobStore
	blacklist       *services.RedisTokenBlacklist
}

func setupRouter(d *deps, maxRequestSize int64) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.EnhancedRecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestSizeLimiter(maxRequestSize))
	router.Use(middleware.SessionMiddleware(d.sessionRepo))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", func(c *gin.Context) {
				handler.RegistrationHandler(c, d.userService)
			})
			auth.POST("/login", func(c *gin.Context) {
				handler.LoginHandler(c, d.usersRepo, d.sessionRepo)
			})
			auth.POST("/refresh", func(c *gin.Context) {
				handler.RefreshTokenHandler(c, d.blacklist)
			})
		}

		// Attachment URLs are embedded in exported data and must resolve
		// without a token
		public.GET("/files/:id/:name", func(c *gin.Context) {
			handler.ServeFileHandler(c, d.blobs)
		})
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(d.blacklist))
	{
		user := protected.Group("/user")
		{
			user.GET("/profile", func(c *gin.Context) {
				handler.GetUserProfileHandler(c, d.usersRepo)
			})
			user.POST("/logout", func(c *gin.Context) {
				handler.LogoutHandler(c, d.blacklist, d.sessionRepo)
			})
		}

		twoFactor := protected.Group("/2fa")
		{
			twoFactor.POST("/generate", func(c *gin.Context) {
				handler.Generate2FASecretHandler(c, d.usersRepo)
			})
			twoFactor.POST("/enable", func(c *gin.Context) {
				handler.Enable2FAHandler(c, d.usersRepo)
			})
			twoFactor.POST("/verify", func(c *gin.Context) {
				handler.Verify2FAHandler(c, d.usersRepo)
			})
			twoFactor.POST("/disable", func(c *gin.Context) {
				handler.Disable2FAHandler(c, d.usersRepo)
			})
			twoFactor.POST("/recovery", func(c *gin.Context) {
				handler.UseRecoveryCodeHandler(c, d.usersRepo)
			})
		}

		sessions := protected.Group("/sessions")
		{
			sessions.GET("/active", func(c *gin.Context) {
				handler.GetActiveSessions(c, d.sessionRepo)
			})
			sessions.POST("/logout-all", func(c *gin.Context) {
				handler.LogoutAllSessions(c, d.sessionRepo)
			})
		}

		articles := protected.Group("/articles")
		{
			articles.GET("", func(c *gin.Context) {
				handler.ListArticlesHandler(c, d.articlesService)
			})
			articles.GET("/tags", func(c *gin.Context) {
				handler.ListTagsHandler(c, d.articlesService)
			})
			articles.GET("/export", func(c *gin.Context) {
				handler.ExportArticlesHandler(c, d.transferService)
			})
			articles.POST("/import", func(c *gin.Context) {
				handler.ImportArticlesHandler(c, d.transferService)
			})
			articles.GET("/:id", func(c *gin.Context) {
				handler.GetArticleHandler(c, d.articlesService)
			})
			articles.POST("", func(c *gin.Context) {
				handler.CreateArticleHandler(c, d.articlesService)
			})
			articles.PUT("/:id", func(c *gin.Context) {
				handler.UpdateArticleHandler(c, d.articlesService)
			})
			articles.DELETE("/:id", func(c *gin.Context) {
				handler.DeleteArticleHandler(c, d.articlesService)
			})
		}
	}

	return router
}

func main() {
	serverCfg := config.LoadServerConfig()
	dbCfg := config.LoadDatabaseConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	client, err := dbCfg.Connect(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting MongoDB: %v", err)
		}
	}()

	blacklist, err := services.NewTokenBlacklist(serverCfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect token blacklist: %v", err)
	}
	defer blacklist.Close()

	sessionCache, err := services.NewSessionCache(serverCfg.RedisURL)
	if err != nil {
		log.Printf("Session cache unavailable, falling back to Mongo only: %v", err)
		sessionCache = nil
	} else {
		defer sessionCache.Close()
	}

	blobs, err := services.NewBlobStore(client, dbCfg.DatabaseName, serverCfg.BaseURL)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	articlesRepo := repository.GetArticlesRepo(client, dbCfg.DatabaseName, dbCfg.ArticlesCollection)
	usersRepo := repository.GetUsersRepo(client, dbCfg.DatabaseName, dbCfg.UsersCollection)
	sessionRepo := repository.GetSessionRepo(client, dbCfg.DatabaseName, dbCfg.SessionsCollection, sessionCache)

	articlesService := &usecase.ArticlesService{Repo: articlesRepo, Blobs: blobs}

	d := &deps{
		usersRepo:       usersRepo,
		sessionRepo:     sessionRepo,
		articlesService: articlesService,
		transferService: &usecase.TransferService{Articles: articlesService},
		userService:     &usecase.UserService{Repo: usersRepo},
		blobs:           blobs,
		blacklist:       blacklist,
	}

	utils.StartSystemMetrics(15 * time.Second)

	router := setupRouter(d, serverCfg.MaxRequestSize)

	srv := &http.Server{
		Addr:    ":" + serverCfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Listening on :%s", serverCfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	sig := <-signalChan
	log.Printf("Caught signal %s, shutting down", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
