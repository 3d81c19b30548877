package app

import (
	"log/slog"

	"github.com/SixTanDev/BTG/internal/cache"
	"github.com/SixTanDev/BTG/internal/config"
	"github.com/SixTanDev/BTG/internal/handlers"
	"github.com/SixTanDev/BTG/internal/notify"
	"github.com/SixTanDev/BTG/internal/repo"
	"github.com/SixTanDev/BTG/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log *slog.Logger, db *pgxpool.Pool, rdb *redis.Client, queue notify.Queue) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	userRepo := repo.NewPGUserRepo(db)
	fundRepo := repo.NewPGFundRepo(db)
	txRepo := repo.NewPGTxRepo(db)
	ledgerCache := cache.NewLedgerCache(rdb, cfg.Redis.DefaultTTL.Duration())

	ledgerSvc := service.NewLedgerService(userRepo, fundRepo, txRepo, ledgerCache, queue, log)
	fundSvc := service.NewFundService(fundRepo, ledgerCache)
	userSvc := service.NewUserService(userRepo, txRepo)

	ledgerHandler := handlers.NewLedgerHandler(ledgerSvc)
	fundHandler := handlers.NewFundHandler(fundSvc)
	userHandler := handlers.NewUserHandler(userSvc)
	statementHandler := handlers.NewStatementHandler(userSvc)

	api.POST("/subscriptions", ledgerHandler.Subscribe)
	api.POST("/subscriptions/cancel", ledgerHandler.Cancel)
	api.GET("/users/:id", userHandler.GetInfo)
	api.GET("/users/:id/balance", ledgerHandler.Balance)
	api.GET("/users/:id/transactions", ledgerHandler.History)
	api.GET("/users/:id/statement", statementHandler.Statement)
	api.GET("/funds", fundHandler.List)
	api.GET("/funds/:id", fundHandler.Get)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Fund Subscription API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}
