package handler

import (
	"banking-api/internal/adapter/http/middleware"
	redisStore "banking-api/internal/adapter/storage/redis"
	"banking-api/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	BankSvc        ports.BankService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (verifies PostgreSQL + Redis when configured)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	authHandler := NewAuthHandler(deps.AuthSvc)
	accountHandler := NewAccountHandler(deps.BankSvc)
	operationHandler := NewOperationHandler(deps.BankSvc)
	ledgerHandler := NewLedgerHandler(deps.BankSvc)

	// --- Public routes (no auth) ---
	r.POST("/login", rl("login"), authHandler.Login)
	r.POST("/registro", rl("registro"), authHandler.Register)
	r.GET("/contas", rl("consultas"), accountHandler.ListAccounts)
	r.GET("/saldo/:usuario_id", rl("consultas"), accountHandler.GetBalance)
	r.GET("/transacoes", rl("consultas"), ledgerHandler.List)
	r.GET("/transacoes/:usuario_id", rl("consultas"), ledgerHandler.ListByAccount)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	protected := r.Group("/", jwtAuth)
	{
		protected.POST("/deposito", rl("operacoes"), operationHandler.Deposit)
		protected.POST("/retirada", rl("operacoes"), operationHandler.Withdraw)
		protected.POST("/transferencia", rl("operacoes"), operationHandler.Transfer)
		protected.GET("/extrato", rl("consultas"), accountHandler.Statement)
	}

	return r
}
