// Command credauthd runs the credential authentication service as a
// standalone HTTP daemon.
//
// Configuration is read from credauthd.yaml (working directory or
// /etc/credauthd), overridable through CREDAUTHD_* environment variables:
//
//	server.addr            listen address (default ":8443")
//	store.backend          "memory", "redis", or "sqlite"
//	store.redis_addr       redis address when backend=redis
//	store.redis_prefix     redis key prefix (default "ca")
//	store.sqlite_path      database file when backend=sqlite
//	token.signing_key      HMAC signing key (required)
//	token.issuer           issuer claim
//	token.access_ttl       access token lifetime
//	token.refresh_ttl      refresh token lifetime
//	lockout.max_failed_attempts
//	lockout.lock_duration
//	audit.enabled          emit JSON audit events to stdout
//	metrics.enabled        expose /metrics in Prometheus text format
package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	credauth "github.com/authforge/credauth"
	"github.com/authforge/credauth/metrics/export/prometheus"
	"github.com/authforge/credauth/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	v := viper.New()
	v.SetConfigName("credauthd")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/credauthd")
	v.SetEnvPrefix("credauthd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8443")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis_prefix", "ca")
	v.SetDefault("store.sqlite_path", "credauth.db")
	v.SetDefault("token.access_ttl", 24*time.Hour)
	v.SetDefault("token.refresh_ttl", 30*24*time.Hour)
	v.SetDefault("lockout.max_failed_attempts", 5)
	v.SetDefault("lockout.lock_duration", 15*time.Minute)
	v.SetDefault("audit.enabled", true)
	v.SetDefault("metrics.enabled", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("credauthd: read config: %v", err)
		}
	}

	signingKey := v.GetString("token.signing_key")
	if signingKey == "" {
		log.Fatal("credauthd: token.signing_key is required")
	}

	accounts, err := buildStore(v)
	if err != nil {
		log.Fatalf("credauthd: store: %v", err)
	}

	cfg := credauth.DefaultConfig()
	cfg.Token.PrivateKey = []byte(signingKey)
	cfg.Token.Issuer = v.GetString("token.issuer")
	cfg.Token.AccessTTL = v.GetDuration("token.access_ttl")
	cfg.Token.RefreshTTL = v.GetDuration("token.refresh_ttl")
	cfg.Lockout.MaxFailedAttempts = v.GetInt("lockout.max_failed_attempts")
	cfg.Lockout.LockDuration = v.GetDuration("lockout.lock_duration")
	cfg.Audit.Enabled = v.GetBool("audit.enabled")
	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")

	builder := credauth.New().WithConfig(cfg).WithStore(accounts)
	if cfg.Audit.Enabled {
		builder = builder.WithAuditSink(credauth.NewJSONWriterSink(os.Stdout))
	}

	engine, err := builder.Build()
	if err != nil {
		log.Fatalf("credauthd: engine build: %v", err)
	}
	defer engine.Close()

	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1/auth")
	api.POST("/register", registerHandler(engine))
	api.POST("/login", loginHandler(engine))
	api.POST("/refresh", refreshHandler(engine))
	api.GET("/validate", validateHandler(engine))

	if cfg.Metrics.Enabled {
		exporter := prometheus.NewPrometheusExporter(engine)
		router.GET("/metrics", gin.WrapH(exporter.Handler()))
	}

	addr := v.GetString("server.addr")
	log.Printf("credauthd: listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("credauthd: serve: %v", err)
	}
}

func buildStore(v *viper.Viper) (store.AccountStore, error) {
	switch backend := v.GetString("store.backend"); backend {
	case "memory":
		return store.NewMemory(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: v.GetString("store.redis_addr"),
		})
		return store.NewRedis(client, v.GetString("store.redis_prefix")), nil
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(v.GetString("store.sqlite_path")), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		return store.NewGorm(db)
	default:
		return nil, errors.New("unsupported store backend: " + backend)
	}
}

type credentialsBody struct {
	AccountID string `json:"account_id" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

func registerHandler(engine *credauth.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body credentialsBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		ctx := credauth.WithClientIP(c.Request.Context(), c.ClientIP())
		result, err := engine.Register(ctx, body.AccountID, body.Password)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		resp := gin.H{
			"request_id": result.RequestID,
			"account_id": result.AccountID,
			"message":    "registered, please log in",
		}
		if result.Warning != "" {
			resp["warning"] = result.Warning
		}
		c.JSON(http.StatusCreated, resp)
	}
}

func loginHandler(engine *credauth.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body credentialsBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		ctx := credauth.WithClientIP(c.Request.Context(), c.ClientIP())
		pair, err := engine.Login(ctx, body.AccountID, body.Password)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
		})
	}
}

func refreshHandler(engine *credauth.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		ctx := credauth.WithClientIP(c.Request.Context(), c.ClientIP())
		pair, err := engine.Refresh(ctx, body.RefreshToken)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
		})
	}
}

func validateHandler(engine *credauth.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const bearer = "Bearer "
		if !strings.HasPrefix(header, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		ctx := credauth.WithClientIP(c.Request.Context(), c.ClientIP())
		subject, err := engine.ValidateSubject(ctx, header[len(bearer):])
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"account_id": subject})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, credauth.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, credauth.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, credauth.ErrAccountLocked):
		return http.StatusLocked
	case errors.Is(err, credauth.ErrInvalidCredentials),
		errors.Is(err, credauth.ErrTokenInvalid),
		errors.Is(err, credauth.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, credauth.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, credauth.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
