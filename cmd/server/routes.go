package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"inkpost.backend/internal/interfaces/http/handlers"
	"inkpost.backend/internal/interfaces/http/middleware"
)

const (
	serviceName    = "inkpost-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	accountHandler *handlers.AccountHandler
	otpHandler     *handlers.OTPHandler
	authHandler    *handlers.AuthHandler
	authMiddleware gin.HandlerFunc
	idempotency    gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Account routes (public)
		accounts := v1.Group("/accounts")
		{
			accounts.POST("/register", d.idempotency, d.accountHandler.Register)
			accounts.GET("/activate/:uidb64/:token", d.accountHandler.Activate)
			accounts.POST("/activation/resend", d.accountHandler.ResendActivation)
			accounts.POST("/token", d.authHandler.Token)
			accounts.POST("/token/refresh", d.authHandler.Refresh)
			accounts.POST("/password-reset", d.idempotency, d.accountHandler.RequestPasswordReset)
			accounts.POST("/password-reset/:uidb64/:token", d.accountHandler.ConfirmPasswordReset)
			accounts.POST("/otp/send", d.idempotency, d.otpHandler.Send)
			accounts.POST("/otp/resend", d.otpHandler.Resend)
			accounts.POST("/otp/verify", d.otpHandler.Verify)
		}

		// Session routes (protected)
		sessions := v1.Group("/accounts")
		sessions.Use(d.authMiddleware)
		{
			sessions.POST("/logout", d.authHandler.Logout)
			sessions.POST("/logout-all", d.authHandler.LogoutAll)
			sessions.GET("/me", d.authHandler.Me)
			sessions.GET("/sessions", d.authHandler.Sessions)
			sessions.GET("/users/:id", d.accountHandler.GetAccount)
			sessions.GET("/users", middleware.RequireStaff(), d.accountHandler.ListAccounts)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

// applyCORSMiddleware echoes allowed origins and answers preflight requests
func applyCORSMiddleware(r *gin.Engine, allowed []string) {
	allowAll := false
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		origins[o] = struct{}{}
	}

	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := origins[origin]; ok || allowAll {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Vary", "Origin")
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
