package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkraev/parley/internal/adapters/panel"
	"github.com/dkraev/parley/internal/config"
	"github.com/dkraev/parley/internal/domain"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// IdentityMiddleware lifts the identity established by the community app's
// auth flow out of the cookie session. Handlers that need it read "identity"
// from the gin context; absence means the visitor has not signed in.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		email, _ := s.Get("email").(string)
		role, _ := s.Get("role").(string)
		if email != "" {
			if id, err := domain.NewIdentity(email, domain.Role(role)); err == nil {
				c.Set("identity", *id)
			}
		}
		c.Next()
	}
}

type sessionRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=ADMIN EXPERT USER"`
}

// handleSession stores the signed-in identity in the cookie session. Real
// authentication happens upstream in the community application; this
// endpoint only records its outcome for the gateway.
func handleSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid identity"})
		return
	}
	s := sessions.Default(c)
	s.Set("email", req.Email)
	s.Set("role", req.Role)
	if err := s.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": req.Email, "role": req.Role})
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctrl *panel.PanelWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ParleySessions", store))
	r.Use(ClientTokenMiddleware())
	r.Use(IdentityMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.POST("/session", handleSession)

	api.GET("/ws/panel", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws panel endpoint hit")
		ctrl.HandlePanel(ctx, c)
	})

	return r
}
