package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/auth"
	"resume-builder/internal/builder"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	sharedauth "resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	"resume-builder/internal/templates"
	"resume-builder/internal/uploads"
	"resume-builder/internal/users"
)

const (
	apiPrefix   = "/api/v1"
	exportRoute = apiPrefix + "/resumes/:resumeId/export"
	authRoute   = apiPrefix + "/auth"

	rateGroupDefault = "DEFAULT"
	rateGroupExport  = "EXPORT"
	rateGroupAuth    = "AUTH"
)

// RouterDeps carries everything the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config       config.Config
	Signer       *sharedauth.Signer
	Limiter      middleware.Allower
	Objects      object.ObjectStore
	Health       *health.Service
	GoogleAuth   *auth.GoogleService
	PasswordAuth *auth.PasswordHandler
	Users        *users.Handler
	Templates    *templates.Handler
	Resumes      *resumes.Handler
	Builder      *builder.Handler
	Uploads      *uploads.Handler
}

// PublicPrefixes bypass the session gate.
var PublicPrefixes = []string{
	apiPrefix + "/health",
	apiPrefix + "/auth/",
	"/metrics",
	localstore.RoutePrefix,
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(middleware.AuthConfig{
			Signer:         deps.Signer,
			LoginPath:      deps.Config.LoginPath,
			PublicPrefixes: PublicPrefixes,
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Limiter:      deps.Limiter,
			Rules:        rateRules(deps.Config.ExportRatePerMin, deps.Config.AuthRatePerMin),
		}),
	)

	r.GET("/metrics", metrics.Handler())
	if local, ok := deps.Objects.(*localstore.Store); ok {
		r.GET(localstore.RoutePrefix+"*key", serveObject(local))
	}

	api := r.Group(apiPrefix)
	api.GET("/health", healthHandler(deps.Health))
	registerMeRoutes(api)

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.PasswordAuth != nil {
		deps.PasswordAuth.RegisterRoutes(api)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(api)
	}
	if deps.Templates != nil {
		deps.Templates.RegisterRoutes(api)
	}
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(api)
	}
	if deps.Builder != nil {
		deps.Builder.RegisterRoutes(api)
	}
	if deps.Uploads != nil {
		deps.Uploads.RegisterRoutes(api)
	}

	return r
}

func rateGroupFor(c *gin.Context) string {
	switch route := c.FullPath(); {
	case route == exportRoute:
		return rateGroupExport
	case route == authRoute+"/login" || route == authRoute+"/signup":
		return rateGroupAuth
	}
	return rateGroupDefault
}

// rateRules limits PDF exports per user and credential attempts per client.
// Other routes are unlimited. A non-positive rate disables that group.
func rateRules(exportPerMin, authPerMin int) map[string]middleware.RateLimitRule {
	rules := map[string]middleware.RateLimitRule{}
	if exportPerMin > 0 {
		rules[rateGroupExport] = perMinute(exportPerMin)
	}
	if authPerMin > 0 {
		rules[rateGroupAuth] = perMinute(authPerMin)
	}
	if len(rules) == 0 {
		return nil
	}
	return rules
}

func perMinute(n int) middleware.RateLimitRule {
	return middleware.RateLimitRule{Rate: float64(n) / 60, Burst: n}
}

// serveObject streams objects from the local store for dev setups.
func serveObject(store object.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		rc, err := store.Open(c.Request.Context(), key)
		if err != nil {
			switch {
			case errors.Is(err, object.ErrNotFound), errors.Is(err, object.ErrInvalidKey):
				respond.Error(c, http.StatusNotFound, "not_found", "object not found", nil)
			default:
				respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read object", nil)
			}
			return
		}
		defer rc.Close()

		contentType := mime.TypeByExtension(path.Ext(key))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Header("Content-Type", contentType)
		c.Header("Cache-Control", "private, max-age=300")
		c.Status(http.StatusOK)
		_, _ = io.Copy(c.Writer, rc)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	if svc == nil {
		svc = health.NewService()
	}
	return func(c *gin.Context) {
		report := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	}
}
