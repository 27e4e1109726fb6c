package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Options carries the collaborators of the router. LoginLimiter may be nil,
// which disables login rate limiting. TrustedProxies lists the addresses or
// CIDRs allowed to report the client IP through forwarding headers; with none,
// the peer address is the client IP the login limiter keys on.
type Options struct {
	Sessions       *services.SessionManager
	Users          *services.UserService
	Projects       *services.ProjectService
	Tasks          *services.TaskService
	LoginLimiter   RateLimiter
	TrustedProxies []string
	Metrics        *metrics.Metrics
	Logger         logging.Logger
}

type handlers struct {
	sessions *services.SessionManager
	users    *services.UserService
	projects *services.ProjectService
	tasks    *services.TaskService
	log      logging.Logger
}

func NewRouter(o Options) (*gin.Engine, error) {
	h := &handlers{
		sessions: o.Sessions,
		users:    o.Users,
		projects: o.Projects,
		tasks:    o.Tasks,
		log:      o.Logger,
	}
	limiter := o.LoginLimiter
	if limiter == nil {
		limiter = NopLimiter{}
	}

	router := gin.New()
	if err := router.SetTrustedProxies(o.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(RequestLogger(o.Logger, o.Metrics))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(o.Metrics.Handler()))

	public := router.Group("/users")
	{
		public.POST("/register", h.register)
		public.POST("/login", RateLimit(limiter, o.Logger), h.login)
		public.POST("/refresh", h.refresh)
		public.POST("/logout", h.logout)
	}

	authed := router.Group("", BearerAuth(o.Sessions, o.Logger))

	users := authed.Group("/users")
	{
		users.GET("", h.listUsers)
		users.POST("", h.createUser)
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}

	projects := authed.Group("/projects")
	{
		projects.GET("", h.listProjects)
		projects.POST("", h.createProject)
		projects.GET("/:id", h.getProject)
		projects.PUT("/:id", h.updateProject)
		projects.DELETE("/:id", h.deleteProject)
	}

	tasks := authed.Group("/tasks")
	{
		tasks.GET("", h.listTasks)
		tasks.POST("", h.createTask)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}

	return router, nil
}
