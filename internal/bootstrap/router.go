package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-backend/config"
	"github.com/taskhive/taskhive-backend/internal/auth"
	"github.com/taskhive/taskhive-backend/internal/boards"
	"github.com/taskhive/taskhive-backend/internal/comments"
	"github.com/taskhive/taskhive-backend/internal/customfields"
	"github.com/taskhive/taskhive-backend/internal/httpapi"
	"github.com/taskhive/taskhive-backend/internal/httpapi/middleware"
	orghttp "github.com/taskhive/taskhive-backend/internal/organizations/http"
	orgrepo "github.com/taskhive/taskhive-backend/internal/organizations/repository"
	orgservice "github.com/taskhive/taskhive-backend/internal/organizations/service"
	projhttp "github.com/taskhive/taskhive-backend/internal/projects/http"
	projrepo "github.com/taskhive/taskhive-backend/internal/projects/repository"
	projservice "github.com/taskhive/taskhive-backend/internal/projects/service"
	"github.com/taskhive/taskhive-backend/internal/ratelimit"
	"github.com/taskhive/taskhive-backend/internal/tasks"
	"github.com/taskhive/taskhive-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Cfg         *config.Config
	DB          *pgxpool.Pool
	Redis       *redis.Client // nil when redis is disabled
	Logger      *zap.Logger
	Verifier    auth.TokenVerifier
}

// BuildRouter wires every feature behind /api/v1. Organizations are
// the permission root: each child service keeps a reference to its
// parent and asks it for membership decisions.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Logger))
	r.Use(cors.New(corsConfig(dep.Cfg.Server.CORSOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	userRepo := users.NewRepo(dep.DB)
	api.Use(auth.RequireUser(dep.Verifier, userRepo))
	api.Use(middleware.RateLimit(buildLimiter(dep), dep.Logger))

	orgSvc := orgservice.New(orgrepo.NewRepo(dep.DB))
	orgsGroup := api.Group("/orgs")
	orghttp.NewHandler(orgSvc).Register(orgsGroup)

	projSvc := projservice.New(projrepo.NewRepo(dep.DB), orgSvc, dep.Cfg.Limits.MaxProjectsPerOrg)
	projHandler := projhttp.NewHandler(projSvc)
	projHandler.RegisterOrgRoutes(orgsGroup)
	projectsGroup := api.Group("/projects")
	projHandler.Register(projectsGroup)

	boardSvc := boards.NewService(boards.NewRepo(dep.DB), projSvc)
	boardHandler := boards.NewHandler(boardSvc)
	boardHandler.RegisterProjectRoutes(projectsGroup)
	boardsGroup := api.Group("/boards")
	boardHandler.Register(boardsGroup, api.Group("/columns"))

	fieldSvc := customfields.NewService(customfields.NewRepo(dep.DB), boardSvc)
	fieldHandler := customfields.NewHandler(fieldSvc)
	fieldHandler.RegisterBoardRoutes(boardsGroup)
	fieldHandler.Register(api.Group("/fields"))

	taskSvc := tasks.NewService(tasks.NewRepo(dep.DB), boardSvc, fieldSvc)
	taskHandler := tasks.NewHandler(taskSvc)
	taskHandler.RegisterBoardRoutes(boardsGroup)
	tasksGroup := api.Group("/tasks")
	taskHandler.Register(tasksGroup)

	commentSvc := comments.NewService(comments.NewRepo(dep.DB), taskSvc)
	commentHandler := comments.NewHandler(commentSvc)
	commentHandler.RegisterTaskRoutes(tasksGroup)
	commentHandler.Register(api.Group("/comments"))

	return r
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// buildLimiter picks the shared redis window when redis is configured
// and an in-process limiter otherwise.
func buildLimiter(dep RouterDeps) ratelimit.Limiter {
	if dep.Redis != nil {
		store := ratelimit.NewRedisStore(dep.Redis)
		return ratelimit.NewFixedWindow(store, int64(dep.Cfg.Limits.RequestsPerMinute), time.Minute)
	}
	return ratelimit.NewLocal(dep.Cfg.Limits.RequestsPerMinute, dep.Cfg.Limits.Burst)
}
