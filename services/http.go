package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/afinmh/TajweeDo/middleware"
	"github.com/afinmh/TajweeDo/services/handlers"
	"github.com/afinmh/TajweeDo/shared"
)

type HttpService struct {
	context.DefaultService

	jwtSvc        *JWTService
	redisSvc      *RedisService
	monitoringSvc *MonitoringService

	ledgerSvc     *LedgerService
	progressSvc   *ProgressService
	completionSvc *CompletionService
	dailyLoginSvc *DailyLoginService
	storeSvc      *StoreService

	port         int
	allowOrigins string
	app          *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	svc.allowOrigins = os.Getenv("CORS_ALLOW_ORIGINS")
	if svc.allowOrigins == "" {
		svc.allowOrigins = "http://localhost:3000"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.redisSvc, _ = svc.Service(REDIS_SVC).(*RedisService)
	svc.monitoringSvc, _ = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.completionSvc = svc.Service(COMPLETION_SVC).(*CompletionService)
	svc.dailyLoginSvc = svc.Service(DAILY_LOGIN_SVC).(*DailyLoginService)
	svc.storeSvc = svc.Service(STORE_SVC).(*StoreService)

	svc.app = svc.NewApp()

	log.WithField("port", svc.port).Info("HTTP server listening")
	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// NewApp builds the router. Split from Start so handlers can be exercised with app.Test.
func (svc *HttpService) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "TajweeDo",
		JSONEncoder:  shared.JSONMarshal,
		JSONDecoder:  shared.JSONUnmarshal,
		ErrorHandler: svc.HandleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     svc.allowOrigins,
		AllowCredentials: !strings.Contains(svc.allowOrigins, "*"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
	}))
	if svc.monitoringSvc != nil {
		app.Use(MonitoringMiddleware(svc.monitoringSvc))
	}

	requiredAuth := middleware.RequiredAuth(svc.jwtSvc)
	optionalAuth := middleware.OptionalAuth(svc.jwtSvc)

	economyHandler := handlers.NewEconomyHandler(svc.ledgerSvc)
	learnHandler := handlers.NewLearnHandler(svc.progressSvc, svc.completionSvc)
	dailyLoginHandler := handlers.NewDailyLoginHandler(svc.dailyLoginSvc)
	storeHandler := handlers.NewStoreHandler(svc.storeSvc)

	app.Get("/ping", svc.ping)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	v1.Get("/courses", economyHandler.ListCourses)
	v1.Get("/leaderboard", economyHandler.GetLeaderboard)

	progress := v1.Group("/progress", requiredAuth)
	progress.Get("/", economyHandler.GetUserProgress)
	progress.Post("/course", economyHandler.SelectCourse)
	progress.Post("/refill", economyHandler.RefillHearts)

	courses := v1.Group("/courses/:courseId", requiredAuth)
	courses.Get("/units", learnHandler.GetUnits)
	courses.Get("/active-lesson", learnHandler.GetActiveLesson)

	lessons := v1.Group("/lessons/:lessonId", requiredAuth)
	lessons.Get("/", learnHandler.GetLesson)
	lessons.Get("/percentage", learnHandler.GetLessonPercentage)
	lessons.Get("/completed", learnHandler.IsLessonCompleted)
	lessons.Post("/answers", middleware.RateLimit(svc.redisSvc, middleware.AnswerRateLimit), learnHandler.SubmitAnswer)
	lessons.Post("/complete", learnHandler.CompleteLesson)

	v1.Get("/daily-login", optionalAuth, dailyLoginHandler.GetDailyLogin)
	v1.Post("/daily-login", requiredAuth, middleware.RateLimit(svc.redisSvc, middleware.ClaimRateLimit), dailyLoginHandler.ClaimDailyLogin)
	v1.Patch("/daily-login", requiredAuth, dailyLoginHandler.UpdateView)

	store := v1.Group("/store", requiredAuth)
	store.Get("/items", storeHandler.ListItems)
	store.Post("/purchase", storeHandler.Purchase)

	app.Use(func(c *fiber.Ctx) error {
		return shared.NewNotFoundError(nil, "Not Found")
	})

	return app
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) HandleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok && appErr.StatusCode >= fiber.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path":   c.Path(),
			"method": c.Method(),
			"code":   appErr.Code,
		}).WithError(err).Error("Request failed")
	} else if !ok {
		if _, isFiber := err.(*fiber.Error); !isFiber {
			log.WithFields(log.Fields{"path": c.Path(), "method": c.Method()}).WithError(err).Error("Unhandled error")
		}
	}

	return shared.ResponseError(c, err)
}
