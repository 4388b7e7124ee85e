package services

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/afinmh/TajweeDo/services/repositories"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	SERVICE_NAME            = "tajweedo_backend"
	DEFAULT_PROMETHEUS_PORT = 2112
)

// HTTP Metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	httpRequestsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active concurrent HTTP requests",
		},
		[]string{"method"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Economy Metrics
var (
	answersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answers_total",
			Help: "Submitted answers by outcome",
		},
		[]string{"status", "mode"},
	)

	lessonsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lessons_completed_total",
			Help: "Lesson completions, split by first-time or repeat",
		},
		[]string{"first_time"},
	)

	refillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heart_refills_total",
			Help: "Heart refill attempts by result",
		},
		[]string{"result"},
	)

	dailyClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_login_claims_total",
			Help: "Daily login claims by result",
		},
		[]string{"status"},
	)

	purchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_purchases_total",
			Help: "Store purchase attempts by result",
		},
		[]string{"status"},
	)

	dataIntegrityFaultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "data_integrity_faults_total",
			Help: "Catalog problems detected while serving lessons",
		},
		[]string{"kind"},
	)

	usersOutOfHearts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "users_out_of_hearts",
			Help: "Learners currently at zero hearts",
		},
	)
)

// System Metrics
var (
	heapAllocBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heap_alloc_bytes",
			Help: "Heap memory allocated in bytes",
		},
	)

	gcTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gc_total",
			Help: "Total number of garbage collections",
		},
	)
)

type MonitoringService struct {
	appContext.DefaultService

	port     int
	register *prometheus.Registry

	scheduler    gocron.Scheduler
	server       *fiber.App
	progressRepo *repositories.ProgressRepository
	lastGCCount  uint32
}

func (svc MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *appContext.Context) error {
	port, err := strconv.Atoi(os.Getenv("PROMETHEUS_PORT"))
	if err != nil {
		port = DEFAULT_PROMETHEUS_PORT
	}
	svc.port = port

	return svc.DefaultService.Configure(ctx)
}

func (svc *MonitoringService) Start() error {
	if dbSvc, ok := svc.Service(DATABASE_SVC).(*DatabaseService); ok {
		svc.progressRepo = repositories.NewProgressRepository(dbSvc.Db())
	}

	svc.register = NewMetricsRegistry()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	svc.scheduler = scheduler

	_, err = scheduler.NewJob(
		gocron.DurationJob(15*time.Second),
		gocron.NewTask(svc.sampleRuntime),
	)
	if err != nil {
		return err
	}
	if svc.progressRepo != nil {
		_, err = scheduler.NewJob(
			gocron.DurationJob(time.Minute),
			gocron.NewTask(svc.sampleEconomy),
		)
		if err != nil {
			return err
		}
	}
	scheduler.Start()

	svc.server = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	})
	svc.server.Use(recover.New())

	svc.server.Get("/metrics", svc.metricsHandler)
	svc.server.Get("/health", svc.healthHandler)

	go func() {
		if err := svc.server.Listen(fmt.Sprintf(":%v", svc.port)); err != nil {
			log.Error().Err(err).Msg("Prometheus metrics server stopped")
		}
	}()

	log.Info().Int("port", svc.port).Msg("Prometheus metrics server started")
	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.scheduler != nil {
		_ = svc.scheduler.Shutdown()
	}
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// NewMetricsRegistry registers every collector this process exports.
func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reg.MustRegister(
		httpRequestsTotal,
		httpRequestsActive,
		httpRequestDurationSeconds,
		answersTotal,
		lessonsCompletedTotal,
		refillsTotal,
		dailyClaimsTotal,
		purchasesTotal,
		dataIntegrityFaultsTotal,
		usersOutOfHearts,
		heapAllocBytes,
		gcTotal,
	)
	return reg
}

func (svc *MonitoringService) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   SERVICE_NAME,
		"timestamp": time.Now().Unix(),
	})
}

func (svc *MonitoringService) sampleRuntime() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	heapAllocBytes.Set(float64(m.Alloc))

	if m.NumGC > svc.lastGCCount {
		gcTotal.Add(float64(m.NumGC - svc.lastGCCount))
		svc.lastGCCount = m.NumGC
	}
}

// sampleEconomy only reads; economy state is never changed by scheduled work.
func (svc *MonitoringService) sampleEconomy() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := svc.progressRepo.CountOutOfHearts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to sample out-of-hearts gauge")
		return
	}
	usersOutOfHearts.Set(float64(count))
}

func (svc *MonitoringService) RecordRequest(method, endpoint, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(endpoint, method, status).Observe(duration.Seconds())
}

func practiceLabel(isPractice bool) string {
	if isPractice {
		return "practice"
	}
	return "learn"
}

// MonitoringMiddleware creates a Fiber middleware for monitoring HTTP requests
func MonitoringMiddleware(monitoringSvc *MonitoringService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()

		httpRequestsActive.WithLabelValues(method).Inc()
		defer httpRequestsActive.WithLabelValues(method).Dec()

		err := c.Next()

		// the matched route is only known once the chain has run
		endpoint := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		monitoringSvc.RecordRequest(method, endpoint, status, time.Since(start))

		return err
	}
}
