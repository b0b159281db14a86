package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Alsairy/AttendancePro-sub003/internal/attendance"
	"github.com/Alsairy/AttendancePro-sub003/internal/auth"
	"github.com/Alsairy/AttendancePro-sub003/internal/beacon"
	"github.com/Alsairy/AttendancePro-sub003/internal/config"
	"github.com/Alsairy/AttendancePro-sub003/internal/geofence"
	"github.com/Alsairy/AttendancePro-sub003/internal/httpmiddleware"
	"github.com/Alsairy/AttendancePro-sub003/internal/logging"
	"github.com/Alsairy/AttendancePro-sub003/internal/metrics"
	"github.com/Alsairy/AttendancePro-sub003/internal/photo"
	"github.com/Alsairy/AttendancePro-sub003/internal/queue"
	"github.com/Alsairy/AttendancePro-sub003/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("api server failed", zap.Error(err))
	}
}

func run(cfg config.App, log *zap.Logger) error {
	ctx := context.Background()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "attendance:events")
	}

	var photoStore photo.Store
	if cfg.PhotoBackend == "s3" {
		photoStore, err = photo.NewS3Store(ctx, cfg.PhotoBucket, cfg.PhotoPrefix)
		if err != nil {
			return err
		}
	} else {
		photoStore, err = photo.NewDiskStore(cfg.PhotoRoot)
		if err != nil {
			return err
		}
	}

	repo := attendance.NewRepository(db.Client)
	zoneValidator := geofence.NewValidator(geofence.NewRepository(db.Client))
	beaconValidator := beacon.NewValidator(beacon.NewRepository(db.Client))
	photos := timedPhotos{photo.NewProcessor(photo.JPEGCodec{}, photoStore)}

	recorder := attendance.NewRecorder(repo, zoneValidator, beaconValidator, photos, nil, log)
	query := attendance.NewQuery(repo, nil)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	if cfg.PhotoBackend != "s3" {
		r.Static("/photos", cfg.PhotoRoot)
	}

	v1 := r.Group("/v1/attendance", auth.WorkerAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	record := func(c *gin.Context, typ attendance.EventType) {
		claims, ok := auth.FromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, attendance.Envelope{Message: "unauthenticated"})
			return
		}

		var req attendance.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, attendance.Envelope{Message: "invalid request body"})
			return
		}

		var (
			view *attendance.RecordView
			err  error
		)
		if typ == attendance.TypeCheckIn {
			view, err = recorder.RecordCheckIn(c.Request.Context(), claims.TenantID, claims.Subject, req)
		} else {
			view, err = recorder.RecordCheckOut(c.Request.Context(), claims.TenantID, claims.Subject, req)
		}
		if err != nil {
			respondError(c, log, err)
			return
		}

		metrics.RecordsTotal.WithLabelValues(view.Type).Inc()

		// Downstream enrichment is best effort; the record is already safe.
		if err := q.Publish(c.Request.Context(), queue.Message{Type: queue.MsgRecorded, Body: []byte(view.ID)}); err != nil {
			log.Warn("queue publish failed", zap.String("record_id", view.ID), zap.Error(err))
		}

		c.JSON(http.StatusOK, attendance.Envelope{Success: true, Message: "recorded", Data: view})
	}

	v1.POST("/checkin", func(c *gin.Context) { record(c, attendance.TypeCheckIn) })
	v1.POST("/checkout", func(c *gin.Context) { record(c, attendance.TypeCheckOut) })

	v1.GET("/records", func(c *gin.Context) {
		claims, _ := auth.FromContext(c)
		from, ok := parseDateParam(c, "from", false)
		if !ok {
			return
		}
		to, ok := parseDateParam(c, "to", true)
		if !ok {
			return
		}
		views, err := query.Records(c.Request.Context(), claims.TenantID, claims.Subject, from, to)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, attendance.Envelope{Success: true, Message: "ok", Data: views})
	})

	v1.GET("/records/today", func(c *gin.Context) {
		claims, _ := auth.FromContext(c)
		views, err := query.TodayRecords(c.Request.Context(), claims.TenantID, claims.Subject)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, attendance.Envelope{Success: true, Message: "ok", Data: views})
	})

	v1.GET("/records/last", func(c *gin.Context) {
		claims, _ := auth.FromContext(c)
		view, err := query.LastRecord(c.Request.Context(), claims.TenantID, claims.Subject)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, attendance.Envelope{Success: true, Message: "ok", Data: view})
	})

	v1.GET("/report", func(c *gin.Context) {
		claims, _ := auth.FromContext(c)
		opts := attendance.ReportOptions{
			Search:     c.Query("search"),
			SortBy:     c.Query("sortBy"),
			Descending: c.Query("desc") == "true",
		}
		if v, err := strconv.Atoi(c.Query("page")); err == nil {
			opts.Page = v
		}
		if v, err := strconv.Atoi(c.Query("pageSize")); err == nil {
			opts.PageSize = v
		}
		rows, total, err := query.Report(c.Request.Context(), claims.TenantID, opts)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, attendance.Envelope{Success: true, Message: "ok", Data: gin.H{
			"rows":  rows,
			"total": total,
		}})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting api server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
	return nil
}

// respondError converts core errors into the uniform envelope; nothing below
// the recorder boundary reaches the caller raw.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, attendance.ErrTenantNotSet):
		c.JSON(http.StatusBadRequest, attendance.Envelope{Message: "tenant context not set"})
	case errors.Is(err, attendance.ErrDuplicateEvent):
		metrics.DuplicatesTotal.Inc()
		c.JSON(http.StatusConflict, attendance.Envelope{Message: "already checked in/out today"})
	case errors.Is(err, attendance.ErrNoPriorCheckIn):
		c.JSON(http.StatusConflict, attendance.Envelope{Message: "no check-in found for today"})
	case errors.Is(err, photo.ErrPayloadTooLarge):
		metrics.PhotoFailuresTotal.Inc()
		c.JSON(http.StatusRequestEntityTooLarge, attendance.Envelope{Message: "photo payload exceeds 5 MiB"})
	case errors.Is(err, photo.ErrProcessing):
		metrics.PhotoFailuresTotal.Inc()
		c.JSON(http.StatusUnprocessableEntity, attendance.Envelope{Message: "photo could not be processed"})
	default:
		log.Error("attendance operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, attendance.Envelope{Message: "internal error"})
	}
}

// parseDateParam reads an optional YYYY-MM-DD query param; endOfDay widens it
// to the last instant of that day so range bounds stay inclusive.
func parseDateParam(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, attendance.Envelope{Message: "invalid " + name + " date, want YYYY-MM-DD"})
		return nil, false
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, true
}

// timedPhotos wraps the processor with the pipeline latency histogram.
type timedPhotos struct {
	inner *photo.Processor
}

func (p timedPhotos) Process(ctx context.Context, payload string) (string, error) {
	start := time.Now()
	ref, err := p.inner.Process(ctx, payload)
	metrics.PhotoDuration.Observe(time.Since(start).Seconds())
	return ref, err
}
