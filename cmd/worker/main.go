package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Alsairy/AttendancePro-sub003/internal/attendance"
	"github.com/Alsairy/AttendancePro-sub003/internal/config"
	"github.com/Alsairy/AttendancePro-sub003/internal/directory"
	"github.com/Alsairy/AttendancePro-sub003/internal/logging"
	"github.com/Alsairy/AttendancePro-sub003/internal/queue"
	"github.com/Alsairy/AttendancePro-sub003/internal/store"
)

// Worker consumes recorded-event messages and refreshes the worker directory
// read model behind the report search. Attendance records themselves are
// immutable and never touched here.
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "attendance:events")
	}

	repo := attendance.NewRepository(db.Client)
	dir := directory.New(cfg.DirectoryURL, cfg.DirectorySkip)

	if !cfg.DirectorySkip {
		if err := dir.Health(ctx); err != nil {
			log.Warn("directory service not available, will retry per message", zap.Error(err))
		} else {
			log.Info("directory service connected")
		}
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", zap.Error(err))
	}

	log.Info("worker started, waiting for messages")
	for msg := range messages {
		if msg.Type != queue.MsgRecorded {
			continue
		}

		id := string(msg.Body)
		rec, err := repo.GetRecord(ctx, id)
		if err != nil {
			log.Warn("fetch record failed", zap.String("record_id", id), zap.Error(err))
			continue
		}
		if rec == nil {
			log.Warn("record not found", zap.String("record_id", id))
			continue
		}

		profile, err := dir.Lookup(ctx, rec.WorkerID)
		if err != nil {
			log.Warn("directory lookup failed", zap.String("worker_id", rec.WorkerID), zap.Error(err))
			continue
		}
		if profile == nil {
			log.Warn("worker not in directory", zap.String("worker_id", rec.WorkerID))
			continue
		}

		if err := repo.UpsertWorker(ctx, attendance.Worker{
			TenantID:   rec.TenantID,
			WorkerID:   rec.WorkerID,
			Name:       profile.Name,
			Email:      profile.Email,
			EmployeeID: profile.EmployeeID,
		}); err != nil {
			log.Warn("worker upsert failed", zap.String("worker_id", rec.WorkerID), zap.Error(err))
			continue
		}

		log.Info("worker profile refreshed",
			zap.String("record_id", id),
			zap.String("worker_id", rec.WorkerID),
		)
	}

	log.Info("worker stopped")
}
