package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"blogplatform-backend/internal/shared"
	"blogplatform-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress, redisPassword string, redisDB int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddress,
			Password: redisPassword,
			DB:       redisDB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterCleanupJobs() error {
	return s.registerCleanupExpiredOTPsJob()
}

// ================================================
// JOB 1: Cleanup Expired OTPs (Daily at 2 AM)
// ================================================
func (s *Scheduler) registerCleanupExpiredOTPsJob() error {
	payload, err := json.Marshal(shared.CleanupExpiredOTPsPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupExpiredOTPs, payload)

	_, err = s.scheduler.Register(
		"0 2 * * *", // Daily at 2 AM
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register CleanupExpiredOTPs job", err)
		return err
	}

	logger.Info("✓ Registered CleanupExpiredOTPs: daily at 2 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
