package cron

import (
	"counselbook/config"
	"counselbook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection shared by the scheduler client and the worker.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
}

// InitReminderWorker starts the reminder worker in the background and returns
// the server so the caller can shut it down.
func InitReminderWorker(handler *ReminderHandler, logger *zap.Logger) (*asynq.Server, error) {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger:   logger.Sugar(),
			LogLevel: asynq.WarnLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeSendReminder, handler)

	if err := srv.Start(mux); err != nil {
		return nil, err
	}
	logger.Info("reminder worker started")
	return srv, nil
}
