package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"phonebook_backend/platform/apperr"
	"phonebook_backend/platform/config"
	"phonebook_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// BulkImportRunner executes a queued bulk import and returns the outcome to
// be stored as the task result.
type BulkImportRunner interface {
	RunBulkImport(ctx context.Context, payload BulkImportPayload) (any, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner BulkImportRunner
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, runner BulkImportRunner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 4
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		runner: runner,
		log:    log,
	}

	mux.HandleFunc(TaskBulkImport, w.handleBulkImport)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleBulkImport(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseBulkImportPayload(task)
	if err != nil {
		return fmt.Errorf("parse bulk import payload: %v: %w", err, asynq.SkipRetry)
	}

	ctx = context.WithValue(ctx, logger.JobIDKey, payload.JobID)
	log := w.log.WithContext(ctx)

	outcome, err := w.runner.RunBulkImport(ctx, payload)
	if err != nil {
		// a rejected request fails the same way on every attempt
		if apperr.Is(err, apperr.KindBadRequest) || apperr.Is(err, apperr.KindValidation) {
			log.Warn("bulk import job rejected", "error", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		log.Error("bulk import job failed", "error", err)
		return err
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal bulk import outcome: %w", err)
	}
	if rw := task.ResultWriter(); rw != nil {
		if _, err := rw.Write(data); err != nil {
			return fmt.Errorf("write bulk import result: %w", err)
		}
	}
	log.Info("bulk import job finished")
	return nil
}
