package scheduler

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"phonebook_backend/platform/apperr"
	"phonebook_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRetention = 24 * time.Hour
	bulkImportRetry  = 3
)

type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
	retention time.Duration
}

// JobInfo is the externally visible state of a queued bulk import.
type JobInfo struct {
	ID          string          `json:"job_id"`
	State       string          `json:"state"`
	Retried     int             `json:"retried"`
	LastError   string          `json:"last_error,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// BulkImportQueue enqueues bulk imports and reports on them.
type BulkImportQueue interface {
	EnqueueBulkImport(ctx context.Context, payload BulkImportPayload) (JobInfo, error)
	GetBulkImportJob(ctx context.Context, jobID string) (JobInfo, error)
}

var _ BulkImportQueue = (*Client)(nil)

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	retention := cfg.GetBulkJobRetention()
	if retention <= 0 {
		retention = defaultRetention
	}

	return &Client{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     queue,
		retention: retention,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return errors.Join(c.client.Close(), c.inspector.Close())
}

// EnqueueBulkImport queues payload under its job ID. The outcome is kept for
// the configured retention after the task completes.
func (c *Client) EnqueueBulkImport(ctx context.Context, payload BulkImportPayload) (JobInfo, error) {
	if c == nil || c.client == nil {
		return JobInfo{}, apperr.Unavailable("job queue is not configured")
	}

	task, err := NewBulkImportTask(payload)
	if err != nil {
		return JobInfo{}, err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.TaskID(payload.JobID),
		asynq.Queue(c.queue),
		asynq.Retention(c.retention),
		asynq.MaxRetry(bulkImportRetry),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return JobInfo{}, apperr.Conflict("job already exists").WithCode(apperr.CodeAlreadyExists)
		}
		return JobInfo{}, fmt.Errorf("enqueue bulk import: %w", err)
	}
	return toJobInfo(info), nil
}

// GetBulkImportJob looks up a job by ID.
func (c *Client) GetBulkImportJob(_ context.Context, jobID string) (JobInfo, error) {
	if c == nil || c.inspector == nil {
		return JobInfo{}, apperr.Unavailable("job queue is not configured")
	}

	info, err := c.inspector.GetTaskInfo(c.queue, jobID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return JobInfo{}, apperr.NotFound("job not found")
		}
		return JobInfo{}, fmt.Errorf("get bulk import job: %w", err)
	}
	return toJobInfo(info), nil
}

func toJobInfo(info *asynq.TaskInfo) JobInfo {
	job := JobInfo{
		ID:        info.ID,
		State:     info.State.String(),
		Retried:   info.Retried,
		LastError: info.LastErr,
	}
	if !info.CompletedAt.IsZero() {
		completed := info.CompletedAt
		job.CompletedAt = &completed
	}
	if len(info.Result) > 0 && json.Valid(info.Result) {
		job.Result = json.RawMessage(info.Result)
	}
	return job
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
