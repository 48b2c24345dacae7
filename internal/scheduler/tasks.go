package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskBulkImport = "phonenumbers.bulk_import"

// BulkImportPayload describes one queued text import.
type BulkImportPayload struct {
	JobID      string `json:"job_id"`
	CategoryID int64  `json:"category_id"`
	Text       string `json:"text"`
	Mode       string `json:"mode"`
	Source     string `json:"source,omitempty"`
}

func NewBulkImportTask(payload BulkImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBulkImport, data), nil
}

func ParseBulkImportPayload(task *asynq.Task) (BulkImportPayload, error) {
	var payload BulkImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BulkImportPayload{}, err
	}
	return payload, nil
}
