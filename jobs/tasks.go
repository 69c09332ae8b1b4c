package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDashboardWarmup precomputes dashboard bundles for all accounts.
	TaskTypeDashboardWarmup = "dashboard:warmup"
	// TaskTypeIntegrityScan re-verifies stored derived fields against their inputs.
	TaskTypeIntegrityScan = "derived:integrity_scan"
	// TaskTypeSessionCleanup removes expired session rows.
	TaskTypeSessionCleanup = "auth:session_cleanup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewDashboardWarmupTask constructs the cache warmup task.
func NewDashboardWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeDashboardWarmup, nil)
}

// NewIntegrityScanTask constructs the derived-field scan task.
func NewIntegrityScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeIntegrityScan, nil)
}

// NewSessionCleanupTask constructs the expired-session cleanup task.
func NewSessionCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionCleanup, nil)
}
