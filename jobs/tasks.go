package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/suppliers-api/internal/jobs"
	"github.com/odyssey-erp/suppliers-api/internal/shared"
	"github.com/odyssey-erp/suppliers-api/internal/suppliers"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSupplierAudit records a supplier mutation in audit_logs.
	TaskTypeSupplierAudit = "suppliers:audit"

	auditEntity = "supplier"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SupplierAuditPayload is the wire form of a suppliers.Event.
type SupplierAuditPayload struct {
	EventID    string    `json:"event_id"`
	Action     string    `json:"action"`
	SupplierID int64     `json:"supplier_id"`
	At         time.Time `json:"at"`
}

// NewSupplierAuditTask constructs an Asynq task for ev. The event ID doubles
// as the task ID so a retried publish is not recorded twice.
func NewSupplierAuditTask(ev suppliers.Event) (*asynq.Task, error) {
	if ev.ID == "" {
		return nil, errors.New("supplier audit: event id required")
	}
	body, err := json.Marshal(SupplierAuditPayload{
		EventID:    ev.ID,
		Action:     string(ev.Action),
		SupplierID: ev.SupplierID,
		At:         ev.At,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSupplierAudit, body,
		asynq.Queue(QueueDefault),
		asynq.TaskID(ev.ID),
		asynq.MaxRetry(5),
	), nil
}

// AuditRecorder persists audit entries. *shared.AuditLogger satisfies it.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SupplierAuditJob writes supplier events into the audit trail.
type SupplierAuditJob struct {
	Recorder AuditRecorder
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewSupplierAuditJob constructs the job handler.
func NewSupplierAuditJob(recorder AuditRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *SupplierAuditJob {
	return &SupplierAuditJob{Recorder: recorder, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTypeSupplierAudit tasks.
func (j *SupplierAuditJob) Handle(ctx context.Context, task *asynq.Task) (resultErr error) {
	if j == nil || j.Recorder == nil {
		return errors.New("supplier audit: recorder not configured")
	}
	var payload SupplierAuditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		j.log().Warn("discard malformed payload", slog.Any("error", err))
		return fmt.Errorf("supplier audit: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Action == "" || payload.SupplierID <= 0 {
		j.log().Warn("discard incomplete payload", slog.String("event_id", payload.EventID))
		return fmt.Errorf("supplier audit: incomplete payload: %w", asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskTypeSupplierAudit)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	err := j.Recorder.Record(ctx, shared.AuditLog{
		Action:   payload.Action,
		Entity:   auditEntity,
		EntityID: strconv.FormatInt(payload.SupplierID, 10),
		Meta:     map[string]any{"event_id": payload.EventID},
		At:       payload.At,
	})
	if err != nil {
		j.log().Error("record audit log", slog.String("event_id", payload.EventID), slog.Any("error", err))
		return err
	}
	j.log().Info("recorded supplier event",
		slog.String("event_id", payload.EventID),
		slog.String("action", payload.Action),
		slog.Int64("supplier_id", payload.SupplierID))
	return nil
}

func (j *SupplierAuditJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *SupplierAuditJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeSupplierAudit))
	}
	return slog.Default().With(slog.String("job", TaskTypeSupplierAudit))
}
