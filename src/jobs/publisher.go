package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Publisher ส่งงานเข้าคิว asynq ถ้าไม่มี client จะบันทึก log แล้วข้าม
type Publisher struct {
	client *asynq.Client
	log    *slog.Logger
}

func NewPublisher(client *asynq.Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, log: logger}
}

func (p *Publisher) PublishResponseSubmitted(ctx context.Context, payload ResponseSubmittedPayload) error {
	if p.client == nil {
		p.log.Warn("asynq client not initialized, skip task", "type", TypeResponseSubmitted, "responseId", payload.ResponseID)
		return nil
	}
	task, err := NewResponseSubmittedTask(payload)
	if err != nil {
		return err
	}
	info, err := p.client.EnqueueContext(ctx, task,
		asynq.TaskID(ResponseSubmittedTaskID(payload.ResponseID)),
		asynq.MaxRetry(3),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		p.log.Info("task already enqueued", "type", TypeResponseSubmitted, "responseId", payload.ResponseID)
		return nil
	}
	if err != nil {
		return err
	}
	p.log.Info("✅ Enqueued task", "type", TypeResponseSubmitted, "taskId", info.ID, "queue", info.Queue)
	return nil
}
