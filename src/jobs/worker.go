package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"Backend-GACP-Survey/src/metrics"

	"github.com/hibiken/asynq"
)

// HandleResponseSubmitted แจ้งผู้ตรวจทางอีเมลเมื่อมีคำตอบถูกส่ง
// ถ้าไม่ได้ตั้ง reviewerEmail จะบันทึก log แล้วจบงาน
func HandleResponseSubmitted(sender MailSender, reviewerEmail string, m *metrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) (err error) {
		defer func() { m.JobProcessed(t.Type(), err) }()

		var p ResponseSubmittedPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			logger.Error("❌ Payload decode error", "type", t.Type(), "error", err)
			// payload เสียจะ retry ไปก็ไม่สำเร็จ
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}

		if reviewerEmail == "" {
			logger.Warn("⚠️ REVIEWER_EMAIL not set, skip notification", "responseId", p.ResponseID)
			return nil
		}

		html, err := RenderSubmittedEmailHTML(p)
		if err != nil {
			return fmt.Errorf("render email: %w", err)
		}

		subject := fmt.Sprintf("[GACP] แบบประเมิน %s ถูกส่งแล้ว (%.0f%%)", p.SurveyTitle, p.Percentage)
		if err := sender.Send(reviewerEmail, subject, html); err != nil {
			logger.Error("❌ Failed to send reviewer email", "responseId", p.ResponseID, "error", err)
			return err
		}

		logger.Info("✅ Reviewer notified", "responseId", p.ResponseID, "to", reviewerEmail)
		return nil
	}
}

// RegisterHandlers ผูก handler ทั้งหมดเข้ากับ mux
func RegisterHandlers(mux *asynq.ServeMux, sender MailSender, reviewerEmail string, m *metrics.Metrics, logger *slog.Logger) {
	mux.HandleFunc(TypeResponseSubmitted, HandleResponseSubmitted(sender, reviewerEmail, m, logger))
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(redisOpt asynq.RedisConnOpt, concurrency int, mux *asynq.ServeMux) *Worker {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues:      map[string]int{"default": 1},
		},
	)
	return &Worker{server: srv, mux: mux}
}

// Start เริ่ม worker แบบไม่ block
func (w *Worker) Start() error {
	return w.server.Start(w.mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
