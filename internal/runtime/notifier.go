package runtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/voxhold/voxhold/internal/bus"
	"github.com/voxhold/voxhold/internal/dictation"
	"github.com/voxhold/voxhold/internal/protocol"
)

// busNotifier forwards session lifecycle events to NATS for local observers
// (tray UI, log tailers). Publish failures are logged and otherwise ignored;
// dictation never blocks on the bus.
type busNotifier struct {
	client *bus.Client
	log    *slog.Logger
}

func newBusNotifier(client *bus.Client, log *slog.Logger) *busNotifier {
	return &busNotifier{client: client, log: log.With(slog.String("component", "notifier"))}
}

func (n *busNotifier) SessionStarted(id string, at time.Time) {
	n.publish(protocol.SubjectSessionStarted, protocol.SessionStarted{
		SessionID: id,
		StartedAt: at,
	})
}

func (n *busNotifier) SessionEnded(id string, cause dictation.Cause, at time.Time, duration time.Duration, samples int) {
	n.publish(protocol.SubjectSessionEnded, protocol.SessionEnded{
		SessionID:  id,
		Cause:      string(cause),
		EndedAt:    at,
		DurationMS: duration.Milliseconds(),
		Samples:    samples,
	})
}

func (n *busNotifier) Transcript(id, text, language string) {
	n.publish(protocol.SubjectTranscript, protocol.Transcript{
		SessionID: id,
		Text:      text,
		Language:  language,
		Timestamp: time.Now(),
	})
}

func (n *busNotifier) publish(subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.log.Warn("failed to encode event", slog.String("subject", subject), slog.String("error", err.Error()))
		return
	}
	if err := n.client.Publish(subject, data); err != nil {
		n.log.Warn("failed to publish event", slog.String("subject", subject), slog.String("error", err.Error()))
	}
}
