package workers

import (
	"chat-bridge/domain/event"
	"chat-bridge/observability"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestTelemetryWorker_FoldsEventsIntoCounters(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	monitoring := observability.NewMonitoringManager(log)
	telemetryChan := make(chan event.Telemetry, 8)

	worker := NewTelemetryWorker(log, telemetryChan, monitoring)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// When telemetry events arrive on the side-channel
	telemetryChan <- event.Telemetry{Type: event.MessageSentType}
	telemetryChan <- event.Telemetry{Type: event.MessageDeliveredType}
	telemetryChan <- event.Telemetry{Type: event.MessageDeliveredType}
	telemetryChan <- event.Telemetry{Type: event.TranslationFailedType}

	// Then the counters converge on the recorded totals
	req.Eventually(func() bool {
		stats := monitoring.Snapshot(0, 0)
		return stats.MessagesSent == 1 &&
			stats.MessagesDelivered == 2 &&
			stats.TranslationFailures == 1
	}, time.Second, 10*time.Millisecond)
}
