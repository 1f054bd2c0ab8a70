package workers

import (
	"chat-bridge/domain/event"
	"chat-bridge/observability"
	"context"
	"log/slog"
)

// TelemetryWorker folds lossy telemetry events into the monitoring
// counters. It sits outside the delivery path: dropping events under
// load never affects deliveries.
type TelemetryWorker struct {
	log           *slog.Logger
	telemetryChan chan event.Telemetry
	monitoring    *observability.MonitoringManager
}

func NewTelemetryWorker(log *slog.Logger, telemetryChan chan event.Telemetry,
	monitoring *observability.MonitoringManager) *TelemetryWorker {
	return &TelemetryWorker{log: log, telemetryChan: telemetryChan, monitoring: monitoring}
}

func (w TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry worker")
			return nil
		case evt, ok := <-w.telemetryChan:
			if !ok {
				return nil
			}
			w.monitoring.Record(evt.Type)
		}
	}
}
