package observability

import (
	"chat-bridge/domain/event"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Stats aggregates every runtime metric exposed on /stats.
type Stats struct {
	MessagesSent        uint64  `json:"messages_sent"`
	MessagesDelivered   uint64  `json:"messages_delivered"`
	TranslationFailures uint64  `json:"translation_failures"`
	LanguageMismatches  uint64  `json:"language_mismatches"`
	ActiveRooms         int     `json:"active_rooms"`
	ActiveParticipants  int     `json:"active_participants"`
	RSSBytes            uint64  `json:"rss_bytes"`
	CPUPercent          float64 `json:"cpu_percent"`
	UptimeSeconds       int64   `json:"uptime_seconds"`
}

// MonitoringManager keeps real-time counters for the delivery pipeline.
// Counters are atomic: the telemetry worker and HTTP handlers may touch
// them concurrently.
type MonitoringManager struct {
	log       *slog.Logger
	startedAt time.Time
	self      *process.Process

	messagesSent        uint64
	messagesDelivered   uint64
	translationFailures uint64
	languageMismatches  uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	// Self-stats stay best-effort: a missing process handle only
	// blanks the RSS/CPU fields of the snapshot.
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Self process stats unavailable", "error", err)
	}
	return &MonitoringManager{log: log, startedAt: time.Now(), self: self}
}

// Record increments the counter matching one telemetry event.
func (mm *MonitoringManager) Record(t event.TelemetryType) {
	switch t {
	case event.MessageSentType:
		atomic.AddUint64(&mm.messagesSent, 1)
	case event.MessageDeliveredType:
		atomic.AddUint64(&mm.messagesDelivered, 1)
	case event.TranslationFailedType:
		atomic.AddUint64(&mm.translationFailures, 1)
	case event.LanguageMismatchType:
		atomic.AddUint64(&mm.languageMismatches, 1)
	default:
		mm.log.Debug("Unknown telemetry type", "type", t)
	}
}

// Snapshot assembles the current stats. Room and participant counts come
// from the registry, which stays the single source of truth for membership.
func (mm *MonitoringManager) Snapshot(rooms, participants int) Stats {
	stats := Stats{
		MessagesSent:        atomic.LoadUint64(&mm.messagesSent),
		MessagesDelivered:   atomic.LoadUint64(&mm.messagesDelivered),
		TranslationFailures: atomic.LoadUint64(&mm.translationFailures),
		LanguageMismatches:  atomic.LoadUint64(&mm.languageMismatches),
		ActiveRooms:         rooms,
		ActiveParticipants:  participants,
		UptimeSeconds:       int64(time.Since(mm.startedAt).Seconds()),
	}

	if mm.self != nil {
		if memInfo, err := mm.self.MemoryInfo(); err == nil {
			stats.RSSBytes = memInfo.RSS
		}
		if cpuPercent, err := mm.self.CPUPercent(); err == nil {
			stats.CPUPercent = cpuPercent
		}
	}
	return stats
}
