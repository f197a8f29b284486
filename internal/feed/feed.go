// Package feed turns incoming notifications into played and journaled
// announcements. It reads the JSON-lines capture format used by the CLI:
//
//	{"title": "Biến động số dư", "body": "Giao dịch: +300,000VND"}
package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/insightdelivered/bank-notify/internal/dispatcher"
	"github.com/insightdelivered/bank-notify/internal/models"
	"github.com/insightdelivered/bank-notify/internal/writer"
)

const maxLineSize = 1024 * 1024

// Settings supplies the preferences and volume for one dispatch.
type Settings interface {
	Snapshot() (models.Preferences, float64)
}

// Announcer queues an announcement, waiting for room if needed.
type Announcer interface {
	PlayWait(ctx context.Context, a models.Announcement) (uuid.UUID, error)
}

// Journal records played announcements.
type Journal interface {
	Record(entries ...writer.Entry) error
}

// Stats counts what ReadLines did with its input.
type Stats struct {
	Events    int
	Malformed int
	Announced int
}

// Processor dispatches notifications and hands announcements to the player.
type Processor struct {
	Settings Settings
	Player   Announcer
	// Journal is optional.
	Journal Journal
	Logger  *slog.Logger
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// ReadLines dispatches one notification per JSON line of r. Blank lines are
// skipped, malformed lines are logged and skipped. name identifies r in logs.
// It stops without error when ctx is cancelled.
func (p *Processor) ReadLines(ctx context.Context, r io.Reader, name string) (Stats, error) {
	var stats Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return stats, nil
		}
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event models.NotificationEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			stats.Malformed++
			p.logger().Warn("skipping malformed notification", "input", name, "line", lineNum, "error", err)
			continue
		}
		stats.Events++
		if p.Process(ctx, event) {
			stats.Announced++
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read %s: %w", name, err)
	}
	return stats, nil
}

// Process dispatches event against a fresh settings snapshot and reports
// whether an announcement was queued.
func (p *Processor) Process(ctx context.Context, event models.NotificationEvent) bool {
	prefs, volume := p.Settings.Snapshot()
	a, ok := dispatcher.Dispatch(event, prefs, volume)
	if !ok {
		p.logger().Debug("notification ignored", "title", event.Title)
		return false
	}
	return p.Emit(ctx, a)
}

// Emit queues a and journals it once queued.
func (p *Processor) Emit(ctx context.Context, a models.Announcement) bool {
	id, err := p.Player.PlayWait(ctx, a)
	if err != nil {
		p.logger().Warn("announcement not queued", "source", a.Source, "error", err)
		return false
	}
	if p.Journal != nil {
		if err := p.Journal.Record(writer.Entry{ID: id, Time: time.Now(), Announcement: a}); err != nil {
			p.logger().Error("failed to journal announcement", "id", id, "error", err)
		}
	}
	return true
}
