// Package player owns the audio side of an announcement: a chime followed
// by the spoken sentence. Announcements are played strictly one after
// another.
package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/insightdelivered/bank-notify/internal/models"
)

// Chime plays the short notification sound.
type Chime interface {
	Play(ctx context.Context, volume float64) error
}

// Speaker vocalizes text.
type Speaker interface {
	Speak(ctx context.Context, text string, volume float64) error
}

// Options configures a Player. A nil Logger means slog.Default().
type Options struct {
	QueueSize int
	Logger    *slog.Logger
}

// Player serializes playback of announcements.
//
//	p := player.New(chime, speaker, opts)
//	p.Start(ctx)
//	defer p.Close()
//	p.Play(announcement)
type Player struct {
	chime   Chime
	speaker Speaker
	logger  *slog.Logger
	queue   *queue
	wg      sync.WaitGroup
	once    sync.Once
}

// New returns a Player that is idle until Start is called.
func New(chime Chime, speaker Speaker, opts Options) *Player {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		chime:   chime,
		speaker: speaker,
		logger:  logger,
		queue:   newQueue(opts.QueueSize),
	}
}

// Start launches the playback worker. It returns immediately; the worker
// stops when Close has drained the queue or ctx is cancelled.
func (p *Player) Start(ctx context.Context) {
	p.once.Do(func() {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.queue.run(ctx, func(err error) {
				p.logger.Error("announcement playback failed", "error", err)
			})
		}()
	})
}

// Play queues an announcement and returns the ID used in playback logs.
// It fails with ErrQueueFull instead of waiting for room.
func (p *Player) Play(a models.Announcement) (uuid.UUID, error) {
	id := uuid.New()
	if err := p.queue.enqueue(p.task(id, a)); err != nil {
		return uuid.Nil, err
	}
	p.logger.Debug("announcement queued", "id", id, "source", a.Source)
	return id, nil
}

// PlayWait is like Play but waits for room in the queue.
func (p *Player) PlayWait(ctx context.Context, a models.Announcement) (uuid.UUID, error) {
	id := uuid.New()
	if err := p.queue.enqueueWait(ctx, p.task(id, a)); err != nil {
		return uuid.Nil, err
	}
	p.logger.Debug("announcement queued", "id", id, "source", a.Source)
	return id, nil
}

func (p *Player) task(id uuid.UUID, a models.Announcement) task {
	return func(ctx context.Context) error {
		return p.play(ctx, id, a)
	}
}

// Close stops accepting announcements and waits for queued ones to finish.
func (p *Player) Close() {
	p.queue.close()
	p.wg.Wait()
}

func (p *Player) play(ctx context.Context, id uuid.UUID, a models.Announcement) error {
	if p.chime != nil {
		if err := p.chime.Play(ctx, a.ChimeVolume); err != nil {
			p.logger.Warn("chime failed", "id", id, "error", err)
		}
	}
	if p.speaker == nil {
		return nil
	}
	if err := p.speaker.Speak(ctx, a.SpokenText, a.SpeechVolume); err != nil {
		return fmt.Errorf("speak announcement %s: %w", id, err)
	}
	p.logger.Info("announcement played", "id", id, "source", a.Source, "amount", a.Amount)
	return nil
}
