package game

import (
	"context"
	"log"
	"time"

	"github.com/playmatatu/snooker/internal/metrics"
	"github.com/playmatatu/snooker/internal/store"
)

// History is where finished frames and shots are recorded.
type History interface {
	SaveFrame(ctx context.Context, f store.FrameRecord) error
	SaveShot(ctx context.Context, s store.ShotRecord) error
}

type historyJob struct {
	frame *store.FrameRecord
	shot  *store.ShotRecord
}

// historyWriter persists records from a single goroutine so database
// latency never reaches a table tick.
type historyWriter struct {
	hist History
	jobs chan historyJob
}

func newHistoryWriter(hist History, size int) *historyWriter {
	if hist == nil {
		return nil
	}
	return &historyWriter{hist: hist, jobs: make(chan historyJob, size)}
}

func (w *historyWriter) saveFrame(f store.FrameRecord) {
	if w == nil {
		return
	}
	w.push(historyJob{frame: &f})
}

func (w *historyWriter) saveShot(s store.ShotRecord) {
	if w == nil {
		return
	}
	w.push(historyJob{shot: &s})
}

func (w *historyWriter) push(j historyJob) {
	select {
	case w.jobs <- j:
	default:
		metrics.StoreDropped.Inc()
		log.Printf("[DB] history queue full, dropping record")
	}
}

func (w *historyWriter) run(ctx context.Context) {
	if w == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return
		case j := <-w.jobs:
			w.write(ctx, j)
		}
	}
}

// flush writes whatever is queued at shutdown.
func (w *historyWriter) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case j := <-w.jobs:
			w.write(ctx, j)
		default:
			return
		}
	}
}

func (w *historyWriter) write(ctx context.Context, j historyJob) {
	switch {
	case j.frame != nil:
		if err := w.hist.SaveFrame(ctx, *j.frame); err != nil {
			metrics.StoreErrors.WithLabelValues("frame").Inc()
			log.Printf("[DB] Failed to save frame %d for table %s: %v", j.frame.FrameNo, j.frame.TableToken, err)
		}
	case j.shot != nil:
		if err := w.hist.SaveShot(ctx, *j.shot); err != nil {
			metrics.StoreErrors.WithLabelValues("shot").Inc()
			log.Printf("[DB] Failed to save shot %d for table %s: %v", j.shot.ShotNo, j.shot.TableToken, err)
		}
	}
}
