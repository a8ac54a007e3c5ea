package game

import (
	"context"
	"log"
	"time"

	"github.com/playmatatu/snooker/internal/metrics"
)

// StartReaper closes tables that have seen no input for the idle period.
func (m *TableManager) StartReaper(ctx context.Context, every time.Duration) {
	if m.idleAfter <= 0 {
		log.Println("[TABLE] Idle timeout disabled; reaper not started")
		return
	}

	log.Println("[TABLE] Idle reaper started")
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[TABLE] Idle reaper stopping")
			return
		case now := <-ticker.C:
			if n := m.reapIdle(now); n > 0 {
				log.Printf("[TABLE] Reaped %d idle tables", n)
			}
		}
	}
}

// reapIdle removes tables idle since before now minus the idle period.
func (m *TableManager) reapIdle(now time.Time) int {
	m.mu.RLock()
	var idle []string
	for token, t := range m.tables {
		if now.Sub(t.LastActivity()) >= m.idleAfter {
			idle = append(idle, token)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, token := range idle {
		if m.RemoveTable(token) {
			metrics.TablesReaped.Inc()
			log.Printf("[TABLE] Table %s idle for %s, closed", token, m.idleAfter)
			n++
		}
	}
	return n
}
