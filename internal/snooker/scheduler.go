package snooker

import (
	"container/heap"
	"time"
)

// Deferred effect kinds.
const (
	TaskRespawn  = "respawn"
	TaskAnnounce = "announce"
	TaskRerack   = "rerack"
)

type task struct {
	due  time.Duration
	seq  uint64
	kind string
	run  func()
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(*task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Scheduler runs deferred effects on the game clock rather than the wall
// clock. Scheduled tasks cannot be cancelled.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	tasks taskHeap
}

// Now is the game time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After queues fn to run once the clock has advanced by d.
func (s *Scheduler) After(d time.Duration, kind string, fn func()) {
	s.seq++
	heap.Push(&s.tasks, &task{due: s.now + d, seq: s.seq, kind: kind, run: fn})
}

// Advance moves the clock forward and runs every task that has come due, in
// due-time then scheduling order. Tasks queued by a running task with a due
// time already reached run in the same call. It returns how many ran.
func (s *Scheduler) Advance(dt time.Duration) int {
	s.now += dt
	ran := 0
	for s.tasks.Len() > 0 && s.tasks[0].due <= s.now {
		t := heap.Pop(&s.tasks).(*task)
		t.run()
		ran++
	}
	return ran
}

// Pending reports whether a task of the given kind is still queued.
func (s *Scheduler) Pending(kind string) bool {
	for _, t := range s.tasks {
		if t.kind == kind {
			return true
		}
	}
	return false
}

func (s *Scheduler) Len() int {
	return s.tasks.Len()
}
