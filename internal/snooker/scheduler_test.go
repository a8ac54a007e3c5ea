package snooker

import (
	"testing"
	"time"
)

func TestSchedulerRunsInDueOrder(t *testing.T) {
	var s Scheduler
	var got []string
	s.After(2*time.Second, TaskRerack, func() { got = append(got, "rerack") })
	s.After(time.Second, TaskRespawn, func() { got = append(got, "respawn") })
	s.After(time.Second, TaskAnnounce, func() { got = append(got, "announce") })

	if n := s.Advance(500 * time.Millisecond); n != 0 {
		t.Fatalf("ran %d tasks early", n)
	}
	if !s.Pending(TaskRespawn) {
		t.Error("respawn not pending")
	}
	if n := s.Advance(time.Second); n != 2 {
		t.Fatalf("ran %d tasks, want 2", n)
	}
	if s.Pending(TaskRespawn) || s.Pending(TaskAnnounce) {
		t.Error("tasks still pending after running")
	}
	s.Advance(time.Second)

	want := []string{"respawn", "announce", "rerack"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("task %d = %s, want %s", i, got[i], want[i])
		}
	}
	if s.Len() != 0 {
		t.Errorf("%d tasks left", s.Len())
	}
}

func TestSchedulerChainedTaskDueNow(t *testing.T) {
	var s Scheduler
	ran := 0
	s.After(time.Second, TaskRespawn, func() {
		ran++
		s.After(0, TaskAnnounce, func() { ran++ })
	})
	if n := s.Advance(time.Second); n != 2 {
		t.Errorf("ran %d tasks, want 2", n)
	}
	if ran != 2 {
		t.Errorf("ran = %d", ran)
	}
}

func TestSchedulerClock(t *testing.T) {
	var s Scheduler
	s.Advance(250 * time.Millisecond)
	s.Advance(250 * time.Millisecond)
	if s.Now() != 500*time.Millisecond {
		t.Errorf("now = %v", s.Now())
	}
}
