package snooker

import (
	"errors"

	"github.com/playmatatu/snooker/internal/physics"
)

var (
	ErrNoRecording = errors.New("no shot recorded yet")
	ErrReplayBusy  = errors.New("replay unavailable while a shot is running or replaying")
)

// Sample is one ball in one recorded frame.
type Sample struct {
	Position physics.Vec2 `json:"position"`
	Color    Color        `json:"color"`
}

// Recorder keeps the ball positions of the most recent shot, one frame per
// simulation tick, and plays them back one frame per render tick.
type Recorder struct {
	frames    [][]Sample
	recording bool
	replaying bool
	cursor    int
}

// Start begins a new recording, discarding the previous one.
func (r *Recorder) Start() {
	r.frames = nil
	r.recording = true
}

// Capture appends a frame while recording.
func (r *Recorder) Capture(frame []Sample) {
	if !r.recording {
		return
	}
	r.frames = append(r.frames, frame)
}

// Stop ends the recording.
func (r *Recorder) Stop() {
	r.recording = false
}

func (r *Recorder) Recording() bool {
	return r.recording
}

func (r *Recorder) Replaying() bool {
	return r.replaying
}

// Frames returns how many frames the last recording holds.
func (r *Recorder) Frames() int {
	return len(r.frames)
}

// StartReplay enters replay mode. It is refused while a shot is in flight,
// while already replaying, or when there is nothing to show.
func (r *Recorder) StartReplay(shotInFlight bool) error {
	if shotInFlight || r.recording || r.replaying {
		return ErrReplayBusy
	}
	if len(r.frames) == 0 {
		return ErrNoRecording
	}
	r.replaying = true
	r.cursor = 0
	return nil
}

// Next returns the next replay frame. The second result is false once the
// replay has ended, at which point replay mode is left.
func (r *Recorder) Next() ([]Sample, bool) {
	if !r.replaying {
		return nil, false
	}
	if r.cursor >= len(r.frames) {
		r.replaying = false
		return nil, false
	}
	f := r.frames[r.cursor]
	r.cursor++
	return f, true
}
