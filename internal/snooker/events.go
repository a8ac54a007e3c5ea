package snooker

// Event is a notification pushed from a table to its observers.
type Event interface {
	Type() string
}

// Notifier receives events. It is called with the game lock held and must
// not call back into the game.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// MatchUpdate carries the scoreboard after any change.
type MatchUpdate struct {
	Match MatchState `json:"match"`
	Phase ShotPhase  `json:"phase"`
}

// BallRemoved drives the dispenser animation.
type BallRemoved struct {
	Ball   BallID `json:"ball"`
	Color  Color  `json:"color"`
	Pocket string `json:"pocket,omitempty"`
	Reason string `json:"reason"`
}

// ShotFired marks the impact point of a new shot.
type ShotFired struct {
	Number  int    `json:"number"`
	Shooter Player `json:"shooter"`
	Shot    Shot   `json:"shot"`
}

// ShotResolved is the referee's verdict.
type ShotResolved struct {
	Verdict Verdict `json:"verdict"`
}

// Announcement is a deferred message shown after a shot, e.g. a turn switch.
type Announcement struct {
	Text   string `json:"text"`
	Player Player `json:"player"`
}

// FrameComplete is sent when the last object ball goes down. HighestBreak
// covers this frame only.
type FrameComplete struct {
	Frame        int        `json:"frame"`
	Winner       Player     `json:"winner,omitempty"`
	Scores       [2]int     `json:"scores"`
	HighestBreak [2]int     `json:"highest_break"`
	Shots        int        `json:"shots"`
	Layout       LayoutMode `json:"layout"`
	RulesMode    RulesMode  `json:"rules_mode"`
}

// Feedback is a user-visible note for a rejected request.
type Feedback struct {
	Message string `json:"message"`
}

// RenderFrame is one frame of ball positions, live or from a replay.
type RenderFrame struct {
	Tick   uint64      `json:"tick"`
	Replay bool        `json:"replay"`
	Balls  []BallState `json:"balls,omitempty"`
	Marks  []Sample    `json:"marks,omitempty"`
	Aim    *AimState   `json:"aim,omitempty"`
}

// AimState is the cue line while aiming.
type AimState struct {
	Angle float64 `json:"angle"`
	Power float64 `json:"power"`
}

func (MatchUpdate) Type() string   { return "match_update" }
func (BallRemoved) Type() string   { return "ball_removed" }
func (ShotFired) Type() string     { return "shot_fired" }
func (ShotResolved) Type() string  { return "shot_resolved" }
func (Announcement) Type() string  { return "announcement" }
func (FrameComplete) Type() string { return "frame_complete" }
func (Feedback) Type() string      { return "feedback" }
func (RenderFrame) Type() string   { return "render_frame" }
