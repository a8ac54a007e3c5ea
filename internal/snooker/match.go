package snooker

import "fmt"

// Player is 1 or 2.
type Player int

const (
	Player1 Player = 1
	Player2 Player = 2
)

// Opponent returns the other player.
func (p Player) Opponent() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p Player) index() int {
	if p == Player2 {
		return 1
	}
	return 0
}

// RulesMode selects the foul penalty policy.
type RulesMode string

const (
	RulesStandard RulesMode = "STANDARD"
	RulesBeginner RulesMode = "BEGINNER"
)

// ParseRulesMode validates a rules mode name.
func ParseRulesMode(s string) (RulesMode, error) {
	switch RulesMode(s) {
	case RulesStandard, RulesBeginner:
		return RulesMode(s), nil
	}
	return "", fmt.Errorf("unknown rules mode %q", s)
}

// LayoutMode selects how object balls are racked.
type LayoutMode string

const (
	LayoutTriangle LayoutMode = "TRIANGLE"
	LayoutRandom   LayoutMode = "RANDOM"
	LayoutPractice LayoutMode = "PRACTICE"
)

// ParseLayoutMode validates a layout mode name.
func ParseLayoutMode(s string) (LayoutMode, error) {
	switch LayoutMode(s) {
	case LayoutTriangle, LayoutRandom, LayoutPractice:
		return LayoutMode(s), nil
	}
	return "", fmt.Errorf("unknown layout mode %q", s)
}

// Outcome is the verdict on a resolved shot.
type Outcome string

const (
	OutcomeFoul    Outcome = "FOUL"
	OutcomeMiss    Outcome = "MISS"
	OutcomeGoodPot Outcome = "GOOD_POT"
)

// MatchState is the scoreboard of one table. Only the Referee writes it.
type MatchState struct {
	Scores          [2]int     `json:"scores"`
	Active          Player     `json:"active_player"`
	PottedThisShot  int        `json:"potted_this_shot"`
	FoulCommitted   bool       `json:"foul_committed"`
	Break           int        `json:"break"`
	FramesCompleted int        `json:"frames_completed"`
	TotalShots      int        `json:"total_shots"`
	RulesMode       RulesMode  `json:"rules_mode"`
	Layout          LayoutMode `json:"layout"`

	HighestBreak      [2]int  `json:"highest_break"`
	FrameHighestBreak [2]int  `json:"frame_highest_break"`
	FramesWon         [2]int  `json:"frames_won"`
	LastOutcome       Outcome `json:"last_outcome,omitempty"`
}

// NewMatchState returns a fresh match with player 1 to play.
func NewMatchState(rules RulesMode, layout LayoutMode) *MatchState {
	return &MatchState{
		Active:    Player1,
		RulesMode: rules,
		Layout:    layout,
	}
}

// Score returns a player's frame score.
func (m *MatchState) Score(p Player) int {
	return m.Scores[p.index()]
}

// resetFrame zeroes everything scoped to one frame. Frame counts, frames won
// and highest breaks carry over.
func (m *MatchState) resetFrame(layout LayoutMode) {
	m.Scores = [2]int{}
	m.Active = Player1
	m.PottedThisShot = 0
	m.FoulCommitted = false
	m.Break = 0
	m.FrameHighestBreak = [2]int{}
	m.TotalShots = 0
	m.Layout = layout
	m.LastOutcome = ""
}
