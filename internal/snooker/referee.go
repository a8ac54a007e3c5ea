package snooker

import "log"

// DefaultFoulPenalty is awarded to the opponent for a foul in STANDARD mode.
const DefaultFoulPenalty = 4

// Verdict is the result of resolving one shot.
type Verdict struct {
	Frame         int     `json:"frame"`
	Shot          int     `json:"shot"`
	Shooter       Player  `json:"shooter"`
	Outcome       Outcome `json:"outcome"`
	Potted        int     `json:"potted"`
	Penalty       int     `json:"penalty"`
	PenaltyTo     Player  `json:"penalty_to,omitempty"`
	NextPlayer    Player  `json:"next_player"`
	TurnChanged   bool    `json:"turn_changed"`
	Break         int     `json:"break"`
	FrameComplete bool    `json:"frame_complete"`
	FrameWinner   Player  `json:"frame_winner,omitempty"`
}

// Referee is the turn and rules state machine. It is the only writer of
// MatchState: pots accrue into per-shot counters as they happen and the
// shot is judged once, when the table comes to rest.
type Referee struct {
	match    *MatchState
	penalty  int
	resolved bool
	shooter  Player
}

// NewReferee starts with no shot in flight.
func NewReferee(match *MatchState, foulPenalty int) *Referee {
	if foulPenalty <= 0 {
		foulPenalty = DefaultFoulPenalty
	}
	return &Referee{match: match, penalty: foulPenalty, resolved: true}
}

func (r *Referee) Match() *MatchState {
	return r.match
}

// BeginShot opens a new shot for the active player and re-arms resolution.
func (r *Referee) BeginShot() {
	r.resolved = false
	r.shooter = r.match.Active
	r.match.TotalShots++
}

// InFlight reports whether a shot has begun and not yet been resolved.
func (r *Referee) InFlight() bool {
	return !r.resolved
}

// Pot accrues one pocketed ball. The cue ball marks the shot as a foul;
// an object ball credits the active player's score and break. A pot with no
// shot in flight counts for nobody and reports false.
func (r *Referee) Pot(c Color) bool {
	if r.resolved {
		log.Printf("[RULES] %s potted with no shot in flight, not counted", c)
		return false
	}
	m := r.match
	if c == White {
		m.FoulCommitted = true
		return true
	}

	i := m.Active.index()
	m.PottedThisShot++
	m.Scores[i] += c.Value()
	m.Break += c.Value()
	return true
}

// Resolve judges the current shot. frameCleared must be true when the cue
// ball is the only ball left on the table. It runs at most once per shot;
// later calls return false and change nothing.
func (r *Referee) Resolve(frameCleared bool) (Verdict, bool) {
	if r.resolved {
		return Verdict{}, false
	}
	r.resolved = true
	m := r.match

	v := Verdict{
		Frame:   m.FramesCompleted + 1,
		Shot:    m.TotalShots,
		Shooter: r.shooter,
		Potted:  m.PottedThisShot,
	}

	switch {
	case m.FoulCommitted:
		v.Outcome = OutcomeFoul
	case m.PottedThisShot == 0:
		v.Outcome = OutcomeMiss
	default:
		v.Outcome = OutcomeGoodPot
	}

	if v.Outcome == OutcomeFoul && m.RulesMode == RulesStandard {
		opp := m.Active.Opponent()
		m.Scores[opp.index()] += r.penalty
		v.Penalty = r.penalty
		v.PenaltyTo = opp
	}

	if v.Outcome == OutcomeGoodPot {
		i := m.Active.index()
		if m.Break > m.HighestBreak[i] {
			m.HighestBreak[i] = m.Break
		}
		if m.Break > m.FrameHighestBreak[i] {
			m.FrameHighestBreak[i] = m.Break
		}
	} else {
		m.Active = m.Active.Opponent()
		m.Break = 0
		v.TurnChanged = true
	}

	if frameCleared {
		m.FramesCompleted++
		v.FrameComplete = true
		switch {
		case m.Scores[0] > m.Scores[1]:
			v.FrameWinner = Player1
		case m.Scores[1] > m.Scores[0]:
			v.FrameWinner = Player2
		}
		if v.FrameWinner != 0 {
			m.FramesWon[v.FrameWinner.index()]++
		}
	}

	v.NextPlayer = m.Active
	v.Break = m.Break
	m.LastOutcome = v.Outcome
	m.PottedThisShot = 0
	m.FoulCommitted = false

	log.Printf("[RULES] shot #%d player=%d outcome=%s potted=%d penalty=%d next=%d break=%d scores=%v frameComplete=%v",
		v.Shot, v.Shooter, v.Outcome, v.Potted, v.Penalty, v.NextPlayer, v.Break, m.Scores, v.FrameComplete)
	return v, true
}

// SetRulesMode switches the foul policy for shots resolved from now on.
func (r *Referee) SetRulesMode(mode RulesMode) {
	r.match.RulesMode = mode
}

// ResetFrame starts a new frame on the given layout.
func (r *Referee) ResetFrame(layout LayoutMode) {
	r.match.resetFrame(layout)
	r.resolved = true
}
