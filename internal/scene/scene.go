// Package scene implements the five-screen flow of a single playthrough:
// intro, card selection, timed reveal, result and follow-up. A Controller owns
// the current scene and the one GameResult of the playthrough.
package scene

import "errors"

// Scene is a screen number, 1..5.
type Scene int

const (
	Intro Scene = iota + 1
	CardSelect
	Reveal
	Result
	Followup
)

// HandSize is the number of cards offered on the card-select screen.
const HandSize = 9

var (
	// ErrInvalidTransition is returned for a trigger the current scene does not accept.
	ErrInvalidTransition = errors.New("trigger not valid in current scene")
	// ErrInvalidCard is returned when a selected card is outside 1..HandSize.
	ErrInvalidCard = errors.New("card number out of range")
	// ErrMissingResult is returned when a result-bearing scene has no result.
	ErrMissingResult = errors.New("scene requires a game result")
)

func (s Scene) String() string {
	switch s {
	case Intro:
		return "intro"
	case CardSelect:
		return "card_select"
	case Reveal:
		return "reveal"
	case Result:
		return "result"
	case Followup:
		return "followup"
	default:
		return "unknown"
	}
}

// HasResult reports whether the scene carries a GameResult.
func (s Scene) HasResult() bool {
	return s >= Reveal
}

// Trigger names an external event that drives a transition.
type Trigger string

const (
	TriggerStart   Trigger = "start"
	TriggerSelect  Trigger = "select"
	TriggerReveal  Trigger = "reveal"
	TriggerClaim   Trigger = "claim"
	TriggerRestart Trigger = "restart"
)

// GameResult is the outcome of the playthrough's single draw.
type GameResult struct {
	CardNumber int    `json:"cardNumber"`
	Prize      string `json:"prize"`
	IsWin      bool   `json:"isWin"`
}
