package scene

import (
	"time"

	"luckycard/internal/deck"
)

// View is what the presentation layer renders for the current scene. Each
// variant carries exactly the data its screen needs.
type View interface {
	Scene() Scene
}

// IntroView is the start screen.
type IntroView struct{}

// CardSelectView offers the dealt hand.
type CardSelectView struct {
	Hand []deck.Numbered
}

// RevealPhase distinguishes the shuffling animation from the final hold.
type RevealPhase string

const (
	PhaseShuffling RevealPhase = "shuffling"
	PhaseHolding   RevealPhase = "holding"
)

// RevealView is the timed shuffle and hold before the result.
type RevealView struct {
	Result GameResult
	// Card is cosmetic and unrelated to Result.
	Card      deck.Card
	Phase     RevealPhase
	Remaining time.Duration
}

// ResultView shows the prize, or the no-win message.
type ResultView struct {
	Result GameResult
}

// FollowupView is the coupon screen after a winning claim.
type FollowupView struct {
	Result GameResult
}

func (IntroView) Scene() Scene      { return Intro }
func (CardSelectView) Scene() Scene { return CardSelect }
func (RevealView) Scene() Scene     { return Reveal }
func (ResultView) Scene() Scene     { return Result }
func (FollowupView) Scene() Scene   { return Followup }
