package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"luckycard/internal/deck"
	"luckycard/internal/prize"
	"luckycard/internal/rng"
)

const (
	DefaultShuffle = 5 * time.Second
	DefaultHold    = 2 * time.Second
)

// Drawer resolves the prize for a card selection.
type Drawer interface {
	Draw(ctx context.Context) prize.Outcome
}

// Observer is notified of state changes. Calls are made with the controller
// lock held and must not call back into the controller.
type Observer interface {
	Transitioned(from, to Scene)
	Drew(result GameResult, fallback bool)
	Rejected(trigger Trigger, err error)
}

// Config holds the optional collaborators of a Controller.
type Config struct {
	// Shuffle and Hold make up the reveal duration.
	Shuffle time.Duration
	Hold    time.Duration

	Scheduler Scheduler
	Observer  Observer
	Logger    *zap.Logger

	// Cards and Source feed the decorative hand and reveal card.
	Cards  []deck.Card
	Source rng.Source

	Now func() time.Time
}

// State is a copy of the controller's scene and result.
type State struct {
	Scene  Scene
	Result *GameResult
}

// Controller sequences one playthrough. All triggers are serialized by mu; the
// reveal timer callback takes the same lock and is bound to the entry into
// Reveal that scheduled it.
type Controller struct {
	mu sync.Mutex

	scene      Scene
	result     *GameResult
	hand       []deck.Numbered
	revealCard deck.Card
	revealAt   time.Time

	// epoch changes on every entry into Reveal and on every reset. A timer
	// whose epoch no longer matches is stale.
	epoch   uint64
	pending Timer

	lastActive time.Time

	drawer   Drawer
	shuffle  time.Duration
	hold     time.Duration
	sched    Scheduler
	observer Observer
	log      *zap.Logger
	cards    []deck.Card
	src      rng.Source
	now      func() time.Time
}

// NewController returns a controller positioned on the intro scene.
func NewController(d Drawer, cfg Config) *Controller {
	c := &Controller{
		scene:    Intro,
		drawer:   d,
		shuffle:  cfg.Shuffle,
		hold:     cfg.Hold,
		sched:    cfg.Scheduler,
		observer: cfg.Observer,
		log:      cfg.Logger,
		cards:    cfg.Cards,
		src:      cfg.Source,
		now:      cfg.Now,
	}
	if c.shuffle <= 0 && c.hold <= 0 {
		c.shuffle, c.hold = DefaultShuffle, DefaultHold
	}
	if c.sched == nil {
		c.sched = ClockScheduler{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.cards == nil {
		c.cards = deck.Standard()
	}
	if c.src == nil {
		c.src = rng.Crypto{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.lastActive = c.now()
	return c
}

// RevealDuration is the time spent in Reveal before the result is shown.
func (c *Controller) RevealDuration() time.Duration {
	return c.shuffle + c.hold
}

// Start moves from Intro to CardSelect and deals the hand.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.scene != Intro {
		return c.reject(TriggerStart, ErrInvalidTransition)
	}

	hand, err := deck.Deal(c.cards, HandSize, c.src)
	if err != nil {
		c.log.Warn("dealing hand fell back to deck order", zap.Error(err))
	}
	c.hand = hand
	c.enter(CardSelect)
	return nil
}

// Select records the chosen card, draws the prize and enters Reveal. Only the
// first valid call per playthrough draws; later calls are rejected.
func (c *Controller) Select(ctx context.Context, card int) (GameResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.scene != CardSelect {
		return GameResult{}, c.reject(TriggerSelect, ErrInvalidTransition)
	}
	if card < 1 || card > HandSize {
		return GameResult{}, c.reject(TriggerSelect, fmt.Errorf("%w: %d", ErrInvalidCard, card))
	}

	out := c.drawer.Draw(ctx)
	res := GameResult{CardNumber: card, Prize: out.Label, IsWin: out.IsWin}
	c.result = &res

	face, err := deck.Pick(c.cards, c.src)
	if err != nil {
		c.log.Warn("reveal card fell back to first face", zap.Error(err))
	}
	c.revealCard = face

	if c.observer != nil {
		c.observer.Drew(res, out.Fallback)
	}
	c.enter(Reveal)
	c.scheduleReveal()
	return res, nil
}

// Claim moves a winning Result to Followup.
func (c *Controller) Claim() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.scene != Result {
		return c.reject(TriggerClaim, ErrInvalidTransition)
	}
	if c.result == nil {
		return c.reject(TriggerClaim, ErrMissingResult)
	}
	if !c.result.IsWin {
		return c.reject(TriggerClaim, ErrInvalidTransition)
	}
	c.enter(Followup)
	return nil
}

// Restart returns to Intro from any scene, clearing the result and
// invalidating a pending reveal timer.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.reset()
}

// Close invalidates any pending timer. The controller stays usable.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPending()
}

// State returns a copy of the current scene and result.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

func (c *Controller) state() State {
	st := State{Scene: c.scene}
	if c.result != nil {
		r := *c.result
		st.Result = &r
	}
	return st
}

// LastActive is the time of the last trigger.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// View builds the variant for the current scene. A result-bearing scene
// without a result returns ErrMissingResult and no view.
func (c *Controller) View() (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

// Snapshot returns the state and its view taken under one lock, so a reveal
// timer firing in between cannot pair one scene's state with another's view.
func (c *Controller) Snapshot() (State, View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.view()
	return c.state(), v, err
}

func (c *Controller) view() (View, error) {
	if c.scene.HasResult() && c.result == nil {
		return nil, ErrMissingResult
	}

	switch c.scene {
	case CardSelect:
		hand := make([]deck.Numbered, len(c.hand))
		copy(hand, c.hand)
		return CardSelectView{Hand: hand}, nil
	case Reveal:
		elapsed := c.now().Sub(c.revealAt)
		phase := PhaseShuffling
		if elapsed >= c.shuffle {
			phase = PhaseHolding
		}
		return RevealView{
			Result:    *c.result,
			Card:      c.revealCard,
			Phase:     phase,
			Remaining: max(c.RevealDuration()-elapsed, 0),
		}, nil
	case Result:
		return ResultView{Result: *c.result}, nil
	case Followup:
		return FollowupView{Result: *c.result}, nil
	default:
		return IntroView{}, nil
	}
}

func (c *Controller) scheduleReveal() {
	c.cancelPending()
	c.epoch++
	epoch := c.epoch
	c.revealAt = c.now()
	c.pending = c.sched.AfterFunc(c.RevealDuration(), func() {
		c.completeReveal(epoch)
	})
}

func (c *Controller) completeReveal(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.scene != Reveal {
		c.log.Debug("discarding stale reveal timer", zap.Uint64("epoch", epoch), zap.Uint64("current", c.epoch))
		return
	}
	c.pending = nil
	if c.result == nil {
		c.log.Warn("reveal finished without a result, staying in reveal")
		if c.observer != nil {
			c.observer.Rejected(TriggerReveal, ErrMissingResult)
		}
		return
	}
	c.enter(Result)
}

func (c *Controller) reset() {
	c.cancelPending()
	c.result = nil
	c.hand = nil
	c.revealCard = deck.Card{}
	c.revealAt = time.Time{}
	if c.scene != Intro {
		c.enter(Intro)
	}
}

func (c *Controller) cancelPending() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.epoch++
}

func (c *Controller) enter(next Scene) {
	prev := c.scene
	c.scene = next
	c.log.Debug("scene transition", zap.Stringer("from", prev), zap.Stringer("to", next))
	if c.observer != nil {
		c.observer.Transitioned(prev, next)
	}
}

func (c *Controller) reject(t Trigger, err error) error {
	c.log.Debug("trigger rejected", zap.String("trigger", string(t)), zap.Stringer("scene", c.scene), zap.Error(err))
	if c.observer != nil {
		c.observer.Rejected(t, err)
	}
	return err
}

func (c *Controller) touch() {
	c.lastActive = c.now()
}
