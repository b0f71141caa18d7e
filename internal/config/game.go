package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"luckycard/internal/prize"
	"luckycard/internal/scene"
)

var ErrRevealDuration = errors.New("reveal duration must be positive")

// Game is the static game configuration loaded once at start-up.
type Game struct {
	Prizes  prize.Table
	Shuffle time.Duration
	Hold    time.Duration
}

type gameFile struct {
	Reveal struct {
		Shuffle *time.Duration `yaml:"shuffle"`
		Hold    *time.Duration `yaml:"hold"`
	} `yaml:"reveal"`
	Prizes struct {
		NoWin         string   `yaml:"no_win"`
		FallbackIndex *int     `yaml:"fallback_index"`
		Table         []string `yaml:"table"`
	} `yaml:"prizes"`
}

func DefaultGame() Game {
	return Game{
		Prizes:  prize.DefaultTable(),
		Shuffle: scene.DefaultShuffle,
		Hold:    scene.DefaultHold,
	}
}

// RevealDuration is the total time spent on the reveal scene.
func (g Game) RevealDuration() time.Duration {
	return g.Shuffle + g.Hold
}

// LoadGame reads and validates a YAML game file. A missing file is reported
// with an error wrapping fs.ErrNotExist.
func LoadGame(path string) (Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Game{}, fmt.Errorf("read game config %s: %w", path, err)
	}
	g, err := ParseGame(data)
	if err != nil {
		return Game{}, fmt.Errorf("game config %s: %w", path, err)
	}
	return g, nil
}

// ParseGame decodes YAML; omitted keys keep their defaults.
func ParseGame(data []byte) (Game, error) {
	var f gameFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Game{}, fmt.Errorf("decode: %w", err)
	}

	g := DefaultGame()
	if f.Reveal.Shuffle != nil {
		g.Shuffle = *f.Reveal.Shuffle
	}
	if f.Reveal.Hold != nil {
		g.Hold = *f.Reveal.Hold
	}
	if len(f.Prizes.Table) > 0 {
		g.Prizes.Labels = f.Prizes.Table
	}
	if f.Prizes.NoWin != "" {
		g.Prizes.NoWin = f.Prizes.NoWin
	}
	if f.Prizes.FallbackIndex != nil {
		g.Prizes.FallbackIndex = *f.Prizes.FallbackIndex
	} else if i := slices.Index(g.Prizes.Labels, g.Prizes.NoWin); i >= 0 {
		g.Prizes.FallbackIndex = i
	}

	if err := g.Validate(); err != nil {
		return Game{}, err
	}
	return g, nil
}

func (g Game) Validate() error {
	if g.Shuffle < 0 || g.Hold < 0 || g.RevealDuration() <= 0 {
		return fmt.Errorf("%w: shuffle=%v hold=%v", ErrRevealDuration, g.Shuffle, g.Hold)
	}
	return g.Prizes.Validate()
}
