package types

import (
	"luckycard/internal/deck"
	"luckycard/internal/scene"
)

// SceneView is the JSON document the presentation layer renders.
type SceneView struct {
	Scene       int               `json:"scene"`
	Name        string            `json:"name"`
	Result      *scene.GameResult `json:"result,omitempty"`
	Hand        []deck.Numbered   `json:"hand,omitempty"`
	RevealCard  *deck.Card        `json:"revealCard,omitempty"`
	Phase       string            `json:"phase,omitempty"`
	RemainingMS int64             `json:"remainingMs,omitempty"`
	Actions     []string          `json:"actions"`
	Ignored     string            `json:"ignored,omitempty"`
}
