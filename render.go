package main

import (
	"errors"

	"luckycard/internal/scene"
	"luckycard/internal/types"
)

// buildSceneView flattens a scene variant into the JSON view. The variant
// decides the scene; a nil view (missing result) renders as the bare scene
// from st with no actions.
func buildSceneView(st scene.State, v scene.View) types.SceneView {
	sc := st.Scene
	if v != nil {
		sc = v.Scene()
	}
	out := types.SceneView{
		Scene:   int(sc),
		Name:    sc.String(),
		Actions: []string{},
	}
	switch v := v.(type) {
	case scene.IntroView:
		out.Actions = []string{string(scene.TriggerStart)}
	case scene.CardSelectView:
		out.Hand = v.Hand
		out.Actions = []string{string(scene.TriggerSelect)}
	case scene.RevealView:
		r, card := v.Result, v.Card
		out.Result = &r
		out.RevealCard = &card
		out.Phase = string(v.Phase)
		out.RemainingMS = v.Remaining.Milliseconds()
	case scene.ResultView:
		r := v.Result
		out.Result = &r
		if r.IsWin {
			out.Actions = []string{string(scene.TriggerClaim)}
		} else {
			out.Actions = []string{string(scene.TriggerRestart)}
		}
	case scene.FollowupView:
		r := v.Result
		out.Result = &r
		out.Actions = []string{string(scene.TriggerRestart)}
	}
	return out
}

// ignoredNotice maps a rejected trigger to the notice shown to the player.
func ignoredNotice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, scene.ErrInvalidCard):
		return NoticeInvalidCard
	case errors.Is(err, scene.ErrMissingResult):
		return NoticeMissingResult
	default:
		return NoticeInvalidTransition
	}
}
