// Package planner builds the level sequence that drives a level-curve
// animation.
//
// Given an amplitude N, candidate levels are swept 0 → |N| → -|N| → 0 in
// steps of 2|N|/frameCount. Each candidate is rounded (3 decimals by default)
// and kept only when the contour provider finds a curve at that level on the
// shared ValueGrid. Zero is always kept. The accepted set V is sorted and the
// sequence is V followed by V reversed without its first element, so the
// cycle starts and ends on the same level and never repeats a frame at the
// turning point.
//
// Example usage:
//
//	p := planner.New(contour.NewMarchingSquares(s), planner.DefaultOptions())
//	seq, err := p.PlanGrid(z, 4)
//	if err != nil {
//	    return err
//	}
//	for _, level := range seq.Levels {
//	    ...
//	}
//
// The ValueGrid is requested from the ValueSource once per plan and shared by
// every existence check. A missing contour is never an error.
//
// PolicyUniform skips the existence filter and steps through every rounded
// candidate instead; frames without a curve are then rendered as absent by
// the caller.
package planner
