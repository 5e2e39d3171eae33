package notation

import (
	"math"
	"sort"
)

const (
	// DefaultTolerance is the maximum position difference, in beats, for two notes to align.
	DefaultTolerance = 0.25
	// DurationTolerance is compared against raw per-note durations (divisions, not beats).
	DurationTolerance = 0.1
)

// Align pairs expected notes with actual notes greedily in expected order. Each expected note
// takes the nearest unconsumed actual note within tolerance; the earliest candidate wins a tie.
// This is not an optimal assignment and must stay that way so historical scores do not move.
func Align(expected, actual []NoteEvent, tolerance float64) []Comparison {
	consumed := make([]bool, len(actual))
	comparisons := make([]Comparison, 0, len(expected)+len(actual))

	for i := range expected {
		exp := expected[i]
		best := -1
		bestDist := math.Inf(1)
		for j := range actual {
			if consumed[j] {
				continue
			}
			d := math.Abs(actual[j].Position - exp.Position)
			if d <= tolerance && d < bestDist {
				best, bestDist = j, d
			}
		}

		if best < 0 {
			comparisons = append(comparisons, missing(exp))
			continue
		}
		consumed[best] = true
		comparisons = append(comparisons, Classify(exp, actual[best]))
	}

	for j := range actual {
		if !consumed[j] {
			comparisons = append(comparisons, extra(actual[j]))
		}
	}

	sort.SliceStable(comparisons, func(a, b int) bool {
		return comparisons[a].Position < comparisons[b].Position
	})
	return comparisons
}

// Classify 判定一对已对齐音符：音高必须完全一致，时值差不超过 DurationTolerance。
// 音高错误优先于时值错误；连音线、圆滑线与奏法差异只记录在 Notices 中。
func Classify(expected, actual NoteEvent) Comparison {
	expMIDI, actMIDI := MIDI(expected), MIDI(actual)
	c := Comparison{
		Position:     expected.Position,
		Expected:     &expected,
		Actual:       &actual,
		ExpectedMIDI: &expMIDI,
		ActualMIDI:   &actMIDI,
	}

	pitchOK := expMIDI == actMIDI
	durationOK := math.Abs(expected.Duration-actual.Duration) <= DurationTolerance
	switch {
	case !pitchOK:
		c.ErrorKind = ErrorPitch
	case !durationOK:
		c.ErrorKind = ErrorDuration
	default:
		c.IsCorrect = true
	}

	if expected.TieStart != actual.TieStart || expected.TieEnd != actual.TieEnd {
		c.Notices = append(c.Notices, ErrorTie)
	}
	if expected.SlurStart != actual.SlurStart || expected.SlurEnd != actual.SlurEnd {
		c.Notices = append(c.Notices, ErrorSlur)
	}
	if expected.Articulation != actual.Articulation {
		c.Notices = append(c.Notices, ErrorArticulation)
	}
	return c
}

func missing(n NoteEvent) Comparison {
	m := MIDI(n)
	return Comparison{Position: n.Position, Expected: &n, ErrorKind: ErrorMissing, ExpectedMIDI: &m}
}

func extra(n NoteEvent) Comparison {
	m := MIDI(n)
	return Comparison{Position: n.Position, Actual: &n, ErrorKind: ErrorExtra, ActualMIDI: &m}
}
