package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(step Step, alter, octave int, position float64) NoteEvent {
	return NoteEvent{Step: step, Alter: alter, Octave: octave, Duration: 1, Type: Quarter, Position: position}
}

func TestMIDI(t *testing.T) {
	assert.Equal(t, 60, MIDI(note(StepC, 0, 4, 0)))
	assert.Equal(t, 69, MIDI(note(StepA, 0, 4, 0)))
	assert.Equal(t, 61, MIDI(note(StepD, -1, 4, 0)))
	assert.Equal(t, 0, MIDI(note(StepC, 0, -1, 0)))
	assert.Equal(t, 59, MIDI(note(StepC, -1, 4, 0)))
}

func TestTransposeSpelling(t *testing.T) {
	c4 := []NoteEvent{note(StepC, 0, 4, 0)}

	up12 := Transpose(c4, 12)
	assert.Equal(t, "C5", up12[0].Name())

	up1 := Transpose(c4, 1)
	assert.Equal(t, "C#4", up1[0].Name(), "black keys are spelled with sharps")

	db4 := Transpose([]NoteEvent{note(StepD, -1, 4, 0)}, 1)
	assert.Equal(t, "D4", db4[0].Name())

	down := Transpose(c4, -1)
	assert.Equal(t, "B3", down[0].Name())

	low := Transpose([]NoteEvent{note(StepC, 0, -1, 0)}, -1)
	assert.Equal(t, 11, low[0].Alter+stepSemitones[low[0].Step])
	assert.Equal(t, -2, low[0].Octave)
}

func TestTransposeKeepsRhythmAndMarkings(t *testing.T) {
	src := []NoteEvent{{
		Step: StepE, Octave: 4, Duration: 3, Type: Half, Position: 2.5,
		TieStart: true, SlurEnd: true, Articulation: Tenuto,
	}}
	out := Transpose(src, 5)
	require.Len(t, out, 1)
	assert.Equal(t, "A4", out[0].Name())
	assert.Equal(t, 3.0, out[0].Duration)
	assert.Equal(t, Half, out[0].Type)
	assert.Equal(t, 2.5, out[0].Position)
	assert.True(t, out[0].TieStart)
	assert.True(t, out[0].SlurEnd)
	assert.Equal(t, Tenuto, out[0].Articulation)
	assert.Equal(t, "E4", src[0].Name(), "input is not mutated")
}

func TestTransposeRoundTrip(t *testing.T) {
	var seq []NoteEvent
	for midi := 21; midi <= 108; midi += 5 {
		step, alter, octave := FromMIDI(midi)
		seq = append(seq, NoteEvent{Step: step, Alter: alter, Octave: octave, Duration: 2, Type: Eighth, Position: float64(midi) / 4})
	}

	for k := -30; k <= 30; k++ {
		back := Transpose(Transpose(seq, k), -k)
		require.Equal(t, seq, back, "offset %d", k)
	}
}

func TestAlignTolerance(t *testing.T) {
	ref := []NoteEvent{note(StepC, 0, 4, 0), note(StepD, 0, 4, 1), note(StepE, 0, 4, 2)}
	stu := []NoteEvent{note(StepC, 0, 4, 0), note(StepD, 0, 4, 1.2), note(StepE, 0, 4, 2)}

	wide := Align(ref, stu, 0.25)
	require.Len(t, wide, 3)
	for _, c := range wide {
		assert.True(t, c.IsCorrect)
	}

	narrow := Align(ref, stu, 0.1)
	res := Aggregate(len(ref), narrow)
	assert.Equal(t, 2, res.CorrectNotes)
	assert.Equal(t, 1, res.MissingNotes)
	assert.Equal(t, 1, res.ExtraNotes)
	require.Len(t, narrow, 4)
	assert.Equal(t, ErrorMissing, narrow[1].ErrorKind)
	assert.Equal(t, ErrorExtra, narrow[2].ErrorKind)
	assert.Equal(t, 1.2, narrow[2].Position)
}

func TestAlignIsGreedyInExpectedOrder(t *testing.T) {
	// the first expected note grabs the closest candidate even though a global
	// assignment would have matched both notes
	ref := []NoteEvent{note(StepC, 0, 4, 0.1), note(StepD, 0, 4, 0.3)}
	stu := []NoteEvent{note(StepD, 0, 4, 0.18), note(StepC, 0, 4, 0)}

	res := Aggregate(len(ref), Align(ref, stu, 0.15))
	assert.Equal(t, 0, res.CorrectNotes)
	assert.Equal(t, 1, res.IncorrectNotes)
	assert.Equal(t, 1, res.MissingNotes)
	assert.Equal(t, 1, res.ExtraNotes)
}

func TestAlignTieGoesToEarliestCandidate(t *testing.T) {
	ref := []NoteEvent{note(StepC, 0, 4, 1)}
	stu := []NoteEvent{note(StepC, 0, 4, 0.5), note(StepD, 0, 4, 1.5)}

	comps := Align(ref, stu, 0.5)
	require.Len(t, comps, 2)
	assert.True(t, comps[0].IsCorrect)
	assert.Equal(t, ErrorExtra, comps[1].ErrorKind)
}

func TestClassify(t *testing.T) {
	base := note(StepF, 1, 4, 0)

	same := Classify(base, note(StepG, -1, 4, 0))
	assert.True(t, same.IsCorrect, "enharmonic spellings share a MIDI number")
	assert.Empty(t, same.ErrorKind)

	both := note(StepG, 0, 4, 0)
	both.Duration = 2
	c := Classify(base, both)
	assert.False(t, c.IsCorrect)
	assert.Equal(t, ErrorPitch, c.ErrorKind, "pitch wins over duration")
	assert.Equal(t, 66, *c.ExpectedMIDI)
	assert.Equal(t, 67, *c.ActualMIDI)

	longer := base
	longer.Duration = 1.05
	assert.True(t, Classify(base, longer).IsCorrect, "small duration drift is tolerated")
	longer.Duration = 1.25
	assert.Equal(t, ErrorDuration, Classify(base, longer).ErrorKind)

	marked := base
	marked.TieStart = true
	marked.SlurStart = true
	marked.Articulation = Accent
	m := Classify(base, marked)
	assert.True(t, m.IsCorrect)
	assert.Empty(t, m.ErrorKind)
	assert.Equal(t, []ErrorKind{ErrorTie, ErrorSlur, ErrorArticulation}, m.Notices)
}

func TestPercentAndPoints(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 100, Percent(7, 7))

	assert.Equal(t, 3, PointsFor(50, 5), "2.5 rounds up")
	assert.Equal(t, 10, PointsFor(100, 10))
	assert.Equal(t, 7, PointsFor(67, 10))
	assert.Equal(t, 0, PointsFor(0, 10))
	assert.Equal(t, 0, PointsFor(90, 0))
}

func threeNoteScore() []byte {
	return []byte(scoreXML(1, []string{
		pitched("C", 4, 1, "<type>quarter</type>"),
		pitched("E", 4, 1, "<type>quarter</type>"),
		pitched("G", 4, 2, "<type>half</type>"),
	}))
}

func TestEvaluateIdentical(t *testing.T) {
	ref := threeNoteScore()
	res := Evaluate(ref, ref, 0)

	assert.Equal(t, 100, res.Percentage)
	assert.Equal(t, res.Score, res.Percentage)
	assert.Equal(t, 3, res.TotalNotes)
	assert.Equal(t, res.TotalNotes, res.CorrectNotes)
	assert.Zero(t, res.MissingNotes)
	assert.Zero(t, res.ExtraNotes)
	assert.Len(t, res.Details, 3)
}

func TestEvaluateAgainstEmptyStudent(t *testing.T) {
	res := Evaluate(threeNoteScore(), nil, 0)
	assert.Equal(t, 0, res.Percentage)
	assert.Equal(t, 3, res.MissingNotes)
	assert.Equal(t, res.TotalNotes, res.MissingNotes)
	assert.Zero(t, res.ExtraNotes)
}

func TestEvaluateEmptyReference(t *testing.T) {
	res := Evaluate([]byte("<<corrupt"), threeNoteScore(), 0)
	assert.Equal(t, 0, res.TotalNotes)
	assert.Equal(t, 0, res.Percentage)
	assert.Equal(t, 3, res.ExtraNotes)
}

func TestEvaluateTransposedReference(t *testing.T) {
	student := []byte(scoreXML(1, []string{
		pitched("D", 4, 1),
		`<note><pitch><step>F</step><alter>1</alter><octave>4</octave></pitch><duration>1</duration></note>`,
		pitched("A", 4, 2),
	}))

	res := Evaluate(threeNoteScore(), student, 2)
	assert.Equal(t, 100, res.Percentage)

	res = Evaluate(threeNoteScore(), student, 0)
	assert.Equal(t, 0, res.CorrectNotes)
	assert.Equal(t, 3, res.IncorrectNotes)
}

func TestEvaluateWithTolerance(t *testing.T) {
	ref := []byte(scoreXML(10, []string{
		pitched("C", 4, 10), pitched("E", 4, 10), pitched("G", 4, 20),
	}))
	late := []byte(scoreXML(10, []string{
		rest(2),
		pitched("C", 4, 10), pitched("E", 4, 10), pitched("G", 4, 20),
	}))

	wide := Evaluate(ref, late, 0, WithTolerance(0.25))
	assert.Equal(t, 100, wide.Percentage)

	narrow := Evaluate(ref, late, 0, WithTolerance(0.1))
	assert.Equal(t, 0, narrow.CorrectNotes)
	assert.Equal(t, 3, narrow.MissingNotes)
	assert.Equal(t, 3, narrow.ExtraNotes)

	assert.Equal(t, 100, Evaluate(ref, late, 0, WithTolerance(-1)).Percentage, "non-positive tolerance keeps the default")
}
