package notation

var stepSemitones = map[Step]int{
	StepC: 0,
	StepD: 2,
	StepE: 4,
	StepF: 5,
	StepG: 7,
	StepA: 9,
	StepB: 11,
}

type spelling struct {
	step  Step
	alter int
}

// sharpSpellings is the only enharmonic table; black keys are always spelled with a sharp.
var sharpSpellings = [12]spelling{
	{StepC, 0}, {StepC, 1}, {StepD, 0}, {StepD, 1}, {StepE, 0}, {StepF, 0},
	{StepF, 1}, {StepG, 0}, {StepG, 1}, {StepA, 0}, {StepA, 1}, {StepB, 0},
}

// MIDI returns the MIDI number of a note (C4 = 60).
func MIDI(n NoteEvent) int {
	return stepSemitones[n.Step] + n.Alter + 12*(n.Octave+1)
}

// FromMIDI spells a MIDI number with the sharp-preferring table.
func FromMIDI(midi int) (Step, int, int) {
	pc := ((midi % 12) + 12) % 12
	octave := floorDiv(midi, 12) - 1
	s := sharpSpellings[pc]
	return s.step, s.alter, octave
}

// Transpose 将序列整体移调 semitones 个半音（正数为升高）。
// 时值、类型、连音线、圆滑线与奏法记号保持不变。
func Transpose(notes []NoteEvent, semitones int) []NoteEvent {
	out := make([]NoteEvent, len(notes))
	copy(out, notes)
	if semitones == 0 {
		return out
	}
	for i := range out {
		step, alter, octave := FromMIDI(MIDI(out[i]) + semitones)
		out[i].Step = step
		out[i].Alter = alter
		out[i].Octave = octave
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
