package notation

// Aggregate counts a comparison list against the number of expected notes.
func Aggregate(totalNotes int, comparisons []Comparison) EvaluationResult {
	res := EvaluationResult{
		TotalNotes: totalNotes,
		Details:    comparisons,
	}
	if res.Details == nil {
		res.Details = []Comparison{}
	}

	for _, c := range comparisons {
		switch {
		case c.IsCorrect:
			res.CorrectNotes++
		case c.ErrorKind == ErrorMissing:
			res.MissingNotes++
		case c.ErrorKind == ErrorExtra:
			res.ExtraNotes++
		default:
			res.IncorrectNotes++
		}
	}

	res.Score = Percent(res.CorrectNotes, totalNotes)
	res.Percentage = res.Score
	return res
}

// Percent returns round-half-up(part/total*100), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (2 * total)
}

// PointsFor converts a percentage into points: round-half-up(percentage/100*maxPoints).
func PointsFor(percentage, maxPoints int) int {
	if percentage <= 0 || maxPoints <= 0 {
		return 0
	}
	return (percentage*maxPoints*2 + 100) / 200
}
