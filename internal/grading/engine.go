package grading

// Q is the minimal view of a question needed for grading.
type Q struct {
	Type             string
	Points           int
	CorrectOptionIDs []string
}

// Selection is what the student put down for one question: chosen option ids
// for choice questions, free text otherwise.
type Selection struct {
	OptionIDs []string
	Text      string
}

// Outcome is the result of grading a single question. Ungraded marks answers
// that are stored but not auto-scored (free text).
type Outcome struct {
	Correct  bool
	Ungraded bool
	Points   float64
}

// Strategy grades a single question.
type Strategy interface {
	Grade(q Q, sel Selection) Outcome
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(q Q, sel Selection) Outcome
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(q Q, sel Selection) Outcome {
	s, ok := g.strategies[q.Type]
	if !ok {
		// Unknown types fall through to the ungraded text path.
		return textStrategy{}.Grade(q, sel)
	}
	return s.Grade(q, sel)
}

// NewGrader installs the built-in strategies.
func NewGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			"MCQ_SINGLE": singleChoiceStrategy{},
			"TRUE_FALSE": singleChoiceStrategy{},
			"MCQ_MULTI":  multiChoiceStrategy{},
			"TEXT":       textStrategy{},
		},
	}
}

// --- Strategies ---

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Grade(q Q, sel Selection) Outcome {
	out := Outcome{}
	if len(sel.OptionIDs) != 1 {
		return out
	}
	for _, id := range q.CorrectOptionIDs {
		if sel.OptionIDs[0] == id {
			out.Correct = true
			out.Points = float64(q.Points)
			return out
		}
	}
	return out
}

type multiChoiceStrategy struct{}

// The selected set must equal the correct set exactly. Supersets, subsets and
// disjoint selections all score zero.
func (multiChoiceStrategy) Grade(q Q, sel Selection) Outcome {
	out := Outcome{}
	if len(sel.OptionIDs) == 0 {
		return out
	}
	if setEqual(toSet(sel.OptionIDs), toSet(q.CorrectOptionIDs)) {
		out.Correct = true
		out.Points = float64(q.Points)
	}
	return out
}

type textStrategy struct{}

func (textStrategy) Grade(q Q, sel Selection) Outcome {
	return Outcome{Ungraded: true}
}

// helpers

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
