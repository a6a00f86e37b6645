package lessons

// Lesson is one generated lesson. JSON names match the template the model
// is asked to fill.
type Lesson struct {
	Title                string               `json:"title"`
	Category             string               `json:"category"`
	Concept              Concept              `json:"concept"`
	Exercise             Exercise             `json:"exercise"`
	PracticalApplication PracticalApplication `json:"practicalApplication"`
	Reflection           Reflection           `json:"reflection"`
}

type Concept struct {
	MainIdea       string `json:"mainIdea"`
	PriorKnowledge string `json:"priorKnowledge"`
}

// Exercise is a multiple-choice question. CorrectAnswer indexes Options.
type Exercise struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type PracticalApplication struct {
	RealWorldExample string `json:"realWorldExample"`
	CaseStudy        string `json:"caseStudy"`
	ChallengePrompt  string `json:"challengePrompt"`
}

type Reflection struct {
	ConnectingPrompt string   `json:"connectingPrompt"`
	NextSteps        string   `json:"nextSteps"`
	RelatedTopics    []string `json:"relatedTopics"`
}

// IsCorrect reports whether option i is the exercise's correct answer.
// An out-of-range CorrectAnswer never matches.
func (l *Lesson) IsCorrect(i int) bool {
	if l == nil || i < 0 || i >= len(l.Exercise.Options) {
		return false
	}
	return i == l.Exercise.CorrectAnswer
}
