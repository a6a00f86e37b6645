package lesson

import "github.com/joeaphiboon/BiteSizedLearning/internal/lessons"

// generatedMsg carries a finished generation. The outcome has already
// been applied to the session.
type generatedMsg struct {
	Outcome lessons.Outcome
}
