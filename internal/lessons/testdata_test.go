package lessons

import "strings"

// filledLesson is the lesson template with every placeholder written out.
func filledLesson(category string) string {
	return strings.ReplaceAll(`{
    "title": "Qubits and Superposition",
    "category": "{category}",
    "concept": {
        "mainIdea": "Quantum computers use qubits, which can hold a blend of 0 and 1 until measured.",
        "priorKnowledge": "Binary numbers and basic probability."
    },
    "exercise": {
        "question": "What makes a qubit different from a classical bit?",
        "options": [
            "It can be in a superposition of 0 and 1",
            "It stores three values at once",
            "It never needs to be measured",
            "It is always faster to read"
        ],
        "correctAnswer": 0
    },
    "practicalApplication": {
        "realWorldExample": "Drug discovery teams simulate molecules on quantum hardware.",
        "caseStudy": "A bank tested portfolio optimization on a 127-qubit machine.",
        "challengePrompt": "Which everyday problem might benefit from quantum search?"
    },
    "reflection": {
        "connectingPrompt": "How does measurement change what you know about a system?",
        "nextSteps": "Read about entanglement and quantum gates.",
        "relatedTopics": [
            "Entanglement",
            "Quantum gates",
            "Cryptography",
            "Probability"
        ]
    }
}`, "{category}", category)
}
