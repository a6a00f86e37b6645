package lessons

import (
	"strings"

	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
)

const topicSystemPrompt = `You are an expert in education. Respond with only a single topic name, no other text.`

const topicUserPrompt = `Suggest one specific, interesting topic in {category} for a 5-minute lesson.`

const lessonSystemPrompt = `You are an educational content creator that generates structured lessons. 
You must ALWAYS respond with valid JSON only, no additional text or explanations.
Your responses must perfectly match the required JSON structure.`

const lessonTemplate = `Create an educational lesson about {topic} in {category}.
Respond with ONLY this exact JSON structure, no other text:

{
    "title": "Write an engaging title here",
    "category": "{category}",
    "concept": {
        "mainIdea": "Write 2-3 sentences explaining the main concept",
        "priorKnowledge": "Write what students should already know"
    },
    "exercise": {
        "question": "Write a multiple choice question",
        "options": [
            "Write correct answer here",
            "Write incorrect option here",
            "Write incorrect option here",
            "Write incorrect option here"
        ],
        "correctAnswer": 0
    },
    "practicalApplication": {
        "realWorldExample": "Write a real-world example",
        "caseStudy": "Write a brief case study",
        "challengePrompt": "Write a challenge question"
    },
    "reflection": {
        "connectingPrompt": "Write a reflection question",
        "nextSteps": "Write suggested next steps",
        "relatedTopics": [
            "Topic 1",
            "Topic 2",
            "Topic 3",
            "Topic 4"
        ]
    }
}`

// fill substitutes placeholders in a single pass so a topic containing
// "{category}" is left alone.
func fill(tmpl string, category Category, topic string) string {
	return strings.NewReplacer("{category}", string(category), "{topic}", topic).Replace(tmpl)
}

// BuildTopicRequest builds the request asking for one topic name.
func BuildTopicRequest(category Category, cfg Config) llm.Request {
	return llm.Request{
		System:      topicSystemPrompt,
		Messages:    llm.UserMessage(fill(topicUserPrompt, category, "")),
		MaxTokens:   cfg.TopicMaxTokens,
		Temperature: cfg.Temperature,
	}
}

// BuildLessonRequest builds the JSON-only lesson request for topic.
func BuildLessonRequest(category Category, topic string, cfg Config) llm.Request {
	req := llm.Request{
		System:      lessonSystemPrompt,
		Messages:    llm.UserMessage(fill(lessonTemplate, category, topic)),
		MaxTokens:   cfg.LessonMaxTokens,
		Temperature: cfg.Temperature,
	}
	if cfg.StructuredOutput {
		req.Schema = LessonSchema
	}
	return req
}
