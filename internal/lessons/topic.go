package lessons

import (
	"context"
	"errors"
	"fmt"

	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
)

// ErrEmptyTopic is returned when the model answers with only whitespace.
var ErrEmptyTopic = errors.New("empty topic in response")

// TopicSelector asks the model for one topic name within a category.
type TopicSelector struct {
	provider llm.Provider
	cfg      Config
}

func NewTopicSelector(provider llm.Provider, cfg Config) *TopicSelector {
	return &TopicSelector{provider: provider, cfg: cfg}
}

// SelectTopic makes one request and returns the trimmed reply. Any
// non-empty text is accepted as a topic.
func (s *TopicSelector) SelectTopic(ctx context.Context, category Category) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTopic)

	resp, err := s.provider.Generate(ctx, BuildTopicRequest(category, s.cfg))
	if err != nil {
		return "", fmt.Errorf("topic selection: %w", err)
	}

	topic := resp.Text()
	if topic == "" {
		return "", ErrEmptyTopic
	}
	return topic, nil
}
