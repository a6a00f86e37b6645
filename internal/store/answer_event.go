package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *Events) AppendAnswer(ctx context.Context, data AnswerEventData) error {
	return r.insert(ctx, answerEventsTable,
		[]string{"session_id", "category", "lesson_title", "chosen", "correct"},
		[]any{data.SessionID, data.Category, data.LessonTitle, data.Chosen, data.Correct},
	)
}

type answerCount struct {
	Category string
	Answers  int
	Correct  int
}

func (r *Events) answerCounts(ctx context.Context) ([]answerCount, error) {
	query, args := builder().Select(
		"category",
		entsql.As(entsql.Count("*"), "answers"),
		entsql.As("SUM(CASE WHEN correct THEN 1 ELSE 0 END)", "correct_answers"),
	).
		From(entsql.Table(answerEventsTable)).
		GroupBy("category").
		OrderBy("category").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate answer events: %w", err)
	}
	defer rows.Close()

	var out []answerCount
	for rows.Next() {
		var a answerCount
		if err := rows.Scan(&a.Category, &a.Answers, &a.Correct); err != nil {
			return nil, fmt.Errorf("scan answer stats: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FirstTryAccuracy reports how often the first answer given for a lesson
// was correct, across all sessions. Lessons are keyed by session and title.
func (r *Events) FirstTryAccuracy(ctx context.Context) (float64, int, error) {
	const q = "SELECT COUNT(*), COALESCE(SUM(CASE WHEN a.`correct` THEN 1 ELSE 0 END), 0) " +
		"FROM `answer_events` a JOIN (" +
		"SELECT MIN(`sequence`) AS `first_seq` FROM `answer_events` GROUP BY `session_id`, `lesson_title`" +
		") f ON a.`sequence` = f.`first_seq`"

	var total, correct int
	if err := r.db.QueryRowContext(ctx, q).Scan(&total, &correct); err != nil {
		return 0, 0, fmt.Errorf("first-try accuracy: %w", err)
	}
	if total == 0 {
		return 0, 0, nil
	}
	return float64(correct) / float64(total), total, nil
}
