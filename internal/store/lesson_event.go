package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *Events) AppendLesson(ctx context.Context, data LessonEventData) error {
	return r.insert(ctx, lessonEventsTable,
		[]string{"session_id", "requested_category", "category", "topic", "title",
			"success", "diagnostic_kind", "diagnostic", "duration_ms"},
		[]any{data.SessionID, data.RequestedCategory, data.Category, data.Topic, data.Title,
			data.Success, data.DiagnosticKind, data.Diagnostic, data.DurationMs},
	)
}

// QueryLessonEvents returns generation outcomes, newest first.
func (r *Events) QueryLessonEvents(ctx context.Context, opts QueryOpts) ([]LessonEventRecord, error) {
	query, args := applyOpts(
		builder().Select("id", "sequence", "timestamp", "session_id", "requested_category", "category",
			"topic", "title", "success", "diagnostic_kind", "diagnostic", "duration_ms").
			From(entsql.Table(lessonEventsTable)),
		opts,
	).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lesson events: %w", err)
	}
	defer rows.Close()

	var records []LessonEventRecord
	for rows.Next() {
		var e LessonEventRecord
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.RequestedCategory,
			&e.Category, &e.Topic, &e.Title, &e.Success, &e.DiagnosticKind, &e.Diagnostic,
			&e.DurationMs); err != nil {
			return nil, fmt.Errorf("scan lesson event: %w", err)
		}
		records = append(records, e)
	}
	return records, rows.Err()
}

// CategoryStats summarizes generation and answer outcomes per category.
type CategoryStats struct {
	Category  string
	Generated int
	Failed    int
	Answers   int
	Correct   int
}

// StatsByCategory combines lesson and answer events per resolved category.
// Failed generations that never resolved a category are grouped under
// their requested category.
func (r *Events) StatsByCategory(ctx context.Context) ([]CategoryStats, error) {
	byCat := map[string]*CategoryStats{}
	var order []string
	get := func(cat string) *CategoryStats {
		if s, ok := byCat[cat]; ok {
			return s
		}
		s := &CategoryStats{Category: cat}
		byCat[cat] = s
		order = append(order, cat)
		return s
	}

	query, args := builder().Select(
		"COALESCE(NULLIF(`category`, ''), `requested_category`) AS `cat`",
		entsql.As("SUM(CASE WHEN success THEN 1 ELSE 0 END)", "ok"),
		entsql.As("SUM(CASE WHEN success THEN 0 ELSE 1 END)", "failed"),
	).
		From(entsql.Table(lessonEventsTable)).
		GroupBy("cat").
		OrderBy("cat").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate lesson events: %w", err)
	}
	for rows.Next() {
		var cat string
		var ok, failed int
		if err := rows.Scan(&cat, &ok, &failed); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan lesson stats: %w", err)
		}
		s := get(cat)
		s.Generated, s.Failed = ok, failed
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	answers, err := r.answerCounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		s := get(a.Category)
		s.Answers, s.Correct = a.Answers, a.Correct
	}

	out := make([]CategoryStats, 0, len(order))
	for _, cat := range order {
		out = append(out, *byCat[cat])
	}
	return out, nil
}
