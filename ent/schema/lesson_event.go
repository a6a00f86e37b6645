package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LessonEvent records the outcome of one generation attempt. Only metadata
// is kept; the lesson body is never persisted.
type LessonEvent struct {
	ent.Schema
}

func (LessonEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LessonEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			Default(""),
		field.String("requested_category").
			NotEmpty().
			Comment("What the user picked, possibly random"),
		field.String("category").
			Default("").
			Comment("Resolved category"),
		field.String("topic").
			Default(""),
		field.String("title").
			Default(""),
		field.Bool("success"),
		field.String("diagnostic_kind").
			Default("").
			Comment("transport, malformed, invalid or input on failure"),
		field.String("diagnostic").
			Default(""),
		field.Int64("duration_ms").
			Default(0),
	}
}

func (LessonEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("category"),
	}
}
