package store

import (
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/joeaphiboon/BiteSizedLearning/ent/schema"
)

// Table names of the event log.
const (
	llmRequestEventsTable = "llm_request_events"
	lessonEventsTable     = "lesson_events"
	answerEventsTable     = "answer_events"
)

var (
	LLMRequestEventsTable = tableFromSchema(llmRequestEventsTable, entschema.LLMRequestEvent{})
	LessonEventsTable     = tableFromSchema(lessonEventsTable, entschema.LessonEvent{})
	AnswerEventsTable     = tableFromSchema(answerEventsTable, entschema.AnswerEvent{})

	// Tables holds all tables migrated on Open.
	Tables = []*schema.Table{
		LLMRequestEventsTable,
		LessonEventsTable,
		AnswerEventsTable,
	}
)

// tableFromSchema derives the migration table from an ent schema
// definition: an auto-increment id plus every mixin and schema field,
// with the declared indexes.
func tableFromSchema(name string, s ent.Interface) *schema.Table {
	t := schema.NewTable(name).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt, Increment: true})

	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	for _, f := range fields {
		d := f.Descriptor()
		col := &schema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Unique:   d.Unique,
			Nullable: d.Optional,
			Size:     int64(d.Size),
		}
		// Function defaults such as time.Now are applied on insert instead.
		if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
			col.Default = d.Default
		}
		t.AddColumn(col)
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		t.AddIndex(fmt.Sprintf("%s_%s", strings.TrimSuffix(name, "s"), strings.Join(d.Fields, "_")), d.Unique, d.Fields)
	}
	return t
}
