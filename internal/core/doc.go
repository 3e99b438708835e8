// Package core provides the dynamic-schema table engine.
//
// This package holds all domain logic independent of any UI, transport or
// storage layer. It can be used by web handlers, CLI tools, or tests
// without modification.
//
// # Architecture
//
// The package is organized around a few key pieces:
//
//   - Schema: the ordered column registry. Field names are unique and
//     Order is always a dense 0..N-1 sequence.
//   - RowStore: rows keyed by id, plus the selection and editing sets.
//   - Query pipeline: [Run] applies search, then a stable sort, then
//     pagination. It never mutates its input.
//   - Table: the only writer. It keeps cross-entity rules (deleting a column
//     strips the field from every row) and publishes a [ChangeEvent] after
//     every persisted change.
//   - Validation: [ValidateCellValue] and [ConvertToType] check and coerce
//     cell values by column type.
//
// # Values
//
// Rows are an id plus a map of field name to [Value], a tagged union of
// unset, string, number, date and boolean. A missing key reads as unset.
//
// # Editing
//
// Editing is two-phase. [Table.StartEditing] copies the row into a draft,
// [Table.SetDraftValue] changes the draft, and [Table.CommitEditing]
// validates every visible column. Only a fully valid draft is written.
//
//	t, _ := core.NewSampleTable()
//	_ = t.StartEditing("1")
//	_ = t.SetDraftValue("1", "age", core.StringValue("31"))
//	errs, err := t.CommitEditing("1", nil)
//
// # Confirmation
//
// Destructive actions are proposed as an [Intent] value and applied by
// [Table.Confirm]. No callbacks are stored in table state.
//
// # Error Handling
//
// Schema violations are returned as typed errors matching [ErrSchema].
// Validation and import problems are returned as values. Any error can be
// mapped to a coded user message with [MapError]:
//
//   - SCH001-SCH006: schema errors
//   - EDIT001: editing errors
//   - IMP001-IMP002: import errors
//   - FILE001-FILE006: file errors
package core
