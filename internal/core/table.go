package core

import (
	"io"
	"log/slog"
	"time"
)

// Table is the state container for one dataset: the schema registry, the
// row store, view state, editing buffers and the pending confirmation.
//
// Every exported method applies completely or not at all. Table holds no
// locks; callers serialize access (see web.Session).
type Table struct {
	schema *Schema
	rows   *RowStore
	drafts map[string]map[string]Value // row id -> uncommitted values

	search   string
	sort     *SortSpec
	page     int
	pageSize int

	pending *Intent

	logger *slog.Logger
	pub    Publisher
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger used for mutation logs.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithPublisher sets the receiver of change events.
func WithPublisher(p Publisher) Option {
	return func(t *Table) { t.pub = p }
}

// WithPageSize sets the initial page size.
func WithPageSize(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.pageSize = n
		}
	}
}

// NewTable returns an empty table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		schema:   NewSchema(),
		rows:     NewRowStore(),
		drafts:   make(map[string]map[string]Value),
		pageSize: DefaultPageSize,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTableWith returns a table restored from snap.
func NewTableWith(snap Snapshot, opts ...Option) (*Table, error) {
	t := NewTable(opts...)
	schema, err := newSchemaFrom(snap.Columns)
	if err != nil {
		return nil, err
	}
	if err := t.rows.ReplaceAll(snap.Rows); err != nil {
		return nil, err
	}
	t.schema = schema
	return t, nil
}

// Columns returns all columns in display order.
func (t *Table) Columns() []Column { return t.schema.Columns() }

// VisibleColumns returns the visible columns in display order.
func (t *Table) VisibleColumns() []Column { return t.schema.Visible() }

// Column returns a column by id.
func (t *Table) Column(id string) (Column, bool) { return t.schema.Column(id) }

// Rows returns copies of all rows in store order.
func (t *Table) Rows() []Row { return t.rows.All() }

// Row returns a copy of one row.
func (t *Table) Row(id string) (Row, bool) { return t.rows.Get(id) }

// Len returns the row count.
func (t *Table) Len() int { return t.rows.Len() }

// Snapshot returns a deep copy of the persistable state.
func (t *Table) Snapshot() Snapshot {
	return Snapshot{Columns: t.schema.Columns(), Rows: t.rows.All()}
}

// Restore replaces columns and rows with snap. The snapshot is fully
// checked before anything changes. Transient state is reset and column
// ids used so far stay retired.
func (t *Table) Restore(snap Snapshot) error {
	schema, err := newSchemaFrom(snap.Columns)
	if err != nil {
		return err
	}
	rows := NewRowStore()
	if err := rows.ReplaceAll(snap.Rows); err != nil {
		return err
	}

	schema.retire(t.schema.used)
	t.schema = schema
	t.rows = rows
	t.drafts = make(map[string]map[string]Value)
	t.sort = nil
	t.search = ""
	t.page = 0
	t.pending = nil

	t.logger.Info("table restored", "columns", schema.Len(), "rows", rows.Len())
	t.publish(ChangeRestored, nil)
	return nil
}

// View state

// ViewState returns the current query parameters.
func (t *Table) ViewState() Query {
	q := Query{Search: t.search, Page: t.page, PageSize: t.pageSize}
	if t.sort != nil {
		s := *t.sort
		q.Sort = &s
	}
	return q
}

// View runs the query pipeline over the current state.
func (t *Table) View() Result {
	return t.Query(t.ViewState())
}

// Query runs the pipeline with explicit parameters, leaving view state alone.
func (t *Table) Query(q Query) Result {
	return Run(t.rows.rowsView(), q)
}

// SetSearch sets the search term and returns to the first page.
func (t *Table) SetSearch(term string) {
	t.search = term
	t.page = 0
}

// SetSort sorts the view by a sortable column's field.
func (t *Table) SetSort(field string, dir SortDirection) error {
	col, ok := t.schema.ColumnByField(field)
	if !ok {
		return &NotFoundError{Entity: "column", ID: field}
	}
	if !col.Sortable {
		return &InvalidColumnError{Field: field, Reason: "column is not sortable"}
	}
	if dir != Desc {
		dir = Asc
	}
	t.sort = &SortSpec{Field: field, Direction: dir}
	return nil
}

// ClearSort restores store order.
func (t *Table) ClearSort() { t.sort = nil }

// SetPage moves to page p (0-based). Negative pages become 0.
func (t *Table) SetPage(p int) {
	if p < 0 {
		p = 0
	}
	t.page = p
}

// SetPageSize changes the page size and returns to the first page.
// A size of zero or less shows every row on one page.
func (t *Table) SetPageSize(n int) {
	if n < 0 {
		n = 0
	}
	t.pageSize = n
	t.page = 0
}

func (t *Table) publish(kind ChangeKind, ids []string) {
	if t.pub == nil {
		return
	}
	t.pub.Publish(ChangeEvent{
		Kind:      kind,
		IDs:       ids,
		Rows:      t.rows.Len(),
		Columns:   t.schema.Len(),
		Timestamp: time.Now(),
	})
}
