package core

// ColumnType is the declared data type of a column.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeNumber  ColumnType = "number"
	TypeDate    ColumnType = "date"
	TypeBoolean ColumnType = "boolean"
)

// Valid reports whether t is one of the four supported column types.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeDate, TypeBoolean:
		return true
	}
	return false
}

// DefaultColumnWidth is applied when a column is added without a width.
const DefaultColumnWidth = 150

// DefaultPageSize is the page size of a freshly created table.
const DefaultPageSize = 10

// Column describes one field of the dynamic schema.
type Column struct {
	ID         string     `json:"id"`
	Field      string     `json:"field"`
	HeaderName string     `json:"headerName"`
	Type       ColumnType `json:"type"`
	Width      int        `json:"width"`
	Visible    bool       `json:"visible"`
	Sortable   bool       `json:"sortable"`
	Editable   bool       `json:"editable"`
	Required   bool       `json:"required"`
	Order      int        `json:"order"`
}

// NewColumn returns a visible, sortable, editable column with the default width.
// The ID is left empty so the registry assigns one.
func NewColumn(field, headerName string, typ ColumnType) Column {
	return Column{
		Field:      field,
		HeaderName: headerName,
		Type:       typ,
		Width:      DefaultColumnWidth,
		Visible:    true,
		Sortable:   true,
		Editable:   true,
	}
}

// ColumnPatch is a partial column update. Nil fields are left unchanged.
// ID and Order are not patchable; use Reorder for the latter.
type ColumnPatch struct {
	Field      *string     `json:"field,omitempty"`
	HeaderName *string     `json:"headerName,omitempty"`
	Type       *ColumnType `json:"type,omitempty"`
	Width      *int        `json:"width,omitempty"`
	Visible    *bool       `json:"visible,omitempty"`
	Sortable   *bool       `json:"sortable,omitempty"`
	Editable   *bool       `json:"editable,omitempty"`
	Required   *bool       `json:"required,omitempty"`
}

// apply merges the patch into c and returns the result.
func (p ColumnPatch) apply(c Column) Column {
	if p.Field != nil {
		c.Field = *p.Field
	}
	if p.HeaderName != nil {
		c.HeaderName = *p.HeaderName
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Width != nil {
		c.Width = *p.Width
	}
	if p.Visible != nil {
		c.Visible = *p.Visible
	}
	if p.Sortable != nil {
		c.Sortable = *p.Sortable
	}
	if p.Editable != nil {
		c.Editable = *p.Editable
	}
	if p.Required != nil {
		c.Required = *p.Required
	}
	return c
}

// SortDirection is "asc" or "desc".
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// ParseSortDirection maps anything other than "desc" to Asc.
func ParseSortDirection(s string) SortDirection {
	if SortDirection(s) == Desc {
		return Desc
	}
	return Asc
}

// SortSpec selects the sort field and direction.
type SortSpec struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// Query parameterizes the query pipeline.
type Query struct {
	Search   string    `json:"search"`
	Sort     *SortSpec `json:"sort,omitempty"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// Result is one page of the filtered and sorted rows.
type Result struct {
	Rows      []Row `json:"rows"`
	Total     int   `json:"total"` // post-filter, pre-pagination count
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	PageCount int   `json:"pageCount"`
}

// Snapshot is the persistable part of a table: columns and rows.
// Selection, editing and view state are never part of it.
type Snapshot struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}
