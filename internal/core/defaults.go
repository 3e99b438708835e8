package core

// BuiltinFields are the fields every import maps explicitly, in default
// column order.
var BuiltinFields = []string{"name", "email", "age", "role", "department", "location"}

// DefaultColumns returns the starter schema. Column ids equal their fields.
func DefaultColumns() []Column {
	col := func(field, header string, typ ColumnType, width int, visible, required bool) Column {
		c := NewColumn(field, header, typ)
		c.ID = field
		c.Width = width
		c.Visible = visible
		c.Required = required
		return c
	}

	cols := []Column{
		col("name", "Name", TypeString, 150, true, true),
		col("email", "Email", TypeString, 200, true, true),
		col("age", "Age", TypeNumber, 100, true, false),
		col("role", "Role", TypeString, 150, true, false),
		col("department", "Department", TypeString, 150, false, false),
		col("location", "Location", TypeString, 150, false, false),
	}
	for i := range cols {
		cols[i].Order = i
	}
	return cols
}

// SampleRows returns the five onboarding rows.
func SampleRows() []Row {
	people := []struct {
		id, name, email string
		age             float64
		role, dept, loc string
	}{
		{"1", "John Doe", "john.doe@example.com", 30, "Developer", "Engineering", "New York"},
		{"2", "Jane Smith", "jane.smith@example.com", 28, "Designer", "Design", "San Francisco"},
		{"3", "Bob Johnson", "bob.johnson@example.com", 35, "Manager", "Operations", "Chicago"},
		{"4", "Alice Brown", "alice.brown@example.com", 32, "Analyst", "Finance", "Boston"},
		{"5", "Charlie Davis", "charlie.davis@example.com", 29, "Developer", "Engineering", "Seattle"},
	}

	rows := make([]Row, len(people))
	for i, p := range people {
		rows[i] = NewRow(p.id, map[string]Value{
			"name":       StringValue(p.name),
			"email":      StringValue(p.email),
			"age":        NumberValue(p.age),
			"role":       StringValue(p.role),
			"department": StringValue(p.dept),
			"location":   StringValue(p.loc),
		})
	}
	return rows
}

// NewSampleTable returns a table seeded with DefaultColumns and SampleRows.
func NewSampleTable(opts ...Option) (*Table, error) {
	return NewTableWith(Snapshot{Columns: DefaultColumns(), Rows: SampleRows()}, opts...)
}
