package wizard

import "strings"

// FieldKind selects how a field is rendered and collected.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldDate   FieldKind = "date"
	FieldSelect FieldKind = "select"
	FieldTable  FieldKind = "table"
)

// CustomOption is the select value that unlocks the free-text override.
const CustomOption = "Custom"

// Column describes one column of a table field. Options, when present,
// constrain the column to a choice list (plus the custom marker).
type Column struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Options []string `json:"options,omitempty"`
}

// Field is one renderable input of a step form. Value and Rows carry the
// seed taken from the previously saved payload; the renderer echoes them
// back pre-filled.
type Field struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Value       string    `json:"value,omitempty"`
	Options     []string  `json:"options,omitempty"`
	AllowCustom bool      `json:"allow_custom,omitempty"`
	CustomValue string    `json:"custom_value,omitempty"`
	Columns     []Column  `json:"columns,omitempty"`
	Rows        []Row     `json:"rows,omitempty"`
}

// Row is one table row keyed by column id.
type Row map[string]string

// Form is the rendered surface of a step.
type Form struct {
	StepID string  `json:"step_id"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Input carries user-entered values back into a step's validate/save pair.
// Fields is keyed by field id, Tables by table-field id.
type Input struct {
	Fields map[string]string
	Tables map[string][]Row
}

// Field returns a trimmed scalar value.
func (in Input) Field(id string) string {
	return strings.TrimSpace(in.Fields[id])
}

// Table returns the rows of a table field; empty when none were added.
func (in Input) Table(id string) []Row {
	return in.Tables[id]
}

// Empty reports whether the input carries no values at all: no non-blank
// scalar and no table rows.
func (in Input) Empty() bool {
	for _, v := range in.Fields {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	for _, rows := range in.Tables {
		if len(rows) > 0 {
			return false
		}
	}
	return true
}

func (r Row) get(col string) string {
	return strings.TrimSpace(r[col])
}
