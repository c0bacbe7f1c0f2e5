package models

// The types in this file describe what a renderer should draw. They carry no
// markup; the HTTP layer serializes them as JSON.

const (
	FieldCheckboxes = "checkboxes"
	FieldRadios     = "radios"
)

// PriorityLow marks a column that narrow layouts may hide.
const PriorityLow = "priority-low"

type FormOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FormField struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Options     []FormOption `json:"options"`
	// Default holds the checked values for checkboxes and the single selected
	// value for radios.
	Default  []string `json:"default"`
	Required bool     `json:"required"`
	Error    string   `json:"error,omitempty"`
}

type FormAction struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type FormSpec struct {
	ID      string       `json:"id"`
	Fields  []FormField  `json:"fields"`
	Actions []FormAction `json:"actions"`
}

// Field returns the named field, or nil.
func (f *FormSpec) Field(name string) *FormField {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i]
		}
	}
	return nil
}

type ColumnSpec struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	// Field is the store field this column sorts by; empty when not sortable.
	Field string `json:"field,omitempty"`
	// DefaultSort marks the column used when the request names none.
	DefaultSort string   `json:"default_sort,omitempty"`
	Classes     []string `json:"classes,omitempty"`
	// Active and Direction describe the sort in effect for this request.
	Active    bool   `json:"active,omitempty"`
	Direction string `json:"direction,omitempty"`
}

func (c ColumnSpec) Sortable() bool { return c.Field != "" }

type UsernameView struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Href  string `json:"href,omitempty"`
}

type Operation struct {
	Title  string            `json:"title"`
	Href   string            `json:"href"`
	Query  map[string]string `json:"query,omitempty"`
	Weight int               `json:"weight"`
}

type NamedOperation struct {
	Name string `json:"name"`
	Operation
}

// Row maps column keys to cell values.
type Row map[string]any

type TableSpec struct {
	Header []ColumnSpec `json:"header"`
	Rows   []Row        `json:"rows"`
	Empty  string       `json:"empty"`
}

type PagerLink struct {
	Page int    `json:"page"`
	Href string `json:"href"`
}

type PagerSpec struct {
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalItems int        `json:"total_items"`
	TotalPages int        `json:"total_pages"`
	First      *PagerLink `json:"first,omitempty"`
	Previous   *PagerLink `json:"previous,omitempty"`
	Next       *PagerLink `json:"next,omitempty"`
	Last       *PagerLink `json:"last,omitempty"`
}

type PeoplePage struct {
	Accounts TableSpec `json:"accounts"`
	Pager    PagerSpec `json:"pager"`
}
