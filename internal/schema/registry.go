package schema

import (
	"fmt"

	"frontdesk-rental-backend/internal/domain"
)

// Operation names a lifecycle write that touches a subset of columns.
type Operation string

const (
	OpCheckIn Operation = "CHECKIN"
	OpReturn  Operation = "RETURN"
	OpTrouble Operation = "TROUBLE"
	OpStorage Operation = "STORAGE"
	OpUpdate  Operation = "UPDATE"
)

// Schema maps logical field names to column letters for one row layout.
type Schema struct {
	version string
	columns map[string]string
	fields  []string // in column order
	letters []string // in column order
	width   int
	lastCol string
}

// New builds a schema from a field -> column letter mapping.
func New(version string, columns map[string]string) (*Schema, error) {
	s := &Schema{
		version: version,
		columns: make(map[string]string, len(columns)),
	}
	byLetter := make(map[string]string, len(columns))
	for field, letter := range columns {
		idx, err := ColumnIndex(letter)
		if err != nil {
			return nil, fmt.Errorf("schema %s: field %s: %w", version, field, err)
		}
		if other, dup := byLetter[letter]; dup {
			return nil, fmt.Errorf("schema %s: column %s mapped to both %s and %s", version, letter, other, field)
		}
		byLetter[letter] = field
		s.columns[field] = letter
		s.letters = append(s.letters, letter)
		if idx+1 > s.width {
			s.width = idx + 1
			s.lastCol = letter
		}
	}
	SortLetters(s.letters)
	for _, l := range s.letters {
		s.fields = append(s.fields, byLetter[l])
	}
	return s, nil
}

func (s *Schema) Version() string { return s.version }

// Column returns the letter a field is stored in.
func (s *Schema) Column(field string) (string, bool) {
	l, ok := s.columns[field]
	return l, ok
}

// Columns returns a copy of the full field -> letter mapping.
func (s *Schema) Columns() map[string]string {
	out := make(map[string]string, len(s.columns))
	for k, v := range s.columns {
		out[k] = v
	}
	return out
}

// Fields returns the logical field names in column order.
func (s *Schema) Fields() []string {
	return append([]string(nil), s.fields...)
}

// Letters returns the mapped column letters in column order.
func (s *Schema) Letters() []string {
	return append([]string(nil), s.letters...)
}

// Width is the length of a full row.
func (s *Schema) Width() int { return s.width }

// LastColumn is the letter of the right-most mapped column.
func (s *Schema) LastColumn() string { return s.lastCol }

// UnmappedFields reports which of the given fields have no column.
func (s *Schema) UnmappedFields(fields []string) []string {
	var missing []string
	for _, f := range fields {
		if _, ok := s.columns[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// ColumnMap returns the field -> letter mapping a given operation may write for a
// service type: the common fields plus the service-specific group. Fields the
// layout does not carry are left out. ok is false for unknown combinations.
func (s *Schema) ColumnMap(service domain.ServiceType, op Operation) (map[string]string, bool) {
	if op == OpUpdate {
		m := s.Columns()
		delete(m, domain.FieldRentalID)
		return m, true
	}
	group, ok := operationGroups[op][service]
	if !ok {
		return map[string]string{}, false
	}
	m := make(map[string]string, len(commonFields)+len(group))
	for _, f := range commonFields {
		if l, ok := s.columns[f]; ok {
			m[f] = l
		}
	}
	for _, f := range group {
		if l, ok := s.columns[f]; ok {
			m[f] = l
		}
	}
	return m, true
}

// EncodeRow lays a record out as a full row in column order. Unknown fields are dropped.
func (s *Schema) EncodeRow(rec domain.Record) []string {
	row := make([]string, s.width)
	for field, letter := range s.columns {
		idx, _ := ColumnIndex(letter)
		row[idx] = rec[field]
	}
	return row
}

// Header returns the header row: logical field names at their column positions.
func (s *Schema) Header() []string {
	return s.EncodeRow(s.headerRecord())
}

func (s *Schema) headerRecord() domain.Record {
	rec := make(domain.Record, len(s.columns))
	for f := range s.columns {
		rec[f] = f
	}
	return rec
}

// Registry holds every known row layout.
type Registry struct {
	schemas map[string]*Schema
	current string
}

// NewRegistry returns a registry with the built-in layouts; current selects the
// layout new rows are written with.
func NewRegistry(current string) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema)}
	for version, cols := range builtinLayouts {
		s, err := New(version, cols)
		if err != nil {
			return nil, err
		}
		r.schemas[version] = s
	}
	if current == "" {
		current = CurrentVersion
	}
	if _, ok := r.schemas[current]; !ok {
		return nil, fmt.Errorf("unknown schema version %q", current)
	}
	r.current = current
	return r, nil
}

// Get returns the schema for a version.
func (r *Registry) Get(version string) (*Schema, error) {
	s, ok := r.schemas[version]
	if !ok {
		return nil, fmt.Errorf("unknown schema version %q", version)
	}
	return s, nil
}

// Current returns the layout used for reads and writes.
func (r *Registry) Current() *Schema {
	return r.schemas[r.current]
}
