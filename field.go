package adsmeta

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// FieldType is the value type a field reports to the host.
type FieldType int

const (
	TypeInt    FieldType = 1 // 32-bit integer
	TypeString FieldType = 8
)

// Status is the result code of a field lookup, as the host expects it.
// Non-negative values other than StatusDelayed are the FieldType of the value.
type Status int

const (
	StatusDelayed     Status = 0
	StatusSetSuccess  Status = 0
	StatusNoSuchField Status = -1
	StatusFileError   Status = -2
	StatusFieldEmpty  Status = -3
)

// ValueFlags modify a field lookup.
type ValueFlags int

// DelayIfSlow lets a field answer StatusDelayed instead of doing slow work.
const DelayIfSlow ValueFlags = 1

// MaxFieldNameLen is the longest field name the host accepts.
const MaxFieldNameLen = 258

// Field is a named, typed accessor on files.
type Field struct {
	Name string
	Type FieldType
	// Get returns the value for a file; a nil value means the field is empty.
	Get func(file string) (any, error)
	// Set stores a value; nil for read-only fields.
	Set func(file, value string) error
	// Slow reports whether Get would be slow for a file; nil means never.
	Slow func(file string) (bool, error)
}

// Editable reports whether the field accepts values.
func (f Field) Editable() bool {
	return f.Set != nil
}

func (f Field) String() string {
	switch f.Type {
	case TypeInt:
		return "int " + f.Name
	case TypeString:
		return "string " + f.Name
	}
	return f.Name
}

func validateFieldName(name string, maxLen int) error {
	if name == "" {
		return errors.New("field name must not be empty")
	}
	if len(name) > maxLen {
		return fmt.Errorf("field name too long (%d > %d): %q", len(name), maxLen, name)
	}
	if strings.ContainsAny(name, ".|:") {
		return fmt.Errorf("field name must not contain '.', '|' or ':': %q", name)
	}
	return nil
}

// FieldTable is the ordered set of fields exposed to the host.
// Lookups never fail with an error; failures become status codes.
type FieldTable struct {
	fields []Field
	byName map[string]int
	logger *slog.Logger
}

// NewFieldTable validates fields and returns them as a table. All invalid
// and duplicate names are reported together in a *ValidationError.
func NewFieldTable(logger *slog.Logger, fields ...Field) (*FieldTable, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ft := &FieldTable{byName: make(map[string]int, len(fields)), logger: logger}

	var errs []error
	for _, f := range fields {
		if err := validateFieldName(f.Name, MaxFieldNameLen); err != nil {
			errs = append(errs, err)
			continue
		}
		if f.Get == nil {
			errs = append(errs, fmt.Errorf("field %q has no getter", f.Name))
			continue
		}
		if _, dup := ft.byName[f.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate field name %q", f.Name))
			continue
		}
		ft.byName[f.Name] = len(ft.fields)
		ft.fields = append(ft.fields, f)
	}
	if err := newValidationError(errs); err != nil {
		return nil, err
	}
	return ft, nil
}

// Len returns the number of fields.
func (ft *FieldTable) Len() int {
	return len(ft.fields)
}

// Field returns the field at index.
func (ft *FieldTable) Field(index int) (Field, bool) {
	if index < 0 || index >= len(ft.fields) {
		return Field{}, false
	}
	return ft.fields[index], true
}

// Index returns the position of the named field.
func (ft *FieldTable) Index(name string) (int, bool) {
	i, ok := ft.byName[name]
	return i, ok
}

// Fields returns the fields in definition order.
func (ft *FieldTable) Fields() []Field {
	return append([]Field(nil), ft.fields...)
}

// HasEditable reports whether any field accepts values.
func (ft *FieldTable) HasEditable() bool {
	for _, f := range ft.fields {
		if f.Editable() {
			return true
		}
	}
	return false
}

// Value looks up field index on file. On success the status is the field's
// type. An I/O failure is logged and reported as StatusFileError.
func (ft *FieldTable) Value(index int, file string, flags ValueFlags) (any, Status) {
	f, ok := ft.Field(index)
	if !ok {
		return nil, StatusNoSuchField
	}

	if flags&DelayIfSlow != 0 && f.Slow != nil {
		slow, err := f.Slow(file)
		if err != nil {
			ft.logger.Error("field lookup failed", "field", f.Name, "file", file, "error", err)
			return nil, StatusFileError
		}
		if slow {
			ft.logger.Info("delayed field lookup", "field", f.Name, "file", file)
			return nil, StatusDelayed
		}
	}

	v, err := f.Get(file)
	if err != nil {
		ft.logger.Error("field lookup failed", "field", f.Name, "file", file, "error", err)
		return nil, StatusFileError
	}
	if v == nil {
		return nil, StatusFieldEmpty
	}
	ft.logger.Debug("field value", "field", f.Name, "file", file, "value", v)
	return v, Status(f.Type)
}

// SetValue stores value into field index on file.
func (ft *FieldTable) SetValue(index int, file, value string) Status {
	f, ok := ft.Field(index)
	if !ok {
		return StatusNoSuchField
	}
	if !f.Editable() {
		ft.logger.Error("field set failed", "field", f.Name, "file", file, "error", ErrNotEditable)
		return StatusFileError
	}
	if err := f.Set(file, value); err != nil {
		ft.logger.Error("field set failed", "field", f.Name, "file", file, "error", err)
		return StatusFileError
	}
	return StatusSetSuccess
}

// FixedStreams are the streams exposed as "stream_<name>" fields, with dots
// replaced by underscores.
var FixedStreams = []string{
	"MD5",
	"Zone.Identifier",
	"\x05DocumentSummaryInformation",
	"\x05SummaryInformation",
	"\x05OzngklrtOwudrp0bAayojd1qWh",
	"\x05SebiesnrMkudrfcoIaamtykdDa",
}

// Fields returns the field set of the Inspector: the editable MD5 digest,
// one field per fixed stream, the stream count and the summary.
func (ins *Inspector) Fields() []Field {
	fields := []Field{{
		Name: "MD5",
		Type: TypeString,
		Get: func(file string) (any, error) {
			sum, err := ins.Digest(file, MD5)
			if err != nil || sum == "" {
				return nil, err
			}
			return sum, nil
		},
		Set: func(file, value string) error {
			return ins.StoreDigest(file, MD5, value)
		},
		Slow: func(file string) (bool, error) {
			return ins.DigestPending(file, MD5)
		},
	}}

	for _, stream := range FixedStreams {
		fields = append(fields, Field{
			Name: "stream_" + strings.ReplaceAll(stream, ".", "_"),
			Type: TypeString,
			Get: func(file string) (any, error) {
				contents, ok, err := ins.StreamContents(file, stream)
				if err != nil || !ok {
					return nil, err
				}
				return contents, nil
			},
		})
	}

	fields = append(fields,
		Field{
			Name: "count",
			Type: TypeInt,
			Get: func(file string) (any, error) {
				return ins.Count(file)
			},
		},
		Field{
			Name: "summary",
			Type: TypeString,
			Get: func(file string) (any, error) {
				return ins.Summary(file)
			},
		},
	)
	return fields
}

// FieldTable returns the Inspector's fields as a validated table.
func (ins *Inspector) FieldTable() (*FieldTable, error) {
	return NewFieldTable(ins.logger, ins.Fields()...)
}
