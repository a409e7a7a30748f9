// Package pref implements typed key/value preferences persisted in a
// line-oriented text file:
//
//	# optional description
//	KEY:TYPE=VALUE
package pref

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrInvalidEntry    = errors.New("pref: invalid preference entry")
	ErrDuplicateKey    = errors.New("pref: duplicate preference key")
	ErrFileNotFound    = errors.New("pref: file not found")
	ErrInvalidArgument = errors.New("pref: invalid argument")
	ErrNotFound        = errors.New("pref: no such preference")
)

// Type is the value type of a preference. It cannot change after creation.
type Type int

const (
	Bool Type = iota
	String
	Int
	UInt
	Double
	Float
)

var typeNames = [...]string{"BOOL", "STRING", "INT", "UINT", "DOUBLE", "FLOAT"}

// String returns the file-format name of the type.
func (t Type) String() string {
	if t < Bool || t > Float {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// ParseType maps a file-format type name to a Type.
func ParseType(s string) (Type, bool) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), true
		}
	}
	return 0, false
}

// Preference is a typed, described key/value pair. Values are stored as
// bool, string, int, uint, float64 or float32 according to Type.
type Preference struct {
	key         string
	typ         Type
	value       any
	description string
}

// New validates and creates a preference.
func New(key string, typ Type, value any, description string) (*Preference, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	p := &Preference{key: key, typ: typ}
	if err := p.SetDescription(description); err != nil {
		return nil, err
	}
	if err := p.SetValue(value); err != nil {
		return nil, err
	}
	return p, nil
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidArgument)
	}
	if strings.ContainsRune(key, ':') || strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: key %q contains whitespace or ':'", ErrInvalidArgument, key)
	}
	return nil
}

func (p *Preference) Key() string         { return p.key }
func (p *Preference) Type() Type          { return p.typ }
func (p *Preference) Value() any          { return p.value }
func (p *Preference) Description() string { return p.description }

// SetDescription replaces the description. Newlines are rejected.
func (p *Preference) SetDescription(desc string) error {
	if strings.ContainsAny(desc, "\r\n") {
		return fmt.Errorf("%w: description of %q contains a newline", ErrInvalidArgument, p.key)
	}
	p.description = desc
	return nil
}

// SetValue replaces the value. The Go type of v must match the
// preference type; untyped integer constants are accepted for every
// numeric type.
func (p *Preference) SetValue(v any) error {
	converted, ok := convert(p.typ, v)
	if !ok {
		return fmt.Errorf("%w: %T is not a valid %s value for %q", ErrInvalidArgument, v, p.typ, p.key)
	}
	if s, isString := converted.(string); isString && strings.ContainsAny(s, "\r\n") {
		return fmt.Errorf("%w: value of %q contains a newline", ErrInvalidArgument, p.key)
	}
	p.value = converted
	return nil
}

func convert(typ Type, v any) (any, bool) {
	switch typ {
	case Bool:
		b, ok := v.(bool)
		return b, ok
	case String:
		s, ok := v.(string)
		return s, ok
	case Int:
		switch n := v.(type) {
		case int:
			return n, true
		case int32:
			return int(n), true
		case int64:
			return int(n), true
		}
	case UInt:
		switch n := v.(type) {
		case uint:
			return n, true
		case uint32:
			return uint(n), true
		case uint64:
			return uint(n), true
		case int:
			if n >= 0 {
				return uint(n), true
			}
		}
	case Double:
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		}
	case Float:
		switch n := v.(type) {
		case float32:
			return n, true
		case float64:
			return float32(n), true
		case int:
			return float32(n), true
		}
	}
	return nil, false
}

// FormatValue renders the value the way it is written to disk.
func (p *Preference) FormatValue() string {
	switch v := p.value.(type) {
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	default:
		return ""
	}
}

// String returns the KEY:TYPE=VALUE line.
func (p *Preference) String() string {
	return p.key + ":" + p.typ.String() + "=" + p.FormatValue()
}

func parseValue(typ Type, raw string) (any, string) {
	switch typ {
	case Bool:
		switch raw {
		case "0":
			return false, ""
		case "1":
			return true, ""
		}
		return nil, "BOOL values must be 0 or 1"
	case String:
		return raw, ""
	case Int:
		n, err := strconv.ParseInt(raw, 10, strconv.IntSize)
		if err != nil {
			return nil, "the value is not a valid INT"
		}
		return int(n), ""
	case UInt:
		n, err := strconv.ParseUint(raw, 10, strconv.IntSize)
		if err != nil {
			return nil, "the value is not a valid UINT"
		}
		return uint(n), ""
	case Double:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, "the value is not a valid DOUBLE"
		}
		return f, ""
	case Float:
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, "the value is not a valid FLOAT"
		}
		return float32(f), ""
	}
	return nil, "unknown type"
}

// EntryError reports a malformed line in a preference file.
type EntryError struct {
	Line   string
	File   string
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf(`The entry "%s" in "%s" is invalid because "%s"`, e.Line, e.File, e.Reason)
}

// Unwrap lets callers match ErrInvalidEntry with errors.Is.
func (e *EntryError) Unwrap() error {
	return ErrInvalidEntry
}
