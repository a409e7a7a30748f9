package pref

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/vovakirdan/gridstage/internal/version"
)

// SameAsLoadFile makes Save write back to the file last loaded.
const SameAsLoadFile = "sameAsLoadFile"

var entryPattern = regexp.MustCompile(`^([^\s:]+):(BOOL|STRING|INT|UINT|DOUBLE|FLOAT)=(.*)$`)

// Container holds preferences in insertion order.
type Container struct {
	prefs    []*Preference
	index    map[string]int
	loadPath string
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{index: make(map[string]int)}
}

// Add appends p. Keys must be unique.
func (c *Container) Add(p *Preference) error {
	if p == nil {
		return fmt.Errorf("%w: nil preference", ErrInvalidArgument)
	}
	if _, exists := c.index[p.key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, p.key)
	}
	c.index[p.key] = len(c.prefs)
	c.prefs = append(c.prefs, p)
	return nil
}

// AddPref creates and appends a preference.
func (c *Container) AddPref(key string, typ Type, value any, description string) error {
	p, err := New(key, typ, value, description)
	if err != nil {
		return err
	}
	return c.Add(p)
}

// Get returns the preference stored under key.
func (c *Container) Get(key string) (*Preference, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.prefs[i], true
}

// Has reports whether key exists.
func (c *Container) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Set changes the value of an existing preference.
func (c *Container) Set(key string, value any) error {
	p, ok := c.Get(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return p.SetValue(value)
}

// Remove deletes key, keeping the order of the remaining entries.
func (c *Container) Remove(key string) bool {
	i, ok := c.index[key]
	if !ok {
		return false
	}
	c.prefs = append(c.prefs[:i], c.prefs[i+1:]...)
	c.reindex()
	return true
}

func (c *Container) reindex() {
	c.index = make(map[string]int, len(c.prefs))
	for i, p := range c.prefs {
		c.index[p.key] = i
	}
}

// Keys returns the keys in insertion order.
func (c *Container) Keys() []string {
	keys := make([]string, len(c.prefs))
	for i, p := range c.prefs {
		keys[i] = p.key
	}
	return keys
}

// Preferences returns the stored preferences in insertion order.
func (c *Container) Preferences() []*Preference {
	out := make([]*Preference, len(c.prefs))
	copy(out, c.prefs)
	return out
}

// Count returns the number of preferences.
func (c *Container) Count() int {
	return len(c.prefs)
}

// Clear removes every preference. The load path is kept.
func (c *Container) Clear() {
	c.prefs = nil
	c.index = make(map[string]int)
}

// Merge appends other's preferences. Existing keys are replaced in place
// when overwrite is set and skipped otherwise.
func (c *Container) Merge(other *Container, overwrite bool) {
	for _, p := range other.prefs {
		cp := *p
		if i, exists := c.index[p.key]; exists {
			if overwrite {
				c.prefs[i] = &cp
			}
			continue
		}
		c.index[p.key] = len(c.prefs)
		c.prefs = append(c.prefs, &cp)
	}
}

// LoadPath returns the file last passed to Load.
func (c *Container) LoadPath() string {
	return c.loadPath
}

func lookup[T any](c *Container, key string, typ Type) (T, error) {
	var zero T
	p, ok := c.Get(key)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if p.typ != typ {
		return zero, fmt.Errorf("%w: %q is %s, not %s", ErrInvalidArgument, key, p.typ, typ)
	}
	return p.value.(T), nil
}

func (c *Container) GetBool(key string) (bool, error)      { return lookup[bool](c, key, Bool) }
func (c *Container) GetString(key string) (string, error)  { return lookup[string](c, key, String) }
func (c *Container) GetInt(key string) (int, error)        { return lookup[int](c, key, Int) }
func (c *Container) GetUInt(key string) (uint, error)      { return lookup[uint](c, key, UInt) }
func (c *Container) GetDouble(key string) (float64, error) { return lookup[float64](c, key, Double) }
func (c *Container) GetFloat(key string) (float32, error)  { return lookup[float32](c, key, Float) }

// Load parses path and appends its entries. Nothing is added when any
// line is invalid or any key is already present.
func (c *Container) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("pref: cannot open %s: %w", path, err)
	}
	defer f.Close()

	if err := c.Read(f, path); err != nil {
		return err
	}
	c.loadPath = path
	return nil
}

// Read parses preferences from r. name identifies the source in errors.
func (c *Container) Read(r io.Reader, name string) error {
	parsed, err := Parse(r, name)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(parsed))
	for _, p := range parsed {
		if c.Has(p.key) || seen[p.key] {
			return fmt.Errorf("%w: %q in %s", ErrDuplicateKey, p.key, name)
		}
		seen[p.key] = true
	}
	for _, p := range parsed {
		c.index[p.key] = len(c.prefs)
		c.prefs = append(c.prefs, p)
	}
	return nil
}

// Parse reads every entry from r without checking for duplicates.
func Parse(r io.Reader, name string) ([]*Preference, error) {
	var (
		out     []*Preference
		pending string
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "//"):
			continue
		case unicode.IsSpace(rune(line[0])):
			continue
		case line[0] == '#':
			pending = strings.TrimPrefix(line[1:], " ")
			continue
		}

		m := entryPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, &EntryError{Line: line, File: name, Reason: "it does not match KEY:TYPE=VALUE"}
		}
		typ, _ := ParseType(m[2])
		value, reason := parseValue(typ, m[3])
		if reason != "" {
			return nil, &EntryError{Line: line, File: name, Reason: reason}
		}
		out = append(out, &Preference{key: m[1], typ: typ, value: value, description: pending})
		pending = ""
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pref: cannot read %s: %w", name, err)
	}
	return out, nil
}

// Save writes the header and every preference to path. SameAsLoadFile
// targets the file last loaded.
func (c *Container) Save(path string) error {
	if path == SameAsLoadFile {
		if c.loadPath == "" {
			return fmt.Errorf("%w: nothing was loaded", ErrInvalidArgument)
		}
		path = c.loadPath
	}
	if dir := filepath.Dir(path); dir != "." {
		//nolint:errcheck // OpenFile reports the real failure
		os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("pref: cannot write %s: %w", path, err)
	}
	return f.Close()
}

// Header returns the fixed comment block that opens every saved file.
func Header() string {
	var b strings.Builder
	b.WriteString("//##################################################\n")
	fmt.Fprintf(&b, "// This file was generated by %s v%s\n", version.Name, version.Semver())
	b.WriteString("//\n")
	b.WriteString("// Entries have the form KEY:TYPE=VALUE where TYPE is one of\n")
	b.WriteString("// BOOL, STRING, INT, UINT, DOUBLE or FLOAT. BOOL values are 0 or 1.\n")
	b.WriteString("// A line starting with # describes the entry below it.\n")
	b.WriteString("// Lines starting with // or whitespace are ignored.\n")
	b.WriteString("//##################################################\n")
	return b.String()
}

// WriteTo writes the file representation of c to w.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	write := func(s string) {
		k, _ := bw.WriteString(s)
		n += int64(k)
	}
	write(Header())
	for _, p := range c.prefs {
		write("\n")
		if p.description != "" {
			write("# " + p.description + "\n")
		}
		write(p.String() + "\n")
	}
	return n, bw.Flush()
}
