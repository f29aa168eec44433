// Package dataset reads and writes problem files and batch result tables.
//
// Problem files are JSON or YAML, chosen by extension. Every load is
// checked against an embedded CUE schema before it is decoded.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/jfa/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// DefaultDigits is the zero-padding width of file indices.
const DefaultDigits = 5

// Supported file extensions.
const (
	ExtJSON = ".json"
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
)

// ErrUnsupportedFormat is returned for paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported problem file format")

// SchemaError reports a problem file that does not match the schema.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// IsSchemaError reports whether err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// Naming builds problem file names of the form
// <prefix><index zero-padded to Digits><suffix><ext>.
type Naming struct {
	Dir    string
	Prefix string
	Suffix string
	Digits int
	Ext    string
}

// Filename returns the base name for index.
func (n Naming) Filename(index int) string {
	digits := n.Digits
	if digits <= 0 {
		digits = DefaultDigits
	}
	ext := n.Ext
	if ext == "" {
		ext = ExtJSON
	}
	return fmt.Sprintf("%s%0*d%s%s", n.Prefix, digits, index, n.Suffix, ext)
}

// Path joins Dir and Filename.
func (n Naming) Path(index int) string {
	return filepath.Join(n.Dir, n.Filename(index))
}

// DefaultDir is the directory used when none is given: "<E>x<T>".
func DefaultDir(effectors, targets int) string {
	return fmt.Sprintf("%dx%d", effectors, targets)
}

// DefaultCSVName returns the result table name used when none is given.
func (n Naming) DefaultCSVName() string {
	name := strings.ReplaceAll("solutions_"+n.Prefix+n.Suffix, "__", "_")
	return filepath.Join(n.Dir, name+".csv")
}

func format(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtJSON:
		return ExtJSON, nil
	case ExtYAML, ExtYML:
		return ExtYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Exists reports whether a regular file exists at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Save writes p to path in the format implied by the extension.
// Parent directories are created as needed.
func Save(path string, p *model.Problem) error {
	f, err := format(path)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	var data []byte
	switch f {
	case ExtJSON:
		data, err = json.MarshalIndent(p, "", "  ")
		data = append(data, '\n')
	case ExtYAML:
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Load reads, schema-checks and validates a problem file. A missing name
// defaults to the file name without extension.
func Load(path string) (*model.Problem, error) {
	f, err := format(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}

	if err := checkSchema(path, f, data); err != nil {
		return nil, err
	}

	var p model.Problem
	switch f {
	case ExtJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	case ExtYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&p)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if p.Name == "" {
		base := filepath.Base(path)
		p.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

// checkSchema unifies the file with #Problem and requires a concrete result.
func checkSchema(path, f string, data []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Problem"))

	var v cue.Value
	switch f {
	case ExtJSON:
		v = ctx.CompileBytes(data, cue.Filename(path))
	case ExtYAML:
		file, err := cueyaml.Extract(path, data)
		if err != nil {
			return &SchemaError{Path: path, Err: err}
		}
		v = ctx.BuildFile(file)
	}
	if err := v.Err(); err != nil {
		return &SchemaError{Path: path, Err: err}
	}

	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Path: path, Err: err}
	}
	return nil
}
