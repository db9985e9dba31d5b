package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var errEmptyColumn = errors.New("empty column name")

// ConfigError reports a malformed schema config. It is fatal at startup:
// the config is operator-authored and validated once per deployment, so the
// loader fails fast rather than deferring shape errors to extraction time.
type ConfigError struct {
	Path string // JSON path of the offending entry, e.g. $.PATDOC.fields
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("schema config: %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load decodes a schema config from r. It walks the JSON token stream rather
// than unmarshaling into maps because object key order carries meaning here
// (column order, extraction order).
func Load(r io.Reader) (*Config, error) {
	dec := json.NewDecoder(r)
	entries, err := decodeFields(dec, "$")
	if err != nil {
		return nil, err
	}
	return &Config{Entries: entries}, nil
}

// LoadFile is a convenience wrapper around Load.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Path: "$", Err: err}
	}
	defer f.Close()
	return Load(f)
}

// decodeFields reads one JSON object as an ordered path→rule mapping.
func decodeFields(dec *json.Decoder, at string) ([]Field, error) {
	if err := expectDelim(dec, at, '{'); err != nil {
		return nil, err
	}
	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &ConfigError{Path: at, Err: err}
		}
		key := tok.(string) // object position guarantees a string key
		rule, err := decodeRule(dec, at+"."+key)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Path: key, Rule: rule})
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, &ConfigError{Path: at, Err: err}
	}
	return fields, nil
}

// decodeRule reads one rule value: a string (scalar encodings) or an object
// with "entity", optional "pk", and "fields".
func decodeRule(dec *json.Decoder, at string) (Rule, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, &ConfigError{Path: at, Err: err}
	}
	switch t := tok.(type) {
	case string:
		sr, err := parseScalar(t)
		if err != nil {
			return nil, &ConfigError{Path: at, Err: fmt.Errorf("%q: %w", t, err)}
		}
		return sr, nil
	case json.Delim:
		if t != '{' {
			return nil, &ConfigError{Path: at, Err: fmt.Errorf("unexpected %v", t)}
		}
		return decodeEntity(dec, at)
	default:
		return nil, &ConfigError{Path: at, Err: fmt.Errorf("rule must be a string or an object, got %T", tok)}
	}
}

func decodeEntity(dec *json.Decoder, at string) (*EntityRule, error) {
	er := &EntityRule{}
	seenFields := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &ConfigError{Path: at, Err: err}
		}
		key := tok.(string)
		switch key {
		case "entity":
			if er.Entity, err = stringValue(dec, at+".entity"); err != nil {
				return nil, err
			}
		case "pk":
			if er.PK, err = stringValue(dec, at+".pk"); err != nil {
				return nil, err
			}
		case "fields":
			if er.Fields, err = decodeFields(dec, at+".fields"); err != nil {
				return nil, err
			}
			seenFields = true
		default:
			return nil, &ConfigError{Path: at, Err: fmt.Errorf("unknown key %q in entity rule", key)}
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, &ConfigError{Path: at, Err: err}
	}
	if er.Entity == "" {
		return nil, &ConfigError{Path: at, Err: errors.New(`entity rule missing "entity"`)}
	}
	if !seenFields {
		return nil, &ConfigError{Path: at, Err: errors.New(`entity rule missing "fields"`)}
	}
	return er, nil
}

func stringValue(dec *json.Decoder, at string) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", &ConfigError{Path: at, Err: err}
	}
	s, ok := tok.(string)
	if !ok {
		return "", &ConfigError{Path: at, Err: fmt.Errorf("expected string, got %T", tok)}
	}
	return s, nil
}

func expectDelim(dec *json.Decoder, at string, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return &ConfigError{Path: at, Err: err}
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return &ConfigError{Path: at, Err: fmt.Errorf("expected %q, got %v", want, tok)}
	}
	return nil
}
