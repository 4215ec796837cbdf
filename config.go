package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"braces.dev/errtrace"
	"github.com/BurntSushi/toml"
	"github.com/peterbourgon/ff/v3"
	"gopkg.in/yaml.v3"
)

// configParser picks a parser for the configuration file at path
// based on its extension.
func configParser(path string) ff.ConfigFileParser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return parseTOML
	case ".yaml", ".yml":
		return parseYAML
	case ".json":
		return (&ff.JSONParseConfig{Delimiter: "-"}).Parse
	default:
		return ff.PlainParser
	}
}

func parseTOML(r io.Reader, set func(name, value string) error) error {
	var m map[string]any
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return errtrace.Wrap(fmt.Errorf("parse toml: %w", err))
	}
	return errtrace.Wrap(setAll("", m, set))
}

func parseYAML(r io.Reader, set func(name, value string) error) error {
	var m map[string]any
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		// An empty document decodes to io.EOF.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errtrace.Wrap(fmt.Errorf("parse yaml: %w", err))
	}
	return errtrace.Wrap(setAll("", m, set))
}

// setAll reports every leaf of m to set.
// Keys of nested tables are joined to their parents' with a "-",
// and lists set their flag once per item.
//
// Keys are visited in sorted order.
func setAll(prefix string, m map[string]any, set func(name, value string) error) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "-" + k
		}
		if err := setValue(name, m[k], set); err != nil {
			return errtrace.Wrap(err)
		}
	}
	return nil
}

func setValue(name string, v any, set func(name, value string) error) error {
	switch v := v.(type) {
	case map[string]any:
		return errtrace.Wrap(setAll(name, v, set))
	case []any:
		for _, item := range v {
			if err := setValue(name, item, set); err != nil {
				return errtrace.Wrap(err)
			}
		}
		return nil
	}

	s, err := configString(v)
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("%v: %w", name, err))
	}
	if err := set(name, s); err != nil {
		return errtrace.Wrap(fmt.Errorf("%v: %w", name, err))
	}
	return nil
}

func configString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}
