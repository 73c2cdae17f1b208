package rules

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Setting describes one configurable key of a rule
type Setting struct {
	Key     string
	Default any
	Help    string
}

// DecodeSettings decodes the free-form settings of a config file into out,
// a pointer to a struct with yaml tags that already holds the defaults.
// Unknown keys and values of the wrong type are errors.
func DecodeSettings(settings map[string]any, out any) error {
	if len(settings) == 0 {
		return nil
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// DescribeSettings lists the yaml keys of an options struct in field order,
// with the values opts holds as defaults and the help tags as descriptions
func DescribeSettings(opts any) []Setting {
	v := reflect.Indirect(reflect.ValueOf(opts))
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	out := make([]Setting, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if !f.IsExported() || key == "" || key == "-" {
			continue
		}
		out = append(out, Setting{Key: key, Default: v.Field(i).Interface(), Help: f.Tag.Get("help")})
	}
	return out
}
