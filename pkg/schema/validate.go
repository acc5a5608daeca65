package schema

import (
	"sort"

	"go.uber.org/multierr"
)

// Schema is a map of field names to their expected types.
type Schema map[string]Type

// Validate checks that every schema field is present in data and has the
// right type. Fields are checked in name order.
func Validate(schema Schema, data map[string]any) error {
	return aggregate(check("", schema, data))
}

// ValidateAt is Validate with every reported key prefixed by path.
func ValidateAt(path string, schema Schema, data map[string]any) error {
	return aggregate(check(path, schema, data))
}

// ValidateFields validates only the named fields.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	var errs error
	for _, name := range fields {
		typ, ok := schema[name]
		if !ok {
			errs = multierr.Append(errs, &ValidationError{Key: name, Reason: "not defined in schema"})
			continue
		}
		errs = multierr.Append(errs, field("", name, typ, data))
	}
	return aggregate(errs)
}

func check(path string, schema Schema, data map[string]any) error {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs error
	for _, name := range names {
		errs = multierr.Append(errs, field(path, name, schema[name], data))
	}
	return errs
}

func field(path, name string, typ Type, data map[string]any) error {
	key := join(path, name)
	value, ok := data[name]
	if !ok || value == nil {
		return &ValidationError{Key: key, Reason: "missing"}
	}
	if err := typ.Validate(value); err != nil {
		return &ValidationError{Key: key, Reason: err.Error(), Value: value}
	}
	return nil
}

func aggregate(err error) error {
	if err == nil {
		return nil
	}
	return &AggregateError{Errors: multierr.Errors(err)}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
