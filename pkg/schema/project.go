package schema

import (
	"fmt"

	"go.uber.org/multierr"
)

// PageSchema is the required shape of an imported page.
var PageSchema = Schema{
	"name":   String(),
	"path":   String(),
	"blocks": Slice(Any()),
}

// BlockSchema is the required shape of an imported block.
var BlockSchema = Schema{
	"type":    String(),
	"content": Map(),
}

// ValidateProject checks raw import data. It must carry a pages array or a
// bare blocks array; every page and block is checked and every violation is
// reported.
func ValidateProject(raw map[string]any) error {
	if raw == nil {
		return aggregate(&ValidationError{Key: "pages", Reason: "missing"})
	}

	if pages, ok := raw["pages"]; ok {
		list, ok := pages.([]any)
		if !ok {
			return aggregate(&ValidationError{Key: "pages", Reason: "expected array", Value: pages})
		}
		var errs error
		for i, p := range list {
			errs = multierr.Append(errs, checkPage(fmt.Sprintf("pages[%d]", i), p))
		}
		return aggregate(errs)
	}

	if blocks, ok := raw["blocks"]; ok {
		return aggregate(checkBlocks("blocks", blocks))
	}
	return aggregate(&ValidationError{Key: "pages", Reason: "missing"})
}

func checkPage(path string, v any) error {
	page, ok := v.(map[string]any)
	if !ok {
		return &ValidationError{Key: path, Reason: "expected object", Value: v}
	}
	errs := check(path, PageSchema, page)
	if blocks, ok := page["blocks"].([]any); ok {
		errs = multierr.Append(errs, checkBlocks(path+".blocks", blocks))
	}
	return errs
}

func checkBlocks(path string, v any) error {
	list, ok := v.([]any)
	if !ok {
		return &ValidationError{Key: path, Reason: "expected array", Value: v}
	}

	var errs error
	seen := map[int64]bool{}
	for i, item := range list {
		at := fmt.Sprintf("%s[%d]", path, i)
		block, ok := item.(map[string]any)
		if !ok {
			errs = multierr.Append(errs, &ValidationError{Key: at, Reason: "expected object", Value: item})
			continue
		}
		errs = multierr.Append(errs, check(at, BlockSchema, block))

		id, ok := block["id"]
		if !ok || id == nil {
			continue
		}
		if err := Int().Validate(id); err != nil {
			errs = multierr.Append(errs, &ValidationError{Key: at + ".id", Reason: err.Error(), Value: id})
			continue
		}
		n := toInt(id)
		if n > 0 && seen[n] {
			errs = multierr.Append(errs, &ValidationError{Key: at + ".id", Reason: "duplicate", Value: id})
		}
		seen[n] = true
	}
	return errs
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
