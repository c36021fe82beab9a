package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/hashicorp/go-multierror"
)

// applyFilters sets each key=value pair on s.
func applyFilters(s query.Setter, filters []string) error {
	var result *multierror.Error
	for _, f := range filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			result = multierror.Append(result, fmt.Errorf("filter %q: expected key=value", f))
			continue
		}
		if err := s.Set(key, value); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// sizeArg maps a negative --size to "all records".
func sizeArg(n int) *int {
	if n < 0 {
		return nil
	}
	return pagination.Size(n)
}

// writeJSONLines writes one JSON document per line.
func writeJSONLines[T any](out io.Writer, items []T) error {
	enc := json.NewEncoder(out)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
