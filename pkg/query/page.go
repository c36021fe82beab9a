package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	gquery "github.com/google/go-querystring/query"
)

// MaxLimit is the hard per-request page size ceiling enforced by both APIs.
const MaxLimit = 1000

var (
	// ErrUnknownField is returned by Set for a field the filter does not declare.
	ErrUnknownField = errors.New("unknown filter field")

	// ErrInvalidValue is returned by Set when a value cannot be parsed for its field.
	ErrInvalidValue = errors.New("invalid filter value")
)

// Page is the offset/limit cursor shared by every listing filter.
type Page struct {
	Offset int `url:"offset" validate:"gte=0"`
	Limit  int `url:"limit" validate:"gte=1"`
}

// Cursor returns the page cursor. Promoted to every filter embedding Page.
func (p *Page) Cursor() *Page {
	return p
}

// Clamp caps Limit at MaxLimit and returns the effective limit.
func (p *Page) Clamp() int {
	p.Limit = ClampLimit(p.Limit)
	return p.Limit
}

// ClampLimit returns limit capped at MaxLimit.
func ClampLimit(limit int) int {
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// setPage handles the cursor fields for every filter's Set.
func (p *Page) setPage(field, value string) (bool, error) {
	switch field {
	case "offset":
		n, err := parseInt(field, value)
		if err != nil {
			return true, err
		}
		p.Offset = n
		return true, nil
	case "limit":
		n, err := parseInt(field, value)
		if err != nil {
			return true, err
		}
		p.Limit = n
		return true, nil
	}
	return false, nil
}

// Pager is implemented by every listing filter.
type Pager interface {
	// Cursor exposes the offset/limit fields mutated between page requests.
	Cursor() *Page

	// Values serializes all filter fields, including offset and limit.
	Values() (url.Values, error)
}

// Setter is implemented by filters that accept free-form field assignment.
type Setter interface {
	Set(field, value string) error
}

// encode serializes a filter struct through its url tags.
func encode(v any) (url.Values, error) {
	values, err := gquery.Values(v)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return values, nil
}

func parseInt(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, field, value)
	}
	return n, nil
}

func parseIntPtr(field, value string) (*int, error) {
	n, err := parseInt(field, value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseBoolPtr(field, value string) (*bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, field, value)
	}
	return &b, nil
}

func unknownField(filter, field string) error {
	return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, filter, field)
}
