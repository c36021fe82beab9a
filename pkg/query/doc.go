// Package query defines the filter records sent to the ChecklistBank and GBIF
// listing endpoints.
//
// Every filter enumerates the fields its endpoint recognizes as named struct
// fields with explicit `url` tags. Serialization goes through go-querystring,
// so a field that is not declared on the struct can never reach the wire.
// Free-form input (CLI flags, config maps) goes through Set, which rejects
// unknown field names with ErrUnknownField.
//
// All listing filters embed Page, the mandatory offset/limit cursor:
//
//	f := &query.DatasetFilter{Alias: "COL"}
//	f.Limit = 5000 // clamped to MaxLimit before every request
//	values, err := f.Values()
//
// Offset and limit are always present in the encoded values, even when zero.
package query
