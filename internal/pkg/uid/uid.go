// Package uid provides small generators for the ID shapes used across the
// app: string IDs (UUID, object ID) and numeric IDs (snowflake).
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}
