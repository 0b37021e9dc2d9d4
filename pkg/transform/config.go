package transform

import "github.com/linabutler/ploidy/pkg/ir"

// DateTimeFormat selects which primitive the engine emits for schemas with
// `format: date-time`.
type DateTimeFormat string

const (
	DateTimeRFC3339     DateTimeFormat = "rfc3339"
	DateTimeUnixSeconds DateTimeFormat = "unix-seconds"
	DateTimeUnixMillis  DateTimeFormat = "unix-ms"
	DateTimeUnixMicros  DateTimeFormat = "unix-us"
	DateTimeUnixNanos   DateTimeFormat = "unix-ns"
)

// Config holds the transformer's recognized options.
type Config struct {
	// DateTimeFormat defaults to RFC 3339 when empty.
	DateTimeFormat DateTimeFormat
}

// dateTimePrimitive returns the primitive for date-time schemas.
func (c Config) dateTimePrimitive() ir.Primitive {
	switch c.DateTimeFormat {
	case DateTimeUnixSeconds:
		return ir.PrimUnixSeconds
	case DateTimeUnixMillis:
		return ir.PrimUnixMillis
	case DateTimeUnixMicros:
		return ir.PrimUnixMicros
	case DateTimeUnixNanos:
		return ir.PrimUnixNanos
	default:
		return ir.PrimDateTime
	}
}
