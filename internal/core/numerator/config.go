// Package numerator provides domain contracts for sequential document numbering.
package numerator

import (
	"fmt"
	"time"
)

// Config holds numbering configuration.
// A sequence is identified by (Prefix, Scope, year of period) and resets every year.
type Config struct {
	// Prefix added to all numbers (e.g., "SV", "DD")
	Prefix string

	// Scope narrows the sequence, e.g. the seller company id
	Scope string

	// PadWidth is the minimum number width (default 5)
	PadWidth int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix, scope string) Config {
	return Config{
		Prefix:   prefix,
		Scope:    scope,
		PadWidth: 5,
	}
}

// SequenceKey is the storage key of the sequence for cfg in the year of period.
func (c Config) SequenceKey() string {
	return c.Prefix + ":" + c.Scope
}

// Format renders value as PREFIX-YEAR-00001.
func (c Config) Format(period time.Time, value int64) string {
	width := c.PadWidth
	if width <= 0 {
		width = 5
	}
	return fmt.Sprintf("%s-%d-%0*d", c.Prefix, period.Year(), width, value)
}
