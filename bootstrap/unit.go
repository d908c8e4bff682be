package bootstrap

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Unit is the calendar granularity used for block lengths and grid steps.
type Unit int

// Supported frequency units. The zero value is invalid.
const (
	Day Unit = iota + 1
	Hour
	Minute
	Second
)

var unitAliases = map[string]Unit{
	"d": Day, "day": Day, "days": Day,
	"h": Hour, "hour": Hour, "hours": Hour,
	"m": Minute, "t": Minute, "min": Minute, "minute": Minute, "minutes": Minute,
	"s": Second, "sec": Second, "second": Second, "seconds": Second,
}

// ParseUnit parses a frequency code such as "D", "H", "min" or "seconds".
// "M" means minute.
func ParseUnit(s string) (Unit, error) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown frequency %q", ErrConfiguration, s)
	}
	return u, nil
}

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	return u >= Day && u <= Second
}

// Duration returns the length of one unit.
func (u Unit) Duration() time.Duration {
	switch u {
	case Day:
		return 24 * time.Hour
	case Hour:
		return time.Hour
	case Minute:
		return time.Minute
	case Second:
		return time.Second
	}
	return 0
}

func (u Unit) String() string {
	switch u {
	case Day:
		return "D"
	case Hour:
		return "H"
	case Minute:
		return "min"
	case Second:
		return "S"
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// BlockLength is a block duration expressed as Count × Unit.
type BlockLength struct {
	Count int
	Unit  Unit
}

// Validate checks that the count is positive, the unit known and the
// resulting duration representable.
func (b BlockLength) Validate() error {
	if !b.Unit.Valid() {
		return fmt.Errorf("%w: unknown frequency unit %d", ErrConfiguration, int(b.Unit))
	}
	if b.Count < 1 {
		return fmt.Errorf("%w: block length must be a positive integer, got %d", ErrConfiguration, b.Count)
	}
	if int64(b.Count) > math.MaxInt64/int64(b.Unit.Duration()) {
		return fmt.Errorf("%w: block length %s overflows", ErrConfiguration, b)
	}
	return nil
}

// Duration returns Count × Unit. Call Validate first.
func (b BlockLength) Duration() time.Duration {
	return time.Duration(b.Count) * b.Unit.Duration()
}

func (b BlockLength) String() string {
	return fmt.Sprintf("%d %s", b.Count, b.Unit)
}
