package raw

import "fmt"

// DomainError is returned when a numeric value does not fit the bit width
// or range of the field it is encoded into.
type DomainError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s value %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// TimingToleranceError is returned when a duration is not within 10% of an
// integer number of unit lengths.
type TimingToleranceError struct {
	Duration  float64
	Unit      float64
	Deviation float64
}

func (e *TimingToleranceError) Error() string {
	return fmt.Sprintf("duration %g is not a multiple of unit %g (deviation %.3f)", e.Duration, e.Unit, e.Deviation)
}

// ProtocolDecodeError is returned when a tick pattern matches no valid
// encoding of the protocol being decoded.
type ProtocolDecodeError struct {
	Protocol string
	Field    string
	// Offset is the tick index the failing pattern starts at.
	Offset int
	Ticks  []int
}

func (e *ProtocolDecodeError) Error() string {
	return fmt.Sprintf("%s: invalid %s at tick %d: %v", e.Protocol, e.Field, e.Offset, e.Ticks)
}

// FormatError is returned when a wire payload violates its framing.
type FormatError struct {
	Format string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s data: %s", e.Format, e.Reason)
}
