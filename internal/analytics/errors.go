package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrNilCollection is returned when a snapshot is missing one of its
	// collections. It signals a caller contract breach, not bad data.
	ErrNilCollection = errors.New("analytics: nil collection")
	// ErrUnknownPeriod is returned by ParsePeriod for unsupported values.
	ErrUnknownPeriod = errors.New("analytics: unknown period")
)

func nilCollection(name string) error {
	return fmt.Errorf("%w: %s", ErrNilCollection, name)
}
