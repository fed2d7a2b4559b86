package cmd

import (
	"strconv"

	"github.com/Iron-Ham/msgslot/internal/errors"
	"github.com/Iron-Ham/msgslot/internal/slot"
)

// parseInstance parses an instance number in [0, slot.MaxInstances).
func parseInstance(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewValidationError("instance must be an integer").
			WithField("instance").WithValue(s).WithCause(err)
	}
	if !slot.ValidInstance(n) {
		return 0, errors.NewValidationError("instance must be between 0 and 255").
			WithField("instance").WithValue(s)
	}
	return n, nil
}

// parseChannel parses a non-zero 32-bit channel id.
func parseChannel(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.NewValidationError("channel must be an unsigned 32-bit integer").
			WithField("channel").WithValue(s).WithCause(err)
	}
	if n == uint64(slot.NoChannel) {
		return 0, errors.NewValidationError("channel 0 is reserved").
			WithField("channel").WithValue(s)
	}
	return uint32(n), nil
}
