package slot

import (
	"fmt"

	"github.com/Iron-Ham/msgslot/internal/errors"
)

// InstanceStat lists the channels of one slot instance.
type InstanceStat struct {
	Instance int           `json:"instance" yaml:"instance"`
	Channels []ChannelInfo `json:"channels" yaml:"channels"`
}

// Registry holds one Table per slot instance. The array is fixed at
// MaxInstances entries and every table starts empty.
type Registry struct {
	tables [MaxInstances]Table
}

// NewRegistry creates a registry whose tables hold at most maxChannels
// channels each. Zero means no limit.
func NewRegistry(maxChannels int) *Registry {
	r := &Registry{}
	for i := range r.tables {
		r.tables[i].instance = i
		r.tables[i].maxChannels = maxChannels
	}
	return r
}

// ValidInstance reports whether instance is in [0, MaxInstances).
func ValidInstance(instance int) bool {
	return instance >= 0 && instance < MaxInstances
}

// Table returns the table for a slot instance.
func (r *Registry) Table(instance int) (*Table, error) {
	if !ValidInstance(instance) {
		return nil, fmt.Errorf("instance %d out of range [0,%d): %w", instance, MaxInstances, errors.ErrInvalidArgument)
	}
	return &r.tables[instance], nil
}

// Stat returns the channels of every instance that has at least one.
func (r *Registry) Stat() []InstanceStat {
	var stats []InstanceStat
	for i := range r.tables {
		channels := r.tables[i].Channels()
		if len(channels) == 0 {
			continue
		}
		stats = append(stats, InstanceStat{Instance: i, Channels: channels})
	}
	return stats
}

// ChannelCount returns the total number of channels across all instances.
func (r *Registry) ChannelCount() int {
	total := 0
	for i := range r.tables {
		total += r.tables[i].Len()
	}
	return total
}

// Release drops every channel of every instance and returns how many were
// released.
func (r *Registry) Release() int {
	total := 0
	for i := range r.tables {
		total += r.tables[i].release()
	}
	return total
}
