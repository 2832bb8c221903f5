package btree

import "fmt"

const (
	// DefaultLeafCap is the default maximum number of entries per leaf.
	DefaultLeafCap = 32
	// DefaultInnerCap is the default maximum number of children per inner node.
	DefaultInnerCap = 16
	// MaxLeafCap bounds leaf capacity so that a leaf including transient
	// overflow fits into a 64-bit arrival bitmap.
	MaxLeafCap = 62
	// MinCap is the smallest accepted capacity for leaves and inner nodes.
	MinCap = 4
)

// Config configures a run tree.
//
// Non-root nodes hold at least half of their capacity.
type Config[E any, V any] struct {
	// Metrics aggregates entries up the tree.
	Metrics Metrics[E, V]
	// LeafCap is the maximum number of entries per leaf. Zero selects DefaultLeafCap.
	LeafCap int
	// InnerCap is the maximum number of children per inner node. Zero selects DefaultInnerCap.
	InnerCap int
}

func (cfg Config[E, V]) normalized() Config[E, V] {
	if cfg.LeafCap == 0 {
		cfg.LeafCap = DefaultLeafCap
	}
	if cfg.InnerCap == 0 {
		cfg.InnerCap = DefaultInnerCap
	}
	return cfg
}

func (cfg Config[E, V]) validate() error {
	cfg = cfg.normalized()
	if cfg.Metrics == nil {
		return fmt.Errorf("%w: metrics are required", ErrInvalidConfig)
	}
	if cfg.LeafCap < MinCap || cfg.LeafCap > MaxLeafCap {
		return fmt.Errorf("%w: leaf capacity %d not in [%d,%d]",
			ErrInvalidConfig, cfg.LeafCap, MinCap, MaxLeafCap)
	}
	if cfg.InnerCap < MinCap {
		return fmt.Errorf("%w: inner capacity %d below %d", ErrInvalidConfig, cfg.InnerCap, MinCap)
	}
	return nil
}

func (t *Tree[E, V]) minLeafEntries() int { return t.cfg.LeafCap / 2 }
func (t *Tree[E, V]) minChildren() int    { return t.cfg.InnerCap / 2 }
