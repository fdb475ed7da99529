package reconcile

import (
	"asset-reconciler/core/compare"
	"asset-reconciler/core/keys"
)

// AggregateInput is everything Aggregate counts.
type AggregateInput struct {
	PlatformRows  int
	ReferenceRows int
	Partition     keys.Partition
	Diffs         []compare.KeyDiff
}

// Aggregate computes the run summary.
func Aggregate(in AggregateInput) Summary {
	s := Summary{
		PlatformRows:   in.PlatformRows,
		ReferenceRows:  in.ReferenceRows,
		MissingCount:   len(in.Partition.OnlyInA),
		ExtraCount:     len(in.Partition.OnlyInB),
		CommonCount:    len(in.Partition.Common),
		DifferingCount: len(in.Diffs),
	}
	s.EqualCount = s.CommonCount - s.DifferingCount
	if s.CommonCount > 0 {
		s.DiffRatio = float64(s.DifferingCount) / float64(s.CommonCount)
	}
	return s
}
