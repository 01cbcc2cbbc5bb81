package search

import (
	"iter"

	"github.com/kilianp07/groundsched/core/model"
)

// Resources yields the directory's resources in priority order, indexed by
// their rank.
func Resources(list []model.Resource) iter.Seq2[int, model.Resource] {
	return func(yield func(int, model.Resource) bool) {
		for i, r := range list {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Offsets yields the candidate slots of req in ascending start order.
func Offsets(req model.SearchRequest) iter.Seq[model.TimeWindow] {
	return req.Slots()
}

// FirstMatch returns the first element of seq accepted by pred and stops
// pulling from seq as soon as it is found.
func FirstMatch[T any](seq iter.Seq[T], pred func(T) bool) (T, bool) {
	for v := range seq {
		if pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
