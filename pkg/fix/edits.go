package fix

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/aiseeq/paramprune/pkg/core"
)

// MergeEdits sorts edits by offset, drops exact duplicates and joins
// overlapping deletions into one. Any other overlap is a conflict.
func MergeEdits(edits []core.Edit) ([]core.Edit, error) {
	sorted := make([]core.Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := make([]core.Edit, 0, len(sorted))
	for _, e := range sorted {
		if e.Start < 0 || e.End < e.Start {
			return nil, fmt.Errorf("invalid edit %d-%d", e.Start, e.End)
		}
		if n := len(out); n > 0 {
			last := &out[n-1]
			if e == *last {
				continue
			}
			if overlaps(*last, e) {
				if !last.IsDeletion() || !e.IsDeletion() {
					return nil, fmt.Errorf("conflicting edits at %d-%d and %d-%d", last.Start, last.End, e.Start, e.End)
				}
				if e.End > last.End {
					last.End = e.End
				}
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// overlaps reports whether two edits touch the same bytes. Two insertions
// at the same offset overlap as well since their order would be arbitrary.
func overlaps(a, b core.Edit) bool {
	if a.Start == a.End && b.Start == b.End {
		return a.Start == b.Start
	}
	return a.Start < b.End && b.Start < a.End
}

// ApplyEdits applies sorted, non-overlapping edits to src
func ApplyEdits(src []byte, edits []core.Edit) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(src))

	last := 0
	for _, e := range edits {
		if e.Start < last || e.End < e.Start || e.End > len(src) {
			return nil, fmt.Errorf("edit %d-%d out of order or out of bounds (size %d)", e.Start, e.End, len(src))
		}
		buf.Write(src[last:e.Start])
		buf.WriteString(e.NewText)
		last = e.End
	}
	buf.Write(src[last:])
	return buf.Bytes(), nil
}

// nonOverlapping keeps fixes in order as long as none of their edits
// overlaps an edit of a fix already kept. Identical edits do not count as
// overlapping.
func nonOverlapping(fixes []*core.Fix) (kept, skipped []*core.Fix) {
	var taken []core.Edit
	for _, f := range fixes {
		clash := false
		for _, e := range f.Edits {
			for _, t := range taken {
				if e != t && overlaps(e, t) {
					clash = true
					break
				}
			}
			if clash {
				break
			}
		}
		if clash {
			skipped = append(skipped, f)
			continue
		}
		kept = append(kept, f)
		taken = append(taken, f.Edits...)
	}
	return kept, skipped
}
