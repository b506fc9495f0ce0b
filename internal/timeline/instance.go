package timeline

import "sort"

// Instance is a single (start, end, busy) triple produced by expanding an
// event, or by materializing a schedule rule. Distinct from any stored
// entity — this is the unit the algebra below operates on.
type Instance struct {
	StartMs int64
	EndMs   int64
	Busy    bool
}

// Span returns the instance's underlying TimeSpan.
func (i Instance) Span() TimeSpan { return TimeSpan{StartMs: i.StartMs, EndMs: i.EndMs} }

// byStartThenEndDesc sorts by start ascending; on a tie, longer (later end) first.
type byStartThenEndDesc []Instance

func (s byStartThenEndDesc) Len() int      { return len(s) }
func (s byStartThenEndDesc) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byStartThenEndDesc) Less(i, j int) bool {
	if s[i].StartMs != s[j].StartMs {
		return s[i].StartMs < s[j].StartMs
	}
	return s[i].EndMs > s[j].EndMs
}

// CompatibleMerge sweeps arbitrary, possibly overlapping tagged instances
// into a non-overlapping sequence in ascending start order whose coverage
// is the union of the inputs. Overlapping or touching inputs collapse into
// one run, which is busy if any of its inputs is busy, so a free input that
// overlaps a busy one is reported busy over its whole extent. This is the canonical form of
// a "busy timeline" used throughout the rest of the engine.
func CompatibleMerge(instances []Instance) []Instance {
	if len(instances) == 0 {
		return nil
	}

	sorted := make([]Instance, len(instances))
	copy(sorted, instances)
	sort.Sort(byStartThenEndDesc(sorted))

	var out []Instance
	cur := sorted[0]

	for _, next := range sorted[1:] {
		if next.StartMs > cur.EndMs {
			// Gap: flush current run and start a new one.
			out = append(out, cur)
			cur = next
			continue
		}

		// Overlapping or touching: extend the end if needed and escalate
		// busy-ness — busy dominates free at any covered point.
		if next.EndMs > cur.EndMs {
			cur.EndMs = next.EndMs
		}
		if next.Busy {
			cur.Busy = true
		}
	}
	out = append(out, cur)

	return out
}

// Complement fills the gaps (and the leading/trailing remainder) of a
// merged busy timeline against a window, producing the free timeline. The
// result, concatenated with the busy timeline, covers the window exactly.
func Complement(busy []Instance, window TimeSpan) []Instance {
	var free []Instance
	cursor := window.StartMs

	for _, b := range busy {
		start := b.StartMs
		end := b.EndMs
		if start < window.StartMs {
			start = window.StartMs
		}
		if end > window.EndMs {
			end = window.EndMs
		}
		if start >= end {
			continue
		}
		if start > cursor {
			free = append(free, Instance{StartMs: cursor, EndMs: start, Busy: false})
		}
		if end > cursor {
			cursor = end
		}
	}

	if cursor < window.EndMs {
		free = append(free, Instance{StartMs: cursor, EndMs: window.EndMs, Busy: false})
	}

	return free
}

// ExpandBuffer widens a busy instance by [-before, +after] milliseconds,
// used by the booking solver to apply per-participant lead/buffer time
// around existing busy intervals before merging.
func ExpandBuffer(i Instance, beforeMs, afterMs int64) Instance {
	return Instance{StartMs: i.StartMs - beforeMs, EndMs: i.EndMs + afterMs, Busy: i.Busy}
}

// CoversFully reports whether the given span is entirely contained within
// at least one of the (assumed non-overlapping, ascending) instances.
func CoversFully(instances []Instance, span TimeSpan) bool {
	for _, i := range instances {
		if i.StartMs <= span.StartMs && i.EndMs >= span.EndMs {
			return true
		}
	}
	return false
}
