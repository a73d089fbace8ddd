package retention

import (
	"fmt"
	"sort"

	"mercator-hq/rundir/pkg/runname"
)

// Origin identifies the listing an entry came from.
type Origin string

const (
	// OriginActive marks entries listed in the active location.
	OriginActive Origin = "active"
	// OriginArchive marks entries listed in the archive location.
	OriginArchive Origin = "archive"
)

// Candidate is a decoded entry tagged with its origin.
type Candidate struct {
	runname.Entry
	Origin Origin
}

// Decision is the outcome of a retention selection.
type Decision struct {
	// Keep is the keep count the decision was computed for.
	Keep int

	// Keepers are the entries that survive the pass, active entries first and
	// then archive entries newest first.
	Keepers []Candidate

	// ToDelete are archive entries selected for deletion, newest first.
	ToDelete []Candidate

	// Malformed lists names that could not be decoded and were left out.
	Malformed []string
}

// ActiveKeepers returns the keepers that came from the active location.
func (d *Decision) ActiveKeepers() []Candidate {
	return filterOrigin(d.Keepers, OriginActive)
}

// ArchiveKeepers returns the keepers that came from the archive location.
func (d *Decision) ArchiveKeepers() []Candidate {
	return filterOrigin(d.Keepers, OriginArchive)
}

// DeleteNames returns the names selected for deletion.
func (d *Decision) DeleteNames() []string {
	names := make([]string, 0, len(d.ToDelete))
	for _, c := range d.ToDelete {
		names = append(names, c.Name)
	}
	return names
}

// Select computes keepers and deletion candidates for the given listings.
// Malformed names are excluded and reported in Decision.Malformed.
func Select(active, archive []string, keep int) (*Decision, error) {
	return selectEntries(active, archive, keep, false)
}

// SelectStrict is like Select but fails with *runname.MalformedNameError on the
// first name that cannot be decoded.
func SelectStrict(active, archive []string, keep int) (*Decision, error) {
	return selectEntries(active, archive, keep, true)
}

func selectEntries(active, archive []string, keep int, strict bool) (*Decision, error) {
	if keep < 1 {
		return nil, fmt.Errorf("keep must be at least 1, got %d", keep)
	}

	d := &Decision{Keep: keep}

	keepers, err := decodeAll(active, OriginActive, strict, d)
	if err != nil {
		return nil, err
	}
	candidates, err := decodeAll(archive, OriginArchive, strict, d)
	if err != nil {
		return nil, err
	}

	sortNewestFirst(keepers)
	sortNewestFirst(candidates)

	slots := keep - len(keepers)
	if slots < 0 {
		slots = 0
	}
	if slots > len(candidates) {
		slots = len(candidates)
	}

	d.Keepers = append(keepers, candidates[:slots]...)
	d.ToDelete = candidates[slots:]

	return d, nil
}

func decodeAll(names []string, origin Origin, strict bool, d *Decision) ([]Candidate, error) {
	out := make([]Candidate, 0, len(names))
	for _, name := range names {
		entry, err := runname.Decode(name)
		if err != nil {
			if strict {
				return nil, err
			}
			d.Malformed = append(d.Malformed, name)
			continue
		}
		out = append(out, Candidate{Entry: entry, Origin: origin})
	}
	return out, nil
}

// sortNewestFirst orders candidates by timestamp descending, then name
// ascending.
func sortNewestFirst(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].Timestamp.Equal(cs[j].Timestamp) {
			return cs[i].Timestamp.After(cs[j].Timestamp)
		}
		return cs[i].Name < cs[j].Name
	})
}

func filterOrigin(cs []Candidate, origin Origin) []Candidate {
	var out []Candidate
	for _, c := range cs {
		if c.Origin == origin {
			out = append(out, c)
		}
	}
	return out
}
