// Package retention decides which run directories survive a cleaning pass.
//
// # Selection
//
// Select partitions the union of the active and archive listings into keepers
// and deletion candidates:
//
//   - Every decodable active entry is an unconditional keeper. Active entries
//     have not been archived yet and are never pruned on the pass that
//     archives them.
//   - Archive entries are ordered newest first and fill the remaining keeper
//     slots up to keep. Everything past that point is deleted.
//   - Equal timestamps are ordered by name so repeated passes over an
//     unchanged listing make the same decision.
//
// When the active listing alone holds more than keep entries, all of them are
// kept and every archive entry becomes a deletion candidate. The archive can
// then temporarily hold more than keep entries after the active entries are
// moved in.
//
// # Malformed Names
//
// Names whose timestamp suffix cannot be decoded are excluded from selection
// and reported in Decision.Malformed. They are neither kept nor deleted. Use
// SelectStrict to fail on the first malformed name instead.
//
// # Basic Usage
//
//	decision, err := retention.Select(active, archive, 5)
//	if err != nil {
//	    return err
//	}
//	for _, e := range decision.ToDelete {
//	    // remove e.Name from the archive
//	}
package retention
