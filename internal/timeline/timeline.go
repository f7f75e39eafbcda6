// Package timeline merges the four event streams into one block-ordered sequence.
package timeline

import (
	"sort"

	"voting-monitor/internal/collector"
	"voting-monitor/internal/models"
)

// Build maps every record of b into a TimelineRecord and orders the result by descending block
// number. Records sharing a block have no defined order.
//
// When any fetch in b failed the whole batch is discarded unless keepPartial is set. The result
// is never nil.
func Build(b collector.Batch, keepPartial bool) []models.TimelineRecord {
	if b.Failed() && !keepPartial {
		return []models.TimelineRecord{}
	}

	out := make([]models.TimelineRecord, 0,
		len(b.VoterRegistered)+len(b.ProposalRegistered)+len(b.StatusChanges)+len(b.Votes))

	for _, ev := range b.VoterRegistered {
		out = append(out, models.VoterRegistered(ev.Raw.BlockNumber, ev.VoterAddress))
	}
	for _, ev := range b.ProposalRegistered {
		out = append(out, models.ProposalRegistered(ev.Raw.BlockNumber, bigToUint(ev.ProposalId)))
	}
	for _, ev := range b.StatusChanges {
		out = append(out, models.PhaseChanged(ev.Raw.BlockNumber, phase(ev.PreviousStatus), phase(ev.NewStatus)))
	}
	for _, ev := range b.Votes {
		out = append(out, models.VoteCast(ev.Raw.BlockNumber, ev.Voter, bigToUint(ev.ProposalId)))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BlockNumber > out[j].BlockNumber
	})
	return out
}

// Counts tallies a timeline per kind.
func Counts(records []models.TimelineRecord) map[models.EventKind]int {
	counts := make(map[models.EventKind]int, len(models.EventKinds))
	for _, r := range records {
		counts[r.Kind]++
	}
	return counts
}

func phase(status uint8) models.Phase {
	p, err := models.PhaseFromStatus(status)
	if err != nil {
		return models.PhaseUnknown
	}
	return p
}
