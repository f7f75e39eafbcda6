// Package collector fetches the voting contract's historical logs for the four event kinds.
package collector

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"voting-monitor/internal/contract"
	"voting-monitor/internal/logger"
	"voting-monitor/internal/models"
)

// EventSource is the log query surface of the contract binding.
type EventSource interface {
	FilterVoterRegistered(ctx context.Context, from uint64) ([]contract.VoterRegisteredEvent, error)
	FilterProposalRegistered(ctx context.Context, from uint64) ([]contract.ProposalRegisteredEvent, error)
	FilterWorkflowStatusChange(ctx context.Context, from uint64) ([]contract.WorkflowStatusChangeEvent, error)
	FilterVoted(ctx context.Context, from uint64) ([]contract.VotedEvent, error)
}

// Batch is the result of one Collect pass. A kind that failed has an empty set and an entry in Errors.
type Batch struct {
	VoterRegistered    []contract.VoterRegisteredEvent
	ProposalRegistered []contract.ProposalRegisteredEvent
	StatusChanges      []contract.WorkflowStatusChangeEvent
	Votes              []contract.VotedEvent

	Errors map[models.EventKind]error
}

// Failed reports whether any of the four fetches failed.
func (b Batch) Failed() bool {
	return len(b.Errors) > 0
}

type Collector struct {
	source     EventSource
	startBlock uint64
	log        *logger.Logger
}

func NewCollector(source EventSource, startBlock uint64, log *logger.Logger) *Collector {
	return &Collector{
		source:     source,
		startBlock: startBlock,
		log:        log.Named("collector"),
	}
}

// Collect runs the four log queries concurrently over [startBlock, latest]. A failing query
// never prevents the others from completing; nothing is retried.
func (c *Collector) Collect(ctx context.Context) Batch {
	var (
		batch Batch
		errs  = make([]error, len(models.EventKinds))
		g     errgroup.Group
	)
	started := time.Now()

	// Each handler writes only its own field and error slot.
	handlers := []func() error{
		func() (err error) {
			batch.VoterRegistered, err = c.source.FilterVoterRegistered(ctx, c.startBlock)
			return err
		},
		func() (err error) {
			batch.ProposalRegistered, err = c.source.FilterProposalRegistered(ctx, c.startBlock)
			return err
		},
		func() (err error) {
			batch.StatusChanges, err = c.source.FilterWorkflowStatusChange(ctx, c.startBlock)
			return err
		},
		func() (err error) {
			batch.Votes, err = c.source.FilterVoted(ctx, c.startBlock)
			return err
		},
	}
	for i, h := range handlers {
		g.Go(func() error {
			errs[i] = h()
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		kind := models.EventKinds[i]
		if batch.Errors == nil {
			batch.Errors = make(map[models.EventKind]error)
		}
		batch.Errors[kind] = err
		c.log.Warn().Err(err).Str("kind", string(kind)).Msg("log fetch failed")
	}
	c.clearFailed(&batch)

	c.log.Printf("Logs collected from block %d: voters=%d proposals=%d status=%d votes=%d failed=%d (%s)",
		c.startBlock, len(batch.VoterRegistered), len(batch.ProposalRegistered),
		len(batch.StatusChanges), len(batch.Votes), len(batch.Errors), time.Since(started).Round(time.Millisecond))
	return batch
}

// clearFailed drops whatever a failed query may have returned alongside its error.
func (c *Collector) clearFailed(b *Batch) {
	for kind := range b.Errors {
		switch kind {
		case models.KindVoterRegistered:
			b.VoterRegistered = nil
		case models.KindProposalRegistered:
			b.ProposalRegistered = nil
		case models.KindPhaseChanged:
			b.StatusChanges = nil
		case models.KindVoteCast:
			b.Votes = nil
		}
	}
}

// ProposalIDs returns every registered proposal id in the order the logs report them.
func (c *Collector) ProposalIDs(ctx context.Context) ([]uint64, error) {
	events, err := c.source.FilterProposalRegistered(ctx, c.startBlock)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(events))
	for _, ev := range events {
		if ev.ProposalId == nil || !ev.ProposalId.IsUint64() {
			return nil, fmt.Errorf("proposal id out of range at block %d", ev.Raw.BlockNumber)
		}
		ids = append(ids, ev.ProposalId.Uint64())
	}
	return ids, nil
}
