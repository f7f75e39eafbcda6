// Package catalog reads the current description and vote count of every registered proposal.
package catalog

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"voting-monitor/internal/logger"
	"voting-monitor/internal/models"
)

// Reader is the proposal read surface of the contract binding.
type Reader interface {
	GetOneProposal(ctx context.Context, from common.Address, id uint64) (models.Proposal, error)
	WinningProposalID(ctx context.Context) (uint64, error)
}

// Build reads every id concurrently as account and waits for all reads to settle. Ids whose read
// failed are left out; the rest keep the order of ids. The result is never nil.
func Build(ctx context.Context, ids []uint64, r Reader, account common.Address, log *logger.Logger) []models.Proposal {
	var (
		g     errgroup.Group
		slots = make([]models.Proposal, len(ids))
		ok    = make([]bool, len(ids))
	)
	for i, id := range ids {
		g.Go(func() error {
			p, err := r.GetOneProposal(ctx, account, id)
			if err != nil {
				log.Debug().Err(err).Uint64("proposal", id).Msg("proposal read failed, dropped")
				return nil
			}
			slots[i], ok[i] = p, true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.Proposal, 0, len(ids))
	for i := range slots {
		if ok[i] {
			out = append(out, slots[i])
		}
	}
	if dropped := len(ids) - len(out); dropped > 0 {
		log.Printf("Catalog built: %d proposals, %d dropped", len(out), dropped)
	}
	return out
}

// Winner reads the tallied winner id, then its description as account.
func Winner(ctx context.Context, r Reader, account common.Address) (*models.Winner, error) {
	id, err := r.WinningProposalID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read winning proposal id: %w", err)
	}
	p, err := r.GetOneProposal(ctx, account, id)
	if err != nil {
		return nil, fmt.Errorf("read winning proposal %d: %w", id, err)
	}
	return &models.Winner{ProposalID: id, Description: p.Description}, nil
}
