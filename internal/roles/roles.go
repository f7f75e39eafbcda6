// Package roles derives the connected account's roles and the contract's workflow phase.
package roles

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"voting-monitor/internal/logger"
	"voting-monitor/internal/models"
)

// Reader is the subset of contract reads the resolver needs.
type Reader interface {
	WorkflowStatus(ctx context.Context) (models.Phase, error)
	GetVoter(ctx context.Context, from, addr common.Address) (models.VoterRecord, error)
	Owner(ctx context.Context) (common.Address, error)
}

// Resolve recomputes the role state of account from three independent reads.
//
// Failures are asymmetric: a failed phase read keeps prior.Phase, while a failed voter or owner
// read yields false so that gated actions are never offered to an unverified account.
// A zero account is not connected and only the phase is read.
func Resolve(ctx context.Context, r Reader, account common.Address, prior models.AccountRoleState, log *logger.Logger) models.AccountRoleState {
	state := models.AccountRoleState{Phase: prior.Phase}
	var g errgroup.Group

	g.Go(func() error {
		state.Phase = ResolvePhase(ctx, r, prior.Phase, log)
		return nil
	})

	if account != (common.Address{}) {
		g.Go(func() error {
			rec, err := r.GetVoter(ctx, account, account)
			if err != nil {
				log.Debug().Err(err).Str("account", account.Hex()).Msg("voter read failed, treating as non-voter")
				return nil
			}
			state.IsVoter = rec.IsRegistered
			return nil
		})
		g.Go(func() error {
			owner, err := r.Owner(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("owner read failed")
				return nil
			}
			state.IsAdmin = SameAddress(owner.Hex(), account.Hex())
			return nil
		})
	}

	_ = g.Wait()
	return state
}

// ResolvePhase reads the phase, falling back to prior on failure.
func ResolvePhase(ctx context.Context, r Reader, prior models.Phase, log *logger.Logger) models.Phase {
	phase, err := r.WorkflowStatus(ctx)
	if err != nil {
		log.Warn().Err(err).Str("kept", prior.String()).Msg("phase read failed")
		return prior
	}
	return phase
}

// SameAddress compares two hex addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
