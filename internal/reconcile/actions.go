package reconcile

import (
	"context"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"voting-monitor/internal/contract"
	"voting-monitor/internal/models"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// requiredPhase gates the actions that the contract only accepts in one phase. change-phase is
// absent: the contract enforces the transition order itself.
var requiredPhase = map[models.Action]models.Phase{
	models.ActionRegisterVoter:  models.PhaseRegisteringVoters,
	models.ActionSubmitProposal: models.PhaseProposalsStarted,
	models.ActionCastVote:       models.PhaseVotingStarted,
}

// RegisterVoter adds addr to the voter whitelist.
func (c *Controller) RegisterVoter(ctx context.Context, addr string) error {
	addr = strings.TrimSpace(addr)
	if !addressPattern.MatchString(addr) {
		return c.reject(models.ActionRegisterVoter, "address must be 0x followed by 40 hex characters")
	}
	return c.run(ctx, models.ActionRegisterVoter, contract.AddVoter(common.HexToAddress(addr)))
}

// ChangePhase moves the workflow with one of contract.PhaseTransitions.
func (c *Controller) ChangePhase(ctx context.Context, transition string) error {
	transition = strings.TrimSpace(transition)
	if transition == "" {
		return c.reject(models.ActionChangePhase, "select a phase transition")
	}
	call, err := contract.PhaseTransition(transition)
	if err != nil {
		return c.reject(models.ActionChangePhase, err.Error())
	}
	return c.run(ctx, models.ActionChangePhase, call)
}

// SubmitProposal registers a proposal with the given description.
func (c *Controller) SubmitProposal(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return c.reject(models.ActionSubmitProposal, "proposal description is empty")
	}
	return c.run(ctx, models.ActionSubmitProposal, contract.AddProposal(text))
}

// CastVote votes for the selected proposal. A nil selection is rejected.
func (c *Controller) CastVote(ctx context.Context, proposalID *uint64) error {
	if proposalID == nil {
		return c.reject(models.ActionCastVote, "select a proposal")
	}
	return c.run(ctx, models.ActionCastVote, contract.SetVote(*proposalID))
}

// run gates the action, submits it, waits for confirmation and cascades once on success.
// Failures leave the rest of the view untouched.
func (c *Controller) run(ctx context.Context, action models.Action, call contract.Call) error {
	if err := c.admit(action); err != nil {
		return err
	}
	log := c.log.WithStr("action", string(action))

	tx, err := c.wallet.Submit(ctx, call)
	if err != nil {
		return c.fail(action, &WriteFailure{Action: action, Err: err})
	}
	hash := tx.Hash().Hex()
	c.setStatus(action, models.ActionStatus{Pending: true, TxHash: hash})
	log.Info().Str("tx", hash).Msg("submitted")

	if err := c.wallet.Confirm(ctx, tx); err != nil {
		if isRevert(err) {
			return c.fail(action, &WriteFailure{Action: action, Err: err})
		}
		return c.fail(action, &ConfirmationFailure{Action: action, Err: err})
	}
	c.setStatus(action, models.ActionStatus{TxHash: hash})
	log.Info().Str("tx", hash).Msg("confirmed")

	c.Cascade(ctx)
	return nil
}

// admit checks that the action may reach the network and marks it pending.
func (c *Controller) admit(action models.Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUnmounted {
		return ErrNotMounted
	}
	if !c.supported || c.wallet == nil {
		return ErrActionsDisabled
	}
	if c.view.Actions[action].Pending {
		return c.rejectLocked(action, "already pending")
	}
	if want, gated := requiredPhase[action]; gated && c.view.Roles.Phase != want {
		return c.rejectLocked(action, "not allowed while phase is "+c.view.Roles.Phase.String())
	}
	c.view.Actions[action] = models.ActionStatus{Pending: true}
	c.notifyLocked()
	return nil
}

func (c *Controller) reject(action models.Action, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejectLocked(action, reason)
}

func (c *Controller) rejectLocked(action models.Action, reason string) error {
	err := &ValidationError{Action: action, Reason: reason}
	if !c.view.Actions[action].Pending {
		c.view.Actions[action] = models.ActionStatus{Error: err.Reason}
		c.notifyLocked()
	}
	return err
}

func (c *Controller) fail(action models.Action, err error) error {
	c.log.Warn().Err(err).Str("action", string(action)).Msg("action failed")
	c.mu.Lock()
	status := c.view.Actions[action]
	c.view.Actions[action] = models.ActionStatus{Error: FailureMessage(err), TxHash: status.TxHash}
	c.notifyLocked()
	c.mu.Unlock()
	return err
}

func (c *Controller) setStatus(action models.Action, status models.ActionStatus) {
	c.mu.Lock()
	c.view.Actions[action] = status
	c.notifyLocked()
	c.mu.Unlock()
}
