package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// VoterRegisteredEvent is a decoded VoterRegistered log.
type VoterRegisteredEvent struct {
	VoterAddress common.Address
	Raw          types.Log
}

// ProposalRegisteredEvent is a decoded ProposalRegistered log.
type ProposalRegisteredEvent struct {
	ProposalId *big.Int
	Raw        types.Log
}

// WorkflowStatusChangeEvent is a decoded WorkflowStatusChange log.
type WorkflowStatusChangeEvent struct {
	PreviousStatus uint8
	NewStatus      uint8
	Raw            types.Log
}

// VotedEvent is a decoded Voted log.
type VotedEvent struct {
	Voter      common.Address
	ProposalId *big.Int
	Raw        types.Log
}

// FilterVoterRegistered returns every VoterRegistered log from block from to the chain head.
func (v *Voting) FilterVoterRegistered(ctx context.Context, from uint64) ([]VoterRegisteredEvent, error) {
	logs, err := v.filterLogs(ctx, "VoterRegistered", from)
	if err != nil {
		return nil, err
	}
	out := make([]VoterRegisteredEvent, 0, len(logs))
	for _, l := range logs {
		ev := VoterRegisteredEvent{Raw: l}
		if err := v.contract.UnpackLog(&ev, "VoterRegistered", l); err != nil {
			return nil, fmt.Errorf("unpack VoterRegistered at block %d: %w", l.BlockNumber, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// FilterProposalRegistered returns every ProposalRegistered log from block from to the chain head.
func (v *Voting) FilterProposalRegistered(ctx context.Context, from uint64) ([]ProposalRegisteredEvent, error) {
	logs, err := v.filterLogs(ctx, "ProposalRegistered", from)
	if err != nil {
		return nil, err
	}
	out := make([]ProposalRegisteredEvent, 0, len(logs))
	for _, l := range logs {
		ev := ProposalRegisteredEvent{Raw: l}
		if err := v.contract.UnpackLog(&ev, "ProposalRegistered", l); err != nil {
			return nil, fmt.Errorf("unpack ProposalRegistered at block %d: %w", l.BlockNumber, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// FilterWorkflowStatusChange returns every WorkflowStatusChange log from block from to the chain head.
func (v *Voting) FilterWorkflowStatusChange(ctx context.Context, from uint64) ([]WorkflowStatusChangeEvent, error) {
	logs, err := v.filterLogs(ctx, "WorkflowStatusChange", from)
	if err != nil {
		return nil, err
	}
	out := make([]WorkflowStatusChangeEvent, 0, len(logs))
	for _, l := range logs {
		ev := WorkflowStatusChangeEvent{Raw: l}
		if err := v.contract.UnpackLog(&ev, "WorkflowStatusChange", l); err != nil {
			return nil, fmt.Errorf("unpack WorkflowStatusChange at block %d: %w", l.BlockNumber, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// FilterVoted returns every Voted log from block from to the chain head.
func (v *Voting) FilterVoted(ctx context.Context, from uint64) ([]VotedEvent, error) {
	logs, err := v.filterLogs(ctx, "Voted", from)
	if err != nil {
		return nil, err
	}
	out := make([]VotedEvent, 0, len(logs))
	for _, l := range logs {
		ev := VotedEvent{Raw: l}
		if err := v.contract.UnpackLog(&ev, "Voted", l); err != nil {
			return nil, fmt.Errorf("unpack Voted at block %d: %w", l.BlockNumber, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
