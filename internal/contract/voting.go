// Package contract binds the deployed Voting contract: point-in-time reads, event decoding and
// transaction submission.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"voting-monitor/internal/models"
)

// Voting is a binding to one deployed Voting contract.
type Voting struct {
	address  common.Address
	abi      *abi.ABI
	backend  bind.ContractBackend
	contract *bind.BoundContract
}

// NewVoting binds the contract at address.
func NewVoting(address common.Address, backend bind.ContractBackend) (*Voting, error) {
	parsed, err := VotingMetaData.GetAbi()
	if err != nil {
		return nil, fmt.Errorf("parse voting abi: %w", err)
	}
	return &Voting{
		address:  address,
		abi:      parsed,
		backend:  backend,
		contract: bind.NewBoundContract(address, *parsed, backend, backend, backend),
	}, nil
}

// Address returns the bound contract address.
func (v *Voting) Address() common.Address {
	return v.address
}

func (v *Voting) call(ctx context.Context, from common.Address, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: from}
	if err := v.contract.Call(opts, &out, method, args...); err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("call %s: empty result", method)
	}
	return out, nil
}

// WorkflowStatus reads the current phase.
func (v *Voting) WorkflowStatus(ctx context.Context) (models.Phase, error) {
	out, err := v.call(ctx, common.Address{}, "workflowStatus")
	if err != nil {
		return models.PhaseUnknown, err
	}
	status := *abi.ConvertType(out[0], new(uint8)).(*uint8)
	return models.PhaseFromStatus(status)
}

type voterTuple struct {
	IsRegistered    bool
	HasVoted        bool
	VotedProposalId *big.Int
}

// GetVoter reads the voter record of addr. The contract only answers registered voters, so the
// call is made from the connected account.
func (v *Voting) GetVoter(ctx context.Context, from, addr common.Address) (models.VoterRecord, error) {
	out, err := v.call(ctx, from, "getVoter", addr)
	if err != nil {
		return models.VoterRecord{}, err
	}
	t := *abi.ConvertType(out[0], new(voterTuple)).(*voterTuple)
	id, err := toUint64(t.VotedProposalId)
	if err != nil {
		return models.VoterRecord{}, fmt.Errorf("getVoter: %w", err)
	}
	return models.VoterRecord{
		IsRegistered:    t.IsRegistered,
		HasVoted:        t.HasVoted,
		VotedProposalID: id,
	}, nil
}

// Owner reads the contract owner.
func (v *Voting) Owner(ctx context.Context) (common.Address, error) {
	out, err := v.call(ctx, common.Address{}, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

type proposalTuple struct {
	Description string
	VoteCount   *big.Int
}

// GetOneProposal reads proposal id as seen by from.
func (v *Voting) GetOneProposal(ctx context.Context, from common.Address, id uint64) (models.Proposal, error) {
	out, err := v.call(ctx, from, "getOneProposal", new(big.Int).SetUint64(id))
	if err != nil {
		return models.Proposal{}, err
	}
	t := *abi.ConvertType(out[0], new(proposalTuple)).(*proposalTuple)
	count, err := toUint64(t.VoteCount)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("getOneProposal %d: %w", id, err)
	}
	return models.Proposal{ID: id, Description: t.Description, VoteCount: count}, nil
}

// WinningProposalID reads the tallied winner id.
func (v *Voting) WinningProposalID(ctx context.Context) (uint64, error) {
	out, err := v.call(ctx, common.Address{}, "winningProposalID")
	if err != nil {
		return 0, err
	}
	return toUint64(*abi.ConvertType(out[0], new(*big.Int)).(**big.Int))
}

func toUint64(n *big.Int) (uint64, error) {
	if n == nil {
		return 0, errors.New("nil integer")
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("integer %s out of range", n)
	}
	return n.Uint64(), nil
}

// PhaseTransitions are the argument-less phase-transition methods, in workflow order.
var PhaseTransitions = []string{
	"startProposalsRegistering",
	"endProposalsRegistering",
	"startVotingSession",
	"endVotingSession",
	"tallyVotes",
}

// Call is a mutating contract invocation.
type Call struct {
	Method string
	Args   []interface{}
}

func AddVoter(addr common.Address) Call {
	return Call{Method: "addVoter", Args: []interface{}{addr}}
}

func AddProposal(desc string) Call {
	return Call{Method: "addProposal", Args: []interface{}{desc}}
}

func SetVote(id uint64) Call {
	return Call{Method: "setVote", Args: []interface{}{new(big.Int).SetUint64(id)}}
}

// PhaseTransition returns the call for one of PhaseTransitions.
func PhaseTransition(name string) (Call, error) {
	if !slices.Contains(PhaseTransitions, name) {
		return Call{}, fmt.Errorf("unknown phase transition %q", name)
	}
	return Call{Method: name}, nil
}

// Transact submits call signed by opts.
func (v *Voting) Transact(opts *bind.TransactOpts, call Call) (*types.Transaction, error) {
	if _, ok := v.abi.Methods[call.Method]; !ok {
		return nil, fmt.Errorf("method %q not in voting abi", call.Method)
	}
	return v.contract.Transact(opts, call.Method, call.Args...)
}

func (v *Voting) filterLogs(ctx context.Context, event string, from uint64) ([]types.Log, error) {
	ev, ok := v.abi.Events[event]
	if !ok {
		return nil, fmt.Errorf("event %q not in voting abi", event)
	}
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		Addresses: []common.Address{v.address},
		Topics:    [][]common.Hash{{ev.ID}},
	}
	logs, err := v.backend.FilterLogs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("filter %s logs: %w", event, err)
	}
	return logs, nil
}
