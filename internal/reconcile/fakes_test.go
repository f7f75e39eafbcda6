package reconcile

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"voting-monitor/internal/collector"
	"voting-monitor/internal/contract"
	"voting-monitor/internal/models"
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000aD")
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

var errTimeout = errors.New("context deadline exceeded")

// fakeReader is mutated by tests only between controller calls.
type fakeReader struct {
	phase     models.Phase
	phaseErr  error
	voters    map[common.Address]bool
	voterErr  error
	owner     common.Address
	proposals map[uint64]models.Proposal
	winner    uint64

	phaseReads    atomic.Int32
	proposalReads atomic.Int32
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		phase:  models.PhaseRegisteringVoters,
		voters: map[common.Address]bool{alice: true, owner: true},
		owner:  owner,
		proposals: map[uint64]models.Proposal{
			0: {ID: 0, Description: "GENESIS"},
			1: {ID: 1, Description: "Build a bridge", VoteCount: 2},
		},
		winner: 1,
	}
}

func (f *fakeReader) WorkflowStatus(context.Context) (models.Phase, error) {
	f.phaseReads.Add(1)
	if f.phaseErr != nil {
		return models.PhaseUnknown, f.phaseErr
	}
	return f.phase, nil
}

func (f *fakeReader) GetVoter(_ context.Context, _, addr common.Address) (models.VoterRecord, error) {
	if f.voterErr != nil {
		return models.VoterRecord{}, f.voterErr
	}
	return models.VoterRecord{IsRegistered: f.voters[addr]}, nil
}

func (f *fakeReader) Owner(context.Context) (common.Address, error) {
	return f.owner, nil
}

func (f *fakeReader) GetOneProposal(_ context.Context, from common.Address, id uint64) (models.Proposal, error) {
	f.proposalReads.Add(1)
	if !f.voters[from] {
		return models.Proposal{}, errors.New("execution reverted: You're not a voter")
	}
	p, ok := f.proposals[id]
	if !ok {
		return models.Proposal{}, errors.New("execution reverted: Proposal not found")
	}
	return p, nil
}

func (f *fakeReader) WinningProposalID(context.Context) (uint64, error) {
	return f.winner, nil
}

type fakeLogs struct {
	batch  collector.Batch
	ids    []uint64
	idsErr error

	collects atomic.Int32
	idReads  atomic.Int32
}

func newFakeLogs() *fakeLogs {
	return &fakeLogs{
		batch: collector.Batch{
			VoterRegistered: []contract.VoterRegisteredEvent{
				{VoterAddress: alice, Raw: types.Log{BlockNumber: 3}},
			},
			ProposalRegistered: []contract.ProposalRegisteredEvent{
				{ProposalId: big.NewInt(0), Raw: types.Log{BlockNumber: 5}},
				{ProposalId: big.NewInt(1), Raw: types.Log{BlockNumber: 6}},
			},
			StatusChanges: []contract.WorkflowStatusChangeEvent{
				{PreviousStatus: 0, NewStatus: 1, Raw: types.Log{BlockNumber: 4}},
			},
		},
		ids: []uint64{0, 1},
	}
}

func (f *fakeLogs) Collect(context.Context) collector.Batch {
	f.collects.Add(1)
	return f.batch
}

func (f *fakeLogs) ProposalIDs(context.Context) ([]uint64, error) {
	f.idReads.Add(1)
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	return f.ids, nil
}

type fakeWallet struct {
	account    common.Address
	submitErr  error
	confirmErr error

	mu       sync.Mutex
	submits  []contract.Call
	confirms int
}

func (f *fakeWallet) Account() common.Address { return f.account }

func (f *fakeWallet) Submit(_ context.Context, call contract.Call) (*types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, call)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(f.submits))}), nil
}

func (f *fakeWallet) Confirm(context.Context, *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirms++
	return f.confirmErr
}

func (f *fakeWallet) submitted() []contract.Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.Call{}, f.submits...)
}

type fakeArchive struct {
	mu    sync.Mutex
	saved [][]models.TimelineRecord
	err   error
}

func (f *fakeArchive) SaveTimeline(_ context.Context, _ uint64, records []models.TimelineRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, records)
	return f.err
}
