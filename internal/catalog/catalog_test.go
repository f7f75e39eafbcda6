package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voting-monitor/internal/logger"
	"voting-monitor/internal/models"
)

var account = common.HexToAddress("0x0000000000000000000000000000000000000001")

type fakeReader struct {
	proposals map[uint64]models.Proposal
	failing   map[uint64]bool
	winner    uint64
	winnerErr error
}

func (f *fakeReader) GetOneProposal(_ context.Context, from common.Address, id uint64) (models.Proposal, error) {
	if from != account {
		return models.Proposal{}, errors.New("execution reverted: You're not a voter")
	}
	if f.failing[id] {
		return models.Proposal{}, fmt.Errorf("proposal %d unreadable", id)
	}
	p, ok := f.proposals[id]
	if !ok {
		return models.Proposal{}, errors.New("execution reverted: Proposal not found")
	}
	return p, nil
}

func (f *fakeReader) WinningProposalID(context.Context) (uint64, error) {
	return f.winner, f.winnerErr
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		proposals: map[uint64]models.Proposal{
			0: {ID: 0, Description: "GENESIS"},
			1: {ID: 1, Description: "Build a bridge", VoteCount: 3},
			2: {ID: 2, Description: "Plant trees", VoteCount: 5},
			3: {ID: 3, Description: "Open a library", VoteCount: 1},
		},
		failing: map[uint64]bool{},
		winner:  2,
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ids     []uint64
		failing []uint64
		want    []uint64
	}{
		{name: "all readable keep discovery order", ids: []uint64{0, 1, 2, 3}, want: []uint64{0, 1, 2, 3}},
		{name: "order follows ids, not vote count", ids: []uint64{3, 1, 2}, want: []uint64{3, 1, 2}},
		{name: "failed reads are dropped", ids: []uint64{0, 1, 2, 3}, failing: []uint64{1, 3}, want: []uint64{0, 2}},
		{name: "unknown id dropped", ids: []uint64{1, 9, 2}, want: []uint64{1, 2}},
		{name: "every read fails", ids: []uint64{1, 2}, failing: []uint64{1, 2}, want: []uint64{}},
		{name: "no ids", ids: nil, want: []uint64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newFakeReader()
			for _, id := range tt.failing {
				r.failing[id] = true
			}

			got := Build(t.Context(), tt.ids, r, account, logger.Nop())
			require.NotNil(t, got)

			ids := make([]uint64, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
				assert.NotContains(t, tt.failing, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBuild_ReadsAsAccount(t *testing.T) {
	t.Parallel()

	got := Build(t.Context(), []uint64{1, 2}, newFakeReader(), common.Address{}, logger.Nop())
	assert.Empty(t, got)
}

func TestWinner(t *testing.T) {
	t.Parallel()

	r := newFakeReader()
	w, err := Winner(t.Context(), r, account)
	require.NoError(t, err)
	assert.Equal(t, &models.Winner{ProposalID: 2, Description: "Plant trees"}, w)

	r.failing[2] = true
	_, err = Winner(t.Context(), r, account)
	require.ErrorContains(t, err, "read winning proposal 2")

	r.winnerErr = errors.New("timeout")
	_, err = Winner(t.Context(), r, account)
	require.ErrorContains(t, err, "read winning proposal id")
}
