package wallet

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voting-monitor/internal/contract"
	"voting-monitor/internal/logger"
)

var (
	prefund = new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))

	// accepts any call
	stopAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	// PUSH1 0 PUSH1 0 REVERT
	revertAddr = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

type fixture struct {
	sim    *simulated.Backend
	client simulated.Client
	wallet *Wallet
}

func newFixture(t *testing.T, target common.Address, timeout time.Duration) *fixture {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)

	sim := simulated.NewBackend(types.GenesisAlloc{
		from:       {Balance: prefund},
		stopAddr:   {Code: []byte{0x00}, Balance: big.NewInt(0)},
		revertAddr: {Code: []byte{0x60, 0x00, 0x60, 0x00, 0xfd}, Balance: big.NewInt(0)},
	})
	t.Cleanup(func() { _ = sim.Close() })

	client := sim.Client()
	voting, err := contract.NewVoting(target, client)
	require.NoError(t, err)

	w, err := New(t.Context(), client, voting, key, timeout, logger.Nop())
	require.NoError(t, err)
	require.Equal(t, from, w.Account())

	return &fixture{sim: sim, client: client, wallet: w}
}

func TestWallet_SubmitAndConfirm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, stopAddr, 0)
	assert.Equal(t, DefaultConfirmTimeout, f.wallet.timeout)

	tx, err := f.wallet.Submit(t.Context(), contract.AddProposal("Plant trees"))
	require.NoError(t, err)
	assert.Equal(t, stopAddr, *tx.To())
	f.sim.Commit()

	require.NoError(t, f.wallet.Confirm(t.Context(), tx))

	// the next submission takes the next nonce
	tx2, err := f.wallet.Submit(t.Context(), contract.SetVote(1))
	require.NoError(t, err)
	assert.Equal(t, tx.Nonce()+1, tx2.Nonce())
}

func TestWallet_SubmitRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, revertAddr, time.Second)

	_, err := f.wallet.Submit(t.Context(), contract.AddVoter(stopAddr))
	require.ErrorContains(t, err, "submit addVoter")
}

func TestWallet_ConfirmReverted(t *testing.T) {
	t.Parallel()

	f := newFixture(t, revertAddr, 5*time.Second)
	ctx := t.Context()

	// Gas is fixed so the reverting call is broadcast instead of failing estimation.
	opts := *f.wallet.opts
	opts.Context = ctx
	opts.GasLimit = 100_000
	voting, err := contract.NewVoting(revertAddr, f.client)
	require.NoError(t, err)
	tx, err := voting.Transact(&opts, contract.AddProposal("x"))
	require.NoError(t, err)
	f.sim.Commit()

	err = f.wallet.Confirm(ctx, tx)
	require.ErrorIs(t, err, contract.ErrReverted)

	var re *contract.RevertError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, tx.Hash(), re.TxHash)
}

func TestWallet_ConfirmTimeout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, stopAddr, 100*time.Millisecond)

	tx, err := f.wallet.Submit(t.Context(), contract.AddProposal("never mined"))
	require.NoError(t, err)

	err = f.wallet.Confirm(t.Context(), tx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, contract.ErrReverted)

	require.ErrorContains(t, f.wallet.Confirm(t.Context(), nil), "nil transaction")
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	const hardhat0 = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	want := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	for _, give := range []string{hardhat0, "0x" + hardhat0, " " + hardhat0 + "\n"} {
		key, err := ParseKey(give)
		require.NoError(t, err)
		assert.Equal(t, want, crypto.PubkeyToAddress(key.PublicKey))
	}

	_, err := ParseKey("0x1234")
	require.ErrorContains(t, err, "parse private key")
}

func TestNew_NilKey(t *testing.T) {
	t.Parallel()

	_, err := New(t.Context(), nil, nil, nil, time.Second, logger.Nop())
	require.Error(t, err)
}

func TestDial_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	_, err := Dial(ctx, "http://127.0.0.1:1", logger.Nop())
	require.ErrorContains(t, err, "dial http://127.0.0.1:1")
}
