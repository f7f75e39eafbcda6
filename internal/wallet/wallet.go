// Package wallet is the signing side of the client: it dials the RPC endpoint, signs and submits
// voting contract calls with a local key, and waits for their receipts.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"voting-monitor/internal/contract"
	"voting-monitor/internal/logger"
)

const (
	// DialAttempts bounds the connection attempts made by Dial.
	DialAttempts = 5
	// DefaultConfirmTimeout applies when New is given a zero timeout.
	DefaultConfirmTimeout = 2 * time.Minute
)

// Client is the RPC surface the wallet needs. *ethclient.Client and the simulated backend's
// client both satisfy it.
type Client interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Dial connects to endpoint, retrying with backoff until the node answers a chain id request.
func Dial(ctx context.Context, endpoint string, log *logger.Logger) (*ethclient.Client, error) {
	log = log.Named("dial")
	client, err := retry.DoWithData(func() (*ethclient.Client, error) {
		c, err := ethclient.DialContext(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		if _, err := c.ChainID(ctx); err != nil {
			c.Close()
			return nil, err
		}
		return c, nil
	},
		retry.Context(ctx),
		retry.Attempts(DialAttempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			log.Warn().Err(err).Uint("attempt", attempt+1).Str("endpoint", endpoint).Msg("dial failed, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	log.Printf("Connected to %s", endpoint)
	return client, nil
}

// ParseKey decodes a hex private key, with or without 0x prefix.
func ParseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// Wallet signs voting contract calls with one key.
type Wallet struct {
	client  Client
	voting  *contract.Voting
	opts    *bind.TransactOpts
	timeout time.Duration
	log     *logger.Logger

	// serializes nonce assignment between concurrent submissions
	mu sync.Mutex
}

// New builds a wallet for key on the chain client is connected to.
func New(ctx context.Context, client Client, voting *contract.Voting, key *ecdsa.PrivateKey, timeout time.Duration, log *logger.Logger) (*Wallet, error) {
	if key == nil {
		return nil, errors.New("nil private key")
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read chain id: %w", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("keyed transactor: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	return &Wallet{
		client:  client,
		voting:  voting,
		opts:    opts,
		timeout: timeout,
		log:     log.Named("wallet"),
	}, nil
}

// Account returns the signing address.
func (w *Wallet) Account() common.Address {
	return w.opts.From
}

// Submit signs and sends call. Gas is estimated by the node, so a call the contract would revert
// fails here without being broadcast.
func (w *Wallet) Submit(ctx context.Context, call contract.Call) (*types.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	opts := *w.opts
	opts.Context = ctx
	tx, err := w.voting.Transact(&opts, call)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", call.Method, err)
	}
	w.log.Printf("Submitted %s tx=%s nonce=%d", call.Method, tx.Hash().Hex(), tx.Nonce())
	return tx, nil
}

// Confirm waits for tx to be mined. A failed receipt yields a *contract.RevertError carrying the
// revert reason when replaying the call recovers one.
func (w *Wallet) Confirm(ctx context.Context, tx *types.Transaction) error {
	if tx == nil {
		return errors.New("confirm: nil transaction")
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, w.client, tx)
	if err != nil {
		return fmt.Errorf("wait mined %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		w.log.Printf("Confirmed tx=%s block=%d gas=%d", tx.Hash().Hex(), receipt.BlockNumber, receipt.GasUsed)
		return nil
	}
	return &contract.RevertError{TxHash: tx.Hash(), Reason: w.replay(ctx, tx, receipt.BlockNumber)}
}

// replay re-executes tx as a call at its block to recover the revert reason.
func (w *Wallet) replay(ctx context.Context, tx *types.Transaction, block *big.Int) string {
	msg := ethereum.CallMsg{
		From:  w.opts.From,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err := w.client.CallContract(ctx, msg, block)
	if err == nil {
		return ""
	}
	reason, _ := contract.RevertReason(err)
	return reason
}
