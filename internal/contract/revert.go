package contract

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrReverted matches any error reporting a mined transaction with a failed status.
var ErrReverted = errors.New("transaction reverted")

// RevertError is a mined transaction whose receipt status is failed.
type RevertError struct {
	TxHash common.Hash
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("transaction %s reverted", e.TxHash.Hex())
	}
	return fmt.Sprintf("transaction %s reverted: %s", e.TxHash.Hex(), e.Reason)
}

func (e *RevertError) Unwrap() error { return ErrReverted }

// RevertReason extracts a human-readable reason from a JSON-RPC error carrying revert data.
// Error(string) reverts yield their message, custom errors declared in the voting ABI yield the
// error name. A *RevertError yields its recovered reason.
func RevertReason(err error) (string, bool) {
	var re *RevertError
	if errors.As(err, &re) && re.Reason != "" {
		return re.Reason, true
	}
	var de rpc.DataError
	if !errors.As(err, &de) {
		return "", false
	}
	hexData, ok := de.ErrorData().(string)
	if !ok || hexData == "" {
		return "", false
	}
	return decodeRevert(hexData)
}

func decodeRevert(hexData string) (string, bool) {
	data, err := hexutil.Decode(hexData)
	if err != nil {
		return "", false
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason, true
	}
	if len(data) < 4 {
		return "", false
	}
	parsed, err := VotingMetaData.GetAbi()
	if err != nil {
		return "", false
	}
	var id [4]byte
	copy(id[:], data[:4])
	if e, err := parsed.ErrorByID(id); err == nil {
		return e.Name, true
	}
	return "", false
}
