package timeline

import "math/big"

// bigToUint saturates ids that do not fit; the contract never issues them.
func bigToUint(n *big.Int) uint64 {
	switch {
	case n == nil || n.Sign() < 0:
		return 0
	case !n.IsUint64():
		return ^uint64(0)
	default:
		return n.Uint64()
	}
}
