// Package network resolves the active network id to the voting contract address and RPC endpoint.
package network

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const (
	SepoliaID = 11155111
	HardhatID = 31337
)

// Binding ties a network id to the deployed voting contract. It is looked up, never mutated.
type Binding struct {
	NetworkID       uint64
	Name            string
	ContractAddress common.Address
	RPCEndpoint     string
	StartBlock      uint64
}

// Manifest is the YAML representation of network bindings.
type Manifest struct {
	Networks []Entry `yaml:"networks"`
}

// Entry is one manifest network.
type Entry struct {
	NetworkID       uint64 `yaml:"network_id"`
	Name            string `yaml:"name"`
	ContractAddress string `yaml:"contract_address"`
	RPCURL          string `yaml:"rpc_url"`
	StartBlock      uint64 `yaml:"start_block"`
}

// Validate ensures the entry can become a Binding.
func (e Entry) Validate() error {
	if e.NetworkID == 0 {
		return errors.New("network id is required")
	}
	if !common.IsHexAddress(e.ContractAddress) {
		return fmt.Errorf("invalid contract address %q", e.ContractAddress)
	}
	return nil
}

func (e Entry) binding() Binding {
	return Binding{
		NetworkID:       e.NetworkID,
		Name:            e.Name,
		ContractAddress: common.HexToAddress(e.ContractAddress),
		RPCEndpoint:     e.RPCURL,
		StartBlock:      e.StartBlock,
	}
}

// Registry holds the bindings by network id.
type Registry struct {
	bindings map[uint64]Binding
}

// NewRegistry creates a registry from bindings. Duplicate ids are overwritten by the later one.
func NewRegistry(bindings ...Binding) *Registry {
	r := &Registry{bindings: make(map[uint64]Binding, len(bindings))}
	for _, b := range bindings {
		r.bindings[b.NetworkID] = b
	}
	return r
}

// Defaults returns the deployments the client ships with. sepoliaRPC may be empty, in which case
// Sepolia resolves as unsupported until an endpoint is configured.
func Defaults(sepoliaRPC string) *Registry {
	return NewRegistry(
		Binding{
			NetworkID:       SepoliaID,
			Name:            "sepolia",
			ContractAddress: common.HexToAddress("0x77BE0BaAc99e2c40bb1FB7E271ACfd22B4E695a0"),
			RPCEndpoint:     sepoliaRPC,
			StartBlock:      8611631,
		},
		Binding{
			NetworkID:       HardhatID,
			Name:            "hardhat",
			ContractAddress: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
			RPCEndpoint:     "http://127.0.0.1:8545",
		},
	)
}

// LoadManifest reads a YAML manifest file.
func LoadManifest(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates manifest bytes.
func ParseManifest(data []byte) (*Registry, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	r := NewRegistry()
	for i, e := range m.Networks {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("network %d: %w", i, err)
		}
		r.bindings[e.NetworkID] = e.binding()
	}
	return r, nil
}

// Merge overwrites bindings in r with those in other.
func (r *Registry) Merge(other *Registry) {
	maps.Copy(r.bindings, other.bindings)
}

// Override replaces fields of the binding for id, if present. Empty/zero values are ignored.
func (r *Registry) Override(id uint64, rpcURL string, startBlock *uint64) {
	b, ok := r.bindings[id]
	if !ok {
		return
	}
	if rpcURL != "" {
		b.RPCEndpoint = rpcURL
	}
	if startBlock != nil {
		b.StartBlock = *startBlock
	}
	r.bindings[id] = b
}

// Lookup resolves id. A binding without an RPC endpoint counts as unsupported.
func (r *Registry) Lookup(id uint64) (Binding, bool) {
	b, ok := r.bindings[id]
	if !ok || strings.TrimSpace(b.RPCEndpoint) == "" {
		return Binding{}, false
	}
	return b, true
}

// Bindings returns all bindings ordered by network id.
func (r *Registry) Bindings() []Binding {
	ids := slices.Sorted(maps.Keys(r.bindings))
	out := make([]Binding, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.bindings[id])
	}
	return out
}
