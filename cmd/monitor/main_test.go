package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voting-monitor/internal/config"
	"voting-monitor/internal/network"
)

const manifest = `
networks:
  - network_id: 1337
    name: devnet
    contract_address: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
    rpc_url: http://devnet:8545
    start_block: 42
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "networks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))
	return path
}

func TestLoadRegistry(t *testing.T) {
	t.Parallel()

	start := uint64(7)
	registry, err := loadRegistry(config.Config{
		NetworkID:    network.HardhatID,
		NetworksFile: writeManifest(t),
		RPCURL:       "http://node:8545",
		StartBlock:   &start,
	})
	require.NoError(t, err)

	devnet, ok := registry.Lookup(1337)
	require.True(t, ok)
	assert.Equal(t, uint64(42), devnet.StartBlock)

	hardhat, ok := registry.Lookup(network.HardhatID)
	require.True(t, ok)
	assert.Equal(t, "http://node:8545", hardhat.RPCEndpoint)
	assert.Equal(t, uint64(7), hardhat.StartBlock)

	_, ok = registry.Lookup(network.SepoliaID)
	assert.False(t, ok, "sepolia needs an rpc endpoint")
}

func TestLoadRegistry_MissingFileIgnored(t *testing.T) {
	t.Parallel()

	registry, err := loadRegistry(config.Config{NetworksFile: filepath.Join(t.TempDir(), "absent.yaml")})
	require.NoError(t, err)
	assert.Len(t, registry.Bindings(), 2)
}

func TestLoadRegistry_BrokenManifest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "networks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("networks:\n  - name: nameless\n"), 0o600))

	_, err := loadRegistry(config.Config{NetworksFile: path})
	require.ErrorContains(t, err, "network id is required")
}

func TestNetworksCommand(t *testing.T) {
	t.Setenv("NETWORKS_FILE", writeManifest(t))
	t.Setenv("NETWORK_ID", "")
	t.Setenv("RPC_URL", "")
	t.Setenv("SEPOLIA_RPC_URL", "")
	t.Setenv("START_BLOCK", "")

	var out bytes.Buffer
	root := rootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"networks", "--network", "1337"})
	require.NoError(t, root.Execute())

	s := out.String()
	assert.Contains(t, s, "devnet")
	assert.Contains(t, s, "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	assert.Contains(t, s, "(unsupported: no rpc endpoint)")
	assert.Regexp(t, `\*\s+1337`, s)
}
