package network

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_Lookup(t *testing.T) {
	t.Parallel()

	r := Defaults("")

	b, ok := r.Lookup(HardhatID)
	require.True(t, ok)
	assert.Equal(t, common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), b.ContractAddress)
	assert.Equal(t, uint64(0), b.StartBlock)

	_, ok = r.Lookup(SepoliaID)
	assert.False(t, ok, "sepolia without an endpoint must be unsupported")

	_, ok = r.Lookup(1)
	assert.False(t, ok)

	r = Defaults("https://sepolia.example")
	b, ok = r.Lookup(SepoliaID)
	require.True(t, ok)
	assert.Equal(t, uint64(8611631), b.StartBlock)
}

func TestParseManifest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		wantErr string
	}{
		{
			name: "valid",
			give: `
networks:
  - network_id: 31337
    name: anvil
    contract_address: "0x000000000000000000000000000000000000dEaD"
    rpc_url: http://localhost:9545
    start_block: 12
`,
		},
		{
			name: "missing id",
			give: `
networks:
  - contract_address: "0x000000000000000000000000000000000000dEaD"
`,
			wantErr: "network id is required",
		},
		{
			name: "bad address",
			give: `
networks:
  - network_id: 5
    contract_address: "0x1234"
`,
			wantErr: "invalid contract address",
		},
		{
			name:    "not yaml",
			give:    "networks: [",
			wantErr: "decode manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := ParseManifest([]byte(tt.give))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			b, ok := r.Lookup(31337)
			require.True(t, ok)
			assert.Equal(t, "anvil", b.Name)
			assert.Equal(t, uint64(12), b.StartBlock)
		})
	}
}

func TestRegistry_MergeAndOverride(t *testing.T) {
	t.Parallel()

	r := Defaults("")
	manifest, err := ParseManifest([]byte(`
networks:
  - network_id: 31337
    contract_address: "0x000000000000000000000000000000000000dEaD"
    rpc_url: http://localhost:9545
`))
	require.NoError(t, err)
	r.Merge(manifest)

	start := uint64(99)
	r.Override(31337, "http://override:8545", &start)
	r.Override(424242, "http://ignored", nil)

	b, ok := r.Lookup(31337)
	require.True(t, ok)
	assert.Equal(t, common.HexToAddress("0x000000000000000000000000000000000000dEaD"), b.ContractAddress)
	assert.Equal(t, "http://override:8545", b.RPCEndpoint)
	assert.Equal(t, uint64(99), b.StartBlock)

	ids := []uint64{}
	for _, b := range r.Bindings() {
		ids = append(ids, b.NetworkID)
	}
	assert.Equal(t, []uint64{HardhatID, SepoliaID}, ids)
}
