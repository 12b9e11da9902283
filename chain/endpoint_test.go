package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Endpoint_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    Endpoint
		wantErr string
	}{
		{
			name: "valid",
			give: Endpoint{ChainID: 137, RPCURL: "https://polygon-rpc.com"},
		},
		{
			name:    "missing chain id",
			give:    Endpoint{RPCURL: "https://polygon-rpc.com"},
			wantErr: "chain id is required",
		},
		{
			name:    "missing rpc url",
			give:    Endpoint{ChainID: 137},
			wantErr: "rpc url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.give.Validate()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func Test_Endpoint_Name(t *testing.T) {
	t.Parallel()

	explicit := Endpoint{ChainID: 137, DisplayName: "Polygon Mainnet"}
	assert.Equal(t, "Polygon Mainnet", explicit.Name())

	// Known chain ids resolve to their canonical chain-selectors name.
	known := Endpoint{ChainID: 1}
	assert.NotEqual(t, "chain-1", known.Name())
	assert.NotEmpty(t, known.Name())

	unknown := Endpoint{ChainID: 987654321999}
	assert.Equal(t, "chain-987654321999", unknown.Name())
}

func Test_Endpoint_HexChainID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0x89", Endpoint{ChainID: 137}.HexChainID())
	assert.Equal(t, "0x1", Endpoint{ChainID: 1}.HexChainID())
}
