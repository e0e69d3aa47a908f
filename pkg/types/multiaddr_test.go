package types

import (
	"testing"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPeer 合法的节点 ID
const testPeer = "QmXS4Kbc9HEeykHUTJCm2tNmqghbvWyYpUp6BtE5b6VrAU"

func TestParseMultiaddr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		// 有效的 multiaddr
		{"ipv4 tcp", "/ip4/1.2.3.4/tcp/8114", "/ip4/1.2.3.4/tcp/8114", false},
		{"ipv6 tcp", "/ip6/::1/tcp/8114", "/ip6/::1/tcp/8114", false},
		{"dns4", "/dns4/seed.example.com/tcp/8114", "/dns4/seed.example.com/tcp/8114", false},
		{"with peer id", "/ip4/1.2.3.4/tcp/8114/p2p/" + testPeer, "/ip4/1.2.3.4/tcp/8114/p2p/" + testPeer, false},
		{"peer id only", "/p2p/" + testPeer, "/p2p/" + testPeer, false},
		{"trailing slash", "/ip4/1.2.3.4/tcp/8114/", "/ip4/1.2.3.4/tcp/8114", false},
		{"surrounding space", "  /ip4/1.2.3.4/tcp/8114 ", "/ip4/1.2.3.4/tcp/8114", false},

		// 无效格式
		{"empty", "", "", true},
		{"host:port format", "1.2.3.4:8114", "", true},
		{"no leading slash", "ip4/1.2.3.4/tcp/8114", "", true},
		{"unknown protocol", "/unknown/1.2.3.4/tcp/8114", "", true},
		{"too short", "/ip4", "", true},
		{"bad ip", "/ip4/1.2.3/tcp/8114", "", true},
		{"bad peer id", "/ip4/1.2.3.4/tcp/8114/p2p/QmABC", "", true},
		{"transport first", "/tcp/8114", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseMultiaddr(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.String())
		})
	}
}

func TestMustParseMultiaddr(t *testing.T) {
	// 有效输入不 panic
	assert.NotPanics(t, func() {
		addr := MustParseMultiaddr("/ip4/1.2.3.4/tcp/8114")
		assert.Equal(t, "/ip4/1.2.3.4/tcp/8114", addr.String())
	})

	// 无效输入 panic
	assert.Panics(t, func() {
		MustParseMultiaddr("invalid")
	})
}

func TestMultiaddr_PeerID(t *testing.T) {
	tests := []struct {
		name string
		addr Multiaddr
		want string
	}{
		{"with suffix", "/ip4/1.2.3.4/tcp/8114/p2p/QmABC", "QmABC"},
		{"without suffix", "/ip4/1.2.3.4/tcp/8114", ""},
		{"bootnode", Mirana.Bootnodes()[0], "QmXS4Kbc9HEeykHUTJCm2tNmqghbvWyYpUp6BtE5b6VrAU"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.addr.PeerID())
		})
	}
}

func TestMultiaddr_WithoutPeerID(t *testing.T) {
	addr := MustParseMultiaddr("/ip4/1.2.3.4/tcp/8114/p2p/" + testPeer)
	assert.Equal(t, Multiaddr("/ip4/1.2.3.4/tcp/8114"), addr.WithoutPeerID())

	plain := MustParseMultiaddr("/ip4/1.2.3.4/tcp/8114")
	assert.Equal(t, plain, plain.WithoutPeerID())
}

func TestMultiaddr_HostPort(t *testing.T) {
	tests := []struct {
		addr Multiaddr
		host string
		port int
	}{
		{"/ip4/47.110.15.57/tcp/8114", "47.110.15.57", 8114},
		{"/ip6/::1/tcp/8115/p2p/QmABC", "::1", 8115},
		{"/dns4/seed.example.com/tcp/8114", "seed.example.com", 8114},
		{"/p2p/QmABC", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.addr.String(), func(t *testing.T) {
			assert.Equal(t, tt.host, tt.addr.Host())
			assert.Equal(t, tt.port, tt.addr.Port())
		})
	}

	assert.Equal(t, "47.110.15.57", Multiaddr("/ip4/47.110.15.57/tcp/8114").IP().String())
	assert.Nil(t, Multiaddr("/dns4/seed.example.com/tcp/8114").IP())
}

func TestMultiaddrFromBytes(t *testing.T) {
	raw := ma.StringCast("/ip4/10.0.0.1/tcp/8114").Bytes()

	addr, err := MultiaddrFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, Multiaddr("/ip4/10.0.0.1/tcp/8114"), addr)
	assert.Equal(t, "10.0.0.1", addr.Host())

	_, err = MultiaddrFromBytes(nil)
	assert.ErrorIs(t, err, ErrEmptyMultiaddr)

	_, err = MultiaddrFromBytes([]byte{0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrInvalidMultiaddr)
}
