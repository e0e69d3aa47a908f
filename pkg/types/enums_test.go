package types

import "testing"

func TestNodeType(t *testing.T) {
	tests := []struct {
		nt   NodeType
		want string
		code int
	}{
		{NodeUnknown, "unknown", 0},
		{NodeFull, "full", 1},
		{NodeLight, "light", 2},
		{NodeType(99), "unknown", 99},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.nt.String(); got != tt.want {
				t.Errorf("NodeType(%d).String() = %q, want %q", tt.nt, got, tt.want)
			}
			if int(tt.nt) != tt.code {
				t.Errorf("NodeType(%d) code = %d, want %d", tt.nt, int(tt.nt), tt.code)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{DirUnknown, "unknown"},
		{DirInbound, "inbound"},
		{DirOutbound, "outbound"},
		{Direction(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.d.String(); got != tt.want {
				t.Errorf("Direction(%d).String() = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestChannel(t *testing.T) {
	tests := []struct {
		p    ProtocolID
		want Channel
		name string
	}{
		{ProtocolDiscovery, ChannelDiscovery, "discovery"},
		{ProtocolIdentify, ChannelIdentify, "identify"},
		{ProtocolSync, ChannelSync, "sync"},
		{ProtocolID("/ckb/relay"), ChannelUnknown, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChannelOf(tt.p)
			if got != tt.want {
				t.Errorf("ChannelOf(%q) = %v, want %v", tt.p, got, tt.want)
			}
			if got.String() != tt.name {
				t.Errorf("Channel.String() = %q, want %q", got.String(), tt.name)
			}
		})
	}
}
