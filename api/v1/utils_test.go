package v1

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIPVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain ipv4", raw: "79.144.65.173", want: "79.144.65.173"},
		{name: "ipv4 with spaces", raw: " 79.144.65.173 ", want: "79.144.65.173"},
		{name: "quoted ipv4", raw: "\"79.144.65.173\"", want: "79.144.65.173"},
		{name: "ipv4 with port", raw: "79.144.65.173:443", want: "79.144.65.173"},
		{name: "quoted forwarded ipv4", raw: "\"79.144.65.173:1234\"", want: "79.144.65.173"},
		{name: "ipv6 literal", raw: "2001:db8::1", want: "2001:db8::1"},
		{name: "ipv6 in brackets", raw: "[2001:db8::1]", want: "2001:db8::1"},
		{name: "ipv6 with port", raw: "[2001:db8::1]:8443", want: "2001:db8::1"},
		{name: "ipv6 with zone", raw: "fe80::1%eth0", want: "fe80::1"},
		{name: "ipv4 mapped ipv6", raw: "::ffff:203.0.113.9", want: "203.0.113.9"},
		{name: "invalid value", raw: "not-an-ip", want: ""},
		{name: "empty", raw: "   ", want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, parsed := normalizeIP(tc.raw)
			assert.Equal(t, tc.want, got)

			if tc.want == "" {
				assert.Nil(t, parsed)
				return
			}

			require.NotNil(t, parsed)
			assert.Equal(t, tc.want, parsed.String())
		})
	}
}

func TestSelectPreferredIP(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{
			name:   "prefers public ipv4 over ipv6",
			values: []string{"2001:db8::1", "203.0.113.20"},
			want:   "203.0.113.20",
		},
		{
			name:   "skips private ipv4 addresses",
			values: []string{"10.0.0.5", "192.168.1.10", "198.51.100.7"},
			want:   "198.51.100.7",
		},
		{
			name:   "falls back to public ipv6",
			values: []string{"10.0.0.5", "2001:db8::2"},
			want:   "2001:db8::2",
		},
		{
			name:   "skips loopback and link-local",
			values: []string{"127.0.0.1", "fe80::1", "::1"},
			want:   "",
		},
		{
			name:   "ignores garbage entries",
			values: []string{"not-an-ip", "", "203.0.113.99"},
			want:   "203.0.113.99",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, selectPreferredIP(tc.values))
		})
	}
}

func TestParseForwardedHeader(t *testing.T) {
	assert.Equal(t,
		[]string{"203.0.113.60"},
		parseForwardedHeader("for=203.0.113.60;proto=https;by=203.0.113.43"))

	assert.Equal(t,
		[]string{"192.0.2.60", "198.51.100.17"},
		parseForwardedHeader("for=192.0.2.60, for=198.51.100.17"))

	assert.Empty(t, parseForwardedHeader("proto=https"))
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, isPrivateIP(net.ParseIP("10.1.2.3")))
	assert.True(t, isPrivateIP(net.ParseIP("172.20.0.1")))
	assert.True(t, isPrivateIP(net.ParseIP("192.168.0.1")))
	assert.True(t, isPrivateIP(net.ParseIP("127.0.0.1")))
	assert.True(t, isPrivateIP(net.ParseIP("fe80::1")))
	assert.True(t, isPrivateIP(net.ParseIP("::1")))

	assert.False(t, isPrivateIP(net.ParseIP("203.0.113.5")))
	assert.False(t, isPrivateIP(net.ParseIP("2001:db8::1")))
	assert.False(t, isPrivateIP(nil))
}
