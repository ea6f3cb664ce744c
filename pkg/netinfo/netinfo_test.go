package netinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubnetPrefix(t *testing.T) {
	tests := []struct {
		ip   string
		want string
	}{
		{"192.168.1.42", "192.168.1"},
		{"10.0.0.1", "10.0.0"},
		{"not-an-ip", "not-an-ip"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SubnetPrefix(tt.ip), "ip %q", tt.ip)
	}
}

func TestCIDR(t *testing.T) {
	assert.Equal(t, "192.168.1.0/24", CIDR("192.168.1.42"))
	assert.Equal(t, "10.20.30.0/24", CIDR("10.20.30.40"))
}
