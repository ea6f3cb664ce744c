package scan

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIPsFromCIDR(t *testing.T) {
	tests := []struct {
		name    string
		cidr    string
		want    int
		first   string
		last    string
		wantErr bool
	}{
		{
			name:  "full /24",
			cidr:  "192.168.1.0/24",
			want:  254,
			first: "192.168.1.1",
			last:  "192.168.1.254",
		},
		{
			name:  "small /30",
			cidr:  "10.0.0.0/30",
			want:  2,
			first: "10.0.0.1",
			last:  "10.0.0.2",
		},
		{
			name:  "single /32",
			cidr:  "172.16.0.5/32",
			want:  1,
			first: "172.16.0.5",
			last:  "172.16.0.5",
		},
		{
			name:    "invalid",
			cidr:    "not-a-cidr",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ips, err := GenerateIPsFromCIDR(tt.cidr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Len(t, ips, tt.want)
			assert.Equal(t, tt.first, ips[0].String())
			assert.Equal(t, tt.last, ips[len(ips)-1].String())
		})
	}
}

func TestInc(t *testing.T) {
	ip := net.ParseIP("192.168.1.255").To4()
	Inc(ip)
	assert.Equal(t, "192.168.2.0", ip.String())
}
