//go:build unix

package dnsbench

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResolvConf(t *testing.T) {
	tests := []struct {
		name string
		conf string
		want string
	}{
		{
			name: "first name server",
			conf: "# generated\nsearch lan\nnameserver 10.0.0.1\nnameserver 10.0.0.2\n",
			want: "10.0.0.1",
		},
		{
			name: "commented out",
			conf: ";nameserver 10.0.0.1\n  nameserver\t192.168.1.1 \n",
			want: "192.168.1.1",
		},
		{
			name: "no name server",
			conf: "options ndots:5\n",
			want: defaultNameServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseResolvConf(strings.NewReader(tt.conf)))
		})
	}
}
