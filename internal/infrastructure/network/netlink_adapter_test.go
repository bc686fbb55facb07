package network

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vishvananda/netlink"
)

func TestSelectDefaultRoute(t *testing.T) {
	_, lan, _ := net.ParseCIDR("10.0.0.0/24")
	_, zero, _ := net.ParseCIDR("0.0.0.0/0")

	tests := []struct {
		name      string
		routes    []netlink.Route
		wantIndex int
		wantOK    bool
	}{
		{
			name:   "라우트 없음",
			routes: nil,
		},
		{
			name:   "기본 라우트 없음",
			routes: []netlink.Route{{LinkIndex: 2, Dst: lan}},
		},
		{
			name:      "Dst가 nil인 기본 라우트",
			routes:    []netlink.Route{{LinkIndex: 2, Dst: lan}, {LinkIndex: 3}},
			wantIndex: 3,
			wantOK:    true,
		},
		{
			name:      "0.0.0.0/0 기본 라우트",
			routes:    []netlink.Route{{LinkIndex: 4, Dst: zero}},
			wantIndex: 4,
			wantOK:    true,
		},
		{
			name: "metric이 가장 낮은 라우트 선택",
			routes: []netlink.Route{
				{LinkIndex: 2, Priority: 600},
				{LinkIndex: 5, Priority: 100},
				{LinkIndex: 7, Priority: 300},
			},
			wantIndex: 5,
			wantOK:    true,
		},
		{
			name:   "링크 인덱스가 없는 라우트 무시",
			routes: []netlink.Route{{LinkIndex: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, ok := selectDefaultRoute(tt.routes)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIndex, index)
			}
		})
	}
}
