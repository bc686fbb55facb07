package network

import (
	stderrors "errors"
	"fmt"

	"nettune/internal/domain/errors"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

// NetlinkAdapter는 netlink 소켓으로 링크, 라우트, qdisc를 조회하고 MTU를 변경합니다
type NetlinkAdapter struct {
	logger *logrus.Logger
}

// NewNetlinkAdapter는 새로운 NetlinkAdapter를 생성합니다
func NewNetlinkAdapter(logger *logrus.Logger) *NetlinkAdapter {
	return &NetlinkAdapter{logger: logger}
}

// DefaultRouteInterface는 IPv4 기본 라우트의 출력 인터페이스를 반환합니다.
// 기본 라우트가 여러 개이면 metric이 가장 낮은 것을 선택합니다.
func (a *NetlinkAdapter) DefaultRouteInterface() (string, error) {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return "", errors.NewSystemError("라우트 테이블 조회 실패", err)
	}

	index, ok := selectDefaultRoute(routes)
	if !ok {
		return "", errors.NewNotFoundError("기본 라우트가 없음")
	}

	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return "", errors.NewSystemError(fmt.Sprintf("링크 인덱스 %d 조회 실패", index), err)
	}

	a.logger.WithFields(logrus.Fields{
		"interface": link.Attrs().Name,
		"index":     index,
	}).Debug("기본 라우트 인터페이스 감지")
	return link.Attrs().Name, nil
}

func selectDefaultRoute(routes []netlink.Route) (int, bool) {
	best := -1
	bestPriority := 0
	for _, r := range routes {
		if r.LinkIndex <= 0 || !isDefaultDst(r) {
			continue
		}
		if best == -1 || r.Priority < bestPriority {
			best = r.LinkIndex
			bestPriority = r.Priority
		}
	}
	return best, best != -1
}

func isDefaultDst(r netlink.Route) bool {
	if r.Dst == nil {
		return true
	}
	ones, _ := r.Dst.Mask.Size()
	return ones == 0 && r.Dst.IP.IsUnspecified()
}

// LinkMTU는 인터페이스의 현재 MTU를 반환합니다
func (a *NetlinkAdapter) LinkMTU(name string) (int, error) {
	link, err := a.linkByName(name)
	if err != nil {
		return 0, err
	}
	return link.Attrs().MTU, nil
}

// SetLinkMTU는 인터페이스 MTU를 변경합니다
func (a *NetlinkAdapter) SetLinkMTU(name string, mtu int) error {
	link, err := a.linkByName(name)
	if err != nil {
		return err
	}
	if err := netlink.LinkSetMTU(link, mtu); err != nil {
		return errors.NewMutationError(fmt.Sprintf("%s MTU %d 설정 실패", name, mtu), err)
	}
	return nil
}

// RootQdisc는 인터페이스의 루트 qdisc 종류를 반환합니다. 루트 qdisc가 없으면 빈 문자열입니다.
func (a *NetlinkAdapter) RootQdisc(name string) (string, error) {
	link, err := a.linkByName(name)
	if err != nil {
		return "", err
	}
	qdiscs, err := netlink.QdiscList(link)
	if err != nil {
		return "", errors.NewSystemError(fmt.Sprintf("%s qdisc 조회 실패", name), err)
	}
	for _, q := range qdiscs {
		if q.Attrs().Parent == netlink.HANDLE_ROOT {
			return q.Type(), nil
		}
	}
	return "", nil
}

func (a *NetlinkAdapter) linkByName(name string) (netlink.Link, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if stderrors.As(err, &notFound) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("인터페이스 %s 없음", name))
		}
		return nil, errors.NewSystemError(fmt.Sprintf("인터페이스 %s 조회 실패", name), err)
	}
	return link, nil
}
