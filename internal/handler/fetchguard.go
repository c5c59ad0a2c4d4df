package handler

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

var errBlockedAddress = errors.New("address is not publicly routable")

// fetchClient returns the client used by upload-by-link.  The guard runs
// in the dialer's Control hook, after DNS resolution and on every dial,
// so redirects and rebinding hostnames are checked against the address
// actually connected to.
func fetchClient(timeout time.Duration, allowPrivate bool) *http.Client {
	if allowPrivate {
		return &http.Client{Timeout: timeout}
	}
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   refusePrivateDial,
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = nil
	tr.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: tr}
}

func refusePrivateDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", errBlockedAddress, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || !publicIP(ip) {
		return fmt.Errorf("%w: %s", errBlockedAddress, host)
	}
	return nil
}

// publicIP reports whether ip is a unicast address outside the loopback,
// private, shared (100.64/10) and link-local ranges.
func publicIP(ip net.IP) bool {
	switch {
	case ip.IsUnspecified(), ip.IsLoopback(), ip.IsPrivate(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	}
	if v4 := ip.To4(); v4 != nil {
		if v4[0] == 100 && v4[1]&0xc0 == 64 {
			return false
		}
		if v4.Equal(net.IPv4bcast) || v4[0] == 0 {
			return false
		}
	}
	return true
}
