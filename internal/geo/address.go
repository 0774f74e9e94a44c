// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package geo

import (
	"fmt"
	"net"
	"strings"
)

// NormalizeAddress turns the publicAddress Plex reports into a canonical IP
// string. It accepts bare IPv4/IPv6 addresses, bracketed IPv6 and
// host:port forms. Non-public addresses return ErrPrivateAddress.
func NormalizeAddress(address string) (string, error) {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
	// Drop an IPv6 zone, e.g. fe80::1%eth0.
	if i := strings.IndexByte(addr, '%'); i >= 0 {
		addr = addr[:i]
	}

	ip := net.ParseIP(addr)
	if ip == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if !IsPublicIP(ip) {
		return "", fmt.Errorf("%w: %s", ErrPrivateAddress, ip)
	}
	return ip.String(), nil
}

// IsPublicIP reports whether ip can be meaningfully geolocated.
func IsPublicIP(ip net.IP) bool {
	return !(ip.IsPrivate() ||
		ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified() ||
		isSharedAddressSpace(ip))
}

// isSharedAddressSpace matches 100.64.0.0/10 (carrier-grade NAT).
func isSharedAddressSpace(ip net.IP) bool {
	v4 := ip.To4()
	return v4 != nil && v4[0] == 100 && v4[1]&0xC0 == 64
}
