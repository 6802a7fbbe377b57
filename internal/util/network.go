// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "net"

// privateIPBlocks contains CIDR ranges for private/reserved IP addresses
// per RFC 1918, RFC 4193, RFC 3927, and RFC 5737.
var privateIPBlocks []*net.IPNet

func init() {
	cidrs := []string{
		"10.0.0.0/8",      // RFC 1918 - private
		"172.16.0.0/12",   // RFC 1918 - private
		"192.168.0.0/16",  // RFC 1918 - private
		"127.0.0.0/8",     // RFC 1122 - loopback
		"169.254.0.0/16",  // RFC 3927 - link-local
		"0.0.0.0/8",       // RFC 1122 - "this" network
		"100.64.0.0/10",   // RFC 6598 - shared address (CGNAT)
		"192.0.0.0/24",    // RFC 6890 - IETF protocol assignments
		"192.0.2.0/24",    // RFC 5737 - documentation
		"198.18.0.0/15",   // RFC 2544 - benchmarking
		"198.51.100.0/24", // RFC 5737 - documentation
		"203.0.113.0/24",  // RFC 5737 - documentation
		"224.0.0.0/4",     // RFC 5771 - multicast
		"240.0.0.0/4",     // RFC 1112 - reserved
		"::1/128",   // IPv6 loopback
		"fe80::/10", // IPv6 link-local
		"fc00::/7",  // RFC 4193 - IPv6 unique local
		"::/128",    // IPv6 unspecified
	}
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err == nil {
			privateIPBlocks = append(privateIPBlocks, block)
		}
	}
}

// IsPrivateIP checks if an IP address falls within a private or reserved range.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true // Treat nil IP as private (deny by default)
	}
	for _, block := range privateIPBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// HostIP parses the IP of a "host:port" or bare host address, as found in
// http.Request.RemoteAddr. Returns nil when no IP can be parsed.
func HostIP(addr string) net.IP {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	return net.ParseIP(host)
}
