// Package tls provides automatic TLS certificate management with cross-platform
// trust store installation, so WebSocket clients on the LAN can use wss://.
package tls

import (
	"net"
	"os"
	"strings"
)

// GetLANIPs returns all local IPv4 addresses (non-loopback).
func GetLANIPs() ([]string, error) {
	var ips []string

	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range interfaces {
		// Skip down or loopback interfaces
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if ip != nil && ip.To4() != nil && !ip.IsLoopback() {
				ips = append(ips, ip.String())
			}
		}
	}

	return ips, nil
}

// MDNSHostname returns the machine's name in the .local domain, as clients
// resolving the mDNS advertisement see it. It returns "" when the hostname
// is unavailable.
func MDNSHostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return ""
	}
	name = strings.TrimSuffix(strings.ToLower(name), ".")
	if !strings.HasSuffix(name, ".local") {
		name += ".local"
	}
	return name
}

// GetAllHosts returns localhost, the mDNS hostname and LAN IPs for
// certificate generation.
func GetAllHosts() ([]string, error) {
	hosts := []string{"localhost", "127.0.0.1"}
	if h := MDNSHostname(); h != "" {
		hosts = append(hosts, h)
	}

	lanIPs, err := GetLANIPs()
	if err != nil {
		return hosts, err
	}

	hosts = append(hosts, lanIPs...)
	return hosts, nil
}
