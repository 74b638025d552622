package model

import "strings"

// Protocol is the closed enumeration of protocol labels the extractor
// understands. Unrecognized labels map to ProtocolUnknown rather than to an
// open-ended numeric default, so the unknown case is first-class.
type Protocol uint8

const (
	ProtocolUnknown Protocol = iota
	ProtocolTCP
	ProtocolUDP
	ProtocolICMP
	ProtocolHTTP
	ProtocolHTTPS
	ProtocolDNS
	ProtocolTLS
	ProtocolARP
	ProtocolSSH
	ProtocolICMPv6
	ProtocolIGMP
	ProtocolDHCP
	ProtocolNTP
	ProtocolQUIC
	ProtocolSMB
)

// protocolAliases folds the label variants seen in capture-tool exports onto
// the enumeration. Keys are upper-case.
var protocolAliases = map[string]Protocol{
	"TCP":     ProtocolTCP,
	"UDP":     ProtocolUDP,
	"ICMP":    ProtocolICMP,
	"HTTP":    ProtocolHTTP,
	"HTTP/2":  ProtocolHTTP,
	"HTTPS":   ProtocolHTTPS,
	"DNS":     ProtocolDNS,
	"MDNS":    ProtocolDNS,
	"TLS":     ProtocolTLS,
	"TLSV1":   ProtocolTLS,
	"TLSV1.2": ProtocolTLS,
	"TLSV1.3": ProtocolTLS,
	"SSL":     ProtocolTLS,
	"SSLV3":   ProtocolTLS,
	"ARP":     ProtocolARP,
	"SSH":     ProtocolSSH,
	"SSHV2":   ProtocolSSH,
	"ICMPV6":  ProtocolICMPv6,
	"IGMP":    ProtocolIGMP,
	"IGMPV2":  ProtocolIGMP,
	"IGMPV3":  ProtocolIGMP,
	"DHCP":    ProtocolDHCP,
	"DHCPV6":  ProtocolDHCP,
	"BOOTP":   ProtocolDHCP,
	"NTP":     ProtocolNTP,
	"QUIC":    ProtocolQUIC,
	"SMB":     ProtocolSMB,
	"SMB2":    ProtocolSMB,
}

// ParseProtocol maps a capture-tool protocol label onto the enumeration,
// case-insensitively. Anything not in the alias table is ProtocolUnknown.
func ParseProtocol(label string) Protocol {
	if p, ok := protocolAliases[strings.ToUpper(strings.TrimSpace(label))]; ok {
		return p
	}
	return ProtocolUnknown
}

var protocolNames = map[Protocol]string{
	ProtocolUnknown: "Unknown",
	ProtocolTCP:     "TCP",
	ProtocolUDP:     "UDP",
	ProtocolICMP:    "ICMP",
	ProtocolHTTP:    "HTTP",
	ProtocolHTTPS:   "HTTPS",
	ProtocolDNS:     "DNS",
	ProtocolTLS:     "TLS",
	ProtocolARP:     "ARP",
	ProtocolSSH:     "SSH",
	ProtocolICMPv6:  "ICMPv6",
	ProtocolIGMP:    "IGMP",
	ProtocolDHCP:    "DHCP",
	ProtocolNTP:     "NTP",
	ProtocolQUIC:    "QUIC",
	ProtocolSMB:     "SMB",
}

func (p Protocol) String() string {
	if name, ok := protocolNames[p]; ok {
		return name
	}
	return "Unknown"
}
