// Package pcapcsv converts raw capture files into the summary-table form the
// analyzer ingests. Each frame becomes one CSV row with the columns a
// protocol analyzer would export: number, relative time, endpoints, protocol
// label, length and a short info line.
package pcapcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Header is the column layout of the generated table.
var Header = []string{"No.", "Time", "Source", "Destination", "Protocol", "Length", "Info", "Source Port", "Destination Port"}

// wellKnownPorts maps transport ports to application protocol labels.
var wellKnownPorts = map[uint16]string{
	22:   "SSH",
	53:   "DNS",
	67:   "DHCP",
	68:   "DHCP",
	80:   "HTTP",
	123:  "NTP",
	443:  "TLSv1.2",
	445:  "SMB",
	5353: "MDNS",
}

// Row is one summarized frame.
type Row struct {
	Number      int
	Time        float64
	Source      string
	Destination string
	Protocol    string
	Length      int
	Info        string
	SrcPort     uint16
	DstPort     uint16
}

// Convert reads a pcap stream from r and writes the summary table to w.
// It returns the number of frames written. Frames that cannot be decoded
// still produce a row; only their protocol and info stay generic.
func Convert(r io.Reader, w io.Writer) (int, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("open capture: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, err
	}

	var (
		count     int
		firstSeen float64
	)
	for {
		data, ci, err := pr.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read frame %d: %w", count+1, err)
		}

		ts := float64(ci.Timestamp.UnixNano()) / 1e9
		if count == 0 {
			firstSeen = ts
		}
		count++

		row := summarize(data, pr.LinkType())
		row.Number = count
		row.Time = ts - firstSeen
		row.Length = ci.Length
		if err := cw.Write(row.fields()); err != nil {
			return count, err
		}
	}

	cw.Flush()
	return count, cw.Error()
}

func (r Row) fields() []string {
	srcPort, dstPort := "", ""
	if r.SrcPort != 0 {
		srcPort = strconv.Itoa(int(r.SrcPort))
	}
	if r.DstPort != 0 {
		dstPort = strconv.Itoa(int(r.DstPort))
	}
	return []string{
		strconv.Itoa(r.Number),
		strconv.FormatFloat(r.Time, 'f', 6, 64),
		r.Source,
		r.Destination,
		r.Protocol,
		strconv.Itoa(r.Length),
		r.Info,
		srcPort,
		dstPort,
	}
}

// summarize decodes one frame into endpoint, protocol and info fields.
func summarize(data []byte, linkType layers.LinkType) Row {
	row := Row{Protocol: "Unknown"}
	packet := gopacket.NewPacket(data, linkType, gopacket.Lazy)

	if net := packet.NetworkLayer(); net != nil {
		row.Source = net.NetworkFlow().Src().String()
		row.Destination = net.NetworkFlow().Dst().String()
	} else if eth := packet.Layer(layers.LayerTypeEthernet); eth != nil {
		e := eth.(*layers.Ethernet)
		row.Source = e.SrcMAC.String()
		row.Destination = e.DstMAC.String()
	}

	switch {
	case packet.Layer(layers.LayerTypeARP) != nil:
		arp := packet.Layer(layers.LayerTypeARP).(*layers.ARP)
		row.Protocol = "ARP"
		row.Info = arpInfo(arp)
		row.Source = formatMAC(arp.SourceHwAddress)
		row.Destination = formatMAC(arp.DstHwAddress)

	case packet.Layer(layers.LayerTypeTCP) != nil:
		tcp := packet.Layer(layers.LayerTypeTCP).(*layers.TCP)
		row.SrcPort = uint16(tcp.SrcPort)
		row.DstPort = uint16(tcp.DstPort)
		row.Protocol = applicationLabel("TCP", row.SrcPort, row.DstPort)
		row.Info = tcpInfo(tcp)

	case packet.Layer(layers.LayerTypeUDP) != nil:
		udp := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		row.SrcPort = uint16(udp.SrcPort)
		row.DstPort = uint16(udp.DstPort)
		row.Protocol = applicationLabel("UDP", row.SrcPort, row.DstPort)
		row.Info = fmt.Sprintf("%d → %d Len=%d", row.SrcPort, row.DstPort, len(udp.Payload))
		if dns := packet.Layer(layers.LayerTypeDNS); dns != nil {
			row.Protocol = "DNS"
			row.Info = dnsInfo(dns.(*layers.DNS))
		}

	case packet.Layer(layers.LayerTypeICMPv4) != nil:
		icmp := packet.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
		row.Protocol = "ICMP"
		row.Info = icmp.TypeCode.String()

	case packet.Layer(layers.LayerTypeICMPv6) != nil:
		icmp := packet.Layer(layers.LayerTypeICMPv6).(*layers.ICMPv6)
		row.Protocol = "ICMPv6"
		row.Info = icmp.TypeCode.String()

	case packet.Layer(layers.LayerTypeIGMP) != nil:
		row.Protocol = "IGMP"
		row.Info = "Membership report"
	}

	if packet.ErrorLayer() != nil && row.Info == "" {
		row.Info = "Malformed packet"
	}
	return row
}

// applicationLabel upgrades a transport label when either port belongs to a
// well-known application protocol.
func applicationLabel(transport string, srcPort, dstPort uint16) string {
	if label, ok := wellKnownPorts[dstPort]; ok {
		return label
	}
	if label, ok := wellKnownPorts[srcPort]; ok {
		return label
	}
	return transport
}

// tcpInfo mirrors the flag summary a protocol analyzer prints, e.g.
// "443 → 52100 [SYN, ACK] Seq=0 Ack=1".
func tcpInfo(tcp *layers.TCP) string {
	var flags []string
	if tcp.SYN {
		flags = append(flags, "SYN")
	}
	if tcp.FIN {
		flags = append(flags, "FIN")
	}
	if tcp.RST {
		flags = append(flags, "RST")
	}
	if tcp.PSH {
		flags = append(flags, "PSH")
	}
	if tcp.ACK {
		flags = append(flags, "ACK")
	}
	if tcp.URG {
		flags = append(flags, "URG")
	}
	flagText := ""
	if len(flags) > 0 {
		flagText = " [" + strings.Join(flags, ", ") + "]"
	}
	return fmt.Sprintf("%d → %d%s Seq=%d Ack=%d Len=%d",
		tcp.SrcPort, tcp.DstPort, flagText, tcp.Seq, tcp.Ack, len(tcp.Payload))
}

func dnsInfo(dns *layers.DNS) string {
	name := ""
	if len(dns.Questions) > 0 {
		name = string(dns.Questions[0].Name)
	}
	if dns.QR {
		return fmt.Sprintf("Standard query response 0x%04x %s", dns.ID, name)
	}
	return fmt.Sprintf("Standard query 0x%04x %s", dns.ID, name)
}

func arpInfo(arp *layers.ARP) string {
	spa := formatIP(arp.SourceProtAddress)
	tpa := formatIP(arp.DstProtAddress)
	if arp.Operation == layers.ARPReply {
		return fmt.Sprintf("%s is at %s", spa, formatMAC(arp.SourceHwAddress))
	}
	return fmt.Sprintf("Who has %s? Tell %s", tpa, spa)
}

func formatIP(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, ".")
}

func formatMAC(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, ":")
}
