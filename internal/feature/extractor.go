// Package feature turns packet records into fixed-length numeric vectors
// and standardizes the resulting matrix for clustering.
package feature

import (
	"net/netip"
	"strings"

	"PacketPrism/internal/model"
)

// Private address ranges used for the locality flags.
var privateRanges = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

// errorKeywords mark packets whose info text indicates a failure of some kind.
var errorKeywords = []string{"error", "reset", "refused", "failed", "timeout", "unreachable"}

// Extract maps every record to a model.NumFeatures-dimensional vector,
// preserving record order. It never fails: a missing or garbled field simply
// contributes its default value.
func Extract(records []model.PacketRecord) [][]float64 {
	matrix := make([][]float64, len(records))
	prevTime := 0.0
	for i, rec := range records {
		delta := 0.0
		if i > 0 {
			delta = rec.Time - prevTime
		}
		prevTime = rec.Time
		matrix[i] = extractOne(rec, delta)
	}
	return matrix
}

func extractOne(rec model.PacketRecord, timeDelta float64) []float64 {
	v := make([]float64, model.NumFeatures)
	info := rec.Info
	lower := strings.ToLower(info)

	v[model.FeatLength] = float64(rec.Length)
	v[model.FeatProtocol] = float64(model.ParseProtocol(rec.Protocol))
	v[model.FeatSrcLocal] = boolFeature(isPrivateAddress(rec.Source))
	v[model.FeatDstLocal] = boolFeature(isPrivateAddress(rec.Destination))
	v[model.FeatTimeDelta] = timeDelta
	v[model.FeatSrcPort] = float64(rec.SrcPort)
	v[model.FeatDstPort] = float64(rec.DstPort)
	v[model.FeatSYN] = boolFeature(strings.Contains(info, "[SYN]"))
	v[model.FeatFIN] = boolFeature(strings.Contains(info, "[FIN"))
	v[model.FeatRST] = boolFeature(strings.Contains(info, "[RST"))
	v[model.FeatError] = boolFeature(containsAny(lower, errorKeywords))
	v[model.FeatRetransmission] = boolFeature(strings.Contains(lower, "retransmission"))
	v[model.FeatDNSQuery] = boolFeature(strings.Contains(info, "Standard query") || strings.Contains(lower, "response"))
	v[model.FeatMalformed] = boolFeature(strings.Contains(lower, "malformed"))
	v[model.FeatSizeBucket] = float64(sizeBucket(rec.Length))

	return v
}

// sizeBucket discretizes the byte length into ordinal bands.
func sizeBucket(length int) int {
	switch {
	case length <= 128:
		return 0
	case length <= 512:
		return 1
	case length <= 1500:
		return 2
	default:
		return 3
	}
}

// isPrivateAddress reports whether addr parses as an IP inside one of the
// RFC 1918 ranges. Non-IP addresses (MACs in ARP rows, hostnames) are never
// local.
func isPrivateAddress(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	if ip.Is4In6() {
		ip = ip.Unmap()
	}
	for _, r := range privateRanges {
		if r.Contains(ip) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
