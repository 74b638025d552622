// csvgen writes a synthetic capture summary table for exercising the
// analyzer: mostly routine web and DNS traffic on the local network plus a
// small burst of suspicious rows (port scans, oversized frames, resets).
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
)

var normalProtocols = []string{"TCP", "HTTP", "TLSv1.2", "DNS", "UDP"}

func main() {
	outputFile := flag.String("o", "sample.csv", "Output CSV file path")
	rowCount := flag.Int("c", 500, "Number of packet summaries to generate")
	anomalyRate := flag.Float64("a", 0.03, "Fraction of anomalous rows")
	seed := flag.Int64("seed", 42, "Random seed")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(*seed))
	w := csv.NewWriter(f)
	header := []string{"No.", "Time", "Source", "Destination", "Protocol", "Length", "Info", "Source Port", "Destination Port"}
	if err := w.Write(header); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	log.Printf("Generating %d packet summaries into %s...", *rowCount, *outputFile)

	now := 0.0
	for i := 1; i <= *rowCount; i++ {
		now += rng.Float64() * 0.05
		var row []string
		if rng.Float64() < *anomalyRate {
			row = anomalousRow(rng, i, now)
		} else {
			row = normalRow(rng, i, now)
		}
		if err := w.Write(row); err != nil {
			log.Fatalf("Failed to write row %d: %v", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Failed to flush output: %v", err)
	}
	log.Println("Done.")
}

func normalRow(rng *rand.Rand, num int, ts float64) []string {
	proto := normalProtocols[rng.Intn(len(normalProtocols))]
	src := fmt.Sprintf("192.168.1.%d", rng.Intn(50)+2)
	dst := fmt.Sprintf("10.0.0.%d", rng.Intn(20)+1)
	srcPort := rng.Intn(64000) + 1024
	dstPort := 443
	length := rng.Intn(1200) + 60
	info := fmt.Sprintf("%d → %d [ACK] Seq=%d Ack=%d", srcPort, dstPort, rng.Intn(100000), rng.Intn(100000))

	switch proto {
	case "DNS":
		dstPort = 53
		length = rng.Intn(120) + 60
		if rng.Intn(2) == 0 {
			info = fmt.Sprintf("Standard query 0x%04x A host%d.example.com", rng.Intn(0xffff), rng.Intn(30))
		} else {
			info = fmt.Sprintf("Standard query response 0x%04x A host%d.example.com", rng.Intn(0xffff), rng.Intn(30))
		}
	case "HTTP":
		dstPort = 80
		info = "GET /index.html HTTP/1.1"
	case "UDP":
		dstPort = rng.Intn(64000) + 1024
		info = fmt.Sprintf("%d → %d Len=%d", srcPort, dstPort, length-42)
	}

	return fields(num, ts, src, dst, proto, length, info, srcPort, dstPort)
}

func anomalousRow(rng *rand.Rand, num int, ts float64) []string {
	src := fmt.Sprintf("203.0.113.%d", rng.Intn(200)+1)
	dst := fmt.Sprintf("192.168.1.%d", rng.Intn(50)+2)

	switch rng.Intn(3) {
	case 0: // port scan probe
		dstPort := rng.Intn(1024)
		info := fmt.Sprintf("%d → %d [SYN] Seq=0 Len=0", 40000+rng.Intn(20000), dstPort)
		return fields(num, ts, src, dst, "TCP", 60, info, 40000+rng.Intn(20000), dstPort)
	case 1: // connection refused
		info := fmt.Sprintf("%d → %d [RST, ACK] Seq=1 Ack=1 Len=0", 22, 50000+rng.Intn(10000))
		return fields(num, ts, dst, src, "TCP", 54, info, 22, 50000+rng.Intn(10000))
	default: // oversized transfer
		length := 9000 + rng.Intn(56000)
		info := fmt.Sprintf("%d → %d [PSH, ACK] Len=%d", 50000+rng.Intn(10000), 445, length-54)
		return fields(num, ts, src, dst, "SMB", length, info, 50000+rng.Intn(10000), 445)
	}
}

func fields(num int, ts float64, src, dst, proto string, length int, info string, srcPort, dstPort int) []string {
	return []string{
		strconv.Itoa(num),
		strconv.FormatFloat(ts, 'f', 6, 64),
		src,
		dst,
		proto,
		strconv.Itoa(length),
		info,
		strconv.Itoa(srcPort),
		strconv.Itoa(dstPort),
	}
}
