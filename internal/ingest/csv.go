// Package ingest parses tabular packet-summary exports into typed records.
// It is the only stage that touches the raw input; how the table was
// produced (Wireshark export, tshark, pcap2csv) is not its concern.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"PacketPrism/internal/model"
)

// Options controls ingestion behavior.
type Options struct {
	// MinPackets is the minimum number of valid rows required for a run.
	MinPackets int
}

// Stats reports what happened during ingestion. Skipped rows are
// informational; they never fail a run on their own.
type Stats struct {
	TotalRows   int
	SkippedRows int
}

// Logical columns of the packet summary table.
const (
	colNumber = iota
	colTime
	colSource
	colDestination
	colProtocol
	colLength
	colInfo
	colSrcPort
	colDstPort
	numColumns
)

// columnAliases matches header names, lower-cased, onto logical columns.
// It covers the minimal summary layout ("No.,Time,Source,...") and the
// fuller dissection-export layout ("frame.number,ip.src,..."). Columns not
// listed here are ignored.
var columnAliases = map[string]int{
	"no.":                 colNumber,
	"no":                  colNumber,
	"frame.number":        colNumber,
	"frame_number":        colNumber,
	"packet":              colNumber,
	"time":                colTime,
	"timestamp":           colTime,
	"frame.time_relative": colTime,
	"frame.time_epoch":    colTime,
	"source":              colSource,
	"src":                 colSource,
	"src_ip":              colSource,
	"ip.src":              colSource,
	"destination":         colDestination,
	"dst":                 colDestination,
	"dst_ip":              colDestination,
	"ip.dst":              colDestination,
	"protocol":            colProtocol,
	"proto":               colProtocol,
	"_ws.col.protocol":    colProtocol,
	"length":              colLength,
	"frame.len":           colLength,
	"info":                colInfo,
	"_ws.col.info":        colInfo,
	"source port":         colSrcPort,
	"src_port":            colSrcPort,
	"tcp.srcport":         colSrcPort,
	"udp.srcport":         colSrcPort,
	"destination port":    colDstPort,
	"dst_port":            colDstPort,
	"tcp.dstport":         colDstPort,
	"udp.dstport":         colDstPort,
}

// ReadFile opens path and ingests it with Read.
func ReadFile(path string, opts Options) ([]model.PacketRecord, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: cannot open %q: %v", model.ErrInput, path, err)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses a header-plus-rows CSV table into an ordered sequence of
// PacketRecord. Individual malformed rows are skipped and counted; the run
// fails only when the remaining rows are too few.
func Read(r io.Reader, opts Options) ([]model.PacketRecord, Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: cannot read header row: %v", model.ErrInput, err)
	}

	columns, err := mapHeader(header)
	if err != nil {
		return nil, Stats{}, err
	}

	var (
		records  []model.PacketRecord
		stats    Stats
		prevTime float64
	)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.TotalRows++
			stats.SkippedRows++
			continue
		}
		stats.TotalRows++

		rec, ok := parseRow(row, columns, len(records)+1, prevTime)
		if !ok {
			stats.SkippedRows++
			continue
		}
		prevTime = rec.Time
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, stats, fmt.Errorf("%w: no valid rows in input (%d rows skipped)",
			model.ErrInsufficientData, stats.SkippedRows)
	}
	if len(records) < opts.MinPackets {
		return nil, stats, fmt.Errorf("%w: %d valid rows, need at least %d (%d rows skipped)",
			model.ErrInsufficientData, len(records), opts.MinPackets, stats.SkippedRows)
	}

	return records, stats, nil
}

// mapHeader resolves the header row against the alias table. The input is
// rejected when too few of the expected columns are present to be a packet
// summary at all.
func mapHeader(header []string) (map[int]int, error) {
	columns := make(map[int]int, numColumns)
	for i, name := range header {
		logical, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, taken := columns[logical]; !taken {
			columns[logical] = i
		}
	}
	if len(columns) < 3 {
		return nil, fmt.Errorf("%w: header %v does not look like a packet summary table",
			model.ErrInput, header)
	}
	return columns, nil
}

// parseRow converts one data row into a record. Blank numeric fields fall
// back to defaults; fields that are present but unparseable make the row
// malformed, and ok is false.
func parseRow(row []string, columns map[int]int, ordinal int, prevTime float64) (model.PacketRecord, bool) {
	field := func(logical int) (string, bool) {
		idx, ok := columns[logical]
		if !ok || idx >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[idx]), true
	}

	// A row shorter than every mapped column carries no usable data.
	usable := false
	for _, idx := range columns {
		if idx < len(row) {
			usable = true
			break
		}
	}
	if !usable {
		return model.PacketRecord{}, false
	}

	rec := model.PacketRecord{
		Number:   ordinal,
		Time:     prevTime,
		Protocol: "Unknown",
	}

	if s, ok := field(colNumber); ok && s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return model.PacketRecord{}, false
		}
		rec.Number = n
	}
	if s, ok := field(colTime); ok && s != "" {
		t, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.PacketRecord{}, false
		}
		rec.Time = t
	}
	if s, ok := field(colLength); ok && s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return model.PacketRecord{}, false
		}
		rec.Length = n
	}
	if s, ok := field(colSource); ok {
		rec.Source = s
	}
	if s, ok := field(colDestination); ok {
		rec.Destination = s
	}
	if s, ok := field(colProtocol); ok && s != "" {
		rec.Protocol = s
	}
	if s, ok := field(colInfo); ok {
		rec.Info = s
	}
	if s, ok := field(colSrcPort); ok && s != "" {
		if p, err := strconv.ParseUint(s, 10, 16); err == nil {
			rec.SrcPort = uint16(p)
		}
	}
	if s, ok := field(colDstPort); ok && s != "" {
		if p, err := strconv.ParseUint(s, 10, 16); err == nil {
			rec.DstPort = uint16(p)
		}
	}

	return rec, true
}
