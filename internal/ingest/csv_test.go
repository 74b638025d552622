package ingest

import (
	"errors"
	"strings"
	"testing"

	"PacketPrism/internal/model"
)

const summaryHeader = `"No.","Time","Source","Destination","Protocol","Length","Info"`

func TestRead_SummaryLayout(t *testing.T) {
	input := summaryHeader + "\n" +
		`"1","0.000000","192.168.1.5","8.8.8.8","DNS","74","Standard query 0x1a2b A example.com"` + "\n" +
		`"2","0.001200","8.8.8.8","192.168.1.5","DNS","90","Standard query response 0x1a2b A example.com"` + "\n" +
		`"3","0.004000","192.168.1.5","93.184.216.34","TCP","66","52100 → 443 [SYN] Seq=0"` + "\n"

	records, stats, err := Read(strings.NewReader(input), Options{MinPackets: 1})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if stats.SkippedRows != 0 {
		t.Errorf("Expected 0 skipped rows, got %d", stats.SkippedRows)
	}

	first := records[0]
	if first.Number != 1 || first.Time != 0 || first.Protocol != "DNS" || first.Length != 74 {
		t.Errorf("First record parsed wrong: %+v", first)
	}
	if first.Source != "192.168.1.5" || first.Destination != "8.8.8.8" {
		t.Errorf("Endpoints parsed wrong: %+v", first)
	}
	if records[2].Info != "52100 → 443 [SYN] Seq=0" {
		t.Errorf("Info parsed wrong: %q", records[2].Info)
	}
}

func TestRead_DissectionLayout(t *testing.T) {
	input := "frame.number,frame.time_relative,ip.src,ip.dst,_ws.col.protocol,frame.len,_ws.col.info,tcp.srcport,tcp.dstport\n" +
		"1,0.0,10.0.0.1,10.0.0.2,TCP,60,52100 → 22 [SYN] Seq=0,52100,22\n" +
		"2,0.5,10.0.0.2,10.0.0.1,TCP,60,22 → 52100 [SYN; ACK],22,52100\n"

	records, _, err := Read(strings.NewReader(input), Options{MinPackets: 1})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].SrcPort != 52100 || records[0].DstPort != 22 {
		t.Errorf("Ports parsed wrong: %+v", records[0])
	}
}

func TestRead_QuotedCommaInInfo(t *testing.T) {
	input := summaryHeader + "\n" +
		`"1","0.1","10.0.0.1","10.0.0.2","TCP","66","443 → 52100 [FIN, ACK] Seq=10 Ack=20"` + "\n"

	records, _, err := Read(strings.NewReader(input), Options{MinPackets: 1})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if want := "443 → 52100 [FIN, ACK] Seq=10 Ack=20"; records[0].Info != want {
		t.Errorf("Expected info %q, got %q", want, records[0].Info)
	}
}

func TestRead_BlankFieldsGetDefaults(t *testing.T) {
	input := summaryHeader + "\n" +
		`"1","0.5","10.0.0.1","10.0.0.2","TCP","100","ok"` + "\n" +
		`"2","","10.0.0.1","10.0.0.2","","",""` + "\n"

	records, stats, err := Read(strings.NewReader(input), Options{MinPackets: 1})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(records) != 2 || stats.SkippedRows != 0 {
		t.Fatalf("Expected both rows kept, got %d records, %d skipped", len(records), stats.SkippedRows)
	}

	blank := records[1]
	if blank.Time != 0.5 {
		t.Errorf("Blank time should reuse the previous row's time, got %g", blank.Time)
	}
	if blank.Length != 0 {
		t.Errorf("Blank length should default to 0, got %d", blank.Length)
	}
	if blank.Protocol != "Unknown" {
		t.Errorf("Blank protocol should default to Unknown, got %q", blank.Protocol)
	}
}

func TestRead_MalformedRowsSkippedAndCounted(t *testing.T) {
	input := summaryHeader + "\n" +
		`"1","0.1","10.0.0.1","10.0.0.2","TCP","100","ok"` + "\n" +
		`"2","not-a-time","10.0.0.1","10.0.0.2","TCP","100","bad time"` + "\n" +
		`"3","0.2","10.0.0.1","10.0.0.2","TCP","twelve","bad length"` + "\n" +
		`"4","0.3","10.0.0.1","10.0.0.2","TCP","120","ok"` + "\n"

	records, stats, err := Read(strings.NewReader(input), Options{MinPackets: 1})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 valid records, got %d", len(records))
	}
	if stats.SkippedRows != 2 {
		t.Errorf("Expected 2 skipped rows, got %d", stats.SkippedRows)
	}
	if stats.TotalRows != 4 {
		t.Errorf("Expected 4 total rows, got %d", stats.TotalRows)
	}
	if records[1].Number != 4 {
		t.Errorf("Expected surviving rows to keep their own numbers, got %d", records[1].Number)
	}
}

func TestRead_HeaderNotASummaryTable(t *testing.T) {
	input := "name,age,city\nalice,30,berlin\n"
	_, _, err := Read(strings.NewReader(input), Options{MinPackets: 1})
	if !errors.Is(err, model.ErrInput) {
		t.Fatalf("Expected an input error for an unrecognized header, got %v", err)
	}
}

func TestRead_EmptyInput(t *testing.T) {
	_, _, err := Read(strings.NewReader(""), Options{MinPackets: 1})
	if !errors.Is(err, model.ErrInput) {
		t.Fatalf("Expected an input error for empty input, got %v", err)
	}
}

func TestRead_TooFewValidRows(t *testing.T) {
	input := summaryHeader + "\n" +
		`"1","0.1","10.0.0.1","10.0.0.2","TCP","100","ok"` + "\n"

	_, _, err := Read(strings.NewReader(input), Options{MinPackets: 50})
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Fatalf("Expected an insufficient-data error, got %v", err)
	}
	if !strings.Contains(err.Error(), "1 valid rows") || !strings.Contains(err.Error(), "50") {
		t.Errorf("Error should name the counts, got: %v", err)
	}
}

func TestRead_AllRowsMalformed(t *testing.T) {
	input := summaryHeader + "\n" +
		`"x","y","a","b","TCP","z","junk"` + "\n"

	_, stats, err := Read(strings.NewReader(input), Options{MinPackets: 1})
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Fatalf("Expected an insufficient-data error, got %v", err)
	}
	if stats.SkippedRows != 1 {
		t.Errorf("Expected the malformed row counted, got %d", stats.SkippedRows)
	}
}

func TestReadFile_MissingFile(t *testing.T) {
	_, _, err := ReadFile("/nonexistent/capture.csv", Options{MinPackets: 1})
	if !errors.Is(err, model.ErrInput) {
		t.Fatalf("Expected an input error, got %v", err)
	}
}
