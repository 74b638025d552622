package main

import (
	"flag"
	"log"
	"os"

	"PacketPrism/pkg/pcapcsv"
)

func main() {
	output := flag.String("output", "", "destination CSV path (default stdout)")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("Usage: pcap2csv [-output file.csv] <capture.pcap>")
	}

	in, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to open capture file: %v", err)
	}
	defer in.Close()

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	n, err := pcapcsv.Convert(in, out)
	if err != nil {
		log.Fatalf("Conversion failed after %d frames: %v", n, err)
	}
	log.Printf("Wrote %d packet summaries.", n)
}
