// Package main provides the fieldscope inspection tool. It loads message
// type layouts from a protobuf descriptor set, lists or resolves field
// paths, and replays files of raw message records through the extraction
// engine, exporting the sampled time series to CSV, sqlite or PNG plots.
package main

import (
	"encoding/binary"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/fieldscope/internal/extract"
	"github.com/banshee-data/fieldscope/internal/monitor"
	"github.com/banshee-data/fieldscope/internal/monitoring"
	"github.com/banshee-data/fieldscope/internal/schema"
	"github.com/banshee-data/fieldscope/internal/schema/protoload"
	"github.com/banshee-data/fieldscope/internal/track"
	sqlitestore "github.com/banshee-data/fieldscope/internal/track/storage/sqlite"
)

var (
	descriptorFile = flag.String("descriptors", "", "Path to a serialized FileDescriptorSet (protoc --descriptor_set_out)")
	typeName       = flag.String("type", "", "Fully-qualified message type name")
	topic          = flag.String("topic", "", "Topic name used in canonical source ids (defaults to the type name)")

	listFields  = flag.Bool("list", false, "List every field path in the type")
	numericOnly = flag.Bool("numeric", false, "With -list, show only numeric fields")
	resolvePath = flag.String("resolve", "", "Resolve a slash-separated field path and print its layout")

	replayFile = flag.String("replay", "", "Replay a file of length-prefixed raw records")
	fieldSpec  = flag.String("fields", "", "Comma-separated slash paths to track during replay")
	csvDir     = flag.String("csv", "", "Directory for per-field CSV export after replay")
	dbPath     = flag.String("db", "", "Sqlite database to record replayed samples into")
	plotDir    = flag.String("plots", "", "Directory for per-field PNG plots after replay")

	bufferCap = flag.Int("buffer", 0, "Initial per-field sample buffer capacity (0 = default)")
	debug     = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	monitoring.Debug = *debug

	if *descriptorFile == "" || *typeName == "" {
		fmt.Fprintln(os.Stderr, "usage: fieldscope -descriptors types.pb -type pkg.Message [-list|-resolve path|-replay records.bin]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	registry := protoload.NewRegistry()
	if err := registry.AddDescriptorFile(*descriptorFile); err != nil {
		log.Fatalf("loading descriptors: %v", err)
	}
	handle, err := registry.Load(*typeName)
	if err != nil {
		log.Fatalf("loading type: %v", err)
	}
	defer handle.Release()

	switch {
	case *listFields:
		runList(handle)
	case *resolvePath != "":
		runResolve(handle)
	case *replayFile != "":
		if err := runReplay(handle); err != nil {
			log.Fatalf("replay: %v", err)
		}
	default:
		runList(handle)
	}
}

// runList prints every member path of the type, one per line, with its tag
// and byte offset within the enclosing record.
func runList(handle *protoload.Handle) {
	for c := schema.Begin(handle.Schema()); !c.Done(); c.Advance() {
		m := c.Member()
		if *numericOnly && !extract.IsNumeric(m.Tag) {
			continue
		}
		fmt.Printf("%-50s %-8s @%d\n", schema.FormatPath(c.Path()), m.Tag, m.Offset)
	}
	if off, ok := handle.HeaderOffset(); ok {
		fmt.Printf("\nheader timestamp at byte offset %d\n", off)
	}
}

func runResolve(handle *protoload.Handle) {
	names := strings.Split(*resolvePath, schema.Separator)
	path, ok := schema.Resolve(handle.Schema(), names)
	if !ok {
		log.Fatalf("field %q not found in %s", *resolvePath, handle.TypeName())
	}
	m := path.Last()
	fmt.Printf("%s: %s, offset %d, numeric=%v\n",
		schema.FormatPath(path), m.Tag, m.Offset, extract.IsNumeric(m.Tag))
	fmt.Printf("source id: %s\n", schema.SourceIDForPath(replayTopic(handle), path))
}

func replayTopic(handle *protoload.Handle) string {
	if *topic != "" {
		return *topic
	}
	return handle.TypeName()
}

// runReplay streams the record file through a tracked source and exports
// whatever sinks were requested.
func runReplay(handle *protoload.Handle) error {
	if *fieldSpec == "" {
		return fmt.Errorf("-replay needs -fields")
	}

	src := track.NewSource(replayTopic(handle), handle, track.Options{BufferCapacity: *bufferCap})
	for _, spec := range strings.Split(*fieldSpec, ",") {
		names := strings.Split(strings.TrimSpace(spec), schema.Separator)
		path, ok := schema.Resolve(handle.Schema(), names)
		if !ok {
			// A stale configured field skips, it does not abort the run.
			log.Printf("field %q not found in %s, skipping", spec, handle.TypeName())
			continue
		}
		if _, err := src.AddField(path); err != nil {
			log.Printf("field %q: %v, skipping", spec, err)
		}
	}
	if len(src.Fields()) == 0 {
		return fmt.Errorf("no requested field resolved against %s", handle.TypeName())
	}

	f, err := os.Open(*replayFile)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := replayRecords(f, src)
	if err != nil {
		return err
	}
	log.Printf("replayed %d records into %d fields", records, len(src.Fields()))

	st := src.PeriodStats()
	if st.Count > 0 {
		log.Printf("inter-arrival: avg %.6fs min %.6fs max %.6fs stddev %.6fs over %d intervals",
			st.Average, st.Min, st.Max, st.StdDev, st.Count)
	}

	if *csvDir != "" {
		if err := exportCSV(src, *csvDir); err != nil {
			return err
		}
	}
	if *dbPath != "" {
		rec, err := sqlitestore.Open(*dbPath)
		if err != nil {
			return err
		}
		defer rec.Close()
		if err := rec.RecordSource(src); err != nil {
			return err
		}
		log.Printf("recorded session %s into %s", rec.SessionID(), *dbPath)
	}
	if *plotDir != "" {
		sp, err := monitor.NewSeriesPlotter(*plotDir)
		if err != nil {
			return err
		}
		n, err := sp.WriteSourcePlots(src)
		if err != nil {
			return err
		}
		log.Printf("wrote %d plots into %s", n, *plotDir)
	}
	return nil
}

// replayRecords reads length-prefixed records (uint32 little-endian payload
// length, then the raw buffer) and feeds each into the source.
func replayRecords(r io.Reader, src *track.Source) (int, error) {
	var lenBuf [4]byte
	records := 0
	for {
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if err == io.EOF {
				return records, nil
			}
			return records, fmt.Errorf("record %d length: %w", records, err)
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])
		payload := make([]byte, n)
		if _, err := io.ReadFull(r, payload); err != nil {
			return records, fmt.Errorf("record %d payload: %w", records, err)
		}
		src.OnMessage(payload)
		records++
	}
}

// exportCSV writes one t,value CSV per tracked field.
func exportCSV(src *track.Source, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, field := range src.Fields() {
		name := strings.NewReplacer("/", "_", " ", "_").Replace(field.ID) + ".csv"
		out, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		w := csv.NewWriter(out)
		if err := w.Write([]string{"t", "value"}); err != nil {
			out.Close()
			return err
		}
		for _, s := range field.Data.Snapshot() {
			if err := w.Write([]string{
				strconv.FormatFloat(s.Time, 'f', -1, 64),
				strconv.FormatFloat(s.Value, 'f', -1, 64),
			}); err != nil {
				out.Close()
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
	return nil
}
