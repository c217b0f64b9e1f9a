package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/duckvec"
	"github.com/hupe1980/duckvec/arrowexport"
	"github.com/hupe1980/duckvec/codec"
	"github.com/hupe1980/duckvec/memengine"
)

type loadFlags struct {
	columns     []string
	compression string
	codec       string
	output      string
	vectorSize  int
	notifyAfter int64
	rowsPerSec  int64
	verbose     bool
}

func newLoadCmd() *cobra.Command {
	var f loadFlags
	cmd := &cobra.Command{
		Use:   "load [FILE]",
		Short: "Load JSON lines into an in-memory table and print storage statistics",
		Long: `Load reads JSON lines (arrays or objects, one row per line) from FILE or
stdin, appends them to an in-memory table and prints how the rows were
stored. With --output the stored rows are scanned back and written as
JSON lines or summarized as Arrow records.`,
		Example: `  duckvec load -c id:BIGINT -c "price:DECIMAL(10,2)" -c tags:VARCHAR[] rows.jsonl
  cat rows.jsonl | duckvec load -c id:BIGINT -c name:VARCHAR --compression zstd --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				in = file
			}
			return runLoad(cmd.Context(), cmd.OutOrStdout(), in, f)
		},
	}
	cmd.Flags().StringArrayVarP(&f.columns, "column", "c", nil, "Column as NAME:TYPE (repeatable, required)")
	cmd.Flags().StringVar(&f.compression, "compression", "lz4", "Block compression (none, lz4, zstd)")
	cmd.Flags().StringVar(&f.codec, "codec", "go-json", "JSON codec (json, go-json)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Scan the table back as json or arrow")
	cmd.Flags().IntVar(&f.vectorSize, "vector-size", 2048, "Rows per chunk")
	cmd.Flags().Int64Var(&f.notifyAfter, "notify-after", 0, "Report progress every N rows")
	cmd.Flags().Int64Var(&f.rowsPerSec, "rows-per-second", 0, "Throttle ingestion (0 = unlimited)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log flushes to stderr")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func parseColumns(specs []string) ([]memengine.Column, error) {
	cols := make([]memengine.Column, 0, len(specs))
	for _, spec := range specs {
		name, typ, ok := strings.Cut(spec, ":")
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("column %q is not NAME:TYPE", spec)
		}
		cols = append(cols, memengine.Column{Name: name, Type: typ})
	}
	return cols, nil
}

func runLoad(ctx context.Context, out io.Writer, in io.Reader, f loadFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cols, err := parseColumns(f.columns)
	if err != nil {
		return err
	}
	ct, err := memengine.ParseCompression(f.compression)
	if err != nil {
		return err
	}
	c, ok := codec.ByName(f.codec)
	if !ok {
		return fmt.Errorf("unknown codec %q", f.codec)
	}

	logger := duckvec.NoopLogger()
	if f.verbose {
		logger = duckvec.NewTextLogger(slog.LevelDebug)
	}

	e := memengine.New(memengine.WithCompression(ct), memengine.WithVectorSize(f.vectorSize), memengine.WithLogger(logger))
	defer e.Close()
	tbl, err := e.CreateTable("input", cols...)
	if err != nil {
		return err
	}

	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	src, err := codec.NewLineSource(in, c, names...)
	if err != nil {
		return err
	}

	metrics := &duckvec.BasicMetricsCollector{}
	progress := color.New(color.FgCyan)
	bc := duckvec.NewBulkCopy(tbl.Destination(),
		duckvec.WithNotifyAfter(f.notifyAfter),
		duckvec.WithRowsPerSecond(f.rowsPerSec),
		duckvec.WithBulkLogger(logger),
		duckvec.WithRowsCopiedHandler(func(ev *duckvec.RowsCopiedEvent) {
			progress.Fprintf(out, "  %s rows copied\n", humanize.Comma(ev.RowsCopied))
		}),
		duckvec.WithAppenderOptions(
			duckvec.WithChunkCapacity(f.vectorSize),
			duckvec.WithMetricsCollector(metrics),
			duckvec.WithLogger(logger),
		),
	)

	start := time.Now()
	copied, err := bc.WriteToServer(ctx, src)
	if err != nil {
		return fmt.Errorf("line %d: %w", src.Line(), err)
	}
	elapsed := time.Since(start)

	stats := tbl.Stats()
	flushes := metrics.GetStats()
	bold := color.New(color.Bold)
	bold.Fprintln(out, "Table input:")
	fmt.Fprintf(out, "\trows: %s, chunks: %d, compression: %s\n", humanize.Comma(copied), stats.Blocks, ct)
	fmt.Fprintf(out, "\traw size: %s, stored size: %s\n",
		humanize.Bytes(uint64(stats.RawBytes)), humanize.Bytes(uint64(stats.StoredBytes)))
	fmt.Fprintf(out, "\telapsed: %v, avg flush: %v\n", elapsed.Round(time.Microsecond), time.Duration(flushes.FlushAvgNanos))

	switch f.output {
	case "":
		return nil
	case "json":
		return tbl.Scan(func(r *duckvec.ChunkReader) error {
			_, err := codec.WriteLines(out, r, c)
			return err
		})
	case "arrow":
		batch := 0
		return tbl.Scan(func(r *duckvec.ChunkReader) error {
			rec, err := arrowexport.Record(r, nil)
			if err != nil {
				return err
			}
			defer rec.Release()
			bold.Fprintf(out, "Record %d:\n", batch)
			fmt.Fprintf(out, "\tschema: %s\n\trows: %d\n", rec.Schema(), rec.NumRows())
			batch++
			return nil
		})
	default:
		return fmt.Errorf("unknown output %q", f.output)
	}
}
