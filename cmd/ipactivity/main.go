// ipactivity inspects and renders the activity bitmaps of an ip_activity
// capture.
//
// Usage:
//
//	ipactivity [flags] info
//	ipactivity [flags] render [--kind s|d|sd|all] [--scale N] [--out DIR]
//	ipactivity [flags] select --kind K --first-ip A --last-ip B --first-time T --last-time U
//	ipactivity [flags] index --axis address|time [--first X] --offset N
//	ipactivity [flags] cell --kind K --addr-index I --time-index J
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ipactivity"
	"github.com/hupe1980/ipactivity/resource"
	"github.com/hupe1980/ipactivity/timeidx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	storeFlags

	dataset     string
	logLevel    string
	ioLimit     int64
	memoryLimit int64

	kind      string
	scale     int
	out       string
	firstIP   string
	lastIP    string
	firstTime string
	lastTime  string
	axis      string
	first     string
	offset    int64
	addrIndex int
	timeIndex int
}

func newFlagSet(f *flags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("ipactivity", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f.storeFlags.addFlags(fs)
	fs.StringVar(&f.dataset, "dataset", "", "configuration entry to serve (default: --filename)")
	fs.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.Int64Var(&f.ioLimit, "io-limit", 0, "read throughput limit in bytes per second (0 = unlimited)")
	fs.Int64Var(&f.memoryLimit, "memory-limit", 0, "memory budget for reads in flight in bytes (0 = unlimited)")

	fs.StringVarP(&f.kind, "kind", "k", "all", "bitmap kind: s, d, sd or all")
	fs.IntVarP(&f.scale, "scale", "s", 1, "pixels per cell")
	fs.StringVarP(&f.out, "out", "o", ".", "directory for rendered images")
	fs.StringVar(&f.firstIP, "first-ip", "", "first address of a selection")
	fs.StringVar(&f.lastIP, "last-ip", "", "address after the last selected bucket")
	fs.StringVar(&f.firstTime, "first-time", "", "first time of a selection")
	fs.StringVar(&f.lastTime, "last-time", "", "time after the last selected interval")
	fs.StringVar(&f.axis, "axis", "address", "index axis: address or time")
	fs.StringVar(&f.first, "first", "", "index origin (default: the dataset's first address or window start)")
	fs.Int64Var(&f.offset, "offset", 0, "index offset in buckets")
	fs.IntVar(&f.addrIndex, "addr-index", 0, "address bucket of a cell")
	fs.IntVar(&f.timeIndex, "time-index", 0, "interval of a cell")
	fs.BoolP("help", "h", false, "show help")
	return fs
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var f flags
	fs := newFlagSet(&f)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout, fs)
			return nil
		}
		return err
	}
	if help, _ := fs.GetBool("help"); help {
		printUsage(stdout, fs)
		return nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stdout, fs)
		return errors.New("no command given")
	}
	if len(rest) > 1 {
		return fmt.Errorf("unexpected argument: %s", rest[1])
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}

	bs, err := f.storeFlags.open(ctx)
	if err != nil {
		return err
	}

	opts := []ipactivity.Option{
		ipactivity.WithConfigName(f.config),
		ipactivity.WithFilename(f.filename),
		ipactivity.WithDataset(f.dataset),
		ipactivity.WithLogLevel(level),
	}
	if f.ioLimit > 0 || f.memoryLimit > 0 {
		opts = append(opts, ipactivity.WithResourceController(resource.NewController(resource.Config{
			MemoryLimitBytes:   f.memoryLimit,
			IOLimitBytesPerSec: f.ioLimit,
		})))
	}

	e, err := ipactivity.Open(ctx, bs, opts...)
	if err != nil {
		return err
	}

	switch rest[0] {
	case "info":
		return infoCmd(ctx, e, stdout)
	case "render":
		return renderCmd(ctx, e, &f, stdout)
	case "select":
		return selectCmd(ctx, e, &f, stdout)
	case "index":
		return indexCmd(e, &f, stdout)
	case "cell":
		return cellCmd(ctx, e, &f, stdout)
	}
	return fmt.Errorf("unknown command %q", rest[0])
}

func kinds(s string) ([]ipactivity.Kind, error) {
	if strings.EqualFold(s, "all") {
		return ipactivity.Kinds, nil
	}
	k, err := ipactivity.ParseKind(s)
	if err != nil {
		return nil, err
	}
	return []ipactivity.Kind{k}, nil
}

func singleKind(s string) (ipactivity.Kind, error) {
	if strings.EqualFold(s, "all") {
		return 0, errors.New("--kind must name one bitmap: s, d or sd")
	}
	return ipactivity.ParseKind(s)
}

func infoCmd(ctx context.Context, e *ipactivity.Engine, stdout io.Writer) error {
	info := e.Info(e.Now())

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "dataset\t%s\n", info.Dataset)
	fmt.Fprintf(w, "mode\t%s\n", info.Mode)
	fmt.Fprintf(w, "addresses\t%s - %s /%d (%d buckets)\n", info.FirstAddress, info.LastAddress, info.Granularity, info.VectorSize)
	fmt.Fprintf(w, "interval\t%s\n", info.Interval)
	fmt.Fprintf(w, "window\t%d\n", info.Window)
	fmt.Fprintf(w, "intervals\t%d (%d stored, rotation %d)\n", info.Intervals, info.StoredIntervals, info.Rotation)
	fmt.Fprintf(w, "first\t%s\n", timeidx.Format(info.First))
	fmt.Fprintf(w, "window first\t%s\n", timeidx.Format(info.WindowFirst))
	fmt.Fprintf(w, "last\t%s\n", timeidx.Format(info.Last))

	for _, k := range ipactivity.Kinds {
		b, err := e.ReadBitmap(ctx, k)
		if err != nil {
			return err
		}
		if b.NoData {
			fmt.Fprintf(w, "%s\tno data\n", b.Name)
			continue
		}
		s := b.Summary()
		fmt.Fprintf(w, "%s\t%d/%d cells active, %d addresses, %d intervals (%s)\n",
			b.Name, s.ActiveCells, s.Cells, s.ActiveAddresses, s.ActiveIntervals, b.Codec)
	}
	return w.Flush()
}

func renderCmd(ctx context.Context, e *ipactivity.Engine, f *flags, stdout io.Writer) error {
	ks, err := kinds(f.kind)
	if err != nil {
		return err
	}

	paths := make([]string, len(ks))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range ks {
		g.Go(func() error {
			b, err := e.ReadBitmap(gctx, k)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			if b.NoData {
				return nil
			}
			img, err := e.RenderBitmap(gctx, b, f.scale)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			path := filepath.Join(f.out, "image_"+k.String()+".png")
			if err := os.WriteFile(path, img.PNG, 0o644); err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, k := range ks {
		if paths[i] == "" {
			fmt.Fprintf(stdout, "%s: no data\n", k)
			continue
		}
		fmt.Fprintf(stdout, "%s: %s\n", k, paths[i])
	}
	return nil
}

func selectCmd(ctx context.Context, e *ipactivity.Engine, f *flags, stdout io.Writer) error {
	k, err := singleKind(f.kind)
	if err != nil {
		return err
	}
	q, err := e.ParseSelection(f.firstIP, f.lastIP, f.firstTime, f.lastTime)
	if err != nil {
		return err
	}
	b, err := e.ReadBitmap(ctx, k)
	if err != nil {
		return err
	}
	if b.NoData {
		fmt.Fprintf(stdout, "%s: no data\n", b.Name)
		return nil
	}
	sel, err := e.Select(ctx, b.Matrix, q)
	if err != nil {
		return err
	}
	img, err := e.RenderSelection(ctx, b.Matrix, sel, f.scale)
	if err != nil {
		return err
	}
	path := filepath.Join(f.out, "selected.png")
	if err := os.WriteFile(path, img.PNG, 0o644); err != nil {
		return err
	}
	o := sel.Origin()
	fmt.Fprintf(stdout, "%s: %dx%d cells from %s at %s, unit %dx%d\n",
		path, sel.Rows(), sel.Cols(), o.FirstAddress, timeidx.Format(o.FirstTime), img.ScaleRows, img.ScaleCols)
	return nil
}

func indexCmd(e *ipactivity.Engine, f *flags, stdout io.Writer) error {
	axis, err := ipactivity.ParseAxis(f.axis)
	if err != nil {
		return err
	}
	v, err := e.IndexAt(ipactivity.IndexQuery{Axis: axis, First: f.first, Offset: f.offset})
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, v)
	return nil
}

func cellCmd(ctx context.Context, e *ipactivity.Engine, f *flags, stdout io.Writer) error {
	k, err := singleKind(f.kind)
	if err != nil {
		return err
	}
	b, err := e.ReadBitmap(ctx, k)
	if err != nil {
		return err
	}
	c := e.Cell(b.Matrix, f.addrIndex, f.timeIndex)
	if !c.Defined() {
		fmt.Fprintf(stdout, "%s %s %s\n", timeidx.Undefined, timeidx.Undefined, c.State)
		return nil
	}
	fmt.Fprintf(stdout, "%s %s %s\n", c.Address, timeidx.Format(c.Time), c.State)
	return nil
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprint(w, `ipactivity - inspect and render ip_activity bitmaps

USAGE
    ipactivity [flags] <command>

COMMANDS
    info      show the dataset configuration and bitmap summaries
    render    write image_<kind>.png for each bitmap
    select    write selected.png for an address and time range
    index     print the address or time at a bucket offset
    cell      print address, time and state of one cell

FLAGS
`)
	fmt.Fprint(w, fs.FlagUsages())
}
