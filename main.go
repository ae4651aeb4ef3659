package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"spcplot/app"
)

type options struct {
	settingsPath string
	viewConfig   string
	yGlob        string
	filter       string
	export       string
	lodDir       string
	weRules      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.settingsPath, "settings", "", "settings file (default: spcplot.yml next to the executable)")
	flag.StringVar(&opts.viewConfig, "view", "", "view configuration JSON to apply")
	flag.StringVar(&opts.yGlob, "y", "", "glob selecting the plotted Y columns")
	flag.StringVar(&opts.filter, "filter", "", "row filter expression")
	flag.StringVar(&opts.export, "export", "", "write the filtered rows to a .csv or .xlsx file")
	flag.StringVar(&opts.lodDir, "lod", "", "write level-of-detail tiers for each series to this directory")
	flag.BoolVar(&opts.weRules, "we", false, "evaluate Western Electric rules")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file.csv|file.parquet>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, flag.Arg(0), opts); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, opts options) error {
	appInstance := app.NewApp(opts.settingsPath)
	appInstance.SetLogSink(func(level, message string) {
		if level == "error" || level == "warning" {
			log.Printf("%s: %s", level, message)
		}
	})
	appInstance.Startup(ctx)
	defer appInstance.Shutdown()

	if opts.viewConfig != "" {
		if err := appInstance.LoadViewConfig(opts.viewConfig); err != nil {
			return err
		}
	}

	if err := appInstance.OpenFile(path); err != nil {
		return err
	}
	if err := waitForLoad(ctx, appInstance); err != nil {
		return err
	}

	sess := appInstance.Session()
	if opts.yGlob != "" {
		n, err := sess.SelectYColumnsGlob(opts.yGlob)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("no columns match %q", opts.yGlob)
		}
	}
	if opts.filter != "" {
		if err := sess.ApplyFilterExpression(opts.filter); err != nil {
			return err
		}
	}
	if opts.weRules {
		sess.Spc.ShowWERules = true
	}

	if err := printReport(os.Stdout, appInstance); err != nil {
		return err
	}

	if opts.export != "" {
		var err error
		switch strings.ToLower(filepath.Ext(opts.export)) {
		case ".xlsx":
			err = appInstance.ExportXLSX(opts.export)
		default:
			err = appInstance.ExportCSV(opts.export)
		}
		if err != nil {
			return err
		}
	}

	if opts.lodDir != "" {
		series, err := sess.Series()
		if err != nil {
			return err
		}
		for i, s := range series {
			paths, err := sess.GenerateLOD(ctx, i, filepath.Join(opts.lodDir, s.Name))
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d LOD tiers written\n", s.Name, len(paths))
		}
	}
	return nil
}

// waitForLoad drives the frame loop until the pending load finishes
func waitForLoad(ctx context.Context, a *app.App) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		res := a.Frame()
		if res.Loaded {
			return nil
		}
		if res.Failed {
			msg := a.Message()
			return fmt.Errorf("%s: %s", msg.Title, msg.Detail)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func printReport(out io.Writer, a *app.App) error {
	sess := a.Session()
	tbl := sess.Table()
	fmt.Fprintf(out, "%s: %d rows x %d columns\n", filepath.Base(tbl.Path()), tbl.RowCount(), tbl.ColumnCount())
	for _, w := range a.ParseWarnings() {
		fmt.Fprintf(out, "warning: %s\n", w)
	}

	overlays, err := sess.Overlays()
	if err != nil {
		return err
	}
	series, err := sess.Series()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "column\tn\tmean\tstddev\tmedian\tLCL\tUCL\toutliers\tviolations")
	for i, o := range overlays {
		cs, err := sess.ColumnStats(o.Column)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%d\t%d\n",
			series[i].Name, len(series[i].Points), o.Mean, o.StdDev, cs.Median, o.LCL, o.UCL, len(o.Outliers), len(o.Violations))
	}
	return tw.Flush()
}
