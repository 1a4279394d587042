// Package main provides the drawing-dl binary: batch-mode drawing download
// from the repository gateway.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/handiism/drawing-downloader/internal/config"
	"github.com/handiism/drawing-downloader/internal/download"
	"github.com/handiism/drawing-downloader/internal/gateway"
	"github.com/handiism/drawing-downloader/internal/model"
	"github.com/handiism/drawing-downloader/internal/plm"
	"github.com/spf13/cobra"
)

const tokenEnv = "DRAWING_GATEWAY_TOKEN"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		csvPath    string
		output     string
		types      []string
		depth      int
		workers    int
		gatewayURL string
		logFile    string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "drawing-dl [item ids...]",
		Short: "Download latest-revision drawings for a list of item ids",
		Long: `drawing-dl resolves each item id against the repository gateway, finds
the latest revision, discovers attached PDF/Excel datasets (walking related
document revisions when needed), and stages the files under
<output>/<item id>/ with collision-safe names, preferring the local file
cache over network transfer.

Item ids are given as arguments or read from the first column of a CSV
file. The gateway bearer token is read from ` + tokenEnv + `.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if output != "" {
				settings.DownloadsPath = output
			}
			if len(types) > 0 {
				settings.WantedTypes = types
			}
			if depth > 0 {
				settings.MaxRelationDepth = depth
			}
			if workers > 0 {
				settings.MaxConcurrentItems = workers
			}
			if gatewayURL != "" {
				settings.GatewayURL = gatewayURL
			}
			if logFile != "" {
				settings.LogFile = logFile
			}
			if verbose {
				settings.Verbose = true
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			identifiers := args
			if csvPath != "" {
				fromCSV, err := readIdentifiersCSV(csvPath)
				if err != nil {
					return err
				}
				identifiers = append(identifiers, fromCSV...)
			}
			if len(identifiers) == 0 {
				return fmt.Errorf("no item ids given; pass them as arguments or via --csv")
			}
			if settings.GatewayURL == "" {
				return fmt.Errorf("no gateway URL; set --gateway or gateway_url in %s", configPath)
			}

			return run(settings, identifiers)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "path to config file")
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with item ids in the first column")
	cmd.Flags().StringVarP(&output, "output", "o", "", "download folder (overrides config)")
	cmd.Flags().StringSliceVar(&types, "types", nil, "dataset types to download, e.g. pdf,excel")
	cmd.Flags().IntVar(&depth, "depth", 0, "max related-document traversal depth")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent item workers (one session each)")
	cmd.Flags().StringVar(&gatewayURL, "gateway", "", "repository gateway base URL")
	cmd.Flags().StringVar(&logFile, "log-file", "", "mirror progress output to a file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show verbose output")

	return cmd
}

func run(settings *config.Settings, identifiers []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, finishing current item...")
		cancel()
	}()

	level := slog.LevelWarn
	if settings.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var mirror io.Writer
	if settings.LogFile != "" {
		f, err := os.OpenFile(settings.LogFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		mirror = f
	}

	token := os.Getenv(tokenEnv)
	timeout := time.Duration(settings.RequestTimeoutSeconds) * time.Second

	newSession := func() *plm.Session {
		client := gateway.NewClient(settings.GatewayURL, token, timeout)
		return plm.NewSession(client, client)
	}

	onProgress := func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !settings.Verbose {
			return
		}
		fmt.Println(event.Message)
		if mirror != nil {
			fmt.Fprintln(mirror, event.Message)
		}
	}

	manager := download.NewManager(settings, newSession(), onProgress, logger)

	var (
		report *model.RunReport
		err    error
	)
	if settings.MaxConcurrentItems > 1 {
		extra := make([]*plm.Session, 0, settings.MaxConcurrentItems-1)
		for i := 1; i < settings.MaxConcurrentItems; i++ {
			extra = append(extra, newSession())
		}
		report, err = manager.RunParallel(ctx, extra, identifiers)
	} else {
		report, err = manager.Run(ctx, identifiers)
	}
	if err != nil {
		return err
	}

	printSummary(report, mirror)
	return nil
}

func printSummary(report *model.RunReport, mirror io.Writer) {
	out := io.Writer(os.Stdout)
	if mirror != nil {
		out = io.MultiWriter(os.Stdout, mirror)
	}

	fmt.Fprintln(out)
	for _, item := range report.Items {
		fmt.Fprintln(out, item.Summary())
	}
	fmt.Fprintf(out, "Done. Saved %d file(s) in %s.\n",
		report.TotalFiles(), report.Finished.Sub(report.Started).Round(time.Millisecond))

	if failures := report.Failures(); len(failures) > 0 {
		ids := make([]string, 0, len(failures))
		for _, f := range failures {
			ids = append(ids, f.Identifier)
		}
		fmt.Fprintf(out, "Failures: %s\n", strings.Join(ids, ", "))
	}
}

// readIdentifiersCSV reads item ids from the first column of a CSV file,
// skipping blank cells.
func readIdentifiersCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var ids []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(record) == 0 {
			continue
		}
		id := strings.TrimSpace(record[0])
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
