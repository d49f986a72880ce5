// Package main is the Shirabe CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/shirabe/internal/cli"
	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/extract"
	"github.com/hyperjump/shirabe/internal/fileid"
	"github.com/hyperjump/shirabe/internal/ingest"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/scan"
	"github.com/hyperjump/shirabe/internal/server"
	"github.com/hyperjump/shirabe/internal/storage"
	"github.com/hyperjump/shirabe/internal/watcher"
	"github.com/hyperjump/shirabe/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/shirabe/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so that "shirabe server" from the project dir uses the project's
// config (including debug). A missing default file falls back to built-in
// defaults so the CLI works without any config at all. Returns the config and
// the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); statErr != nil {
			return config.Default(), path, nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "scan":
		runScan()
	case "match":
		runMatch()
	case "ingest":
		runIngest()
	case "add":
		runAdd()
	case "get":
		runGet()
	case "delete":
		runDelete()
	case "list":
		runList()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("shirabe version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (watch events, file ingestion, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Enabled && len(cfg.Watch.Directories) > 0 {
		watchSvc := newIngestWatcher(cfg.Watch.Directories, cfg, components, logger, debugMode)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
		watchSvc.Sync()
	}

	srv := server.NewServer(
		components.Engine,
		components.Ingester,
		components.Storage,
		cfg,
		version,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printScanUsage prints scan subcommand usage and query shorthand hints.
func printScanUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: shirabe scan [flags] <text>\n\n")
	fmt.Fprintf(fs.Output(), "Query text is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
By default the text is matched exactly against every stored report.
  • Use --fuzzy for approximate matching within --threshold edits.
  • Use --measure to pick the distance measure (levenshtein or damerau).
  • Use --all to list every match per report instead of just the first.
  • Use --query to pass a full JSON query (or/and combinators, per-subquery thresholds).

Examples:
  shirabe scan confidential
  shirabe scan "quarterly audit"
  shirabe scan --fuzzy --threshold 1 qaurterly
  shirabe scan --query '{"kind":"or","subqueries":[{"kind":"literal","text":"audit"},{"kind":"literal","text":"review"}]}'
`)
}

func printMatchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: shirabe match [flags] <report-id-or-path> <text>\n\n")
	fmt.Fprintf(fs.Output(), "The first argument names the report, by ID or by an ingested file's path; the remaining arguments are the query text.\n\n")
	fs.PrintDefaults()
}

// queryText joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func queryText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// configPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func configPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// queryDefaultsFromConfig loads config at path and returns the default measure
// and threshold for shorthand fuzzy queries. On load failure it returns
// levenshtein and 2.
func queryDefaultsFromConfig(path string) (measure string, threshold int) {
	measure, threshold = "levenshtein", 2
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil {
		return measure, threshold
	}
	if cfg.Match.DefaultMeasure != "" {
		measure = cfg.Match.DefaultMeasure
	}
	return measure, cfg.Match.ThresholdOrDefault()
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front of the slice so that flag.Parse() sees
// them. Go's flag package stops at the first non-flag argument, so
// "shirabe scan \"query\" -threshold 1" would otherwise leave -threshold
// unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// buildQuerySpec builds the query for the scan and match commands. A raw
// -query JSON payload wins; otherwise the positional text becomes a literal
// query, or a fuzzy one when -fuzzy is set.
func buildQuerySpec(rawJSON, text string, fuzzy bool, measure string, threshold int) (*models.QuerySpec, error) {
	if rawJSON != "" {
		var spec models.QuerySpec
		if err := json.Unmarshal([]byte(rawJSON), &spec); err != nil {
			return nil, fmt.Errorf("parse query JSON: %w", err)
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		return &spec, nil
	}
	if text == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if !fuzzy {
		return &models.QuerySpec{Kind: models.KindLiteral, Text: text}, nil
	}
	spec := &models.QuerySpec{
		Kind:      models.KindFuzzy,
		Text:      text,
		Measure:   measure,
		Threshold: threshold,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// resolveReportID turns an existing file's path into the report ID its
// ingestion used; anything else is passed through as a literal ID.
func resolveReportID(arg string) string {
	info, err := os.Stat(arg)
	if err != nil || !info.Mode().IsRegular() {
		return arg
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return arg
	}
	return fileid.ReportID(abs)
}

func parseOutputFormat(name string) (cli.OutputFormat, error) {
	switch name {
	case "text":
		return cli.OutputText, nil
	case "json":
		return cli.OutputJSON, nil
	default:
		return cli.OutputText, fmt.Errorf("unknown output format %q; use text or json", name)
	}
}

// metaFlags collects repeated -meta key=value flags.
type metaFlags map[string]any

func (m metaFlags) String() string { return "" }

func (m metaFlags) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || key == "" {
		return fmt.Errorf("metadata must be key=value, got %q", v)
	}
	m[key] = value
	return nil
}

// apiRequest performs one JSON API call against the server and decodes the
// response body into out (skipped when out is nil). Non-2xx responses become
// errors carrying the server's message.
func apiRequest(method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// serverUnavailable reports whether err means no server answered at all, as
// opposed to a server that answered with an error status. Only the former
// falls back to direct storage.
func serverUnavailable(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

type matchPayload struct {
	Query *models.QuerySpec `json:"query"`
}

type scanPayload struct {
	Query *models.QuerySpec `json:"query"`
	All   bool              `json:"all"`
}

type listResponse struct {
	Reports []*models.Report `json:"reports"`
	Total   int64            `json:"total"`
}

func runScan() {
	args := argsReorder(os.Args[2:])
	configPath := configPathFromArgs(args, defaultConfigPath)
	defaultMeasure, defaultThreshold := queryDefaultsFromConfig(configPath)

	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	queryJSON := fs.String("query", "", "full query as JSON (overrides shorthand flags)")
	fuzzy := fs.Bool("fuzzy", false, "approximate matching within -threshold edits")
	measure := fs.String("measure", defaultMeasure, "distance measure for -fuzzy")
	threshold := fs.Int("threshold", defaultThreshold, "maximum distance for -fuzzy")
	all := fs.Bool("all", false, "report every match, not just the first")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printScanUsage(fs) }
	_ = fs.Parse(args)

	spec, err := buildQuerySpec(*queryJSON, queryText(fs.Args()), *fuzzy, *measure, *threshold)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printScanUsage(fs)
		os.Exit(1)
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		var resp models.ScanResponse
		err := apiRequest(http.MethodPost, *serverURL+"/api/scan", &scanPayload{Query: spec, All: *all}, &resp)
		if err == nil {
			writeOrDie(cli.WriteScanResponse(os.Stdout, &resp, format))
			return
		}
		if !serverUnavailable(err) {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}
	}

	components, _, logger := mustComponents(*configPathFlag)
	defer components.Close()
	defer logger.Sync()

	resp, err := components.Engine.Scan(context.Background(), spec, *all)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}
	writeOrDie(cli.WriteScanResponse(os.Stdout, resp, format))
}

func runMatch() {
	args := argsReorder(os.Args[2:])
	configPath := configPathFromArgs(args, defaultConfigPath)
	defaultMeasure, defaultThreshold := queryDefaultsFromConfig(configPath)

	fs := flag.NewFlagSet("match", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	queryJSON := fs.String("query", "", "full query as JSON (overrides shorthand flags)")
	fuzzy := fs.Bool("fuzzy", false, "approximate matching within -threshold edits")
	measure := fs.String("measure", defaultMeasure, "distance measure for -fuzzy")
	threshold := fs.Int("threshold", defaultThreshold, "maximum distance for -fuzzy")
	all := fs.Bool("all", false, "report every match, not just the first")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printMatchUsage(fs) }
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		printMatchUsage(fs)
		os.Exit(1)
	}
	reportID := resolveReportID(fs.Arg(0))
	spec, err := buildQuerySpec(*queryJSON, queryText(fs.Args()[1:]), *fuzzy, *measure, *threshold)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printMatchUsage(fs)
		os.Exit(1)
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		endpoint := *serverURL + "/api/reports/" + url.PathEscape(reportID) + "/match"
		if *all {
			endpoint += "all"
		}
		var resp models.MatchResponse
		err := apiRequest(http.MethodPost, endpoint, &matchPayload{Query: spec}, &resp)
		if err == nil {
			writeOrDie(cli.WriteMatchResponse(os.Stdout, &resp, format))
			return
		}
		if !serverUnavailable(err) {
			fmt.Fprintf(os.Stderr, "Match failed: %v\n", err)
			os.Exit(1)
		}
	}

	components, _, logger := mustComponents(*configPathFlag)
	defer components.Close()
	defer logger.Sync()

	ctx := context.Background()
	var resp *models.MatchResponse
	if *all {
		resp, err = components.Engine.MatchAllReport(ctx, reportID, spec)
	} else {
		resp, err = components.Engine.MatchReport(ctx, reportID, spec)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Match failed: %v\n", err)
		os.Exit(1)
	}
	writeOrDie(cli.WriteMatchResponse(os.Stdout, resp, format))
}

func runIngest() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: shirabe ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid path: %v\n", err)
		os.Exit(1)
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		var resp models.IngestResponse
		err := apiRequest(http.MethodPost, *serverURL+"/api/ingest", map[string]string{"path": path}, &resp)
		if err == nil {
			writeOrDie(cli.WriteIngestResponse(os.Stdout, &resp, format))
			return
		}
		if !serverUnavailable(err) {
			fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
			os.Exit(1)
		}
	}

	components, cfg, logger := mustComponents(*configPathFlag)
	defer components.Close()
	defer logger.Sync()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	resp := &models.IngestResponse{Path: path}
	if info.IsDir() {
		n, err := components.Ingester.IngestDirectory(ctx, path, cfg.Ingest.Extensions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
			os.Exit(1)
		}
		resp.Ingested = n
	} else {
		// An explicitly named file skips the extension filter.
		if err := components.Ingester.IngestFile(ctx, path, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
			os.Exit(1)
		}
		resp.Ingested = 1
	}
	writeOrDie(cli.WriteIngestResponse(os.Stdout, resp, format))
}

func runAdd() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	id := fs.String("id", "", "report ID (generated when empty)")
	meta := metaFlags{}
	fs.Var(meta, "meta", "metadata field as key=value (repeatable)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	text := queryText(fs.Args())
	if text == "" {
		fmt.Println("Usage: shirabe add [flags] <text>")
		os.Exit(1)
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	input := &models.ReportInput{ID: *id, Text: text}
	if len(meta) > 0 {
		input.Metadata = map[string]any(meta)
	}

	if *serverURL != "" {
		var report models.Report
		err := apiRequest(http.MethodPost, *serverURL+"/api/reports", input, &report)
		if err == nil {
			writeAdded(&report, format)
			return
		}
		if !serverUnavailable(err) {
			fmt.Fprintf(os.Stderr, "Add failed: %v\n", err)
			os.Exit(1)
		}
	}

	components, _, logger := mustComponents(*configPathFlag)
	defer components.Close()
	defer logger.Sync()

	report, err := components.Ingester.AddReport(context.Background(), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Add failed: %v\n", err)
		os.Exit(1)
	}
	writeAdded(report, format)
}

func writeAdded(report *models.Report, format cli.OutputFormat) {
	if format == cli.OutputJSON {
		writeOrDie(cli.WriteReport(os.Stdout, report, format))
		return
	}
	fmt.Printf("Report added: %s\n", report.ID)
}

func runGet() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: shirabe get [flags] <report-id-or-path>")
		os.Exit(1)
	}
	id := resolveReportID(fs.Arg(0))
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		var report models.Report
		err := apiRequest(http.MethodGet, *serverURL+"/api/reports/"+url.PathEscape(id), nil, &report)
		if err == nil {
			writeOrDie(cli.WriteReport(os.Stdout, &report, format))
			return
		}
		if !serverUnavailable(err) {
			fmt.Fprintf(os.Stderr, "Get failed: %v\n", err)
			os.Exit(1)
		}
	}

	components, _, logger := mustComponents(*configPathFlag)
	defer components.Close()
	defer logger.Sync()

	report, err := components.Storage.GetReport(context.Background(), id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Get failed: %v\n", err)
		os.Exit(1)
	}
	writeOrDie(cli.WriteReport(os.Stdout, report, format))
}

func runDelete() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: shirabe delete [flags] <report-id-or-path>")
		os.Exit(1)
	}
	id := resolveReportID(fs.Arg(0))

	if *serverURL != "" {
		err := apiRequest(http.MethodDelete, *serverURL+"/api/reports/"+url.PathEscape(id), nil, nil)
		if err == nil {
			fmt.Printf("Report deleted: %s\n", id)
			return
		}
		if !serverUnavailable(err) {
			fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
			os.Exit(1)
		}
	}

	components, _, logger := mustComponents(*configPathFlag)
	defer components.Close()
	defer logger.Sync()

	if err := components.Storage.DeleteReport(context.Background(), id); err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report deleted: %s\n", id)
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	limit := fs.Int("limit", 50, "number of reports to list")
	offset := fs.Int("offset", 0, "list offset")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		var resp listResponse
		endpoint := fmt.Sprintf("%s/api/reports?offset=%d&limit=%d", *serverURL, *offset, *limit)
		err := apiRequest(http.MethodGet, endpoint, nil, &resp)
		if err == nil {
			writeOrDie(cli.WriteReportList(os.Stdout, resp.Reports, resp.Total, format))
			return
		}
		if !serverUnavailable(err) {
			fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
			os.Exit(1)
		}
	}

	components, _, logger := mustComponents(*configPathFlag)
	defer components.Close()
	defer logger.Sync()

	ctx := context.Background()
	reports, err := components.Storage.ListReports(ctx, *offset, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	total, err := components.Storage.CountReports(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count failed: %v\n", err)
		os.Exit(1)
	}
	writeOrDie(cli.WriteReportList(os.Stdout, reports, total, format))
}

func runWatch() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	dirs := fs.Args()
	if len(dirs) == 0 {
		dirs = cfg.Watch.Directories
	}
	if len(dirs) == 0 {
		fmt.Println("Usage: shirabe watch [flags] <dir> [dir...]")
		fmt.Println("No directories given and none configured under watch.directories.")
		os.Exit(1)
	}

	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	w := newIngestWatcher(dirs, cfg, components, logger, debugMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	w.Sync()
	logger.Info("watching", zap.Strings("directories", dirs))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...")
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		var status models.StatusResponse
		err := apiRequest(http.MethodGet, *serverURL+"/api/status", nil, &status)
		if err == nil {
			writeOrDie(cli.WriteStatus(os.Stdout, &status, format))
			return
		}
		if !serverUnavailable(err) {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}

	components, cfg, logger := mustComponents(*configPath)
	defer components.Close()
	defer logger.Sync()

	count, err := components.Storage.CountReports(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count reports failed: %v\n", err)
		os.Exit(1)
	}
	status := models.StatusResponse{Reports: count, Version: version}
	if dbBytes, sizeErr := storage.DatabaseSizeBytes(cfg.Storage.DatabasePath); sizeErr == nil {
		status.DatabaseBytes = dbBytes
	}
	writeOrDie(cli.WriteStatus(os.Stdout, &status, format))
}

func writeOrDie(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Engine   *scan.Engine
	Ingester *ingest.Ingester
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	engineOpts := []scan.EngineOption{scan.WithWorkers(cfg.Match.ScanWorkers)}
	ingestOpts := []ingest.IngesterOption{
		ingest.WithRules(cfg.Normalize.Rules),
		ingest.WithFieldValidator(models.AllowedFields(cfg.MetadataFields)),
	}
	if debug && logger != nil {
		engineOpts = append(engineOpts, scan.WithLogger(logger))
		ingestOpts = append(ingestOpts, ingest.WithLogger(logger))
	}

	return &Components{
		Storage:  store,
		Engine:   scan.NewEngine(store, engineOpts...),
		Ingester: ingest.NewIngester(store, extract.NewExtractor(), ingestOpts...),
	}, nil
}

// mustComponents loads config and opens direct-storage components for commands
// running without a server, exiting the process on failure. The caller closes
// the components and syncs the logger.
func mustComponents(configPath string) (*Components, *config.Config, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, cfg, logger
}

// newIngestWatcher builds a watcher that keeps the report store in sync with
// dirs: file events re-ingest, removals drop the report.
func newIngestWatcher(dirs []string, cfg *config.Config, components *Components, logger *zap.Logger, debug bool) *watcher.Watcher {
	exts := cfg.Ingest.Extensions
	ing := components.Ingester
	opts := []watcher.WatcherOption{watcher.WithDebounce(cfg.Watch.Debounce())}
	if debug {
		opts = append(opts, watcher.WithLogger(logger))
	}
	return watcher.NewWatcher(
		dirs,
		exts,
		func(path string) {
			if err := ing.IngestFile(context.Background(), path, exts); err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := ing.DeleteFile(context.Background(), path); err != nil {
				logger.Warn("watch delete failed", zap.String("path", path), zap.Error(err))
			}
		},
		opts...,
	)
}

func printUsage() {
	fmt.Println(`shirabe - Fuzzy text matching over a local report store

Usage:
  shirabe server [flags]                Start the HTTP server
  shirabe scan [flags] <text>           Match a query against every stored report
  shirabe match [flags] <id> <text>     Match a query against one report
  shirabe ingest [flags] <path>         Ingest a file or directory of report files
  shirabe add [flags] <text>            Add a report from the command line
  shirabe get [flags] <id-or-path>      Show a stored report
  shirabe delete [flags] <id-or-path>   Delete a stored report
  shirabe list [flags]                  List stored reports
  shirabe watch [flags] [dir...]        Watch directories and keep reports in sync
  shirabe status [flags]                Show report count and database size
  shirabe version                       Show version
  shirabe help                          Show this help

Query Flags (scan, match):
  --query string      Full query as JSON with or/and combinators
  --fuzzy             Approximate matching (default: exact literal)
  --measure string    Distance measure for --fuzzy: levenshtein or damerau (default from config)
  --threshold int     Maximum distance for --fuzzy (default from config)
  --all               Report every match instead of just the first

Common Flags:
  --config string     Config file path (default: /usr/local/etc/shirabe/config.yaml)
  --server string     Server URL (default: http://localhost:8080). Commands fall back
                      to direct storage when no server is listening; use --server ""
                      to skip the server entirely.
  --output string     Output format: text or json (default: text)

Examples:
  shirabe server
  shirabe add --meta source=manual "the quarterly audit flagged three accounts"
  shirabe ingest ./reports
  shirabe scan "audit"
  shirabe scan --fuzzy --threshold 1 qaurterly
  shirabe scan --query '{"kind":"and","subqueries":[{"kind":"literal","text":"audit"},{"kind":"fuzzy","text":"acounts","threshold":1}]}'
  shirabe match file-report.txt "flagged"
  shirabe watch ./reports
  shirabe status --output json`)
}
