package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/richard-senior/refstats/internal/dashboard"
	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/config"
	"github.com/richard-senior/refstats/pkg/loader"
	"github.com/richard-senior/refstats/pkg/prompts"
	"github.com/richard-senior/refstats/pkg/render"
	"github.com/richard-senior/refstats/pkg/resources"
	"github.com/richard-senior/refstats/pkg/server"
	"github.com/richard-senior/refstats/pkg/service"
	"github.com/richard-senior/refstats/pkg/store"
	"github.com/richard-senior/refstats/pkg/tools"
	"github.com/richard-senior/refstats/pkg/transport"
)

// stringList is a repeatable flag
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

const usage = `Usage: refstats [flags] <command>

Commands:
  mcp      run the stdio MCP server (default)
  serve    run the HTTP dashboard
  report   write the charts and summary.md to the output directory
  import   store the configured source in the sqlite database

Flags:
`

func main() {
	configPath := flag.String("config", "", "YAML config file")
	team := flag.String("team", "", "tracked team")
	source := flag.String("source", "", "match data file or URL")
	format := flag.String("format", "", "source format: csv, html or sqlite")
	db := flag.String("db", "", "sqlite database for import")
	out := flag.String("out", "", "output directory for report")
	addr := flag.String("addr", "", "dashboard listen address")
	debug := flag.Bool("debug", false, "enable debug logging")
	var seasons, referees stringList
	flag.Var(&seasons, "season", "season to include, repeatable")
	flag.Var(&referees, "referee", "referee to include, repeatable")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "mcp"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	overlay(cfg, *team, *source, *format, *db, *out, *addr)
	if *debug {
		cfg.LogLevel = "debug"
	}
	// stdout carries the protocol in mcp mode
	if command == "mcp" && (cfg.LogOutput == "c" || cfg.LogOutput == "b") {
		cfg.LogOutput = "f"
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid config:", err)
		os.Exit(1)
	}
	if err := cfg.ApplyLogging(); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to configure logging:", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting refstats", command)
	logger.Debug("Config:", cfg)

	svc := service.New(cfg, loader.NewCache())
	switch command {
	case "mcp":
		err = runMCP(cfg, svc)
	case "serve":
		err = runServe(cfg, svc)
	case "report":
		err = runReport(cfg, svc, service.Query{Seasons: seasons, Referees: referees})
	case "import":
		err = runImport(cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal(command, "failed:", err)
	}
}

// overlay applies non-empty command line values over the loaded config
func overlay(cfg *config.Config, team, source, format, db, out, addr string) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.TrackedTeam, team)
	set(&cfg.Source, source)
	set(&cfg.DbPath, db)
	set(&cfg.OutputDir, out)
	set(&cfg.ListenAddr, addr)
	if format != "" {
		cfg.Format = loader.Format(format)
	}
}

func runMCP(cfg *config.Config, svc *service.Service) error {
	registry := prompts.NewPromptRegistry(map[string]string{"team": cfg.TrackedTeam})
	if cfg.PromptsDir != "" {
		if err := registry.LoadDir(cfg.PromptsDir); err != nil {
			return err
		}
	}
	s := server.NewServer(transport.NewStdioTransport(), registry)
	s.RegisterRefereeTools(tools.NewRefereeTools(svc))
	s.RegisterResources(resources.NewProvider(svc))
	return s.Start()
}

func runServe(cfg *config.Config, svc *service.Service) error {
	// fail fast on a bad source rather than on the first request
	if _, err := svc.Table(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return dashboard.Serve(ctx, cfg.ListenAddr, svc)
}

func runReport(cfg *config.Config, svc *service.Service, q service.Query) error {
	r, err := svc.Report(q)
	if err != nil {
		return err
	}
	paths, err := render.WriteAll(cfg.OutputDir, r, svc.ChartOptions())
	if err != nil {
		return err
	}
	for _, p := range paths {
		logger.Inform("Wrote", p)
	}
	return nil
}

func runImport(cfg *config.Config) error {
	src := cfg.NewSource()
	if _, ok := src.(*loader.StoreSource); ok {
		return fmt.Errorf("source %s is already a sqlite database", cfg.Source)
	}
	t, err := src.Load()
	if err != nil {
		return err
	}
	s, err := store.Open(cfg.DbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	n, err := s.SaveMatches(t)
	if err != nil {
		return err
	}
	logger.Inform("Imported", n, "matches into", cfg.DbPath)
	return nil
}
