package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	_ "time/tzdata"

	"github.com/chrissnell/flowerclock/internal/analysis"
	"github.com/chrissnell/flowerclock/internal/log"
	"github.com/chrissnell/flowerclock/internal/server"
	"github.com/chrissnell/flowerclock/pkg/config"
	"github.com/chrissnell/flowerclock/pkg/render"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "flowerclock.yaml", "Path to configuration source (YAML file or SQLite database)")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' or 'sqlite'")
	example := flag.Bool("example", false, "Ignore -config and plot the built-in morning glory dataset")
	out := flag.String("out", "flowerclock.svg", "SVG output path, or - for stdout")
	csvOut := flag.String("csv", "", "Optional CSV summary output path")
	listen := flag.String("listen", "", "Serve the chart over HTTP on this address (e.g. :8080) instead of writing -out")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("flowerclock %s\n", version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var cfg *config.ConfigData
	var err error
	if *example {
		cfg = config.Default()
	} else {
		cfg, err = loadConfig(*cfgFile, *cfgBackend)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := log.GetSugaredLogger()

	report, err := analysis.Analyze(cfg.Groups, logger)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	night, err := analysis.ResolveNight(cfg.Night, logger)
	if err != nil {
		log.Fatalf("Could not resolve night band: %v", err)
	}

	// Keep stdout clean for the SVG when it is the output target
	tableOut := os.Stdout
	if *out == "-" && *listen == "" {
		tableOut = os.Stderr
	}
	if err := report.WriteTable(tableOut); err != nil {
		log.Errorf("Error writing summary table: %v", err)
	}

	if *csvOut != "" {
		if err := writeFile(*csvOut, report.WriteCSV); err != nil {
			log.Fatalf("Error writing CSV: %v", err)
		}
		log.Infof("Wrote summary CSV to %s", *csvOut)
	}

	chart := report.Chart(cfg, night)

	if *listen != "" {
		srv, err := server.New(report, chart, logger)
		if err != nil {
			log.Fatalf("Error preparing server: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := srv.Run(ctx, *listen); err != nil {
			log.Fatalf("Server error: %v", err)
		}
		return
	}

	if *out == "-" {
		if err := render.Render(os.Stdout, chart); err != nil {
			log.Fatalf("Error rendering chart: %v", err)
		}
		return
	}

	err = writeFile(*out, func(w io.Writer) error {
		return render.Render(w, chart)
	})
	if err != nil {
		log.Fatalf("Error rendering chart: %v", err)
	}
	log.Infof("Wrote flower clock to %s", *out)
}

func loadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider
	var err error

	switch cfgBackend {
	case "yaml":
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		if _, statErr := os.Stat(filename); statErr != nil {
			return nil, fmt.Errorf("SQLite database %s: %w", filename, statErr)
		}
		provider, err = config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
