package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLookbackDays = 90
	DefaultTop          = 5
	DefaultRefresh      = time.Minute
	GeneratedPath       = "config.gen.yaml"
)

// OutputFormat report rendering.
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputYAML  OutputFormat = "yaml"
)

// IsValid checks if the OutputFormat value is valid.
func (o OutputFormat) IsValid() bool {
	return o == OutputTable || o == OutputYAML
}

type Config struct {
	// Input path to a listing file.
	Input        string
	LookbackDays int
	Top          int
	// Seed zero means time-based.
	Seed int64
	// Workers zero means one goroutine per asset.
	Workers int
	Output  OutputFormat
	// Serve address of the web report, empty prints once and exits.
	Serve string
	// Refresh how often the web report re-reads the listing.
	Refresh time.Duration
	// Journal directory of the run journal WAL, empty disables journaling.
	Journal string
	// Schedule cron spec of background runs recorded in the journal.
	Schedule string
	Debug    bool
	// Setup runs the interactive wizard before anything else.
	Setup bool
}

type ConfigTmp struct {
	Input           string        `yaml:"input"`
	LookbackDaysStr string        `yaml:"lookback_days,omitempty"`
	TopStr          string        `yaml:"top,omitempty"`
	SeedStr         string        `yaml:"seed,omitempty"`
	WorkersStr      string        `yaml:"workers,omitempty"`
	Output          string        `yaml:"output,omitempty"`
	Serve           string        `yaml:"serve,omitempty"`
	Refresh         time.Duration `yaml:"refresh_interval,omitempty"`
	Journal         string        `yaml:"journal,omitempty"`
	Schedule        string        `yaml:"schedule,omitempty"`
}

// Get builds the configuration from command-line arguments, or from the YAML file
// named by --config.
func Get(args []string) (Config, error) {
	fs := flag.NewFlagSet("coinsight", flag.ContinueOnError)

	configPath := fs.String("config", "", "path to yaml config")
	setup := fs.Bool("setup", false, "run the interactive configuration wizard")
	debug := fs.Bool("debug", false, "enable debug logging")
	input := fs.String("input", "", "path to a listing file (yaml or json)")
	lookback := fs.Int("lookbackdays", DefaultLookbackDays, "days of synthetic history per asset")
	top := fs.Int("top", DefaultTop, "number of recommendations to print, 0 prints all")
	seed := fs.Int64("seed", 0, "random seed, 0 means time-based")
	workers := fs.Int("workers", 0, "max concurrent evaluations, 0 means unlimited")
	output := fs.String("output", string(OutputTable), "output format: table or yaml")
	serve := fs.String("serve", "", "serve the report over http on this address, example: :8080")
	refresh := fs.Duration("refresh", DefaultRefresh, "listing re-read interval of the web report")
	journal := fs.String("journal", "", "directory of the run journal, empty disables it")
	schedule := fs.String("schedule", "", "cron spec of journaled background runs, example: '@every 5m'")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *setup {
		return Config{Setup: true, Debug: *debug}, nil
	}

	if *configPath != "" {
		conf, err := getYaml(*configPath)
		if err != nil {
			return Config{}, err
		}
		conf.Debug = *debug
		return conf, nil
	}

	conf := Config{
		Input:        *input,
		LookbackDays: *lookback,
		Top:          *top,
		Seed:         *seed,
		Workers:      *workers,
		Output:       OutputFormat(*output),
		Serve:        *serve,
		Refresh:      *refresh,
		Journal:      *journal,
		Schedule:     *schedule,
		Debug:        *debug,
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}

	return conf, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Input == "" {
		return errors.New("input listing is not set, use --input or 'input' in yaml config")
	}
	if c.LookbackDays < 1 {
		return fmt.Errorf("invalid lookback days %d, must be at least 1", c.LookbackDays)
	}
	if c.Top < 0 {
		return fmt.Errorf("invalid top %d, must not be negative", c.Top)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d, must not be negative", c.Workers)
	}
	if !c.Output.IsValid() {
		return fmt.Errorf("unsupported output format %q", c.Output)
	}
	if c.Serve != "" && c.Refresh <= 0 {
		return fmt.Errorf("invalid refresh interval %s, must be positive", c.Refresh)
	}
	if c.Schedule != "" {
		if c.Journal == "" {
			return errors.New("schedule requires a journal directory, use --journal or 'journal' in yaml config")
		}
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return errors.Wrapf(err, "invalid schedule %q", c.Schedule)
		}
	}
	return nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config %s", path)
	}

	return tmp.Config()
}

// Config parses the raw yaml values, applying defaults for empty fields.
func (c ConfigTmp) Config() (Config, error) {
	conf := Config{
		Input:        c.Input,
		LookbackDays: DefaultLookbackDays,
		Top:          DefaultTop,
		Output:       OutputTable,
		Serve:        c.Serve,
		Refresh:      DefaultRefresh,
		Journal:      c.Journal,
		Schedule:     c.Schedule,
	}

	var err error
	if c.LookbackDaysStr != "" {
		if conf.LookbackDays, err = strconv.Atoi(c.LookbackDaysStr); err != nil {
			return Config{}, fmt.Errorf("incorrect 'lookback_days' param in yaml config (must be an integer), error: %w", err)
		}
	}
	if c.TopStr != "" {
		if conf.Top, err = strconv.Atoi(c.TopStr); err != nil {
			return Config{}, fmt.Errorf("incorrect 'top' param in yaml config (must be an integer), error: %w", err)
		}
	}
	if c.SeedStr != "" {
		if conf.Seed, err = strconv.ParseInt(c.SeedStr, 10, 64); err != nil {
			return Config{}, fmt.Errorf("incorrect 'seed' param in yaml config (must be an integer), error: %w", err)
		}
	}
	if c.WorkersStr != "" {
		if conf.Workers, err = strconv.Atoi(c.WorkersStr); err != nil {
			return Config{}, fmt.Errorf("incorrect 'workers' param in yaml config (must be an integer), error: %w", err)
		}
	}
	if c.Output != "" {
		conf.Output = OutputFormat(c.Output)
	}
	if c.Refresh != 0 {
		conf.Refresh = c.Refresh
	}

	if err := conf.Validate(); err != nil {
		return Config{}, err
	}

	return conf, nil
}
