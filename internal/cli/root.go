package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/factview/internal/cache"
	"github.com/ppiankov/factview/internal/client"
	"github.com/ppiankov/factview/internal/model"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	apiURL  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factview",
	Short: "factview - highlight fact-check verdicts in text",
	Long: `factview sends text to a fact-checking service and shows which parts of
it are supported, contradicted, or not covered by the knowledge base.

The service finds claims and compares them against the documents you
upload. factview renders its answer: the original text with each claim
highlighted by verdict, and a list of claims with their evidence.

A verdict describes the knowledge base, not the world.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "factview %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.factview/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "fact-checking service URL (overrides api.base_url)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	registerDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".factview"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// FACTVIEW_API_BASE_URL, FACTVIEW_CHECK_MODE, ...
	viper.SetEnvPrefix("FACTVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key", "FACTVIEW_LLM_API_KEY", "OPENAI_API_KEY")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so environment
// variables are picked up by Unmarshal
func registerDefaults() {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults("", tree)
	viper.SetDefault("llm.api_key", "")
}

func setDefaults(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if !model.ValidMode(cfg.Check.Mode) {
		return nil, fmt.Errorf("invalid check.mode %q (local, heuristic, openai)", cfg.Check.Mode)
	}
	if cfg.Check.TopK < 1 {
		return nil, fmt.Errorf("invalid check.top_k %d: must be at least 1", cfg.Check.TopK)
	}
	return cfg, nil
}

// newLogger builds the zerolog logger described by cfg
func newLogger(cfg model.LogConfig, debug bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}

	var log zerolog.Logger
	if cfg.Format == "json" {
		log = zerolog.New(os.Stderr)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return log.Level(level).With().Timestamp().Logger()
}

// setup loads configuration and builds the logger and API client shared
// by the commands
func setup() (*model.Config, zerolog.Logger, *client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	log := newLogger(cfg.Log, cfg.Output.Verbose)

	opts := []client.Option{client.WithLogger(log)}
	if cfg.Cache.Enabled {
		opts = append(opts, client.WithStatusCache(cache.NewMemoryCache(cfg.Cache.StatusTTL, 2*cfg.Cache.StatusTTL), cfg.Cache.StatusTTL))
	}
	return cfg, log, client.New(cfg.API, cfg.RateLimiting, opts...), nil
}
