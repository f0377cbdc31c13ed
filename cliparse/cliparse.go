package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/quickly-consensus/pareto"
)

const defaultEnvFile = ".env"

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	EnvFile      string

	// Analysis limits
	MaxProposals    int
	MaxEndorsers    int
	MaxCandidates   int
	MaxCoverSize    int
	AnalysisWorkers int
	CacheSize       int
	Dominance       pareto.Dominance
	AnalysisTimeout time.Duration
}

// ParseFlags reads flags, then the env file, then environment variables.
// CLI flags take precedence.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var dominance string

	fs := flag.NewFlagSet("quickly-consensus", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.EnvFile, "env-file", "", "Environment file (default .env if present)")

	// Analysis
	fs.IntVar(&cfg.MaxProposals, "max-proposals", 0, "Max proposals for key player and effect analyses (0 = unbounded)")
	fs.IntVar(&cfg.MaxEndorsers, "max-endorsers", 0, "Max endorsers for key player and effect analyses (0 = unbounded)")
	fs.IntVar(&cfg.MaxCandidates, "max-candidates", 0, "Max enumerated cover sets per frontier (0 = built-in default)")
	fs.IntVar(&cfg.MaxCoverSize, "max-cover-size", 0, "Max proposals in a cover set (0 = endorser count)")
	fs.IntVar(&cfg.AnalysisWorkers, "workers", 0, "Concurrent analyses (0 = GOMAXPROCS)")
	fs.IntVar(&cfg.CacheSize, "cache-size", 0, "Cached analysis results (0 disables)")
	fs.StringVar(&dominance, "dominance", "", "Dominance mode (coverage or tradeoff)")
	fs.DurationVar(&cfg.AnalysisTimeout, "analysis-timeout", 0, "Timeout for one analysis (0 = none)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Flags given on the command line win, even when zero
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Explicit env files must exist; the default one is optional
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if _, err := os.Stat(defaultEnvFile); err == nil {
		if err := godotenv.Load(defaultEnvFile); err != nil {
			return Config{}, fmt.Errorf("failed to load %s: %w", defaultEnvFile, err)
		}
	}

	// Fall back to environment variables
	if err := intFromEnv(&cfg.Port, set["p"], "PORT", 3318); err != nil {
		return Config{}, err
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if err := intFromEnv(&cfg.MaxProposals, set["max-proposals"], "MAX_PROPOSALS", 40); err != nil {
		return Config{}, err
	}
	if err := intFromEnv(&cfg.MaxEndorsers, set["max-endorsers"], "MAX_ENDORSERS", 200); err != nil {
		return Config{}, err
	}
	if err := intFromEnv(&cfg.MaxCandidates, set["max-candidates"], "MAX_CANDIDATES", pareto.DefaultMaxCandidates); err != nil {
		return Config{}, err
	}
	if err := intFromEnv(&cfg.MaxCoverSize, set["max-cover-size"], "MAX_COVER_SIZE", 0); err != nil {
		return Config{}, err
	}
	if err := intFromEnv(&cfg.AnalysisWorkers, set["workers"], "ANALYSIS_WORKERS", 0); err != nil {
		return Config{}, err
	}
	if err := intFromEnv(&cfg.CacheSize, set["cache-size"], "CACHE_SIZE", 256); err != nil {
		return Config{}, err
	}

	if dominance == "" {
		dominance = os.Getenv("DOMINANCE")
	}
	mode, err := pareto.ParseDominance(dominance)
	if err != nil {
		return Config{}, err
	}
	cfg.Dominance = mode

	if !set["analysis-timeout"] {
		cfg.AnalysisTimeout = 30 * time.Second
		if s := os.Getenv("ANALYSIS_TIMEOUT"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid ANALYSIS_TIMEOUT env variable")
			}
			cfg.AnalysisTimeout = d
		}
	}

	if cfg.MaxProposals < 0 || cfg.MaxEndorsers < 0 || cfg.MaxCandidates < 0 || cfg.MaxCoverSize < 0 || cfg.CacheSize < 0 {
		return Config{}, errors.New("analysis limits must not be negative")
	}
	if cfg.AnalysisTimeout < 0 {
		return Config{}, errors.New("analysis timeout must not be negative")
	}

	return cfg, nil
}

// intFromEnv fills a flag not given on the command line from the
// environment, then from def.
func intFromEnv(dst *int, explicit bool, key string, def int) error {
	if explicit {
		return nil
	}
	s := os.Getenv(key)
	if s == "" {
		*dst = def
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid %s env variable", key)
	}
	*dst = v
	return nil
}
