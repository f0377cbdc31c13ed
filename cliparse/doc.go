// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - MaxProposals, MaxEndorsers: size caps for key player and endorser
    effect analyses (default: 40, 200, 0 removes the cap)
  - MaxCandidates: cover sets enumerated per frontier (default: 50000)
  - MaxCoverSize: proposals per cover set (default: endorser count)
  - AnalysisWorkers: analyses running at once (default: GOMAXPROCS)
  - CacheSize: cached analysis results (default: 256, 0 disables)
  - Dominance: coverage or tradeoff (default: coverage)
  - AnalysisTimeout: per-analysis deadline (default: 30s, 0 disables)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-env-file         Environment file
	-max-proposals    Proposal cap
	-max-endorsers    Endorser cap
	-max-candidates   Cover set cap
	-max-cover-size   Cover set size cap
	-workers          Analysis workers
	-cache-size       Result cache size
	-dominance        Dominance mode
	-analysis-timeout Analysis timeout

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	MAX_PROPOSALS    → -max-proposals
	MAX_ENDORSERS    → -max-endorsers
	MAX_CANDIDATES   → -max-candidates
	MAX_COVER_SIZE   → -max-cover-size
	ANALYSIS_WORKERS → -workers
	CACHE_SIZE       → -cache-size
	DOMINANCE        → -dominance
	ANALYSIS_TIMEOUT → -analysis-timeout

CLI flags take precedence over environment variables, including flags
explicitly set to zero. Before the fallback
runs, the file named by -env-file (or ./.env when present) is loaded with
godotenv. Variables already set in the environment are not overwritten.

# Validation

ParseFlags returns an error when:

  - DATABASE_URL is missing
  - the database type is neither sqlite nor postgres
  - the dominance mode is unknown
  - a numeric or duration variable does not parse
  - a limit is negative
  - an explicit -env-file cannot be read

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(conn, svc, registry, cfg)
*/
package cliparse
