// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Consensus API server.

Quickly Consensus collects proposals for a question, lets participants
endorse them round by round, and computes the Pareto frontier of cover
sets: the smallest groups of proposals that together satisfy the most
endorsers. It also reports key players, single-endorsement effects and
pairwise proposal relations.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:consensus.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DOMINANCE (-dominance): coverage or tradeoff (default: coverage)
  - MAX_PROPOSALS, MAX_ENDORSERS, MAX_CANDIDATES: analysis limits

See package cliparse for the full list.

# Logging

Logs go to stderr through log/slog: text on a terminal, JSON otherwise.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - pareto: the pure analysis core (frontier, key players, effects, relations)
  - analysis: limits, worker pool, result cache and metrics around the core
  - handlers: HTTP request handlers (participants, questions, endorsements, analyses)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, request ids, logging, JSON helpers
  - models: Request/response types
  - db: Connections, schema creation, snapshot loading
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
