// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation and snapshot loading.

# Connections

Open supports PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite):

	conn, err := db.Open(db.DialectPostgres, "postgres://...")
	conn, err := db.Open(db.DialectSQLite, "file:consensus.db")

Queries are written with postgres-style $N placeholders. DB and Tx rewrite
them for SQLite, so the same SQL runs on both.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - participant: people who author and endorse
  - question: a question and its current round
  - proposal: answers to a question
  - endorsement: one row per participant, proposal and round

# Relationships

	question 1──* proposal
	proposal 1──* endorsement *──1 participant
	participant 1──* question (author)

All foreign keys use ON DELETE CASCADE.

# Snapshots

LoadSnapshot reads a question's proposals and current-round endorsements
in a single transaction and builds a pareto.Snapshot from them:

	rs, err := db.LoadSnapshot(ctx, conn, questionID)
	if errors.Is(err, db.ErrQuestionNotFound) {
		// 404
	}
*/
package db
