// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(d *DB) error {
	schema := postgresSchema
	if d.Dialect == DialectSQLite {
		schema = sqliteSchema
	}

	_, err := d.DB.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const postgresSchema = `
-- Participants
CREATE TABLE IF NOT EXISTS participant (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Questions
CREATE TABLE IF NOT EXISTS question (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    blurb TEXT NOT NULL DEFAULT '',
    room TEXT NOT NULL DEFAULT '',
    author_id BIGINT NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    round INTEGER NOT NULL DEFAULT 1 CHECK (round >= 1),
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_question_room ON question(room);

-- Proposals
CREATE TABLE IF NOT EXISTS proposal (
    id BIGSERIAL PRIMARY KEY,
    question_id BIGINT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    author_id BIGINT NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    blurb TEXT NOT NULL DEFAULT '',
    abstract TEXT NOT NULL DEFAULT '',
    created_round INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_proposal_question_id ON proposal(question_id);

-- Endorsements
CREATE TABLE IF NOT EXISTS endorsement (
    proposal_id BIGINT NOT NULL REFERENCES proposal(id) ON DELETE CASCADE,
    participant_id BIGINT NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    round INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    PRIMARY KEY (proposal_id, participant_id, round)
);

CREATE INDEX IF NOT EXISTS idx_endorsement_participant ON endorsement(participant_id);
`

const sqliteSchema = `
-- Participants
CREATE TABLE IF NOT EXISTS participant (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Questions
CREATE TABLE IF NOT EXISTS question (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    blurb TEXT NOT NULL DEFAULT '',
    room TEXT NOT NULL DEFAULT '',
    author_id INTEGER NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    round INTEGER NOT NULL DEFAULT 1 CHECK (round >= 1),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_question_room ON question(room);

-- Proposals
CREATE TABLE IF NOT EXISTS proposal (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question_id INTEGER NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    author_id INTEGER NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    blurb TEXT NOT NULL DEFAULT '',
    abstract TEXT NOT NULL DEFAULT '',
    created_round INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_proposal_question_id ON proposal(question_id);

-- Endorsements
CREATE TABLE IF NOT EXISTS endorsement (
    proposal_id INTEGER NOT NULL REFERENCES proposal(id) ON DELETE CASCADE,
    participant_id INTEGER NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    round INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (proposal_id, participant_id, round)
);

CREATE INDEX IF NOT EXISTS idx_endorsement_participant ON endorsement(participant_id);
`
