package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id          TEXT PRIMARY KEY,
	message_id  TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL DEFAULT '',
	viewed      INTEGER NOT NULL DEFAULT 0,
	received_at DATETIME NOT NULL,
	ingested_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_viewed ON leads(viewed);
CREATE INDEX IF NOT EXISTS idx_leads_company ON leads(company);
CREATE INDEX IF NOT EXISTS idx_leads_received ON leads(received_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
