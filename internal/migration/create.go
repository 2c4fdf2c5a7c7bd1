// Package migration holds the SQLite schema.
package migration

// Create builds a fresh database.
const Create = `
CREATE TABLE IF NOT EXISTS Show (
  date TEXT PRIMARY KEY,
  venue TEXT,
  fetched DATETIME
);

CREATE TABLE IF NOT EXISTS SongGap (
  show_date TEXT,
  position INTEGER,
  song TEXT,
  gap INTEGER,
  last_played TEXT,
  FOREIGN KEY (show_date) REFERENCES Show(date),
  PRIMARY KEY (show_date, position)
);

CREATE TABLE IF NOT EXISTS Run (
  id TEXT PRIMARY KEY,
  started DATETIME,
  latest_show TEXT,
  tour TEXT,
  degraded INTEGER,
  published INTEGER,
  content_hash TEXT,
  error TEXT
);
`
