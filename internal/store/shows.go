package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SongGap is one cached gap observation.
type SongGap struct {
	Song       string
	Gap        int
	LastPlayed string
}

// ShowGaps is the cached setlist gap data for one show.
type ShowGaps struct {
	Date  string // yyyy-mm-dd
	Tour  string
	Venue string
	Songs []SongGap
}

// SaveShowGaps replaces whatever is cached for the show.
func (s *Store) SaveShowGaps(show ShowGaps) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("INSERT OR REPLACE INTO Show (date, venue, tour, fetched) VALUES (?, ?, ?, ?)",
		show.Date, show.Venue, show.Tour, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("inserting show %s: %w", show.Date, err)
	}

	if _, err := tx.Exec("DELETE FROM SongGap WHERE show_date = ?", show.Date); err != nil {
		return fmt.Errorf("clearing gaps for %s: %w", show.Date, err)
	}

	for i, song := range show.Songs {
		_, err := tx.Exec("INSERT INTO SongGap (show_date, position, song, gap, last_played) VALUES (?, ?, ?, ?, ?)",
			show.Date, i, song.Song, song.Gap, song.LastPlayed)
		if err != nil {
			return fmt.Errorf("inserting gap for %q at %s: %w", song.Song, show.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetShowGaps returns the cached show, and false if it was never cached.
func (s *Store) GetShowGaps(date string) (ShowGaps, bool, error) {
	var (
		venue sql.NullString
		tour  sql.NullString
	)
	err := s.db.QueryRow("SELECT venue, tour FROM Show WHERE date = ?", date).Scan(&venue, &tour)
	if err == sql.ErrNoRows {
		return ShowGaps{}, false, nil
	}
	if err != nil {
		return ShowGaps{}, false, fmt.Errorf("getting show %s: %w", date, err)
	}

	show := ShowGaps{Date: date, Venue: venue.String, Tour: tour.String}

	rows, err := s.db.Query("SELECT song, gap, last_played FROM SongGap WHERE show_date = ? ORDER BY position", date)
	if err != nil {
		return ShowGaps{}, false, fmt.Errorf("querying gaps for %s: %w", date, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			g          SongGap
			lastPlayed sql.NullString
		)
		if err := rows.Scan(&g.Song, &g.Gap, &lastPlayed); err != nil {
			return ShowGaps{}, false, err
		}
		g.LastPlayed = lastPlayed.String
		show.Songs = append(show.Songs, g)
	}
	if err := rows.Err(); err != nil {
		return ShowGaps{}, false, err
	}
	return show, true, nil
}
