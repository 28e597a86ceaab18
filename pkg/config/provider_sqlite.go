package config

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chart (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	title       TEXT NOT NULL DEFAULT '',
	night_start REAL,
	night_end   REAL,
	latitude    REAL,
	longitude   REAL,
	obs_date    TEXT,
	timezone    TEXT,
	size        INTEGER,
	tick_hours  INTEGER
);

CREATE TABLE IF NOT EXISTS observation_groups (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE,
	color    TEXT,
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS observations (
	group_id TEXT NOT NULL REFERENCES observation_groups(id) ON DELETE CASCADE,
	seq      INTEGER NOT NULL,
	value    REAL NOT NULL,
	PRIMARY KEY (group_id, seq)
);
`

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens (creating if needed) a SQLite configuration database
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{Night: DefaultNight()}

	var (
		nightStart, nightEnd, lat, lon sql.NullFloat64
		obsDate, timezone              sql.NullString
		size, tickHours                sql.NullInt64
	)
	err := s.db.QueryRow(`
		SELECT title, night_start, night_end, latitude, longitude,
		       obs_date, timezone, size, tick_hours
		FROM chart WHERE id = 1
	`).Scan(&config.Title, &nightStart, &nightEnd, &lat, &lon, &obsDate, &timezone, &size, &tickHours)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load chart settings: %w", err)
	}

	if nightStart.Valid {
		config.Night.StartHour = nightStart.Float64
	}
	if nightEnd.Valid {
		config.Night.EndHour = nightEnd.Float64
	}
	if lat.Valid && lon.Valid && obsDate.Valid {
		config.Night.Location = &LocationData{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
			Date:      obsDate.String,
			Timezone:  timezone.String,
		}
	}
	if size.Valid {
		config.Render.Size = int(size.Int64)
	}
	if tickHours.Valid {
		config.Render.TickHours = int(tickHours.Int64)
	}

	groups, err := s.GetGroups()
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	config.Groups = groups

	ApplyDefaults(config)
	return config, nil
}

// GetGroups returns observation groups in their stored order
func (s *SQLiteProvider) GetGroups() ([]GroupData, error) {
	rows, err := s.db.Query(`
		SELECT g.id, g.name, g.color, o.value
		FROM observation_groups g
		LEFT JOIN observations o ON o.group_id = g.id
		ORDER BY g.position, o.seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []GroupData
	for rows.Next() {
		var id, name string
		var color sql.NullString
		var value sql.NullFloat64

		if err := rows.Scan(&id, &name, &color, &value); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}

		if len(groups) == 0 || groups[len(groups)-1].ID != id {
			groups = append(groups, GroupData{
				ID:           id,
				Name:         name,
				Color:        color.String,
				Observations: []float64{},
			})
		}
		if value.Valid {
			g := &groups[len(groups)-1]
			g.Observations = append(g.Observations, value.Float64)
		}
	}

	return groups, rows.Err()
}

// SaveConfig replaces the stored configuration with cfg in a single
// transaction. Groups without an ID are assigned a new UUID.
func (s *SQLiteProvider) SaveConfig(cfg *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM observations", "DELETE FROM observation_groups", "DELETE FROM chart"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to clear existing configuration: %w", err)
		}
	}

	var lat, lon sql.NullFloat64
	var obsDate, timezone sql.NullString
	if loc := cfg.Night.Location; loc != nil {
		lat = sql.NullFloat64{Float64: loc.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: loc.Longitude, Valid: true}
		obsDate = sql.NullString{String: loc.Date, Valid: true}
		timezone = sql.NullString{String: loc.Timezone, Valid: loc.Timezone != ""}
	}

	_, err = tx.Exec(`
		INSERT INTO chart (id, title, night_start, night_end, latitude, longitude, obs_date, timezone, size, tick_hours)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, cfg.Title, cfg.Night.StartHour, cfg.Night.EndHour, lat, lon, obsDate, timezone,
		nullInt(cfg.Render.Size), nullInt(cfg.Render.TickHours))
	if err != nil {
		return fmt.Errorf("failed to insert chart settings: %w", err)
	}

	for i := range cfg.Groups {
		g := &cfg.Groups[i]
		if g.ID == "" {
			g.ID = uuid.NewString()
		}

		_, err := tx.Exec(`INSERT INTO observation_groups (id, name, color, position) VALUES (?, ?, ?, ?)`,
			g.ID, g.Name, g.Color, i)
		if err != nil {
			return fmt.Errorf("failed to insert group %q: %w", g.Name, err)
		}

		for seq, v := range g.Observations {
			_, err := tx.Exec(`INSERT INTO observations (group_id, seq, value) VALUES (?, ?, ?)`, g.ID, seq, v)
			if err != nil {
				return fmt.Errorf("failed to insert observation %d of group %q: %w", seq, g.Name, err)
			}
		}
	}

	return tx.Commit()
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

// IsReadOnly returns false since SQLite supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
