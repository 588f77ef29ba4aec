package export

import (
	"database/sql"

	"codeberg.org/vasker/fleetsim/internal/errors"
)

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS readings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            ts INTEGER NOT NULL,
            machine_id TEXT NOT NULL,
            machine_type TEXT NOT NULL,
            sensor TEXT NOT NULL,
            unit TEXT NOT NULL,
            value REAL NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_readings_machine_ts
            ON readings (machine_id, ts);
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}

func insertReadingSQL() string {
	return `
        INSERT INTO readings (ts, machine_id, machine_type, sensor, unit, value)
        VALUES (?, ?, ?, ?, ?, ?)
    `
}
