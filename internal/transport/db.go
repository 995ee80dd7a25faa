package transport

import (
	"database/sql"

	_ "github.com/glebarez/go-sqlite"
)

// Store wraps the operational transport database: stops, paths, routes,
// vehicles, drivers, daily trips and deployments.
type Store struct {
	DB *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS Stops (
			stop_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS Paths (
			path_id TEXT PRIMARY KEY,
			path_name TEXT NOT NULL,
			ordered_list_of_stop_ids TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS Routes (
			route_id TEXT PRIMARY KEY,
			path_id TEXT NOT NULL,
			route_display_name TEXT NOT NULL,
			shift_time TEXT NOT NULL,
			direction TEXT NOT NULL,
			start_point TEXT NOT NULL,
			end_point TEXT NOT NULL,
			capacity INTEGER NOT NULL,
			allowed_waitlist INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			FOREIGN KEY (path_id) REFERENCES Paths(path_id)
		);`,
		`CREATE TABLE IF NOT EXISTS Vehicles (
			vehicle_id TEXT PRIMARY KEY,
			license_plate TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			capacity INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS Drivers (
			driver_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone_number TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS DailyTrips (
			trip_id TEXT PRIMARY KEY,
			route_id TEXT NOT NULL,
			display_name TEXT NOT NULL,
			booking_status_percentage INTEGER NOT NULL,
			live_status TEXT NOT NULL,
			FOREIGN KEY (route_id) REFERENCES Routes(route_id)
		);`,
		`CREATE TABLE IF NOT EXISTS Deployments (
			deployment_id TEXT PRIMARY KEY,
			trip_id TEXT NOT NULL,
			vehicle_id TEXT,
			driver_id TEXT,
			FOREIGN KEY (trip_id) REFERENCES DailyTrips(trip_id),
			FOREIGN KEY (vehicle_id) REFERENCES Vehicles(vehicle_id),
			FOREIGN KEY (driver_id) REFERENCES Drivers(driver_id)
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
