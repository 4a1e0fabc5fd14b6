package db

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gormModels "agrolog/groundstation/internal/models/gorm"
)

var GDB *gorm.DB

// InitORM connects the record store. Postgres is used when PG_HOST is set,
// otherwise a local sqlite file (GS_DB_PATH, default groundstation.db).
func InitORM() (*gorm.DB, error) {
	var (
		conn *gorm.DB
		err  error
	)

	if os.Getenv("PG_HOST") != "" {
		conn, err = gorm.Open(postgres.Open(postgresDSN()), &gorm.Config{})
	} else {
		path := os.Getenv("GS_DB_PATH")
		if path == "" {
			path = "groundstation.db"
		}
		conn, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect record store: %w", err)
	}

	if err := conn.AutoMigrate(&gormModels.FlightRecord{}, &gormModels.ApiKey{}); err != nil {
		return nil, fmt.Errorf("failed to migrate record store: %w", err)
	}

	GDB = conn
	return conn, nil
}

func postgresDSN() string {
	host := os.Getenv("PG_HOST")
	port := os.Getenv("PG_PORT")
	user := os.Getenv("PG_USER")
	dbname := os.Getenv("PG_DB")
	password := os.Getenv("PG_PASSWORD")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbname)
}
