package mariadb

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/carebridge/hms-backend/config"
)

var (
	db   *sql.DB
	once sync.Once
)

// Connect opens the connection pool to MariaDB. Credentials come from the
// environment via config.
func Connect() *sql.DB {
	once.Do(func() {
		cfg := config.LoadConfig()
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

		var err error
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database connection")
		}
		db.SetMaxOpenConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err = db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}

		log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("connected to MariaDB")
	})

	return db
}

// GetDB returns the already-established connection pool.
func GetDB() *sql.DB {
	return db
}

// IsLockConflict reports whether err is a deadlock (1213) or lock wait
// timeout (1205), the two retryable contention outcomes of row locking.
func IsLockConflict(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}

// IsDuplicateEntry reports whether err is a unique constraint violation (1062).
func IsDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
