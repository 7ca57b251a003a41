// Package mysql opens a recipe store on a MySQL-compatible server, including
// a running dolt sql-server.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/collaboreats/collaboreats/internal/storage/sqlstore"
)

// DefaultPort is the MySQL protocol port dolt sql-server and MySQL listen on.
const DefaultPort = 3306

// Config holds server connection settings.
type Config struct {
	Host     string // default 127.0.0.1
	Port     int    // default 3306
	User     string // default root
	Password string // falls back to CE_MYSQL_PASSWORD
	Database string // default collaboreats
	TLS      bool

	IDPrefix string
	IDLength int
	Now      func() time.Time

	// AfterWrite is passed through to sqlstore; the dolt server backend
	// commits here.
	AfterWrite func(ctx context.Context, db *sql.DB, message string) error
}

// Dialect describes MySQL to sqlstore.
var Dialect = sqlstore.Dialect{
	Name:         "mysql",
	MigrationDir: "mysql",
	IsDuplicate:  isDuplicate,
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.User == "" {
		c.User = "root"
	}
	if c.Password == "" {
		c.Password = os.Getenv("CE_MYSQL_PASSWORD")
	}
	if c.Database == "" {
		c.Database = "collaboreats"
	}
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DSN builds the driver DSN. An empty database connects without selecting
// one, which is how the database itself gets created.
func (c *Config) DSN(database string) string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = c.Addr()
	mc.DBName = database
	mc.ParseTime = true
	if c.TLS {
		mc.TLSConfig = "true"
	}
	return mc.FormatDSN()
}

// Open connects to the server, creates the database if needed and applies
// migrations.
func Open(ctx context.Context, cfg Config) (*sqlstore.Store, error) {
	cfg.applyDefaults()
	if err := ValidateDatabaseName(cfg.Database); err != nil {
		return nil, fmt.Errorf("invalid database name %q: %w", cfg.Database, err)
	}

	// Fail fast with a clear error if nothing is listening.
	conn, err := net.DialTimeout("tcp", cfg.Addr(), 500*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("server unreachable at %s: %w\n\nStart it with:\n  dolt sql-server   # in the database directory\n  or your MySQL service", cfg.Addr(), err)
	}
	_ = conn.Close()

	if err := ensureDatabase(ctx, cfg); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", cfg.DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("open server connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Addr(), err)
	}

	opts := sqlstore.Options{
		Dialect:  Dialect,
		Retry:    true,
		IDPrefix: cfg.IDPrefix,
		IDLength: cfg.IDLength,
		Now:      cfg.Now,
	}
	if cfg.AfterWrite != nil {
		opts.AfterWrite = func(ctx context.Context, message string) error {
			return cfg.AfterWrite(ctx, db, message)
		}
	}

	s, err := sqlstore.New(ctx, db, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func ensureDatabase(ctx context.Context, cfg Config) error {
	initDB, err := sql.Open("mysql", cfg.DSN(""))
	if err != nil {
		return fmt.Errorf("open init connection: %w", err)
	}
	defer func() { _ = initDB.Close() }()

	_, err = initDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.Database)) //nolint:gosec // name validated by ValidateDatabaseName
	if err == nil {
		return nil
	}
	// Dolt may return 1007 even with IF NOT EXISTS.
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1007 {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "database exists") {
		return nil
	}
	return fmt.Errorf("create database %s: %w", cfg.Database, err)
}

var databaseNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]{0,63}$`)

// ValidateDatabaseName rejects names that cannot be safely backtick-quoted.
func ValidateDatabaseName(name string) error {
	if !databaseNameRe.MatchString(name) {
		return fmt.Errorf("must match %s", databaseNameRe)
	}
	return nil
}

// isDuplicate reports whether err is MySQL error 1062 (duplicate entry).
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
