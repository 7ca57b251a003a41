package mysql

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestDSN(t *testing.T) {
	cfg := Config{User: "chef", Password: "s3cret", Host: "db.local", Port: 3307, TLS: true}
	cfg.applyDefaults()

	dsn := cfg.DSN("recipes")
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN(%q): %v", dsn, err)
	}
	if parsed.User != "chef" || parsed.Passwd != "s3cret" {
		t.Errorf("credentials = %s/%s", parsed.User, parsed.Passwd)
	}
	if parsed.Addr != "db.local:3307" {
		t.Errorf("addr = %s", parsed.Addr)
	}
	if parsed.DBName != "recipes" {
		t.Errorf("db = %s", parsed.DBName)
	}
	if !parsed.ParseTime {
		t.Error("parseTime not set")
	}
	if !strings.Contains(dsn, "tls=true") {
		t.Errorf("dsn %q missing tls", dsn)
	}

	if noDB := cfg.DSN(""); !strings.Contains(noDB, ")/?") && !strings.HasSuffix(noDB, ")/") {
		t.Errorf("dsn without database = %q", noDB)
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Setenv("CE_MYSQL_PASSWORD", "from-env")
	var cfg Config
	cfg.applyDefaults()
	if cfg.Host != "127.0.0.1" || cfg.Port != DefaultPort || cfg.User != "root" || cfg.Database != "collaboreats" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Password != "from-env" {
		t.Errorf("password = %q, want env fallback", cfg.Password)
	}
}

func TestValidateDatabaseName(t *testing.T) {
	for _, ok := range []string{"collaboreats", "ce_test", "_x", "db-1"} {
		if err := ValidateDatabaseName(ok); err != nil {
			t.Errorf("ValidateDatabaseName(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "1db", "a`b", "x; DROP DATABASE y", strings.Repeat("a", 65)} {
		if err := ValidateDatabaseName(bad); err == nil {
			t.Errorf("ValidateDatabaseName(%q) accepted", bad)
		}
	}
}

func TestIsDuplicate(t *testing.T) {
	if !isDuplicate(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})) {
		t.Error("1062 not recognised")
	}
	if isDuplicate(&mysql.MySQLError{Number: 1146}) {
		t.Error("1146 treated as duplicate")
	}
	if isDuplicate(fmt.Errorf("plain")) {
		t.Error("plain error treated as duplicate")
	}
}
