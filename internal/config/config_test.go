package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Errorf("env = %q, want development", cfg.Env)
	}
	if cfg.StoreDriver != DriverSQLite {
		t.Errorf("driver = %q, want sqlite", cfg.StoreDriver)
	}
	if !strings.HasSuffix(cfg.DBPath, filepath.Join(".medicall", "crm.db")) {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.MongoDatabase != "crm_medicall" {
		t.Errorf("mongo database = %q", cfg.MongoDatabase)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("cors = %v, want [*]", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Addr() != ":9090" {
		t.Errorf("addr = %q", cfg.Addr())
	}
	if cfg.IsDev() {
		t.Error("expected production")
	}
	if cfg.StoreDriver != DriverMongo {
		t.Errorf("driver = %q, want mongo", cfg.StoreDriver)
	}
	if cfg.MongoURI != "mongodb://db:27017" {
		t.Errorf("mongo uri = %q", cfg.MongoURI)
	}
	if !cfg.AllowOrigin("http://b.example") {
		t.Error("expected b.example to be allowed")
	}
	if cfg.AllowOrigin("http://c.example") {
		t.Error("expected c.example to be rejected")
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=6000\nEXECUTIVES_FILE=/etc/medicall/executives.yaml\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("EXECUTIVES_FILE") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("port = %q, environment should win over .env", cfg.Port)
	}
	if cfg.ExecutivesFile != "/etc/medicall/executives.yaml" {
		t.Errorf("executives file = %q", cfg.ExecutivesFile)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite", Config{Port: "8080", StoreDriver: DriverSQLite, DBPath: "/tmp/crm.db"}, false},
		{"mongo", Config{Port: "8080", StoreDriver: DriverMongo, MongoURI: "mongodb://x", MongoDatabase: "crm"}, false},
		{"bad port", Config{Port: "http", StoreDriver: DriverSQLite, DBPath: "/tmp/crm.db"}, true},
		{"port out of range", Config{Port: "70000", StoreDriver: DriverSQLite, DBPath: "/tmp/crm.db"}, true},
		{"unknown driver", Config{Port: "8080", StoreDriver: "postgres"}, true},
		{"mongo without uri", Config{Port: "8080", StoreDriver: DriverMongo, MongoDatabase: "crm"}, true},
		{"sqlite without path", Config{Port: "8080", StoreDriver: DriverSQLite}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
