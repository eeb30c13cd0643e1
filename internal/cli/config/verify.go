package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/yndnr/artifact-go/internal/cli/output"
	"github.com/yndnr/artifact-go/internal/storage"
	"github.com/yndnr/artifact-go/pkg/numeral"
)

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"json", "text", "console"}
	sqlDrivers = []string{storage.DriverSQLite, storage.DriverPostgres, storage.DriverMySQL}
)

// Verify validates the configuration. All problems are reported at once.
func Verify(cfg *Config) error {
	return errors.Join(
		verifyStorage(&cfg.Storage),
		verifyNaming(&cfg.Naming),
		verifyLog(&cfg.Log),
		verifyMetrics(&cfg.Metrics),
		verifyCLI(&cfg.CLI),
	)
}

func verifyStorage(cfg *StorageSection) error {
	if !slices.Contains(storage.Engines, cfg.Engine) {
		return fmt.Errorf("storage.engine: unknown engine %q (want one of %s)",
			cfg.Engine, strings.Join(storage.Engines, ", "))
	}

	var errs []error
	switch cfg.Engine {
	case storage.EngineBadger:
		if cfg.DataDir == "" {
			errs = append(errs, errors.New("storage.data_dir is required"))
		}
		if err := verifyDuration("storage.badger.gc_interval", cfg.Badger.GCInterval); err != nil {
			errs = append(errs, err)
		}
		if cfg.Badger.GCThreshold <= 0 || cfg.Badger.GCThreshold >= 1 {
			errs = append(errs, fmt.Errorf("storage.badger.gc_threshold must be in (0, 1), got %v", cfg.Badger.GCThreshold))
		}
	case storage.EnginePebble:
		if cfg.DataDir == "" {
			errs = append(errs, errors.New("storage.data_dir is required"))
		}
	case storage.EngineSQL:
		errs = append(errs, verifySQL(&cfg.SQL, cfg.DataDir))
	}
	return errors.Join(errs...)
}

func verifySQL(cfg *SQLSection, dataDir string) error {
	if !slices.Contains(sqlDrivers, cfg.Driver) {
		return fmt.Errorf("storage.sql.driver: unknown driver %q (want one of %s)",
			cfg.Driver, strings.Join(sqlDrivers, ", "))
	}

	var errs []error
	if cfg.DSN == "" {
		if cfg.Driver == storage.DriverSQLite {
			if cfg.FilePath == "" && dataDir == "" {
				errs = append(errs, errors.New("storage.sql.file_path or storage.data_dir is required for sqlite"))
			}
		} else {
			if cfg.Host == "" {
				errs = append(errs, errors.New("storage.sql.host is required"))
			}
			if cfg.DBName == "" {
				errs = append(errs, errors.New("storage.sql.dbname is required"))
			}
		}
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("storage.sql.port out of range: %d", cfg.Port))
	}
	if cfg.MaxOpenConns < 0 || cfg.MaxIdleConns < 0 {
		errs = append(errs, errors.New("storage.sql connection limits must not be negative"))
	}
	if err := verifyDuration("storage.sql.slow_threshold", cfg.SlowThreshold); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func verifyDuration(key, value string) error {
	if value == "" || value == "0" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative", key)
	}
	return nil
}

func verifyNaming(cfg *NamingSection) error {
	alphabet, ok := numeralAlphabet(cfg.Alphabet)
	if !ok {
		return fmt.Errorf("naming.alphabet: unknown alphabet %q (want standard or legacy)", cfg.Alphabet)
	}
	for _, entry := range cfg.Reserved {
		if strings.TrimSpace(entry) == "" {
			return errors.New("naming.reserved must not contain empty names")
		}
		for _, name := range splitReserved(entry) {
			for _, r := range name {
				if !alphabet.Contains(r) {
					return fmt.Errorf("naming.reserved: %q contains %q, not in the %s alphabet", name, r, alphabet.Name())
				}
			}
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if !slices.Contains(logLevels, strings.ToLower(cfg.Level)) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", cfg.Level))
	}
	if !slices.Contains(logFormats, strings.ToLower(cfg.Format)) {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", cfg.Format))
	}
	return errors.Join(errs...)
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Pushgateway == "" {
		return nil
	}
	u, err := url.Parse(cfg.Pushgateway)
	if err != nil {
		return fmt.Errorf("metrics.pushgateway: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("metrics.pushgateway: unsupported scheme %q", u.Scheme)
	}
	if cfg.Job == "" {
		return errors.New("metrics.job is required when metrics.pushgateway is set")
	}
	return nil
}

func verifyCLI(cfg *CLISection) error {
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return fmt.Errorf("cli.output: %w", err)
	}
	return nil
}

func numeralAlphabet(name string) (*numeral.Alphabet, bool) {
	return numeral.ByName(strings.ToLower(strings.TrimSpace(name)))
}

// normalizeReserved uppercases and trims the entries. An entry may hold a
// comma separated list, which is how ARTIFACT_NAMING__RESERVED arrives.
func normalizeReserved(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, splitReserved(entry)...)
	}
	return out
}

func splitReserved(entry string) []string {
	var names []string
	for _, n := range strings.Split(entry, ",") {
		if n = strings.ToUpper(strings.TrimSpace(n)); n != "" {
			names = append(names, n)
		}
	}
	return names
}
