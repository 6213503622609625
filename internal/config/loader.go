package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Monthly clamp policies accepted by BOOKINGS_MONTHLY_CLAMP.
const (
	ClampPolicyClamp = "clamp"
	ClampPolicySkip  = "skip"
)

// Config captures environment driven configuration values for the booking
// generation service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	GenerateWorkers int
	MonthlyClamp    string
	AllowedOrigins  []string
}

// Load parses configuration values from the current process environment.
//
// Every field has a default; invalid values are collected and reported
// together rather than one at a time.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:bookings.db",
		GenerateWorkers: 4,
		MonthlyClamp:    ClampPolicyClamp,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKINGS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKINGS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKINGS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if workersValue := strings.TrimSpace(os.Getenv("BOOKINGS_GENERATE_WORKERS")); workersValue != "" {
		workers, err := strconv.Atoi(workersValue)
		if err != nil || workers <= 0 {
			invalid = append(invalid, "BOOKINGS_GENERATE_WORKERS")
		} else {
			cfg.GenerateWorkers = workers
		}
	}

	if clamp := strings.TrimSpace(os.Getenv("BOOKINGS_MONTHLY_CLAMP")); clamp != "" {
		switch clamp {
		case ClampPolicyClamp, ClampPolicySkip:
			cfg.MonthlyClamp = clamp
		default:
			invalid = append(invalid, "BOOKINGS_MONTHLY_CLAMP")
		}
	}

	if origins := strings.TrimSpace(os.Getenv("BOOKINGS_ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
