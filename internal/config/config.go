package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DatabaseSchemePostgres is the postgres database scheme identifier
	DatabaseSchemePostgres = "postgres"

	DefaultNetworkID        = 31337
	DefaultNetworksFile     = "networks.yaml"
	DefaultRefreshInterval  = 15 * time.Second
	DefaultWaitMinedTimeout = 2 * time.Minute
)

type Config struct {
	NetworkID     uint64
	NetworksFile  string // YAML manifest merged over the built-in bindings when the file exists
	RPCURL        string // optional override of the active binding's endpoint
	SepoliaRPCURL string
	PrivateKey    string // empty: read-only
	Account       string // observed account in read-only mode
	StartBlock    *uint64
	DBDialect     string // postgres only
	DBDsn         string // DSN string passed to GORM driver

	RefreshInterval     time.Duration // 0 disables periodic refresh
	WaitMinedTimeout    time.Duration
	KeepPartialTimeline bool
	Debug               bool // if true: logs to monitor.log while the TUI runs
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func getenvUint(key string, def uint64) uint64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		warnf("invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		warnf("invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// parseDatabaseURL interprets DATABASE_URL and returns (dialect, dsn).
// Supported schemes: postgres, postgresql.
func parseDatabaseURL(databaseURL string) (string, string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", "", err
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case DatabaseSchemePostgres, "postgresql":
		// GORM postgres driver accepts URL DSN as-is
		return DatabaseSchemePostgres, databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %s", u.Scheme)
	}
}

func Load() Config {
	cfg := Config{
		NetworkID:           getenvUint("NETWORK_ID", DefaultNetworkID),
		NetworksFile:        getenv("NETWORKS_FILE", DefaultNetworksFile),
		RPCURL:              strings.TrimSpace(os.Getenv("RPC_URL")),
		SepoliaRPCURL:       strings.TrimSpace(os.Getenv("SEPOLIA_RPC_URL")),
		PrivateKey:          strings.TrimSpace(os.Getenv("PRIVATE_KEY")),
		Account:             strings.TrimSpace(os.Getenv("ACCOUNT")),
		RefreshInterval:     getenvDuration("REFRESH_INTERVAL", DefaultRefreshInterval),
		WaitMinedTimeout:    getenvDuration("WAIT_MINED_TIMEOUT", DefaultWaitMinedTimeout),
		KeepPartialTimeline: getenvBool("KEEP_PARTIAL_TIMELINE", false),
		Debug:               getenvBool("DEBUG", false),
	}

	if v := strings.TrimSpace(os.Getenv("START_BLOCK")); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.StartBlock = &n
		} else {
			warnf("invalid START_BLOCK=%q, using the network default", v)
		}
	}

	if dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); dbURL != "" {
		if dialect, dsn, err := parseDatabaseURL(dbURL); err == nil {
			cfg.DBDialect = dialect
			cfg.DBDsn = dsn
		} else {
			warnf("invalid DATABASE_URL, disabling persistence: %v", err)
		}
	}

	return cfg
}

// ReadOnly reports whether no signing key is configured.
func (c Config) ReadOnly() bool {
	return c.PrivateKey == ""
}

func (c Config) String() string {
	return fmt.Sprintf("network=%d rpc=%s db=%s read_only=%t", c.NetworkID, c.RPCURL, c.DBDialect, c.ReadOnly())
}

// DebugString returns a human-friendly configuration string with masked secrets.
func (c Config) DebugString() string {
	start := "default"
	if c.StartBlock != nil {
		start = strconv.FormatUint(*c.StartBlock, 10)
	}
	return fmt.Sprintf(
		"network=%d networks_file=%s rpc=%s sepolia_rpc=%s key=%s account=%s start_block=%s db=%s dsn=%s refresh=%s wait_mined=%s keep_partial=%t",
		c.NetworkID,
		c.NetworksFile,
		c.RPCURL,
		c.SepoliaRPCURL,
		maskKey(c.PrivateKey),
		c.Account,
		start,
		c.DBDialect,
		maskDSN(c.DBDialect, c.DBDsn),
		c.RefreshInterval,
		c.WaitMinedTimeout,
		c.KeepPartialTimeline,
	)
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	return "***"
}

func maskDSN(dialect, dsn string) string {
	switch strings.ToLower(dialect) {
	case DatabaseSchemePostgres:
		if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
			if u.User != nil {
				username := u.User.Username()
				u.User = url.User(username)
			}
			return u.String()
		}
		// Fallback for DSN as key-value list
		parts := strings.Fields(dsn)
		for i, p := range parts {
			lower := strings.ToLower(p)
			if strings.HasPrefix(lower, "password=") {
				parts[i] = "password=***"
			}
		}
		return strings.Join(parts, " ")
	default:
		return dsn
	}
}
