package config

import (
	"errors"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultDaemonAddress = "127.0.0.1:7878"

const (
	StorageBackendBbolt = "bbolt"
	StorageBackendFile  = "file"
)

const (
	defaultPollInterval   = time.Second
	defaultPollJitter     = 150 * time.Millisecond
	defaultPollMaxBackoff = 8 * time.Second
	defaultNextTimeout    = 3 * time.Second
	defaultToastDuration  = 5 * time.Second
	defaultPersistTimeout = 10 * time.Second
)

type CoreConfig struct {
	Daemon  CoreDaemonConfig  `toml:"daemon"`
	Logging CoreLoggingConfig `toml:"logging"`
	Storage CoreStorageConfig `toml:"storage"`
	Panel   PanelConfig       `toml:"panel"`
	UI      UIConfig          `toml:"ui"`
}

type CoreDaemonConfig struct {
	Address string `toml:"address"`
	// PersistTimeout bounds each background save to the daemon.
	PersistTimeout string `toml:"persist_timeout"`
}

type CoreLoggingConfig struct {
	Level string `toml:"level"`
}

type CoreStorageConfig struct {
	Backend string `toml:"backend"`
}

// PanelConfig durations are Go duration strings ("1s", "250ms").
type PanelConfig struct {
	PollInterval   string `toml:"poll_interval"`
	PollJitter     string `toml:"poll_jitter"`
	PollMaxBackoff string `toml:"poll_max_backoff"`
	NextTimeout    string `toml:"next_timeout"`
	DisablePush    bool   `toml:"disable_push"`
}

type UIConfig struct {
	ToastDuration string `toml:"toast_duration"`
}

func DefaultCoreConfig() CoreConfig {
	return CoreConfig{
		Daemon: CoreDaemonConfig{
			Address:        defaultDaemonAddress,
			PersistTimeout: defaultPersistTimeout.String(),
		},
		Logging: CoreLoggingConfig{
			Level: "info",
		},
		Storage: CoreStorageConfig{
			Backend: StorageBackendBbolt,
		},
		Panel: PanelConfig{
			PollInterval:   defaultPollInterval.String(),
			PollJitter:     defaultPollJitter.String(),
			PollMaxBackoff: defaultPollMaxBackoff.String(),
			NextTimeout:    defaultNextTimeout.String(),
		},
		UI: UIConfig{
			ToastDuration: defaultToastDuration.String(),
		},
	}
}

func LoadCoreConfig() (CoreConfig, error) {
	path, err := CoreConfigPath()
	if err != nil {
		return CoreConfig{}, err
	}
	return LoadCoreConfigFromPath(path)
}

func LoadCoreConfigFromPath(path string) (CoreConfig, error) {
	cfg := DefaultCoreConfig()
	if err := readTOML(path, &cfg); err != nil {
		return CoreConfig{}, err
	}
	return cfg, nil
}

// Marshal renders the configuration as TOML.
func (c CoreConfig) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func (c CoreConfig) DaemonAddress() string {
	addr := strings.TrimSpace(c.Daemon.Address)
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultDaemonAddress
	}
	return addr
}

func (c CoreConfig) DaemonBaseURL() string {
	return "http://" + c.DaemonAddress()
}

func (c CoreConfig) PersistTimeout() time.Duration {
	return durationOr(c.Daemon.PersistTimeout, defaultPersistTimeout)
}

func (c CoreConfig) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c CoreConfig) StorageBackend() string {
	switch backend := strings.ToLower(strings.TrimSpace(c.Storage.Backend)); backend {
	case "":
		return StorageBackendBbolt
	default:
		return backend
	}
}

func (c CoreConfig) PollInterval() time.Duration {
	return durationOr(c.Panel.PollInterval, defaultPollInterval)
}

func (c CoreConfig) PollJitter() time.Duration {
	jitter := durationOr(c.Panel.PollJitter, defaultPollJitter)
	if jitter >= c.PollInterval() {
		return c.PollInterval() / 2
	}
	return jitter
}

func (c CoreConfig) PollMaxBackoff() time.Duration {
	limit := durationOr(c.Panel.PollMaxBackoff, defaultPollMaxBackoff)
	if limit < c.PollInterval() {
		return c.PollInterval()
	}
	return limit
}

func (c CoreConfig) NextTimeout() time.Duration {
	return durationOr(c.Panel.NextTimeout, defaultNextTimeout)
}

func (c CoreConfig) PushEnabled() bool {
	return !c.Panel.DisablePush
}

func (c CoreConfig) ToastDuration() time.Duration {
	return durationOr(c.UI.ToastDuration, defaultToastDuration)
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
