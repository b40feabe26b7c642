package main

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"outreach/internal/config"
)

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type ConfigCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.CoreConfig, error)
}

type configOutput struct {
	CoreConfigPath string                `json:"core_config_path,omitempty" toml:"core_config_path,omitempty"`
	Daemon         effectiveDaemonConfig `json:"daemon" toml:"daemon"`
	Logging        effectiveLogging      `json:"logging" toml:"logging"`
	Storage        effectiveStorage      `json:"storage" toml:"storage"`
	Panel          effectivePanel        `json:"panel" toml:"panel"`
	UI             effectiveUI           `json:"ui" toml:"ui"`
}

type effectiveDaemonConfig struct {
	Address        string `json:"address" toml:"address"`
	BaseURL        string `json:"base_url" toml:"base_url"`
	PersistTimeout string `json:"persist_timeout" toml:"persist_timeout"`
}

type effectiveLogging struct {
	Level string `json:"level" toml:"level"`
}

type effectiveStorage struct {
	Backend string `json:"backend" toml:"backend"`
}

type effectivePanel struct {
	PollInterval   string `json:"poll_interval" toml:"poll_interval"`
	PollJitter     string `json:"poll_jitter" toml:"poll_jitter"`
	PollMaxBackoff string `json:"poll_max_backoff" toml:"poll_max_backoff"`
	NextTimeout    string `json:"next_timeout" toml:"next_timeout"`
	Push           bool   `json:"push" toml:"push"`
}

type effectiveUI struct {
	ToastDuration string `json:"toast_duration" toml:"toast_duration"`
}

func NewConfigCommand(stdout, stderr io.Writer, loadConfig func() (config.CoreConfig, error)) *ConfigCommand {
	if loadConfig == nil {
		loadConfig = config.LoadCoreConfig
	}
	return &ConfigCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatTOML, "output format: toml|json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}

	cfg := config.DefaultCoreConfig()
	if !*defaults {
		cfg, err = c.loadConfig()
		if err != nil {
			return err
		}
	}
	out := buildConfigOutput(cfg)
	if path, err := config.CoreConfigPath(); err == nil {
		out.CoreConfigPath = path
	}
	return writeConfigOutput(c.stdout, resolvedFormat, out)
}

func buildConfigOutput(cfg config.CoreConfig) configOutput {
	return configOutput{
		Daemon: effectiveDaemonConfig{
			Address:        cfg.DaemonAddress(),
			BaseURL:        cfg.DaemonBaseURL(),
			PersistTimeout: cfg.PersistTimeout().String(),
		},
		Logging: effectiveLogging{Level: cfg.LogLevel()},
		Storage: effectiveStorage{Backend: cfg.StorageBackend()},
		Panel: effectivePanel{
			PollInterval:   cfg.PollInterval().String(),
			PollJitter:     cfg.PollJitter().String(),
			PollMaxBackoff: cfg.PollMaxBackoff().String(),
			NextTimeout:    cfg.NextTimeout().String(),
			Push:           cfg.PushEnabled(),
		},
		UI: effectiveUI{ToastDuration: cfg.ToastDuration().String()},
	}
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format: " + format)
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatTOML:
		return configFormatTOML, nil
	case configFormatJSON:
		return configFormatJSON, nil
	default:
		return "", errors.New("unsupported format: " + raw)
	}
}
