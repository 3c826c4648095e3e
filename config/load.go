package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Load reads the config file at path, fills in defaults and validates the rules.
func Load(path string) (*YARPConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("dashboard.bindAddr", "127.0.0.1:8080")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("couldn't load config: %w", err)
	}

	var cfg YARPConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *YARPConfig) normalize() error {
	for i, rule := range c.TCP {
		if rule.BindAddr == "" || rule.Target == "" {
			return fmt.Errorf("tcp rule %d: bindAddr and target are required", i)
		}
	}
	for name, s := range map[string]*Sniff{"http": c.HTTP, "https": c.HTTPS} {
		if s == nil {
			continue
		}
		if err := s.normalize(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (s *Sniff) normalize() error {
	if s.BindAddr == "" {
		return errors.New("bindAddr is required")
	}
	if s.BufferSize < 0 {
		return fmt.Errorf("invalid bufferSize %d", s.BufferSize)
	}
	if s.BufferSize == 0 {
		s.BufferSize = DefaultSniffBufferSize
	}
	for _, rule := range s.Rules {
		if len(rule.Host) == 0 || len(rule.Target) == 0 {
			return errors.New("host or target host are empty")
		}
		if rule.Host[0] == '*' && len(rule.Host) < 2 {
			return fmt.Errorf("invalid host format: %v", rule.Host)
		}
	}
	return nil
}
