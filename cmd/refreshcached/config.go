package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the structure of refreshcached's configuration file. Shaped
// after dylandreimerink-sharedhttpcache/cmd/sharedhttpcache/main.go's
// Config: a single mapstructure-tagged struct populated via viper, with
// defaults registered in init().
type Config struct {
	Listen  ListenConfig   `mapstructure:"listen"`
	Workers []WorkerConfig `mapstructure:"workers"`
}

// ListenConfig controls the metrics HTTP listener.
type ListenConfig struct {
	Address string `mapstructure:"address"`
}

// WorkerConfig describes one key to register against the demo registry at
// startup: a monotonic counter namespaced by Key, refreshed every
// RefreshInterval and expired after TTL.
type WorkerConfig struct {
	Key             string        `mapstructure:"key"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	TTL             time.Duration `mapstructure:"ttl"`
}

func init() {
	viper.SetDefault("listen.address", ":9090")
	viper.SetDefault("workers", []map[string]interface{}{
		{"key": "demo_counter", "refresh_interval": "10s", "ttl": "60s"},
	})
}

var config Config

func initConfig() error {
	flagSet := pflag.NewFlagSet("refreshcached", pflag.ContinueOnError)
	flagSet.String("config", "", "path to a refreshcached config file (YAML); defaults are used if omitted")

	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		flagSet.PrintDefaults()
		os.Exit(0)
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	configPath, err := flagSet.GetString("config")
	if err != nil {
		return err
	}

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %q: %w", configPath, err)
		}
	}

	return viper.Unmarshal(&config)
}
