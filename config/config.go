// Package config loads the engine's runtime configuration: where
// repository state lives on disk, how long each role's metadata is
// valid by default, and how to reach a hardware/remote signer if one is
// configured. Adapted from the teacher's config.Configuration, with
// spf13/viper doing the file/env merging the teacher's cmd/notary main
// sets up by hand.
package config

import (
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Configuration is the top-level object every other setting is
// namespaced under.
type Configuration struct {
	RepoRoot     string           `mapstructure:"repo_root"`
	TrustService TrustServiceConf `mapstructure:"trust_service"`
	Expiry       ExpiryConf       `mapstructure:"expiry"`
}

// TrustServiceConf selects where signing keys live. Type "local" signs
// with the on-disk KeyFileStore; "remote" dials the hwtoken gRPC client
// at Hostname:Port.
type TrustServiceConf struct {
	Type         string `mapstructure:"type"`
	Hostname     string `mapstructure:"hostname"`
	Port         string `mapstructure:"port"`
	SerialNumber string `mapstructure:"serial_number"`
	TLSCAFile    string `mapstructure:"tls_ca_file"`
}

// ExpiryConf overrides the default per-role expiry intervals (in days);
// a zero value leaves the engine's built-in default for that role.
type ExpiryConf struct {
	Root      int `mapstructure:"root"`
	Targets   int `mapstructure:"targets"`
	Snapshot  int `mapstructure:"snapshot"`
	Timestamp int `mapstructure:"timestamp"`
}

// ToIntervals converts the configured overrides into the
// data.SetDefaultExpiryTimes-shaped interval map, skipping any role left
// at zero so the engine's own defaults apply.
func (e ExpiryConf) ToIntervals() map[string]int {
	out := map[string]int{}
	if e.Root > 0 {
		out["root"] = e.Root
	}
	if e.Targets > 0 {
		out["targets"] = e.Targets
	}
	if e.Snapshot > 0 {
		out["snapshot"] = e.Snapshot
	}
	if e.Timestamp > 0 {
		out["timestamp"] = e.Timestamp
	}
	return out
}

// Load reads configuration from configPath if it is non-empty, otherwise
// from the first taf.yaml found in ./ or $HOME/.taf; TAF_-prefixed
// environment variables take precedence over values from the file. A
// "~"-relative repo_root is expanded to the user's home directory.
func Load(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigName("taf")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home + "/.taf")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix("TAF")
	v.AutomaticEnv()

	v.SetDefault("repo_root", "./.taf")
	v.SetDefault("trust_service.type", "local")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var conf Configuration
	if err := v.Unmarshal(&conf); err != nil {
		return nil, err
	}
	repoRoot, err := homedir.Expand(conf.RepoRoot)
	if err != nil {
		return nil, err
	}
	conf.RepoRoot = repoRoot
	return &conf, nil
}

// DialTimeout is the default dial timeout for a "remote" trust service;
// TrustServiceConf has no field that overrides it.
const DialTimeout = 5 * time.Second
