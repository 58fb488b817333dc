// Package coreconfig loads the core's tunables from a YAML file with
// environment-variable overrides via spf13/viper. Every tunable the
// core state machines need (active-period window, SCO-sync timeout,
// handover retry backoff/count, in-case watchdog, stop timeout, VA
// pre-roll buffer) lives here so a deployment can override one without
// rebuilding. The state-machine packages do not read CoreConfig: each
// uses its own built-in constant with the same default value, so a
// loaded override changes only the returned struct.
package coreconfig

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// CoreConfig holds every configurable timing/behavior constant consumed
// by the core state machines.
type CoreConfig struct {
	// PeerActiveWindow is how long pkg/mirror requests the peer link stay
	// Active around a mirror transition.
	PeerActiveWindow time.Duration `mapstructure:"peer_active_window" yaml:"peer_active_window"`

	// MirrorTransitionTimeout bounds a mirror-profile transition before
	// it unwinds to the prior steady state.
	MirrorTransitionTimeout time.Duration `mapstructure:"mirror_transition_timeout" yaml:"mirror_transition_timeout"`

	// ScoSyncTimeout bounds the SCO-sync interceptor's hold window
	//.
	ScoSyncTimeout time.Duration `mapstructure:"sco_sync_timeout" yaml:"sco_sync_timeout"`

	// HandoverMaxRetries caps dynamic-handover retry attempts
	//.
	HandoverMaxRetries int `mapstructure:"handover_max_retries" yaml:"handover_max_retries"`

	// InCaseWatchdogSeconds is the in-case teardown timer
	//.
	InCaseWatchdogSeconds int `mapstructure:"in_case_watchdog_seconds" yaml:"in_case_watchdog_seconds"`

	// TopologyStopTimeout bounds TwsTopology_Stop.
	TopologyStopTimeout time.Duration `mapstructure:"topology_stop_timeout" yaml:"topology_stop_timeout"`

	// HandsetStreamingStopTimeout bounds how long connect-handset waits
	// for AV streaming to stop before giving up.
	HandsetStreamingStopTimeout time.Duration `mapstructure:"handset_streaming_stop_timeout" yaml:"handset_streaming_stop_timeout"`

	// VAPreRollMs is the wake-word pre-roll buffer duration in
	// milliseconds.
	VAPreRollMs int `mapstructure:"va_preroll_ms" yaml:"va_preroll_ms"`

	// VASampleRate is the capture sample rate in Hz used to size the
	// pre-roll splitter buffer.
	VASampleRate int `mapstructure:"va_sample_rate" yaml:"va_sample_rate"`
}

// Defaults returns the configuration a deployment gets with no file and
// no environment overrides.
func Defaults() CoreConfig {
	return CoreConfig{
		PeerActiveWindow:            2 * time.Second,
		MirrorTransitionTimeout:     5 * time.Second,
		ScoSyncTimeout:              500 * time.Millisecond,
		HandoverMaxRetries:          20,
		InCaseWatchdogSeconds:       30,
		TopologyStopTimeout:         2 * time.Second,
		HandsetStreamingStopTimeout: 30 * time.Second,
		VAPreRollMs:                 2000,
		VASampleRate:                16000,
	}
}

// Load reads path (if non-empty and it exists) as YAML over the
// defaults, then applies environment overrides prefixed EARBUD_ (e.g.
// EARBUD_HANDOVER_MAX_RETRIES).
func Load(path string) (CoreConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("EARBUD")
	v.AutomaticEnv()

	cfg := Defaults()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return CoreConfig{}, fmt.Errorf("coreconfig: read %s: %w", path, err)
			}
		}
	}

	var out CoreConfig
	if err := v.Unmarshal(&out); err != nil {
		return CoreConfig{}, fmt.Errorf("coreconfig: unmarshal: %w", err)
	}
	return out, nil
}

// Template renders the default configuration as commented-free YAML,
// suitable for writing out as a starting point for a deployment's config
// file. Marshalled directly with yaml.v3 rather than through viper, since
// viper has no inverse of ReadInConfig for an in-memory struct.
func Template() ([]byte, error) {
	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return nil, fmt.Errorf("coreconfig: marshal template: %w", err)
	}
	return data, nil
}

func setDefaults(v *viper.Viper, cfg CoreConfig) {
	v.SetDefault("peer_active_window", cfg.PeerActiveWindow)
	v.SetDefault("mirror_transition_timeout", cfg.MirrorTransitionTimeout)
	v.SetDefault("sco_sync_timeout", cfg.ScoSyncTimeout)
	v.SetDefault("handover_max_retries", cfg.HandoverMaxRetries)
	v.SetDefault("in_case_watchdog_seconds", cfg.InCaseWatchdogSeconds)
	v.SetDefault("topology_stop_timeout", cfg.TopologyStopTimeout)
	v.SetDefault("handset_streaming_stop_timeout", cfg.HandsetStreamingStopTimeout)
	v.SetDefault("va_preroll_ms", cfg.VAPreRollMs)
	v.SetDefault("va_sample_rate", cfg.VASampleRate)
}
