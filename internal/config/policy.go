package config

import (
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NegotiationPolicy holds the offer negotiation rules operators may tune
// without a redeploy.
type NegotiationPolicy struct {
	// AcceptedIsTerminal refuses any status change out of accepted.
	AcceptedIsTerminal     bool `mapstructure:"acceptedIsTerminal"`
	MaxAdvanceValidityDays int  `mapstructure:"maxAdvanceValidityDays"`
	MaxRentScheduleMonths  int  `mapstructure:"maxRentScheduleMonths"`
}

func DefaultNegotiationPolicy() NegotiationPolicy {
	return NegotiationPolicy{
		AcceptedIsTerminal:     true,
		MaxAdvanceValidityDays: 90,
		MaxRentScheduleMonths:  24,
	}
}

type PolicyHolder struct {
	current atomic.Value // holds NegotiationPolicy
}

// NewStaticPolicyHolder returns a holder that never reloads.
func NewStaticPolicyHolder(policy NegotiationPolicy) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func NewPolicyHolder(cfg Config, log *zap.Logger) (*PolicyHolder, error) {
	v := viper.New()

	if cfg.PolicyPath != "" {
		v.SetConfigFile(cfg.PolicyPath)
	} else {
		v.SetConfigName("negotiation")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/rentora")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("RENTORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultNegotiationPolicy()
	v.SetDefault("negotiation.acceptedIsTerminal", defaults.AcceptedIsTerminal)
	v.SetDefault("negotiation.maxAdvanceValidityDays", defaults.MaxAdvanceValidityDays)
	v.SetDefault("negotiation.maxRentScheduleMonths", defaults.MaxRentScheduleMonths)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var policy NegotiationPolicy
	if err := v.UnmarshalKey("negotiation", &policy); err != nil {
		return nil, err
	}
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}

	holder := NewStaticPolicyHolder(policy)
	if !fileLoaded {
		return holder, nil
	}

	log = log.Named("negotiation.policy")
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated NegotiationPolicy
		if err := v.UnmarshalKey("negotiation", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validatePolicy(updated); err != nil {
			log.Warn("invalid policy ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("policy reloaded", zap.String("file", filepath.Base(e.Name)))
	})

	return holder, nil
}

func (h *PolicyHolder) Get() NegotiationPolicy {
	if h == nil {
		return DefaultNegotiationPolicy()
	}
	return h.current.Load().(NegotiationPolicy)
}

func validatePolicy(p NegotiationPolicy) error {
	if p.MaxAdvanceValidityDays < 1 {
		return errors.New("negotiation.maxAdvanceValidityDays must be positive")
	}
	if p.MaxRentScheduleMonths < 1 {
		return errors.New("negotiation.maxRentScheduleMonths must be positive")
	}
	return nil
}
