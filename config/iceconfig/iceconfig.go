// Package iceconfig reads container settings from the environment.
//
//	ICE_LOCK_TIMEOUT=250ms          wait for another goroutine's construction
//	ICE_CONSTRUCTION_LOCKING=false  turn the construction lock off process wide
//	ICE_LOG_LEVEL=debug             logrus level
//
// Values may come from .env files, which never override variables already set.
package iceconfig

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/ice/ice"
)

const (
	LockTimeoutEnv         = "ICE_LOCK_TIMEOUT"
	ConstructionLockingEnv = "ICE_CONSTRUCTION_LOCKING"
	LogLevelEnv            = "ICE_LOG_LEVEL"
)

type Settings struct {
	LockTimeout         time.Duration
	ConstructionLocking bool
	LogLevel            log.Level
}

func DefaultSettings() Settings {
	return Settings{
		LockTimeout:         ice.DefaultLockTimeout,
		ConstructionLocking: true,
		LogLevel:            log.InfoLevel,
	}
}

// Load reads the given .env files, ".env" when none are given, then the
// environment. A missing default .env is fine; a missing named file is not.
func Load(envFiles ...string) (Settings, error) {
	return LoadWithOverrides(nil, envFiles...)
}

// LoadWithOverrides is Load, but values in overrides win over the environment.
func LoadWithOverrides(overrides map[string]string, envFiles ...string) (Settings, error) {
	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Settings{}, errors.Wrapf(err, "loading %v", envFiles)
		}
	}
	return FromEnv(func(k string) string {
		if v, ok := overrides[k]; ok {
			return v
		}
		return os.Getenv(k)
	})
}

// FromEnv parses settings with getenv; unset variables keep their defaults.
func FromEnv(getenv func(string) string) (Settings, error) {
	s := DefaultSettings()
	if v := getenv(LockTimeoutEnv); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Settings{}, errors.Wrapf(err, "%s", LockTimeoutEnv)
		}
		if d < 0 {
			return Settings{}, errors.Errorf("%s must not be negative; was %v", LockTimeoutEnv, d)
		}
		s.LockTimeout = d
	}
	if v := getenv(ConstructionLockingEnv); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Settings{}, errors.Wrapf(err, "%s", ConstructionLockingEnv)
		}
		s.ConstructionLocking = b
	}
	if v := getenv(LogLevelEnv); v != "" {
		l, err := log.ParseLevel(v)
		if err != nil {
			return Settings{}, errors.Wrapf(err, "%s", LogLevelEnv)
		}
		s.LogLevel = l
	}
	return s, nil
}

// FromMap parses settings from a map, e.g. one read with godotenv.Read.
func FromMap(env map[string]string) (Settings, error) {
	return FromEnv(func(k string) string { return env[k] })
}

// Apply sets the process wide switches and returns the container options.
func (s Settings) Apply() []ice.Option {
	ice.SetConstructionLocking(s.ConstructionLocking)
	log.SetLevel(s.LogLevel)
	return []ice.Option{ice.WithLockTimeout(s.LockTimeout)}
}
