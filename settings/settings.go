package settings

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/jonwraymond/dispatchops/observe"
)

// File is the root of a settings document.
type File struct {
	Endpoint  string          `yaml:"endpoint"`
	Observe   *observe.Config `yaml:"observe"`
	Defaults  Section         `yaml:"defaults"`
	Immediate Section         `yaml:"immediate"`
	Batch     Section         `yaml:"batch"`
}

// Section holds the strategies of one tier or mode. Either may be omitted.
type Section struct {
	Policy   *Retry    `yaml:"policy"`
	Pipeline *Pipeline `yaml:"pipeline"`
}

// Retry configures a bounded retry.
type Retry struct {
	MaxRetries   *int          `yaml:"max_retries"` // retries after the first attempt, at least 1; omitted means 3
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	Backoff      string        `yaml:"backoff"` // exponential|linear|constant
	Jitter       bool          `yaml:"jitter"`
}

// Pipeline configures a resilience pipeline. Unset layers are skipped.
type Pipeline struct {
	RateLimit      *RateLimit      `yaml:"rate_limit"`
	Bulkhead       *Bulkhead       `yaml:"bulkhead"`
	CircuitBreaker *CircuitBreaker `yaml:"circuit_breaker"`
	Retry          *Retry          `yaml:"retry"`
	Timeout        time.Duration   `yaml:"timeout"`
}

// CircuitBreaker configures a circuit breaker layer.
type CircuitBreaker struct {
	MaxFailures         int           `yaml:"max_failures"`
	ResetTimeout        time.Duration `yaml:"reset_timeout"`
	HalfOpenMaxRequests int           `yaml:"half_open_max_requests"`
	Interval            time.Duration `yaml:"interval"`
}

// Bulkhead configures a concurrency limit layer.
type Bulkhead struct {
	MaxConcurrent int           `yaml:"max_concurrent"`
	MaxWait       time.Duration `yaml:"max_wait"`
}

// RateLimit configures a rate limit layer.
type RateLimit struct {
	Rate        float64       `yaml:"rate"`
	Burst       int           `yaml:"burst"`
	WaitOnLimit bool          `yaml:"wait_on_limit"`
	MaxWait     time.Duration `yaml:"max_wait"`
}

// Load reads envFiles into the environment, then reads and parses the YAML
// file at path. Variables already set in the environment win over dotenv
// values.
func Load(path string, envFiles ...string) (*File, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, decodes it and validates the
// result. Unknown keys and unset ${VAR} references are rejected.
func Parse(data []byte) (*File, error) {
	expanded, err := expandEnv(string(data))
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.UnmarshalStrict([]byte(expanded), &f); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks every configured strategy.
func (f *File) Validate() error {
	if f.Observe != nil {
		if err := f.Observe.Validate(); err != nil {
			return fmt.Errorf("observe: %w", err)
		}
	}

	sections := []struct {
		name string
		s    Section
	}{
		{"defaults", f.Defaults},
		{"immediate", f.Immediate},
		{"batch", f.Batch},
	}
	for _, sec := range sections {
		if err := sec.s.validate(sec.name); err != nil {
			return err
		}
	}
	return nil
}

func (s Section) validate(path string) error {
	if s.Policy != nil {
		if err := s.Policy.validate(path + ".policy"); err != nil {
			return err
		}
	}
	if s.Pipeline != nil {
		if err := s.Pipeline.validate(path + ".pipeline"); err != nil {
			return err
		}
	}
	return nil
}

func (r *Retry) validate(path string) error {
	switch {
	case r.MaxRetries != nil && *r.MaxRetries < 1:
		return invalid(path+".max_retries", *r.MaxRetries)
	case r.InitialDelay < 0:
		return invalid(path+".initial_delay", r.InitialDelay)
	case r.MaxDelay < 0:
		return invalid(path+".max_delay", r.MaxDelay)
	case r.Multiplier < 0:
		return invalid(path+".multiplier", r.Multiplier)
	}
	if _, ok := backoffStrategies[r.Backoff]; !ok {
		return invalid(path+".backoff", r.Backoff)
	}
	return nil
}

func (p *Pipeline) validate(path string) error {
	if p.Timeout < 0 {
		return invalid(path+".timeout", p.Timeout)
	}
	if rl := p.RateLimit; rl != nil && (rl.Rate < 0 || rl.Burst < 0 || rl.MaxWait < 0) {
		return invalid(path+".rate_limit", *rl)
	}
	if b := p.Bulkhead; b != nil && (b.MaxConcurrent < 0 || b.MaxWait < 0) {
		return invalid(path+".bulkhead", *b)
	}
	if cb := p.CircuitBreaker; cb != nil &&
		(cb.MaxFailures < 0 || cb.ResetTimeout < 0 || cb.HalfOpenMaxRequests < 0 || cb.Interval < 0) {
		return invalid(path+".circuit_breaker", *cb)
	}
	if p.Retry != nil {
		return p.Retry.validate(path + ".retry")
	}
	return nil
}

func invalid(path string, value any) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, value)
}
