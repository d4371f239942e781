// Package config exposes the handful of environment-driven tunables read by
// the CLI: the VM step budget, the register-file cap, and the parse-error
// cap. Only the step budget is wired into the pipeline (cmd/brief passes it
// to the run command); the other two are read but not consumed anywhere.
package config

import "github.com/caarlos0/env/v6"

// Config holds the tunables read from the process environment, each
// prefixed BRIEF_ per mainer's own EnvPrefix convention in internal/maincmd.
type Config struct {
	// MaxSteps bounds the number of instructions lang/vm.VM.Run executes
	// before aborting; 0 means unbounded.
	MaxSteps int `env:"BRIEF_MAX_STEPS" envDefault:"0"`

	// MaxRegisters is a register-file size limit for a single chunk. It is
	// read from the environment but no package consumes it.
	MaxRegisters int `env:"BRIEF_MAX_REGS" envDefault:"256"`

	// MaxParseErrors is a parse-error count limit. No package reads it: the
	// parser applies its own fixed cap of 50.
	MaxParseErrors int `env:"BRIEF_MAX_PARSE_ERRORS" envDefault:"50"`
}

// Load reads Config from the environment, applying the defaults above for
// any variable that is unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
