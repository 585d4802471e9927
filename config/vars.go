package config

import (
	"fmt"
	"os"
)

type variable struct {
	value       Value  // The actual value
	defVal      string // The default value in string representation
	name        string // A name for this value
	envName     string // The environment variable that corresponds to this value
	description string // A description for this value
	required    bool   // Whether a non-empty value is required
	merged      bool   // Whether this value has been replaced by its corresponding environment variable
}

// Variable is the openly visible description of a configuration value.
type Variable struct {
	Value       string
	Name        string
	EnvName     string
	Description string
	Merged      bool
}

type message struct {
	message  string   // The log message
	variable Variable // The config field this message refers to
	level    string   // The loglevel for this message
}

type variables struct {
	vars []*variable
	logs []message
}

func (vs *variables) register(val Value, name, envName, description string, required bool) {
	vs.vars = append(vs.vars, &variable{
		value:       val,
		defVal:      val.String(),
		name:        name,
		envName:     envName,
		description: description,
		required:    required,
	})
}

func (vs *variables) find(name string) *variable {
	for _, v := range vs.vars {
		if v.name == name {
			return v
		}
	}

	return nil
}

// Get returns the string representation of the value with the given name.
func (vs *variables) Get(name string) (string, error) {
	v := vs.find(name)
	if v == nil {
		return "", fmt.Errorf("variable not found")
	}

	return v.value.String(), nil
}

// Set sets the value with the given name from its string representation.
func (vs *variables) Set(name, val string) error {
	v := vs.find(name)
	if v == nil {
		return fmt.Errorf("variable not found")
	}

	return v.value.Set(val)
}

func (vs *variables) log(level, name string, format string, args ...interface{}) {
	v := vs.find(name)
	if v == nil {
		return
	}

	vs.logs = append(vs.logs, message{
		message: fmt.Sprintf(format, args...),
		variable: Variable{
			Value:       v.value.String(),
			Name:        v.name,
			EnvName:     v.envName,
			Description: v.description,
			Merged:      v.merged,
		},
		level: level,
	})
}

// Merge applies the corresponding environment variables to the values.
func (vs *variables) Merge() {
	for _, v := range vs.vars {
		if len(v.envName) == 0 {
			continue
		}

		value, ok := os.LookupEnv(v.envName)
		if !ok {
			continue
		}

		if err := v.value.Set(value); err != nil {
			vs.log("error", v.name, "invalid value from %s: %s", v.envName, err.Error())
			continue
		}

		v.merged = true
	}
}

// Validate checks all values and records a message for each violation.
func (vs *variables) Validate(resetLogs bool) {
	if resetLogs {
		vs.logs = nil
	}

	for _, v := range vs.vars {
		if v.required && v.value.IsEmpty() {
			vs.log("error", v.name, "a value is required")
			continue
		}

		if err := v.value.Validate(); err != nil {
			vs.log("error", v.name, "%s", err.Error())
		}
	}
}

// HasErrors returns whether validation recorded any error message.
func (vs *variables) HasErrors() bool {
	for _, l := range vs.logs {
		if l.level == "error" {
			return true
		}
	}

	return false
}

// Messages calls the given callback for each recorded message.
func (vs *variables) Messages(logger func(level string, v Variable, message string)) {
	for _, l := range vs.logs {
		logger(l.level, l.variable, l.message)
	}
}

// Overrides returns the names of all values that have been replaced by
// their environment variable.
func (vs *variables) Overrides() []string {
	overrides := []string{}

	for _, v := range vs.vars {
		if v.merged {
			overrides = append(overrides, v.name)
		}
	}

	return overrides
}
