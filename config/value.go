package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// Value is a configuration value that can be set from and rendered to its
// string representation, e.g. for environment variable overrides.
type Value interface {
	// String returns a string representation of the value.
	String() string

	// Set a new value from its string representation. Returns an error
	// if the given string can't be transformed to the value.
	Set(string) error

	// Validate the value. The returned error indicates what is wrong
	// with the current value. Returns nil if the value is OK.
	Validate() error

	// IsEmpty returns whether the value represents an empty
	// representation for that value.
	IsEmpty() bool
}

// string

type stringValue string

func newStringValue(p *string, val string) *stringValue {
	*p = val

	return (*stringValue)(p)
}

func (s *stringValue) Set(val string) error {
	*s = stringValue(val)
	return nil
}

func (s *stringValue) String() string {
	return string(*s)
}

func (s *stringValue) Validate() error {
	return nil
}

func (s *stringValue) IsEmpty() bool {
	return len(string(*s)) == 0
}

// array of strings

type stringListValue struct {
	p         *[]string
	separator string
}

func newStringListValue(p *[]string, val []string, separator string) *stringListValue {
	v := &stringListValue{
		p:         p,
		separator: separator,
	}

	*p = val

	return v
}

func (s *stringListValue) Set(val string) error {
	list := []string{}

	for _, elm := range strings.Split(val, s.separator) {
		elm = strings.TrimSpace(elm)
		if len(elm) != 0 {
			list = append(list, elm)
		}
	}

	*s.p = list

	return nil
}

func (s *stringListValue) String() string {
	if s.IsEmpty() {
		return "(empty)"
	}

	return strings.Join(*s.p, s.separator)
}

func (s *stringListValue) Validate() error {
	return nil
}

func (s *stringListValue) IsEmpty() bool {
	return len(*s.p) == 0
}

// bool

type boolValue bool

func newBoolValue(p *bool, val bool) *boolValue {
	*p = val

	return (*boolValue)(p)
}

func (b *boolValue) Set(val string) error {
	v, err := strconv.ParseBool(val)
	if err != nil {
		return err
	}

	*b = boolValue(v)

	return nil
}

func (b *boolValue) String() string {
	return strconv.FormatBool(bool(*b))
}

func (b *boolValue) Validate() error {
	return nil
}

func (b *boolValue) IsEmpty() bool {
	return !bool(*b)
}

// int

type intValue int

func newIntValue(p *int, val int) *intValue {
	*p = val

	return (*intValue)(p)
}

func (i *intValue) Set(val string) error {
	v, err := strconv.Atoi(val)
	if err != nil {
		return err
	}

	*i = intValue(v)

	return nil
}

func (i *intValue) String() string {
	return strconv.Itoa(int(*i))
}

func (i *intValue) Validate() error {
	return nil
}

func (i *intValue) IsEmpty() bool {
	return int(*i) == 0
}

// network address (host:port)

type addressValue string

var portOnly = regexp.MustCompile("^[0-9]+$")

func newAddressValue(p *string, val string) *addressValue {
	*p = val

	return (*addressValue)(p)
}

func (s *addressValue) Set(val string) error {
	// A bare port number is accepted as ":port".
	if portOnly.MatchString(val) {
		val = ":" + val
	}

	*s = addressValue(val)

	return nil
}

func (s *addressValue) String() string {
	return string(*s)
}

func (s *addressValue) Validate() error {
	if len(string(*s)) == 0 {
		return nil
	}

	_, port, err := net.SplitHostPort(string(*s))
	if err != nil {
		return err
	}

	if !portOnly.MatchString(port) {
		return fmt.Errorf("the port must be numerical")
	}

	return nil
}

func (s *addressValue) IsEmpty() bool {
	return len(string(*s)) == 0
}

// log level

type logLevelValue string

func newLogLevelValue(p *string, val string) *logLevelValue {
	*p = val

	return (*logLevelValue)(p)
}

func (s *logLevelValue) Set(val string) error {
	*s = logLevelValue(strings.ToLower(val))
	return nil
}

func (s *logLevelValue) String() string {
	return string(*s)
}

func (s *logLevelValue) Validate() error {
	switch string(*s) {
	case "silent", "error", "warn", "info", "debug":
		return nil
	}

	return fmt.Errorf("unknown log level: %s", string(*s))
}

func (s *logLevelValue) IsEmpty() bool {
	return len(string(*s)) == 0
}
