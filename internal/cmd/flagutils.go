package cmd

import (
	"fmt"
	"slices"
	"strings"
)

// FlagEnum is a pflag.Value restricted to a fixed set of strings. Values are
// matched case-insensitively and stored in their canonical spelling.
type FlagEnum struct {
	Allowed []string
	Value   string
}

func NewEnum(allowed []string, d string) *FlagEnum {
	return &FlagEnum{
		Allowed: allowed,
		Value:   d,
	}
}

func (a FlagEnum) String() string {
	return a.Value
}

func (a *FlagEnum) Set(p string) error {
	idx := slices.IndexFunc(a.Allowed, func(opt string) bool {
		return strings.EqualFold(opt, strings.TrimSpace(p))
	})
	if idx < 0 {
		return fmt.Errorf("invalid value %q, must be one of %v", p, a.Allowed)
	}
	a.Value = a.Allowed[idx]
	return nil
}

func (a *FlagEnum) Type() string {
	return "string"
}
