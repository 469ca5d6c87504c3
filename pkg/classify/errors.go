package classify

import (
	"errors"
	"fmt"
)

// Sentinel errors for table construction.
var (
	errNoGroups       = errors.New("no feature groups given")
	errEmptyGroupName = errors.New("feature group has no name")
)

// ConfigError reports a malformed or ambiguous rule-table configuration. It
// is fatal at load or activation time: a table that produced one must not be
// used, and an activation that produced one leaves prior state untouched.
type ConfigError struct {
	// Group is the feature group involved, "" when the error is table-wide.
	Group string

	// Rule is the offending rule's name, "" when the error is group-wide.
	Rule string

	// Reason describes what is wrong.
	Reason string
}

// Error implements the error interface.
func (configErr *ConfigError) Error() string {
	switch {
	case configErr.Group != "" && configErr.Rule != "":
		return fmt.Sprintf("classify: group %q: rule %q: %s", configErr.Group, configErr.Rule, configErr.Reason)
	case configErr.Group != "":
		return fmt.Sprintf("classify: group %q: %s", configErr.Group, configErr.Reason)
	default:
		return fmt.Sprintf("classify: %s", configErr.Reason)
	}
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError

	return errors.As(err, &configErr)
}
