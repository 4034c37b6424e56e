package cities

import "fmt"

// ValidationError reports a raw record that cannot be turned into a City.
// Record holds the offending record's content when it is known.
type ValidationError struct {
	Reason string
	Record map[string]any
}

func (e *ValidationError) Error() string {
	if e.Record != nil {
		return fmt.Sprintf("invalid city record: %s: %v", e.Reason, e.Record)
	}
	return fmt.Sprintf("invalid city record: %s", e.Reason)
}

// ConfigurationError reports a sort field outside the supported set.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown sort field %q", e.Field)
}
