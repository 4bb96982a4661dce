package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// flagSpec binds one "--name value" flag to a setter.
type flagSpec struct {
	name string
	set  func(value string) error
}

// parseFlags applies args to specs. Both "--name value" and "--name=value"
// are accepted. Unknown flags and positional arguments are errors.
func parseFlags(args []string, specs ...flagSpec) error {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		if !strings.HasPrefix(name, "--") {
			return fmt.Errorf("unexpected argument %q", arg)
		}

		var spec *flagSpec
		for j := range specs {
			if specs[j].name == name {
				spec = &specs[j]
				break
			}
		}
		if spec == nil {
			return fmt.Errorf("unknown flag %s", name)
		}

		if !hasValue {
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a value", name)
			}
			value = args[i+1]
			i++
		}
		if err := spec.set(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func stringFlag(name string, dst *string) flagSpec {
	return flagSpec{name: name, set: func(v string) error {
		*dst = v
		return nil
	}}
}

// positiveIntFlag accepts integers in [1, limit].
func positiveIntFlag(name string, dst *int, limit int) flagSpec {
	return flagSpec{name: name, set: func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid number %q", v)
		}
		if n <= 0 || n > limit {
			return fmt.Errorf("must be between 1 and %d, got %d", limit, n)
		}
		*dst = n
		return nil
	}}
}

func durationFlag(name string, dst *time.Duration) flagSpec {
	return flagSpec{name: name, set: func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		if d <= 0 {
			return fmt.Errorf("must be positive, got %s", v)
		}
		*dst = d
		return nil
	}}
}
