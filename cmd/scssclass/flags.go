package main

import (
	"fmt"
	"strconv"
	"strings"
)

// shortFlags maps single-dash aliases to their long names.
var shortFlags = map[string]string{
	"o": "output",
	"q": "quiet",
	"f": "force",
}

// cliFlags holds parsed command-line flags and positional arguments.
type cliFlags struct {
	values map[string]string
	bools  map[string]bool
	args   []string
}

// parseFlags parses "--name value", "--name=value", "-o value" and boolean
// switches. boolFlags lists the names that take no value. "--" ends flag
// parsing.
func parseFlags(args []string, boolFlags ...string) (*cliFlags, error) {
	isBool := make(map[string]bool, len(boolFlags))
	for _, name := range boolFlags {
		isBool[name] = true
	}

	f := &cliFlags{
		values: make(map[string]string),
		bools:  make(map[string]bool),
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			f.args = append(f.args, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			f.args = append(f.args, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value, hasValue := "", false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}
		if long, ok := shortFlags[name]; ok && !strings.HasPrefix(arg, "--") {
			name = long
		}
		if name == "" {
			return nil, fmt.Errorf("invalid flag %q", arg)
		}

		if isBool[name] {
			if !hasValue {
				f.bools[name] = true
				continue
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("flag --%s expects a boolean, got %q", name, value)
			}
			f.bools[name] = b
			continue
		}

		if !hasValue {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag --%s requires a value", name)
			}
			i++
			value = args[i]
		}
		f.values[name] = value
	}

	return f, nil
}

// String returns the value of a string flag and whether it was set.
func (f *cliFlags) String(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Int returns the value of an integer flag and whether it was set.
func (f *cliFlags) Int(name string) (int, bool, error) {
	v, ok := f.values[name]
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, fmt.Errorf("flag --%s expects an integer, got %q", name, v)
	}
	return n, true, nil
}

// Bool reports whether a boolean flag was set.
func (f *cliFlags) Bool(name string) bool {
	return f.bools[name]
}

// Args returns the positional arguments.
func (f *cliFlags) Args() []string {
	return f.args
}
