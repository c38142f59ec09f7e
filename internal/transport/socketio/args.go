package socketio

import (
	"errors"
	"strconv"
)

var errBadArgs = errors.New("invalid event payload")

// firstArg returns the value for key of a {key: value} payload, or a bare
// scalar payload.
func firstArg(args []any, key string) (any, bool) {
	if len(args) == 0 || args[0] == nil {
		return nil, false
	}
	if m, ok := args[0].(map[string]interface{}); ok {
		v, ok := m[key]
		return v, ok
	}
	return args[0], true
}

func intArg(args []any, key string) (int, bool) {
	v, ok := firstArg(args, key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}

func stringArg(args []any, key string) (string, bool) {
	v, ok := firstArg(args, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolArg(args []any, key string) (bool, bool) {
	v, ok := firstArg(args, key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
