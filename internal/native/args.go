package native

import "strconv"

// Arg returns args[i] or nil when the argument was not supplied.
func Arg(args []interface{}, i int) interface{} {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

// ArgString returns args[i] when it is a string.
func ArgString(args []interface{}, i int) (string, bool) {
	s, ok := Arg(args, i).(string)
	return s, ok
}

// ArgBool follows JS truthiness for the values a bridge can carry.
func ArgBool(args []interface{}, i int) bool {
	switch v := Arg(args, i).(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	case nil:
		return false
	default:
		return true
	}
}

// ArgInt accepts numbers and decimal strings.
func ArgInt(args []interface{}, i int) (int, bool) {
	switch v := Arg(args, i).(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
