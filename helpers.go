package devtools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Verbose enables diagnostic output from the toolkit.
var Verbose bool

func Debug(args ...interface{}) {
	if Verbose {
		msg := ""
		for _, arg := range args {
			msg += fmt.Sprint(arg)
		}
		fmt.Println(msg)
	}
}

// Warn reports a non-fatal problem to stderr.
func Warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// Pretty renders any JSON-representable value as indented JSON.
func Pretty(obj interface{}) string {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(&obj); err != nil {
		return fmt.Sprint(obj)
	}
	return buf.String()
}

func AsMap(v interface{}) map[string]interface{} {
	if v != nil {
		if m, ok := v.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

func AsArray(v interface{}) []interface{} {
	if v != nil {
		if a, ok := v.([]interface{}); ok {
			return a
		}
	}
	return nil
}

func AsString(v interface{}) string {
	if v != nil {
		switch s := v.(type) {
		case string:
			return s
		case *string:
			return *s
		}
	}
	return ""
}

func AsBool(v interface{}) bool {
	if v != nil {
		if b, isBool := v.(bool); isBool {
			return b
		}
		return true
	}
	return false
}

func AsInt(v interface{}) int {
	return int(AsInt64(v))
}

func AsInt64(v interface{}) int64 {
	if v != nil {
		switch n := v.(type) {
		case int:
			return int64(n)
		case int32:
			return int64(n)
		case int64:
			return n
		case float32:
			return int64(n)
		case float64:
			return int64(n)
		}
	}
	return 0
}

func AsFloat64(v interface{}) float64 {
	if v != nil {
		switch n := v.(type) {
		case int:
			return float64(n)
		case int32:
			return float64(n)
		case int64:
			return float64(n)
		case float32:
			return float64(n)
		case float64:
			return n
		}
	}
	return 0
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
