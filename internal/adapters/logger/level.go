package logger

import (
	"sort"
	"strings"
)

// LogLevel defines the logging threshold shared by every adapter.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel converts a string level to LogLevel. Unknown values map to Info.
func ParseLevel(levelStr string) LogLevel {
	s := strings.ToUpper(strings.TrimSpace(levelStr))
	if s == "WARNING" {
		return LevelWarn
	}
	for level, name := range levelNames {
		if name == s {
			return level
		}
	}
	return LevelInfo
}

// field is one key/value pair of a log entry.
type field struct {
	Key   string
	Value interface{}
}

// flattenFields returns the first fields map as key-sorted pairs.
func flattenFields(fields []map[string]interface{}) []field {
	if len(fields) == 0 || len(fields[0]) == 0 {
		return nil
	}
	out := make([]field, 0, len(fields[0]))
	for k, v := range fields[0] {
		out = append(out, field{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
