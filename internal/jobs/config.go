package jobs

import (
	"os"
	"time"
)

// getString извлекает строку из map с default значением.
func getString(m map[string]any, key, defaultVal string) string {
	if val, ok := m[key]; ok {
		if s, ok := val.(string); ok {
			return os.ExpandEnv(s)
		}
	}
	return defaultVal
}

// getTimeout извлекает таймаут (timeout_sec) из конфигурации.
func getTimeout(config map[string]any, defaultVal time.Duration) time.Duration {
	if val, ok := config["timeout_sec"]; ok {
		switch v := val.(type) {
		case float64:
			if v > 0 {
				return time.Duration(v * float64(time.Second))
			}
		case int:
			if v > 0 {
				return time.Duration(v) * time.Second
			}
		}
	}
	return defaultVal
}

// getStringMap извлекает map[string]string (значения не-строки игнорируются).
func getStringMap(config map[string]any, key string) map[string]string {
	result := make(map[string]string)
	switch m := config[key].(type) {
	case map[string]any:
		for k, val := range m {
			if s, ok := val.(string); ok {
				result[k] = os.ExpandEnv(s)
			}
		}
	case map[string]string:
		for k, val := range m {
			result[k] = os.ExpandEnv(val)
		}
	}
	return result
}

// getStringSlice извлекает []string; ok=false, если элемент не строка.
func getStringSlice(config map[string]any, key string) ([]string, bool) {
	switch v := config[key].(type) {
	case nil:
		return nil, true
	case []string:
		result := make([]string, len(v))
		for i, s := range v {
			result[i] = os.ExpandEnv(s)
		}
		return result, true
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			result = append(result, os.ExpandEnv(s))
		}
		return result, true
	default:
		return nil, false
	}
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
