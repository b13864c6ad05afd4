// redact — безопасное маскирование чувствительных значений в логах.
package redact

import "strings"

// Email маскирует локальную часть адреса: "jo***@example.com".
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := parts[0], parts[1]
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Key оставляет только префикс API-ключа: "letr_ab***".
func Key(s string) string {
	if len(s) <= 7 {
		return "***"
	}

	return s[:7] + "***"
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
