package metrics

import "fmt"

// Tag creates a formatted DataDog tag string in "key:value" format.
func Tag(key, value string) string {
	return fmt.Sprintf("%s:%s", key, value)
}

// TierTag creates a cache tier tag (memory/redis/local).
func TierTag(tier string) string {
	return Tag("tier", tier)
}

// OperationTag creates an operation tag.
func OperationTag(op string) string {
	return Tag("operation", op)
}

// StatusTag creates a status tag (hit/miss/error).
func StatusTag(status string) string {
	return Tag("status", status)
}

// ServiceTag creates a downstream service tag.
func ServiceTag(service string) string {
	return Tag("service", service)
}

// BreakerStateTag creates a circuit breaker state tag.
func BreakerStateTag(state string) string {
	return Tag("breaker_state", state)
}
