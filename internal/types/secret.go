package types

import "encoding/json"

// SecretString holds a sensitive value (a Redis password) and redacts it
// in String and JSON output so it cannot leak through logs or config dumps.
type SecretString struct {
	value string
}

func NewSecretString(value string) SecretString {
	return SecretString{value: value}
}

func (s SecretString) Value() string {
	return s.value
}

func (s SecretString) IsEmpty() bool {
	return s.value == ""
}

func (s SecretString) String() string {
	if s.value == "" {
		return ""
	}
	return "[REDACTED]"
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SecretString) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.value)
}

// UnmarshalYAML lets secrets be read from YAML config files.
func (s *SecretString) UnmarshalYAML(unmarshal func(any) error) error {
	return unmarshal(&s.value)
}
