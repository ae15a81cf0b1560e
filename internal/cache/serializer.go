package cache

import (
	"encoding/json"

	"github.com/wellfolk/lifeline/internal/types"
)

// JSONSerializer is the default payload codec. Cached values must be
// JSON-serializable; callers with other needs can inject their own.
type JSONSerializer struct{}

func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (s *JSONSerializer) Unmarshal(data []byte, dest any) error {
	return json.Unmarshal(data, dest)
}

var _ types.Serializer = (*JSONSerializer)(nil)
