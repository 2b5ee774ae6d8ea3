package palmsystem

import (
	"encoding/json"
	"fmt"

	"github.com/hack-pad/palmshim/internal/native"
	"github.com/pkg/errors"
)

// ResourceKindJSON asks GetResource to decode the resource as JSON.
const ResourceKindJSON = "const json"

var ErrDeserialize = errors.New("resource is not valid JSON")

// ResourceError reports a resource that could not be decoded.
type ResourceError struct {
	Key string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %q: %s: %v", e.Key, ErrDeserialize, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

func (e *ResourceError) Is(target error) bool {
	return target == ErrDeserialize
}

// GetResource reads a packaged resource through the native side. For ResourceKindJSON
// the contents are decoded; any other kind returns the raw text.
func (s *Store) GetResource(key, kind string) (interface{}, error) {
	contents, err := s.bridge.ExecSync(native.PalmSystem, native.OpGetResource, key, kind)
	if err != nil {
		return nil, errors.Wrapf(err, "getResource %q", key)
	}
	if kind != ResourceKindJSON {
		return contents, nil
	}
	var value interface{}
	if err := json.Unmarshal([]byte(contents), &value); err != nil {
		return nil, &ResourceError{Key: key, Err: err}
	}
	return value, nil
}
