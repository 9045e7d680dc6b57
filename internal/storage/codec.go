package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	apperrors "github.com/julianstephens/tendwell/internal/errors"
)

// GetInt reads an integer value. A missing key returns errors.ErrNotFound; a
// value that does not parse returns errors.ErrCorrupt.
func GetInt(p Provider, key string) (int, error) {
	raw, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", apperrors.ErrCorrupt, key, err)
	}
	return n, nil
}

// GetRecord decodes the JSON record stored under key into v.
func GetRecord(p Provider, key string, v any) error {
	raw, err := p.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrCorrupt, key, err)
	}
	return nil
}

func SetRecord(p Provider, key string, v any) error {
	raw, err := EncodeRecord(v)
	if err != nil {
		return err
	}
	return p.Set(key, raw)
}

// EncodeRecord renders v the way SetRecord stores it, for use with SetMany.
func EncodeRecord(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	return string(data), nil
}

// IsNotFound reports whether err means the key has no value.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// IsCorrupt reports whether err means the stored value could not be decoded.
func IsCorrupt(err error) bool {
	return errors.Is(err, apperrors.ErrCorrupt)
}
