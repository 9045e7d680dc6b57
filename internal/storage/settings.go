package storage

import (
	"strings"

	"github.com/julianstephens/tendwell/internal/constants"
	"github.com/julianstephens/tendwell/internal/models"
)

// GetSettings reads every settings/* key. Missing keys keep their defaults.
func GetSettings(p Provider) (models.Settings, error) {
	keys, err := p.Keys(constants.KeySettingsPrefix)
	if err != nil {
		return models.Settings{}, err
	}

	data := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := p.Get(key)
		if err != nil {
			return models.Settings{}, err
		}
		data[strings.TrimPrefix(key, constants.KeySettingsPrefix)] = value
	}

	settings, err := models.MapToSettings(data)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

// SaveSettings writes all settings in one batch.
func SaveSettings(p Provider, settings models.Settings) error {
	values := make(map[string]string)
	for key, value := range models.SettingsToMap(settings) {
		values[constants.KeySettingsPrefix+key] = value
	}
	return p.SetMany(values)
}
