package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type Translations map[string]string

const fallbackLocale = "en"

var (
	locales = map[string]Translations{
		fallbackLocale: {
			"LOW":     "Low",
			"MEDIUM":  "Medium",
			"HIGH":    "High",
			"UNKNOWN": "Unknown",
		},
	}
	mu sync.RWMutex
)

// LoadTranslations reads <localePath>/<locale>/labels.yaml for every locale
// directory. Missing files are skipped; loaded keys override the built-in
// English labels.
func LoadTranslations(localePath string) error {
	mu.Lock()
	defer mu.Unlock()

	entries, err := os.ReadDir(localePath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := filepath.Join(localePath, locale, "labels.yaml")

		data, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}

		var file struct {
			Priorities Translations `yaml:"PRIORITIES"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filePath, err)
		}

		merged := Translations{}
		for k, v := range locales[locale] {
			merged[k] = v
		}
		for k, v := range file.Priorities {
			merged[k] = v
		}
		locales[locale] = merged
	}

	return nil
}

func Translate(locale, key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if trans, ok := locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != fallbackLocale {
		if val, ok := locales[fallbackLocale][key]; ok {
			return val
		}
	}

	return key
}
