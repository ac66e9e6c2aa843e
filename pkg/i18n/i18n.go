// Package i18n resolves user facing texts from embedded YAML catalogs
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// Catalog holds flattened message keys for one locale
type Catalog struct {
	locale   string
	messages map[string]string
}

// Load reads the catalog for locale
func Load(locale string) (*Catalog, error) {
	data, err := locales.ReadFile(fmt.Sprintf("locales/%s.yaml", locale))
	if err != nil {
		return nil, fmt.Errorf("unknown locale %q: %w", locale, err)
	}

	return Parse(locale, data)
}

// Parse builds a catalog from YAML bytes
func Parse(locale string, data []byte) (*Catalog, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse locale %q: %w", locale, err)
	}

	messages := make(map[string]string)
	flatten("", tree, messages)

	return &Catalog{locale: locale, messages: messages}, nil
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) {
	for key, value := range node {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case map[string]interface{}:
			flatten(fullKey, v, out)
		case string:
			out[fullKey] = v
		default:
			out[fullKey] = fmt.Sprint(v)
		}
	}
}

// Locale returns the catalog language
func (c *Catalog) Locale() string {
	return c.locale
}

// Get returns the message for key formatted with args; unknown keys return the key itself
func (c *Catalog) Get(key string, args ...interface{}) string {
	msg, ok := c.messages[key]
	if !ok {
		return key
	}
	if len(args) > 0 && strings.Contains(msg, "%") {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
