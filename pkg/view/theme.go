package view

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

type themeConfig struct {
	selector theme.ThemeSelector
	name     string
	variant  string
}

// locals resolves the configured selection into the map exposed to templates
// as "theme". Variant tokens, templates and asset files override the
// manifest's.
func (t *themeConfig) locals() (map[string]any, error) {
	selection, err := t.selector.Select(t.name, t.variant)
	if err != nil {
		return nil, fmt.Errorf("view: select theme %q: %w", t.name, err)
	}
	if selection == nil {
		return nil, nil
	}

	tokens := map[string]string{}
	templates := map[string]string{}
	assets := map[string]string{}

	if manifest := selection.Manifest; manifest != nil {
		merge(tokens, manifest.Tokens)
		merge(templates, manifest.Templates)
		prefix := manifest.Assets.Prefix
		for key, file := range manifest.Assets.Files {
			assets[key] = assetURL(prefix, file)
		}

		if variant, ok := manifest.Variants[selection.Variant]; ok {
			merge(tokens, variant.Tokens)
			merge(templates, variant.Templates)
			variantPrefix := variant.Assets.Prefix
			if variantPrefix == "" {
				variantPrefix = prefix
			}
			for key, file := range variant.Assets.Files {
				assets[key] = assetURL(variantPrefix, file)
			}
		}
	}

	return map[string]any{
		"name":      selection.Theme,
		"variant":   selection.Variant,
		"tokens":    tokens,
		"templates": templates,
		"assets":    assets,
	}, nil
}

func merge(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}

func assetURL(prefix, file string) string {
	if prefix == "" {
		return file
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
}
