package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoViews is returned by ChooseView when there is nothing to choose from.
var ErrNoViews = errors.New("prompt: no views found")

// ChooseView asks the user to pick one of views.
func ChooseView(ctx context.Context, driver Driver, views []string) (string, error) {
	switch len(views) {
	case 0:
		return "", ErrNoViews
	case 1:
		return views[0], nil
	}

	idx, err := driver.Select(ctx, SelectConfig{
		Message:  "View to render",
		Options:  views,
		PageSize: 15,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(views) {
		return "", fmt.Errorf("prompt: selection %d out of range", idx)
	}
	return views[idx], nil
}

// CollectLocals asks for key/value pairs until the user declines another.
// Values are read as YAML scalars, so 42 is a number and true a boolean.
// Entries are written into locals, which may be nil.
func CollectLocals(ctx context.Context, driver Driver, locals map[string]any) (map[string]any, error) {
	if locals == nil {
		locals = make(map[string]any)
	}
	for {
		more, err := driver.Confirm(ctx, ConfirmConfig{
			Message: "Add a local?",
			Default: len(locals) == 0,
		})
		if err != nil {
			return nil, err
		}
		if !more {
			return locals, nil
		}

		key, err := driver.Input(ctx, InputConfig{
			Message:   "Name",
			Validator: validKey,
		})
		if err != nil {
			return nil, err
		}
		key = strings.TrimSpace(key)
		if err := validKey(key); err != nil {
			return nil, err
		}

		raw, err := driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("Value for %s", key),
			Default: fmt.Sprint(valueOrEmpty(locals[key])),
		})
		if err != nil {
			return nil, err
		}
		locals[key] = ParseValue(raw)
	}
}

// ParseValue decodes raw as a YAML scalar, falling back to the raw string.
func ParseValue(raw string) any {
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return raw
	}
	switch value.(type) {
	case string, int, float64, bool:
		return value
	default:
		return raw
	}
}

func validKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("name is required")
	}
	if strings.ContainsAny(key, " .") {
		return fmt.Errorf("name %q must not contain spaces or dots", key)
	}
	return nil
}

func valueOrEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}
