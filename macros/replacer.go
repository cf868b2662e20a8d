package macros

import "strings"

type Replacer interface {
	// Replace substitutes every occurrence of every macro the provider knows.
	// The returned flag reports whether anything was substituted.
	Replace(markup string, macroProvider Provider) (string, bool)
}

// NewReplacer will return instance of macro replacer
func NewReplacer() Replacer {
	return &stringBasedReplacer{}
}

// stringBasedReplacer works on the raw text and touches nothing outside the macro tokens,
// so markup around a token keeps its exact bytes.
type stringBasedReplacer struct{}

func (r *stringBasedReplacer) Replace(markup string, macroProvider Provider) (string, bool) {
	if macroProvider == nil {
		return markup, false
	}

	replaced := false
	for _, key := range macroProvider.Keys() {
		if !strings.Contains(markup, key) {
			continue
		}
		value, ok := macroProvider.GetMacro(key)
		if !ok {
			continue
		}
		markup = strings.ReplaceAll(markup, key, value)
		replaced = true
	}
	return markup, replaced
}
