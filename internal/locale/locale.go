// Package locale provides translated wording for the compact date display formats.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-compactdates/internal/config"
	"github.com/tartampluch/go-compactdates/internal/engine"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// Catalog holds the translation bundle built from the embedded locale files.
type Catalog struct {
	bundle    *i18n.Bundle
	languages []string
}

// NewCatalog loads every embedded "active.<lang>.json" file.
// Files that fail to load are logged and skipped; English stays the fallback.
func NewCatalog() (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detected = append(detected, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	return &Catalog{bundle: bundle, languages: detected}, nil
}

// Languages returns the language codes that were loaded, sorted.
func (c *Catalog) Languages() []string {
	out := slices.Clone(c.languages)
	slices.Sort(out)
	return out
}

// Supports reports whether lang (e.g. "fr" or "fr-CH") matches a loaded language.
func (c *Catalog) Supports(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	return slices.Contains(c.languages, base.String())
}

// Locale returns the engine.Locale for lang. Unknown languages fall back to English.
func (c *Catalog) Locale(lang string) *Locale {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil || !c.Supports(lang) {
		tag = language.English
	}
	return &Locale{
		tag:       tag,
		localizer: i18n.NewLocalizer(c.bundle, tag.String(), config.DefaultLanguage),
	}
}

// Locale renders translated words for one language. Safe for concurrent use.
type Locale struct {
	tag       language.Tag
	localizer *i18n.Localizer
}

var _ engine.Locale = (*Locale)(nil)

// Tag returns the resolved language.
func (l *Locale) Tag() language.Tag {
	return l.tag
}

// Weekday returns the capitalized weekday name, e.g. "Lundi" in French.
func (l *Locale) Weekday(w time.Weekday) string {
	name, ok := l.localize(&i18n.LocalizeConfig{MessageID: config.WeekdayKeys[w]})
	if !ok {
		return w.String()
	}
	// A Caser is stateful; build one per call.
	return cases.Title(l.tag).String(name)
}

// DateCount returns the pluralized count phrase.
func (l *Locale) DateCount(n int) string {
	msg, ok := l.localize(&i18n.LocalizeConfig{
		MessageID:    config.TKeyDateCount,
		PluralCount:  n,
		TemplateData: map[string]any{"Count": n},
	})
	if !ok {
		return engine.EnglishLocale{}.DateCount(n)
	}
	return msg
}

// PartialWarning returns the non-fatal validation warning.
func (l *Locale) PartialWarning(parsed, total int) string {
	msg, ok := l.localize(&i18n.LocalizeConfig{
		MessageID:    config.TKeyValidationWarn,
		TemplateData: map[string]any{"Parsed": parsed, "Total": total},
	})
	if !ok {
		return engine.EnglishLocale{}.PartialWarning(parsed, total)
	}
	return msg
}

func (l *Locale) localize(lc *i18n.LocalizeConfig) (string, bool) {
	msg, err := l.localizer.Localize(lc)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyError, err,
		)
		return "", false
	}
	return msg, true
}
