// Package i18n loads the embedded message catalog and formats labels,
// plurals and elapsed-time intervals for the admin views.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Translator resolves message IDs for one language. Messages missing from
// that language fall back to English; unknown IDs come back unchanged.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// New parses every embedded locale and returns a translator for lang.
func New(lang string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(data, f.Name()); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", f.Name(), err)
		}
	}

	if lang == "" {
		lang = "en"
	}
	return &Translator{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang),
	}, nil
}

// MustNew is New for callers that ship only the embedded catalog.
func MustNew(lang string) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Translator) Lang() string { return t.lang }

// T translates messageID, filling template placeholders from data.
func (t *Translator) T(messageID string, data map[string]any) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil && msg == "" {
		return messageID
	}
	return msg
}

// Plural translates a message with one/other forms for count.
func (t *Translator) Plural(messageID string, count int) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
	if err != nil && msg == "" {
		return messageID
	}
	return msg
}

type intervalUnit struct {
	id      string
	seconds int64
}

var intervalUnits = []intervalUnit{
	{"interval.year", 31536000},
	{"interval.month", 2592000},
	{"interval.week", 604800},
	{"interval.day", 86400},
	{"interval.hour", 3600},
	{"interval.min", 60},
	{"interval.sec", 1},
}

// DefaultGranularity is the number of units FormatInterval prints.
const DefaultGranularity = 2

// FormatInterval renders d as at most granularity non-zero units, largest
// first, e.g. "1 hour" or "2 weeks 3 days". Sub-second remainders are
// dropped and anything under a second renders as "0 sec".
func (t *Translator) FormatInterval(d time.Duration, granularity int) string {
	seconds := int64(d / time.Second)
	if granularity < 1 {
		granularity = DefaultGranularity
	}

	var parts []string
	for _, u := range intervalUnits {
		if seconds >= u.seconds {
			parts = append(parts, t.Plural(u.id, int(seconds/u.seconds)))
			seconds %= u.seconds
			granularity--
		} else if len(parts) > 0 {
			// no skipped levels: "1 year 1 sec" is never produced
			break
		}
		if granularity == 0 {
			break
		}
	}
	if len(parts) == 0 {
		return t.Plural("interval.sec", 0)
	}
	return strings.Join(parts, " ")
}
