// Package i18n localizes the human-readable summaries printed by the CLI and
// returned by the webhook.
package i18n

import (
	"context"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language.
var DefaultLang = language.English

// SupportedLangs are the languages with a catalog.
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

// Message keys. English text doubles as the key.
const (
	MsgRunSummary  = "%s: %s (%d groups, %d entries, %d failed)\n"
	MsgUnsupported = "Site not yet Supported!"
	MsgDryRun      = "[DRY RUN] %d revokes and %d authorizes recorded, nothing sent\n"
)

func init() {
	de := language.German
	_ = message.SetString(de, MsgRunSummary, "%s: %s (%d Gruppen, %d Einträge, %d fehlgeschlagen)\n")
	_ = message.SetString(de, MsgUnsupported, "Seite wird noch nicht unterstützt!")
	_ = message.SetString(de, MsgDryRun, "[TESTLAUF] %d Entzüge und %d Freigaben aufgezeichnet, nichts gesendet\n")
}

type contextKey struct{}

var printerKey = contextKey{}

// MatchLanguage returns the best supported match for an Accept-Language value.
func MatchLanguage(acceptLang string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLang)
	tag, _, _ := matcher.Match(tags...)
	base, _ := tag.Base()
	return language.Make(base.String())
}

// NewPrinter returns a message printer for tag.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// WithPrinter returns ctx carrying p.
func WithPrinter(ctx context.Context, p *message.Printer) context.Context {
	return context.WithValue(ctx, printerKey, p)
}

// GetPrinter returns the printer in ctx, or a DefaultLang printer.
func GetPrinter(ctx context.Context) *message.Printer {
	p, ok := ctx.Value(printerKey).(*message.Printer)
	if !ok {
		return message.NewPrinter(DefaultLang)
	}
	return p
}

// NewCLIPrinter returns a printer for the locale in LC_ALL or LANG.
func NewCLIPrinter() *message.Printer {
	return message.NewPrinter(localeFromEnv(os.Getenv("LC_ALL"), os.Getenv("LANG")))
}

func localeFromEnv(values ...string) language.Tag {
	for _, v := range values {
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		// en_US.UTF-8 -> en-US
		if i := strings.IndexAny(v, ".@"); i != -1 {
			v = v[:i]
		}
		return MatchLanguage(strings.ReplaceAll(v, "_", "-"))
	}
	return DefaultLang
}
