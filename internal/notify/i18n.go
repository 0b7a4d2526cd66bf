package notify

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// MessageID names a user facing notification text.
type MessageID string

// Message ids. Each has an entry in every file under locales/.
const (
	MsgTaskCompleted MessageID = "TaskCompleted"
	MsgTaskDeleted   MessageID = "TaskDeleted"
	MsgTasksCleared  MessageID = "TasksCleared"
	MsgSaveFailed    MessageID = "SaveFailed"
)

// defaults are used when a catalog lacks a message.
var defaults = map[MessageID]string{
	MsgTaskCompleted: `Task "{{.Title}}" marked as complete!`,
	MsgTaskDeleted:   "Task has been deleted.",
	MsgTasksCleared:  "All tasks have been cleared.",
	MsgSaveFailed:    "Could not save tasks, changes may be lost on reload: {{.Error}}",
}

// Translator renders messages in one language.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// NewBundle loads the embedded catalogs.
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}

	for _, entry := range entries {
		_, err := bundle.LoadMessageFileFS(localeFS, path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load locale %s: %w", entry.Name(), err)
		}
	}

	return bundle, nil
}

// NewTranslator returns a Translator for lang, falling back to English for
// unknown or unsupported languages.
func NewTranslator(bundle *i18n.Bundle, lang string) *Translator {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	supported := bundle.LanguageTags()
	_, idx, conf := language.NewMatcher(supported).Match(tag)

	resolved := language.English
	if conf != language.No {
		resolved = supported[idx]
	}

	return &Translator{
		lang:      resolved.String(),
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.English.String()),
	}
}

// Lang returns the catalog language messages are rendered in.
func (t *Translator) Lang() string {
	return t.lang
}

// Text renders id with data.
func (t *Translator) Text(id MessageID, data map[string]any) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: string(id), Other: defaults[id]},
		TemplateData:   data,
	})
	if msg == "" && err != nil {
		return string(id)
	}

	return msg
}

// Languages returns the tags of the embedded catalogs.
func Languages(bundle *i18n.Bundle) []string {
	tags := bundle.LanguageTags()
	out := make([]string, len(tags))

	for i, tag := range tags {
		out[i] = tag.String()
	}

	return out
}
