package entity

import "strings"

// LanguageFallback is the language of labels that fall back to the raw entity id ("no linguistic content").
const LanguageFallback = "zxx"

const languageEnglish = "en"

// Languages is a prioritised list of MediaWiki language codes.
type Languages []string

// ParseLanguages derives language preferences from explicit uselang values and an
// Accept-Language header, always ending with English.
func ParseLanguages(uselang []string, acceptLanguage string) Languages {
	langs := make(Languages, 0, len(uselang)+4)
	for _, code := range uselang {
		if code = strings.TrimSpace(code); code != "" {
			langs = append(langs, code)
		}
	}

	for _, part := range strings.Split(acceptLanguage, ",") {
		code := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if code == "" || code == "*" {
			continue
		}
		code = strings.ToLower(code)
		// BCP 47 region subtags rarely match MediaWiki codes; keep the primary subtag only.
		if i := strings.IndexByte(code, '-'); i >= 0 {
			code = code[:i]
		}
		langs = append(langs, code)
	}

	return append(langs, languageEnglish)
}

// Primary is the most preferred language.
func (l Languages) Primary() string {
	if len(l) == 0 {
		return languageEnglish
	}
	return l[0]
}

// Label is a language-tagged display string.
type Label struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// FallbackLabel labels an entity by its id when no translation exists.
func FallbackLabel(entityID string) Label {
	return Label{Language: LanguageFallback, Value: entityID}
}

var (
	someValueMessages = map[string]string{
		"en": "unknown value",
		"de": "unbekannter Wert",
		"fr": "valeur inconnue",
		"es": "valor desconocido",
		"it": "valore sconosciuto",
		"nl": "onbekende waarde",
	}
	noValueMessages = map[string]string{
		"en": "no value",
		"de": "kein Wert",
		"fr": "aucune valeur",
		"es": "sin valor",
		"it": "nessun valore",
		"nl": "geen waarde",
	}
)

// SomeValueLabel is the placeholder for "unknown value" snaks.
func SomeValueLabel(language string) Label {
	return placeholder(someValueMessages, language)
}

// NoValueLabel is the placeholder for "no value" snaks.
func NoValueLabel(language string) Label {
	return placeholder(noValueMessages, language)
}

// SnakLabel returns the placeholder label for non-value snaks.
func SnakLabel(t SnakType, language string) (Label, bool) {
	switch t {
	case SnakTypeSomeValue:
		return SomeValueLabel(language), true
	case SnakTypeNoValue:
		return NoValueLabel(language), true
	default:
		return Label{}, false
	}
}

func placeholder(messages map[string]string, language string) Label {
	if msg, ok := messages[language]; ok {
		return Label{Language: language, Value: msg}
	}
	return Label{Language: languageEnglish, Value: messages[languageEnglish]}
}
