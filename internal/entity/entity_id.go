package entity

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	entityIDPattern    = regexp.MustCompile(`^(?:[QPL][1-9][0-9]*|L[1-9][0-9]*-[FS][1-9][0-9]*)$`)
	entityInputPattern = regexp.MustCompile(`^(?:http://www\.wikidata\.org/entity/|https://www\.wikidata\.org/wiki/Special:EntityData/|https://www\.wikidata\.org/wiki/)?([QPL][1-9][0-9]*|L[1-9][0-9]*-[FS][1-9][0-9]*)(?:[?#].*)?$`)
	indexTitlePattern  = regexp.MustCompile(`^(?:(Q[1-9][0-9]*)|Property:(P[1-9][0-9]*)|Lexeme:(L[1-9][0-9]*))$`)
)

// IsEntityID reports whether id is a bare item, property, lexeme, form or sense id.
func IsEntityID(id string) bool {
	return entityIDPattern.MatchString(id)
}

// ParseEntityID extracts an entity id from a bare id, a concept URI, an entity page URL
// or an index.php?title= URL.
func ParseEntityID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if m := entityInputPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}

	if u, err := url.Parse(input); err == nil && u.Scheme == "https" && u.Hostname() == "www.wikidata.org" && u.Path == "/w/index.php" {
		titles := u.Query()["title"]
		if len(titles) > 0 {
			if m := indexTitlePattern.FindStringSubmatch(titles[len(titles)-1]); m != nil {
				for _, group := range m[1:] {
					if group != "" {
						return group, nil
					}
				}
			}
		}
	}

	return "", NewValidationError("entity_id", "cannot parse an entity ID from %q", input)
}
