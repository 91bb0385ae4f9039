package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	aliasRegex        = regexp.MustCompile(`^[^\s\[\]]+$`)
	tagRegex          = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\p{Pc}]+$`)
	relationKindRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\p{Pc}\s]+$`)

	// a text is written in one script: either latin or cyrillic
	latinText    = regexp.MustCompile(`^[\p{Latin}\s,\-]*$`)
	cyrillicText = regexp.MustCompile(`^[\p{Cyrillic}\s,\-]*$`)
)

// ValidateAlias checks that alias is a non-empty run of non-whitespace characters.
// Brackets are reserved for references and can not appear in an alias.
func ValidateAlias(alias string) error {
	if !aliasRegex.MatchString(alias) {
		return fmt.Errorf("%w: %q must be one or more non-whitespace characters without brackets", ErrInvalidAlias, alias)
	}
	return nil
}

// ValidateTag checks that tag is a sequence of word characters.
func ValidateTag(tag string) error {
	if !tagRegex.MatchString(tag) {
		return fmt.Errorf("%w: %q must be a sequence of word characters", ErrInvalidTag, tag)
	}
	return nil
}

// ValidateTags validates every tag, reporting the first invalid one.
func ValidateTags(tags []string) error {
	for _, tag := range tags {
		if err := ValidateTag(tag); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRelationKind checks that kind is a sequence of words without punctuation.
func ValidateRelationKind(kind string) error {
	if strings.TrimSpace(kind) == "" || !relationKindRegex.MatchString(kind) {
		return fmt.Errorf("%w: %q must be a words sequence without punctuation", ErrInvalidRelationKind, kind)
	}
	return nil
}

func validateTextParts(parts []string) error {
	joined := strings.Join(parts, " ")
	if len(parts) == 1 && strings.TrimSpace(joined) == "" {
		return fmt.Errorf("%w: text is empty", ErrInvalidText)
	}
	if !latinText.MatchString(joined) && !cyrillicText.MatchString(joined) {
		return fmt.Errorf("%w: %q must be one latin or cyrillic sentence of letters, whitespaces, ',' and '-'", ErrInvalidText, joined)
	}
	return nil
}
