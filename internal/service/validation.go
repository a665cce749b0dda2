package service

import (
	"errors"
	"fmt"
	"strings"

	"devspace/internal/config"
	"devspace/internal/domain"
	"devspace/internal/domain/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	errBlank        = validation.NewError("validation_not_blank", "must not be blank")
	errControlChars = validation.NewError("validation_control_chars", "must not contain control characters")
)

// notBlank rejects values made only of whitespace. Nil pointers pass.
var notBlank = validation.By(func(value interface{}) error {
	s, ok := stringValue(value)
	if ok && strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
})

// printable rejects raw control characters other than tab, LF and CR. Nil pointers pass.
var printable = validation.By(func(value interface{}) error {
	s, ok := stringValue(value)
	if !ok {
		return nil
	}
	if hasControlChars(s) {
		return errControlChars
	}
	return nil
})

func stringValue(value interface{}) (string, bool) {
	v, _ := validation.Indirect(value)
	s, ok := v.(string)
	return s, ok
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

// folderNameRules validates both new and renamed folder names
func folderNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		notBlank,
		validation.RuneLength(1, config.MaxFolderNameLength),
		printable,
	}
}

func resourceNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		notBlank,
		validation.RuneLength(1, config.MaxResourceNameLength),
		printable,
	}
}

func descriptionRules() []validation.Rule {
	return []validation.Rule{
		validation.RuneLength(0, config.MaxDescriptionLength),
		printable,
	}
}

func kindValues() []interface{} {
	out := make([]interface{}, len(models.ResourceKinds))
	for i, k := range models.ResourceKinds {
		out[i] = k
	}
	return out
}

func codeLanguageValues() []interface{} {
	out := make([]interface{}, len(models.CodeLanguages))
	for i, l := range models.CodeLanguages {
		out[i] = l
	}
	return out
}

// invalidArgument wraps an ozzo error (or any message) as a domain validation error
func invalidArgument(err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
}

// normalizeRef treats an empty id the same as no id (root level)
func normalizeRef(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
