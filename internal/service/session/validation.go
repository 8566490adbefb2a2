package session

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/config"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/utils"
)

func validateContent(content string) error {
	if err := validation.Validate(content,
		validation.Length(0, config.MaxDocumentLength),
	); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("content: %v", err)}
	}
	return nil
}

func validateLabel(label string) error {
	if err := validation.Validate(label,
		validation.Length(0, config.MaxVersionLabelLength),
	); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("label: %v", err)}
	}
	return nil
}

func validateChatMessage(text string) error {
	if err := validation.Validate(text,
		validation.Required,
		validation.Length(1, config.MaxChatMessageLength),
	); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("message: %v", err)}
	}
	return nil
}

func validatePreferences(prefs models.Preferences) error {
	err := validation.ValidateStruct(&prefs,
		validation.Field(&prefs.ActiveCategories,
			validation.Required,
			validation.Each(validation.By(func(value interface{}) error {
				c, _ := value.(models.Category)
				if !models.ValidCategory(c) {
					return fmt.Errorf("unknown category %q", c)
				}
				return nil
			})),
		),
	)
	if err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("preferences: %v", err)}
	}
	return nil
}

func wordCount(content string) int {
	return utils.CountWords(content)
}
