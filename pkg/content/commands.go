package content

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// CreateCommand carries the arguments of CreateContent.
type CreateCommand struct {
	PageID      uuid.UUID      `json:"page_id"`
	SectionType string         `json:"section_type"`
	Data        map[string]any `json:"data"`
	Published   bool           `json:"published"`
	OrderIndex  int            `json:"order_index"`
}

// Validate ensures the command is complete before it reaches the store.
func (c CreateCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PageID, validation.By(requireUUID("page_id"))),
		validation.Field(&c.SectionType, validation.Required, validation.By(trimmed)),
		validation.Field(&c.Data, validation.NotNil),
		validation.Field(&c.OrderIndex, validation.Min(0)),
	)
}

// UpdateCommand carries the arguments of UpdateContent.
type UpdateCommand struct {
	ID         uuid.UUID      `json:"id"`
	Data       map[string]any `json:"data"`
	Published  bool           `json:"published"`
	OrderIndex int            `json:"order_index"`
}

// Validate ensures the command is complete before it reaches the store.
func (c UpdateCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.By(requireUUID("id"))),
		validation.Field(&c.Data, validation.NotNil),
		validation.Field(&c.OrderIndex, validation.Min(0)),
	)
}

func requireUUID(field string) validation.RuleFunc {
	return func(value any) error {
		id, _ := value.(uuid.UUID)
		if id == uuid.Nil {
			return validation.NewError("content."+field+"_required", field+" is required")
		}
		return nil
	}
}

func trimmed(value any) error {
	s, _ := value.(string)
	if s != strings.TrimSpace(s) {
		return validation.NewError("content.section_type_padded", "must not have surrounding whitespace")
	}
	return nil
}
