package domain

import "errors"

// ItemDomain identifies which learnable-item domain an item belongs to.
type ItemDomain string

// Supported item domains.
const (
	ItemDomainWords   ItemDomain = "words"
	ItemDomainPhrases ItemDomain = "phrases"
	ItemDomainVerbs   ItemDomain = "verbs"
)

// Common validation errors for Item
var (
	ErrEmptyItemID       = errors.New("item ID cannot be empty")
	ErrInvalidItemDomain = errors.New("invalid item domain")
	ErrInvalidItemLevel  = errors.New("item level must be greater than or equal to 1")
)

// AllItemDomains returns the supported domains in their canonical order.
func AllItemDomains() []ItemDomain {
	return []ItemDomain{ItemDomainWords, ItemDomainPhrases, ItemDomainVerbs}
}

// IsValid reports whether d is one of the supported item domains.
func (d ItemDomain) IsValid() bool {
	switch d {
	case ItemDomainWords, ItemDomainPhrases, ItemDomainVerbs:
		return true
	default:
		return false
	}
}

// Item is one entry of the static learnable-item catalog. The scheduler does
// not own item content; it only consumes this identity projection.
type Item struct {
	ID       string     `json:"id"`
	Domain   ItemDomain `json:"domain"`
	Category string     `json:"category"`
	Level    int        `json:"level"`
}

// Validate checks if the Item has valid data.
// Returns an error if any field fails validation.
func (i *Item) Validate() error {
	if i.ID == "" {
		return ErrEmptyItemID
	}

	if !i.Domain.IsValid() {
		return ErrInvalidItemDomain
	}

	if i.Level < 1 {
		return ErrInvalidItemLevel
	}

	return nil
}
