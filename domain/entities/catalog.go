package entities

import (
	"errors"
	"fmt"
)

// Catalog validation errors
var (
	ErrEmptyCatalog     = errors.New("catalog must contain at least one category")
	ErrEmptyCategoryKey = errors.New("category key is required")
	ErrDuplicateKey     = errors.New("duplicate category key")
	ErrEmptyAnimal      = errors.New("animal label is required")
	ErrNoMessages       = errors.New("category must contain at least one message")
	ErrEmptyMessage     = errors.New("message cannot be empty")
)

// SoundCategory maps a sound type to the animal that makes it and the
// messages that animal might be "saying".
type SoundCategory struct {
	Key      string   `json:"key"`
	Animal   string   `json:"animal"`
	Messages []string `json:"messages"`
}

// Validate checks the category invariants
func (c SoundCategory) Validate() error {
	if c.Key == "" {
		return ErrEmptyCategoryKey
	}
	if c.Animal == "" {
		return fmt.Errorf("category %q: %w", c.Key, ErrEmptyAnimal)
	}
	if len(c.Messages) == 0 {
		return fmt.Errorf("category %q: %w", c.Key, ErrNoMessages)
	}
	for i, m := range c.Messages {
		if m == "" {
			return fmt.Errorf("category %q message %d: %w", c.Key, i, ErrEmptyMessage)
		}
	}
	return nil
}

func (c SoundCategory) clone() SoundCategory {
	msgs := make([]string, len(c.Messages))
	copy(msgs, c.Messages)
	return SoundCategory{Key: c.Key, Animal: c.Animal, Messages: msgs}
}

// Catalog is the immutable set of sound categories the classifier draws from.
// It is built once at startup and only exposes read accessors, so it can be
// shared across goroutines without locking.
type Catalog struct {
	categories []SoundCategory
	byKey      map[string]int
}

// NewCatalog validates and copies the given categories into a new Catalog.
// Category order is preserved.
func NewCatalog(categories ...SoundCategory) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		categories: make([]SoundCategory, 0, len(categories)),
		byKey:      make(map[string]int, len(categories)),
	}
	for _, category := range categories {
		if err := category.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byKey[category.Key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, category.Key)
		}
		c.byKey[category.Key] = len(c.categories)
		c.categories = append(c.categories, category.clone())
	}

	return c, nil
}

// DefaultCatalog returns the built-in bird chirp catalog
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		SoundCategory{
			Key:    "chirp_high",
			Animal: "Cardinal",
			Messages: []string{
				"Hey, this is MY branch!",
				"Anyone seen any good seeds around here?",
				"Perfect weather for singing!",
			},
		},
		SoundCategory{
			Key:    "chirp_low",
			Animal: "Sparrow",
			Messages: []string{
				"Back off buddy, I saw this feeder first!",
				"Perfect spot for lunch!",
				"Who's up for a dust bath?",
			},
		},
	)
	if err != nil {
		panic(fmt.Sprintf("invalid default catalog: %v", err))
	}
	return c
}

// Len returns the number of categories
func (c *Catalog) Len() int {
	return len(c.categories)
}

// Keys returns the category keys in catalog order
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.categories))
	for i, category := range c.categories {
		keys[i] = category.Key
	}
	return keys
}

// At returns a copy of the i-th category. It panics if i is out of range.
func (c *Catalog) At(i int) SoundCategory {
	return c.categories[i].clone()
}

// Category looks up a category by key
func (c *Catalog) Category(key string) (SoundCategory, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return SoundCategory{}, false
	}
	return c.categories[i].clone(), true
}

// ByAnimal returns every category labelled with the given animal
func (c *Catalog) ByAnimal(animal string) []SoundCategory {
	var out []SoundCategory
	for _, category := range c.categories {
		if category.Animal == animal {
			out = append(out, category.clone())
		}
	}
	return out
}

// HasMessage reports whether message belongs to one of animal's categories
func (c *Catalog) HasMessage(animal, message string) bool {
	for _, category := range c.categories {
		if category.Animal != animal {
			continue
		}
		for _, m := range category.Messages {
			if m == message {
				return true
			}
		}
	}
	return false
}

// Message returns the animal and j-th message of the i-th category.
// It panics if either index is out of range.
func (c *Catalog) Message(i, j int) (animal, message string) {
	category := c.categories[i]
	return category.Animal, category.Messages[j]
}

// MessageCount returns the number of messages in the i-th category
func (c *Catalog) MessageCount(i int) int {
	return len(c.categories[i].Messages)
}
