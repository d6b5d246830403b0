package formbuilder

import (
	"github.com/google/uuid"
)

type Option func(*FactoryParams)

type FactoryParams struct {
	Title       string
	Description string
	OwnerID     uuid.UUID
	Published   bool
}

func WithTitle(title string) Option {
	return func(p *FactoryParams) { p.Title = title }
}

func WithDescription(description string) Option {
	return func(p *FactoryParams) { p.Description = description }
}

func WithOwner(ownerID uuid.UUID) Option {
	return func(p *FactoryParams) { p.OwnerID = ownerID }
}

func WithPublished(published bool) Option {
	return func(p *FactoryParams) { p.Published = published }
}
