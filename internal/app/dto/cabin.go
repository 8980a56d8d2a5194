package dto

import (
	"time"

	domaincabins "cabinrent/internal/domain/cabins"
)

type CabinImage struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Position    int    `json:"position"`
}

type Cabin struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Capacity    int          `json:"capacity"`
	Bedrooms    int          `json:"bedrooms"`
	Amenities   []string     `json:"amenities"`
	Images      []CabinImage `json:"images"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type CabinCollection struct {
	Items []Cabin `json:"items"`
	Total int     `json:"total"`
}

func MapCabin(c *domaincabins.Cabin) Cabin {
	if c == nil {
		return Cabin{}
	}
	images := make([]CabinImage, 0, len(c.Images))
	for _, img := range c.Images {
		images = append(images, CabinImage{ID: img.ID, URL: img.URL, ContentType: img.ContentType, Position: img.Position})
	}
	return Cabin{
		ID:          string(c.ID),
		Name:        c.Name,
		Description: c.Description,
		Capacity:    c.Capacity,
		Bedrooms:    c.Bedrooms,
		Amenities:   append([]string{}, c.Amenities...),
		Images:      images,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func MapCabins(items []*domaincabins.Cabin) CabinCollection {
	out := CabinCollection{Items: make([]Cabin, 0, len(items))}
	for _, c := range items {
		out.Items = append(out.Items, MapCabin(c))
	}
	out.Total = len(out.Items)
	return out
}
