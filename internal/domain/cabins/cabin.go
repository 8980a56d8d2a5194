package cabins

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cabinrent/internal/domain/shared/events"
)

var (
	ErrIDRequired    = errors.New("cabins: id is required")
	ErrNameRequired  = errors.New("cabins: name is required")
	ErrCapacity      = errors.New("cabins: capacity must be at least 1")
	ErrBedrooms      = errors.New("cabins: bedrooms must be non-negative")
	ErrNotFound      = errors.New("cabins: not found")
	ErrImageNotFound = errors.New("cabins: image not found")
	ErrImageRequired = errors.New("cabins: image id and url are required")
	ErrDuplicateImg  = errors.New("cabins: image already attached")
	// ErrConcurrentUpdate signals a stale version on save.
	ErrConcurrentUpdate = errors.New("cabins: concurrent update detected")
)

type CabinID string

// ImageRef points at a blob owned by the image store; only the reference lives here.
type ImageRef struct {
	ID          string
	URL         string
	ContentType string
	Position    int
}

type Cabin struct {
	ID          CabinID
	Name        string
	Description string
	Capacity    int
	Bedrooms    int
	Amenities   []string
	Images      []ImageRef
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.Recorder
}

type Repository interface {
	ByID(ctx context.Context, id CabinID) (*Cabin, error)
	List(ctx context.Context) ([]*Cabin, error)
	Save(ctx context.Context, cabin *Cabin) error
	Delete(ctx context.Context, id CabinID) error
}

type Params struct {
	ID          CabinID
	Name        string
	Description string
	Capacity    int
	Bedrooms    int
	Amenities   []string
	Now         time.Time
}

func NewCabin(params Params) (*Cabin, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	c := &Cabin{ID: params.ID}
	if err := c.apply(params); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Record(CabinCreated{CabinID: c.ID, Name: c.Name, At: now})
	return c, nil
}

// Update replaces the descriptive fields; images are left untouched.
func (c *Cabin) Update(params Params, now time.Time) error {
	if err := c.apply(params); err != nil {
		return err
	}
	c.UpdatedAt = now.UTC()
	c.Record(CabinUpdated{CabinID: c.ID, At: c.UpdatedAt})
	return nil
}

func (c *Cabin) apply(params Params) error {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return ErrNameRequired
	}
	if params.Capacity < 1 {
		return ErrCapacity
	}
	if params.Bedrooms < 0 {
		return ErrBedrooms
	}
	c.Name = name
	c.Description = strings.TrimSpace(params.Description)
	c.Capacity = params.Capacity
	c.Bedrooms = params.Bedrooms
	c.Amenities = normalizeTokens(params.Amenities)
	return nil
}

func (c *Cabin) AttachImage(ref ImageRef, now time.Time) error {
	if strings.TrimSpace(ref.ID) == "" || strings.TrimSpace(ref.URL) == "" {
		return ErrImageRequired
	}
	for _, img := range c.Images {
		if img.ID == ref.ID {
			return ErrDuplicateImg
		}
	}
	ref.Position = len(c.Images)
	c.Images = append(c.Images, ref)
	c.UpdatedAt = now.UTC()
	c.Record(CabinImageAttached{CabinID: c.ID, ImageID: ref.ID, URL: ref.URL, At: c.UpdatedAt})
	return nil
}

func (c *Cabin) RemoveImage(imageID string, now time.Time) (ImageRef, error) {
	idx := -1
	for i, img := range c.Images {
		if img.ID == imageID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ImageRef{}, ErrImageNotFound
	}
	removed := c.Images[idx]
	c.Images = append(c.Images[:idx], c.Images[idx+1:]...)
	for i := range c.Images {
		c.Images[i].Position = i
	}
	c.UpdatedAt = now.UTC()
	c.Record(CabinImageRemoved{CabinID: c.ID, ImageID: imageID, At: c.UpdatedAt})
	return removed, nil
}

// SortByName orders cabins for stable listings.
func SortByName(items []*Cabin) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Name == items[j].Name {
			return items[i].ID < items[j].ID
		}
		return items[i].Name < items[j].Name
	})
}

func normalizeTokens(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
