package cabins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinrent/internal/app/apperr"
	"cabinrent/internal/app/policies"
	"cabinrent/internal/infra/storage/memory"
)

type failingImages struct{}

func (failingImages) Upload(context.Context, policies.ImageUpload) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (failingImages) Delete(context.Context, string) error { return nil }

func newHandler(images policies.ImageStorage) (*Handler, *memory.Outbox) {
	box := memory.NewOutbox()
	seq := 0
	return &Handler{
		UoWFactory: memory.Factory{
			CabinsRepo:       memory.NewCabinRepository(),
			ReservationsRepo: memory.NewReservationRepository(),
			Outbox:           box,
		},
		Outbox: box,
		Images: images,
		Clock:  func() time.Time { return time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC) },
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}, box
}

func TestCreateAndUpdateCabin(t *testing.T) {
	h, box := newHandler(nil)
	ctx := context.Background()

	created, err := h.Create().Handle(ctx, CreateCabinCommand{Name: "  Cabaña del Lago ", Capacity: 4, Bedrooms: 2, Amenities: []string{"WiFi", "wifi", "parrilla"}})
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, "Cabaña del Lago", created.Name)
	assert.Equal(t, 1, box.Len())

	updated, err := h.Update().Handle(ctx, UpdateCabinCommand{CabinID: created.ID, Name: "Lago", Capacity: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Capacity)
	assert.Equal(t, 2, box.Len())

	_, err = h.Update().Handle(ctx, UpdateCabinCommand{CabinID: "missing", Name: "x", Capacity: 1})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = h.Create().Handle(ctx, CreateCabinCommand{Name: "x", Capacity: 0})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUploadAndRemoveImage(t *testing.T) {
	images := memory.NewImageStore("https://cdn.example.com")
	h, _ := newHandler(images)
	ctx := context.Background()
	cabin, err := h.Create().Handle(ctx, CreateCabinCommand{Name: "Bosque", Capacity: 2})
	require.NoError(t, err)

	withImage, err := h.UploadImage().Handle(ctx, UploadCabinImageCommand{
		CabinID:     cabin.ID,
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("\x89PNG"),
	})
	require.NoError(t, err)
	require.Len(t, withImage.Images, 1)
	img := withImage.Images[0]
	assert.Equal(t, "https://cdn.example.com/cabins/id-1/id-2", img.URL)
	blob, ok := images.Object(ImageKey(cabin.ID, img.ID))
	require.True(t, ok)
	assert.Equal(t, "\x89PNG", string(blob))

	without, err := h.RemoveImage().Handle(ctx, RemoveCabinImageCommand{CabinID: cabin.ID, ImageID: img.ID})
	require.NoError(t, err)
	assert.Empty(t, without.Images)
	_, ok = images.Object(ImageKey(cabin.ID, img.ID))
	assert.False(t, ok)

	_, err = h.RemoveImage().Handle(ctx, RemoveCabinImageCommand{CabinID: cabin.ID, ImageID: img.ID})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUploadImageRejections(t *testing.T) {
	ctx := context.Background()

	h, _ := newHandler(memory.NewImageStore(""))
	cabin, err := h.Create().Handle(ctx, CreateCabinCommand{Name: "Bosque", Capacity: 2})
	require.NoError(t, err)

	_, err = h.UploadImage().Handle(ctx, UploadCabinImageCommand{CabinID: cabin.ID, ContentType: "image/gif", Size: 1, Body: strings.NewReader("x")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = h.UploadImage().Handle(ctx, UploadCabinImageCommand{CabinID: "missing", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	broken, _ := newHandler(failingImages{})
	other, err := broken.Create().Handle(ctx, CreateCabinCommand{Name: "Cumbre", Capacity: 2})
	require.NoError(t, err)
	_, err = broken.UploadImage().Handle(ctx, UploadCabinImageCommand{CabinID: other.ID, ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("x")})
	assert.Equal(t, apperr.KindInfrastructure, apperr.KindOf(err))

	none, _ := newHandler(nil)
	_, err = none.UploadImage().Handle(ctx, UploadCabinImageCommand{CabinID: "any", ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrImageStorageMissing)
}
