package cabins

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"

	"cabinrent/internal/app/apperr"
	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/dto"
	"cabinrent/internal/app/handlers/support"
	"cabinrent/internal/app/policies"
	"cabinrent/internal/app/uow"
	domaincabins "cabinrent/internal/domain/cabins"
)

const (
	uploadImageKey = "cabins.images.upload"
	removeImageKey = "cabins.images.remove"
)

var ErrImageStorageMissing = errors.New("cabins: image storage not configured")

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type UploadCabinImageCommand struct {
	CabinID     string    `validate:"required"`
	ContentType string    `validate:"required"`
	Size        int64     `validate:"min=1,max=10485760"`
	Body        io.Reader `validate:"-"`
}

func (c UploadCabinImageCommand) Key() string { return uploadImageKey }

type RemoveCabinImageCommand struct {
	CabinID string `validate:"required"`
	ImageID string `validate:"required"`
}

func (c RemoveCabinImageCommand) Key() string { return removeImageKey }

func (h *Handler) UploadImage() commands.Handler[UploadCabinImageCommand, *dto.Cabin] {
	return commands.HandlerFunc[UploadCabinImageCommand, *dto.Cabin](h.uploadImage)
}

func (h *Handler) RemoveImage() commands.Handler[RemoveCabinImageCommand, *dto.Cabin] {
	return commands.HandlerFunc[RemoveCabinImageCommand, *dto.Cabin](h.removeImage)
}

// ImageKey is the object key of a cabin image in the blob store.
func ImageKey(cabinID, imageID string) string {
	return path.Join("cabins", cabinID, imageID)
}

func (h *Handler) uploadImage(ctx context.Context, cmd UploadCabinImageCommand) (*dto.Cabin, error) {
	if h.Images == nil {
		return nil, ErrImageStorageMissing
	}
	if cmd.Body == nil {
		return nil, apperr.Validation("image body is required")
	}
	if _, ok := allowedImageTypes[cmd.ContentType]; !ok {
		return nil, apperr.Validation("unsupported image type " + cmd.ContentType)
	}
	return support.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Cabin, error) {
		cabin, err := unit.Cabins().ByID(ctx, domaincabins.CabinID(cmd.CabinID))
		if err != nil {
			return nil, err
		}
		imageID := h.newID()
		key := ImageKey(string(cabin.ID), imageID)
		url, err := h.Images.Upload(ctx, policies.ImageUpload{
			Key:         key,
			ContentType: cmd.ContentType,
			Size:        cmd.Size,
			Body:        cmd.Body,
		})
		if err != nil {
			return nil, err
		}
		ref := domaincabins.ImageRef{ID: imageID, URL: url, ContentType: cmd.ContentType}
		if err := cabin.AttachImage(ref, h.Clock.Now()); err != nil {
			h.discard(ctx, key)
			return nil, err
		}
		out, err := h.persist(ctx, unit, cabin)
		if err != nil {
			h.discard(ctx, key)
			return nil, err
		}
		return out, nil
	})
}

func (h *Handler) removeImage(ctx context.Context, cmd RemoveCabinImageCommand) (*dto.Cabin, error) {
	return support.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Cabin, error) {
		cabin, err := unit.Cabins().ByID(ctx, domaincabins.CabinID(cmd.CabinID))
		if err != nil {
			return nil, err
		}
		if _, err := cabin.RemoveImage(cmd.ImageID, h.Clock.Now()); err != nil {
			return nil, err
		}
		out, err := h.persist(ctx, unit, cabin)
		if err != nil {
			return nil, err
		}
		h.discard(ctx, ImageKey(cmd.CabinID, cmd.ImageID))
		return out, nil
	})
}

// discard removes an orphaned blob; failures leave garbage but never fail the command.
func (h *Handler) discard(ctx context.Context, key string) {
	if h.Images == nil {
		return
	}
	if err := h.Images.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "cabin image cleanup failed", "key", key, "error", err)
	}
}
