package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/image/draw"

	"github.com/trelliskit/trellis/pkg/storage"

	_ "image/gif" // register decoders for the formats uploads arrive in
)

// TaskThumbnails is the job name for thumbnail generation.
const TaskThumbnails = "attachment.thumbnails"

// DefaultVariantWidths are the variants generated when none are
// configured. Heights follow the source aspect ratio.
var DefaultVariantWidths = map[string]int{
	"small":  160,
	"medium": 480,
}

// ThumbnailPayload identifies the attachment to process.
type ThumbnailPayload struct {
	AttachmentID string `json:"attachment_id"`
}

// ThumbnailTask renders scaled image variants in the background and
// records their storage keys on the attachment row.
type ThumbnailTask struct {
	repo   Repository
	store  storage.Storage
	widths map[string]int
	log    *slog.Logger
}

// NewThumbnailTask creates the task. A nil widths map uses the defaults.
func NewThumbnailTask(repo Repository, store storage.Storage, widths map[string]int, log *slog.Logger) *ThumbnailTask {
	if widths == nil {
		widths = DefaultVariantWidths
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ThumbnailTask{repo: repo, store: store, widths: widths, log: log}
}

// Name implements the job task contract.
func (t *ThumbnailTask) Name() string { return TaskThumbnails }

// Handle fetches the original, renders each variant, and stores the
// variant map. An attachment deleted since enqueueing is not an error.
func (t *ThumbnailTask) Handle(ctx context.Context, p ThumbnailPayload) error {
	a, err := t.repo.Get(ctx, p.AttachmentID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !a.IsImage() {
		return fmt.Errorf("%w: %s", ErrNotImage, a.ContentType)
	}

	body, err := t.store.Get(ctx, a.Key)
	if err != nil {
		return fmt.Errorf("attachment: fetch original: %w", err)
	}
	defer body.Close()

	src, _, err := image.Decode(body)
	if err != nil {
		// Undecodable uploads stay variant-less rather than retrying forever.
		t.log.WarnContext(ctx, "thumbnail decode failed",
			slog.String("attachment_id", a.ID), slog.Any("error", err))
		return nil
	}

	variants := make(map[string]string, len(t.widths))
	for name, width := range t.widths {
		key, err := t.renderVariant(ctx, a, src, name, width)
		if err != nil {
			return fmt.Errorf("attachment: variant %s: %w", name, err)
		}
		variants[name] = key
	}

	if err := t.repo.SetVariants(ctx, a.ID, variants); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	t.log.InfoContext(ctx, "thumbnails generated",
		slog.String("attachment_id", a.ID), slog.Int("variants", len(variants)))
	return nil
}

func (t *ThumbnailTask) renderVariant(ctx context.Context, a *Attachment, src image.Image, name string, width int) (string, error) {
	scaled := Scale(src, width)

	var buf bytes.Buffer
	contentType := "image/png"
	if a.ContentType == "image/jpeg" {
		contentType = "image/jpeg"
		if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 85}); err != nil {
			return "", err
		}
	} else if err := png.Encode(&buf, scaled); err != nil {
		return "", err
	}

	key := VariantStorageKey(a.Key, name, contentType)
	info, err := t.store.Put(ctx, &buf, int64(buf.Len()),
		storage.WithKey(key), storage.WithContentType(contentType))
	if err != nil {
		return "", err
	}
	return info.Key, nil
}

// Scale resizes src to the given width, preserving aspect ratio. Images
// already narrower than width are returned unchanged.
func Scale(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() <= width {
		return src
	}

	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

// VariantStorageKey derives a variant's key from the original's: the
// variant name is suffixed before a format-appropriate extension.
func VariantStorageKey(originalKey, variant, contentType string) string {
	ext := ".png"
	if contentType == "image/jpeg" {
		ext = ".jpg"
	}
	base := strings.TrimSuffix(originalKey, path.Ext(originalKey))
	return base + "." + variant + ext
}
