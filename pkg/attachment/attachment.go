package attachment

import (
	"time"

	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/storage"
)

// FingerprintType is the type segment of attachment fingerprints.
const FingerprintType = "Attachment"

// StoragePrefix is where the engine keeps attachment blobs and variants.
const StoragePrefix = "trellis/attachments"

// Attachment is one uploaded file tied to an attachable object.
type Attachment struct {
	ID          string                  `json:"id"`
	Attachable  fingerprint.Fingerprint `json:"attachable"`
	Author      fingerprint.Fingerprint `json:"author"`
	Title       string                  `json:"title,omitempty"`
	Description string                  `json:"description,omitempty"`
	Key         string                  `json:"-"`
	Filename    string                  `json:"filename"`
	ContentType string                  `json:"content_type"`
	Size        int64                   `json:"size"`
	Variants    map[string]string       `json:"variants,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// Fingerprint returns the attachment's own fingerprint.
func (a *Attachment) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.Make(FingerprintType, a.ID)
}

// IsImage reports whether the attachment can have thumbnail variants.
func (a *Attachment) IsImage() bool {
	return storage.IsImageMIME(a.ContentType)
}

// VariantKey returns the storage key of a named variant, or the original
// key for the empty name.
func (a *Attachment) VariantKey(name string) (string, bool) {
	if name == "" {
		return a.Key, true
	}
	key, ok := a.Variants[name]
	return key, ok
}
