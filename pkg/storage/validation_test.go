package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/storage"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("not empty", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, storage.Validate(0, "image/png", storage.NotEmpty()), storage.ErrEmptyFile)
		require.NoError(t, storage.Validate(1, "image/png", storage.NotEmpty()))
	})

	t.Run("max size", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, storage.Validate(101, "image/png", storage.MaxSize(100)), storage.ErrFileTooLarge)
		require.NoError(t, storage.Validate(100, "image/png", storage.MaxSize(100)))
	})

	t.Run("allowed types", func(t *testing.T) {
		t.Parallel()
		rule := storage.AllowedTypes("image/*", "application/pdf")
		require.NoError(t, storage.Validate(1, "image/webp", rule))
		require.NoError(t, storage.Validate(1, "application/pdf", rule))
		require.ErrorIs(t, storage.Validate(1, "video/mp4", rule), storage.ErrInvalidMIME)
	})

	t.Run("images only", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, storage.Validate(1, "image/gif", storage.ImagesOnly()))
		require.ErrorIs(t, storage.Validate(1, "text/plain", storage.ImagesOnly()), storage.ErrInvalidMIME)
	})

	t.Run("first failure wins", func(t *testing.T) {
		t.Parallel()
		err := storage.Validate(0, "video/mp4", storage.NotEmpty(), storage.ImagesOnly())
		require.ErrorIs(t, err, storage.ErrEmptyFile)
	})

	t.Run("no rules passes", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, storage.Validate(0, ""))
	})
}

func TestConfigDefaultsAndValidation(t *testing.T) {
	t.Parallel()

	_, err := storage.New(storage.Config{})
	require.ErrorIs(t, err, storage.ErrInvalidConfig)

	_, err = storage.New(storage.Config{Bucket: "b", AccessKey: "a"})
	require.ErrorIs(t, err, storage.ErrInvalidConfig)

	s, err := storage.New(storage.Config{Bucket: "b", AccessKey: "a", SecretKey: "s"})
	require.NoError(t, err)
	require.NotNil(t, s)
}
