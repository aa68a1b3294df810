package access_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/access"
)

func TestLoadPolicy(t *testing.T) {
	t.Parallel()

	t.Run("registers permissions in order", func(t *testing.T) {
		t.Parallel()

		doc := `
permissions:
  - name: read
  - name: write
  - name: moderate
    grants: [read, write]
`
		reg := access.NewRegistry()
		require.NoError(t, access.LoadPolicy(strings.NewReader(doc), reg))
		require.True(t, reg.Implies("moderate", "read"))
		require.True(t, reg.Implies("moderate", "write"))
	})

	t.Run("rejects unnamed entries", func(t *testing.T) {
		t.Parallel()

		doc := `
permissions:
  - grants: [read]
`
		err := access.LoadPolicy(strings.NewReader(doc), access.NewRegistry())
		require.ErrorIs(t, err, access.ErrInvalidPolicy)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		t.Parallel()

		err := access.LoadPolicy(strings.NewReader(":\n -"), access.NewRegistry())
		require.ErrorIs(t, err, access.ErrInvalidPolicy)
	})

	t.Run("propagates registry errors", func(t *testing.T) {
		t.Parallel()

		doc := `
permissions:
  - name: moderate
    grants: [missing]
`
		err := access.LoadPolicy(strings.NewReader(doc), access.NewRegistry())
		require.ErrorIs(t, err, access.ErrUnknownPermission)
	})
}
