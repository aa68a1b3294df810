package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/fingerprint"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "simple", in: "Story/123"},
		{name: "ulid id", in: "Comment/01HZXW3V9GQ4N2"},
		{name: "composite id keeps extra slashes", in: "Account/org/42"},
		{name: "empty string", in: "", wantErr: true},
		{name: "no separator", in: "Story123", wantErr: true},
		{name: "empty type", in: "/123", wantErr: true},
		{name: "empty id", in: "Story/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fp, err := fingerprint.Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, fingerprint.ErrInvalid)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.in, fp.String())
		})
	}
}

func TestFingerprint_Segments(t *testing.T) {
	t.Parallel()

	fp := fingerprint.Make("Story", "123")
	require.Equal(t, "Story", fp.Type())
	require.Equal(t, "123", fp.ID())
	require.True(t, fp.Valid())

	// The ID segment keeps embedded slashes intact.
	fp = fingerprint.Make("Account", "org/42")
	require.Equal(t, "Account", fp.Type())
	require.Equal(t, "org/42", fp.ID())
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	fp := fingerprint.Make("List", "01J5")
	parsed, err := fingerprint.Parse(fp.String())
	require.NoError(t, err)
	require.Equal(t, fp, parsed)
}

func TestStrings(t *testing.T) {
	t.Parallel()

	fps := []fingerprint.Fingerprint{"User/1", "User/2"}
	require.Equal(t, []string{"User/1", "User/2"}, fingerprint.Strings(fps))
}
