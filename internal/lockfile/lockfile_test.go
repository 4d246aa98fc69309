package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    *Lockfile
		wantErr bool
	}{
		{
			name: "five fields",
			raw:  "Riot Client:1234:54321:s3cret:https",
			want: &Lockfile{Name: "Riot Client", PID: "1234", Port: "54321", Password: "s3cret", Protocol: "https"},
		},
		{
			name: "four fields with trailing newline",
			raw:  "Riot Client:1:2999:pw\n",
			want: &Lockfile{Name: "Riot Client", PID: "1", Port: "2999", Password: "pw"},
		},
		{name: "too few fields", raw: "Riot Client:1:2999", wantErr: true},
		{name: "empty password", raw: "Riot Client:1:2999:", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.raw)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadMissingFileIsNotAnError(t *testing.T) {
	lf, err := Read(filepath.Join(t.TempDir(), "lockfile"))
	require.NoError(t, err)
	assert.Nil(t, lf)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockfile")
	require.NoError(t, os.WriteFile(path, []byte("Riot Client:9:4444:pw:https"), 0o600))

	lf, err := File(path).Lockfile()
	require.NoError(t, err)
	require.NotNil(t, lf)
	assert.Equal(t, "4444", lf.Port)
	assert.Equal(t, "Basic cmlvdDpwdw==", lf.BasicAuth())
}
