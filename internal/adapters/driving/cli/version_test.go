package cli

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	SetVersion(v)
	t.Cleanup(func() { version = original })
}

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name    string
		version string
		args    []string
		want    []string
	}{
		{name: "default", version: "dev", args: []string{"version"}, want: []string{"sercha-rag version dev", "go:"}},
		{name: "release", version: "1.2.0", args: []string{"version"}, want: []string{"sercha-rag version 1.2.0", runtime.Version()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version)

			out, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestVersionCmd_Short(t *testing.T) {
	withVersion(t, "1.2.0")

	out, err := execute(t, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", strings.TrimSpace(out))
}

func TestReadBuildInfo(t *testing.T) {
	info := readBuildInfo()
	assert.Equal(t, runtime.Version(), info.goVersion)
	assert.LessOrEqual(t, len(info.revision), 12)
}
