package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	info := Info{Commit: "abc123", BuildDate: "2024-01-01", GoVersion: "go1.24", Platform: "linux/amd64"}
	lines := strings.Split(info.String(), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "  Commit:    abc123", lines[0])
	assert.Equal(t, "  Platform:  linux/amd64", lines[3])
}
