// Package buildinfo reports which build of klotskigraph is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/klotskigraph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/klotskigraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/klotskigraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds fall back to the module version recorded by the Go
// toolchain, which is what `go install ...@version` produces.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/matzehuels/klotskigraph/pkg/packed"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info describes one build. The packed format version is included because
// artifacts are only readable by builds that share it.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go"`
	Format    uint16 `json:"format"`
}

// Get returns the current build's Info.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Format:    packed.Version,
	}
	if info.Version != "dev" {
		return info
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ngo: %s\nformat: KLGR v%d",
		i.Version, i.Commit, i.Date, i.GoVersion, i.Format)
}

// Template returns a cobra version template for i.
func (i Info) Template() string {
	return "{{.Name}} " + i.String() + "\n"
}
