package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Run: func(cmd *cobra.Command, _ []string) {
		if versionShort {
			cmd.Println(version)
			return
		}
		cmd.Printf("sercha-rag version %s\n", version)
		info := readBuildInfo()
		cmd.Printf("  go:       %s\n", info.goVersion)
		if info.revision != "" {
			rev := info.revision
			if info.modified {
				rev += " (modified)"
			}
			cmd.Printf("  revision: %s\n", rev)
		}
		if info.built != "" {
			cmd.Printf("  built:    %s\n", info.built)
		}
	},
}

type buildInfo struct {
	goVersion string
	revision  string
	built     string
	modified  bool
}

// readBuildInfo reads VCS stamps embedded by the Go toolchain, when present.
func readBuildInfo() buildInfo {
	info := buildInfo{goVersion: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.revision = s.Value
			if len(info.revision) > 12 {
				info.revision = info.revision[:12]
			}
		case "vcs.time":
			info.built = s.Value
		case "vcs.modified":
			info.modified = s.Value == "true"
		}
	}
	return info
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}
