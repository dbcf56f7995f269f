package scramjet

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "Build Debian packages from unit directories"
	MsgBuildShort      = "Build units into .deb packages"
	MsgPlanShort       = "Show the control file and scripts a build would emit"
	MsgWatchShort      = "Rebuild units whenever their files change"
	MsgModulesShort    = "List the bundled modules in build order"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"

	// Status messages
	MsgWatching     = "Watching %d unit(s), press Ctrl-C to stop"
	MsgManGenerated = "Man pages written to %s"
	MsgVersionLine  = "scramjet version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrNoCommand = "no command specified"
	MsgErrJobs      = "--jobs must be at least 1"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig       = "Read user configuration from this file instead of the XDG config dir"
	MsgFlagNoUserConfig = "Ignore the user configuration file"
	MsgFlagFormat       = "Output format: auto, terminal, text or json"
	MsgFlagOrdering     = "Maintainer script ordering: tiered or flat"
	MsgFlagOutputDir    = "Directory receiving the built packages"
	MsgFlagJobs         = "Number of units built concurrently"
	MsgFlagDebounce     = "Quiet period before a changed unit is rebuilt"
	MsgFlagManDir       = "Directory receiving the man pages"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/build-example.txt
	msgBuildExampleRaw string
	MsgBuildExample    = strings.TrimRight(msgBuildExampleRaw, "\n")

	//go:embed msgs/plan-long.txt
	msgPlanLongRaw string
	MsgPlanLong    = strings.TrimSpace(msgPlanLongRaw)

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
