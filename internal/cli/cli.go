// Package cli implements the command-line interface of pda.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ikmich/package-deps-admin/internal/backends"
	"github.com/ikmich/package-deps-admin/internal/config"
	"github.com/ikmich/package-deps-admin/internal/trace"
	"github.com/ikmich/package-deps-admin/internal/util"
)

// parseOutputFormat takes "table" or "json" and returns an
// outputFormat enum value.
func parseOutputFormat(formatStr string) outputFormat {
	switch formatStr {
	case "table":
		return outputFormatTable
	case "json":
		return outputFormatJSON
	default:
		util.Die(`Error: invalid format %#v (must be "table" or "json")`, formatStr)
		return 0
	}
}

// version is set at build time to a Git tag or the string
// "development version" when not tagging a release.
var version = "unknown version"

// getVersion returns a string that can be printed when calling 'pda
// --version'.
func getVersion() string {
	return "pda " + version
}

func addCommandFlags(cmd *cobra.Command, flags *commandFlags) {
	cmd.Flags().BoolVar(&flags.force, "force", false, "pass --force to the package manager")
	cmd.Flags().BoolVar(
		&flags.legacyPeerDeps, "npm-legacy-peer-deps", false, "pass --legacy-peer-deps (npm only)",
	)
	cmd.Flags().BoolVar(&flags.exact, "exact", false, "install the versions given as name@version")
	cmd.Flags().StringArrayVar(
		&flags.extra, "flag", []string{}, "extra flag for the package manager (repeatable)",
	)
	cmd.Flags().StringVar(
		&flags.packageManager, "package-manager", "", "package manager to use (npm, yarn, pnpm or bun)",
	)
	cmd.Flags().StringVar(&flags.packageManager, "pm", "", "alias for --package-manager")
}

func addCategoryFlags(cmd *cobra.Command, flags *categoryFlags) {
	cmd.Flags().BoolVar(&flags.runtime, "runtime", false, "act on runtime dependencies")
	cmd.Flags().BoolVar(&flags.dev, "dev", false, "act on dev dependencies")
	cmd.Flags().BoolVar(&flags.all, "all", false, "act on runtime and dev dependencies")
}

// DoCLI reads the command-line arguments and runs the appropriate
// code, then exits the process (or returns to indicate normal exit).
func DoCLI() {
	backends.CheckAll()

	var root string
	var verbose bool
	var formatStr string
	var showBackendVersion bool

	var cmdFlags commandFlags
	var catFlags categoryFlags

	a := &app{}

	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:     "pda",
		Short:   "Install, remove and share Node.js package dependencies",
		Version: getVersion(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setup(root, verbose)
		},
	}
	rootCmd.SetVersionTemplate(`{{.Version}}` + "\n")
	rootCmd.PersistentFlags().StringVar(
		&root, "root", ".", "directory containing package.json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&config.Quiet, "quiet", "q", false, "don't show what commands are being run",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "log debug output",
	)

	cmdInstall := &cobra.Command{
		Aliases: []string{"i", "add"},
		Use:     "install DEPENDENCY...",
		Short:   "Install dependencies",
		Run: func(cmd *cobra.Command, args []string) {
			runInstall(a, args, catFlags, cmdFlags)
		},
	}
	cmdInstall.Flags().SortFlags = false
	addCategoryFlags(cmdInstall, &catFlags)
	cmdInstall.Flags().BoolVarP(&catFlags.global, "global", "g", false, "install globally")
	addCommandFlags(cmdInstall, &cmdFlags)
	rootCmd.AddCommand(cmdInstall)

	cmdUninstall := &cobra.Command{
		Aliases: []string{"remove", "rm"},
		Use:     "uninstall [DEPENDENCY...]",
		Short:   "Uninstall dependencies",
		Long:    "Uninstall the named dependencies, or a whole category with --runtime, --dev or --all",
		Run: func(cmd *cobra.Command, args []string) {
			runUninstall(a, args, catFlags, cmdFlags)
		},
	}
	cmdUninstall.Flags().SortFlags = false
	addCategoryFlags(cmdUninstall, &catFlags)
	addCommandFlags(cmdUninstall, &cmdFlags)
	rootCmd.AddCommand(cmdUninstall)

	cmdReinstall := &cobra.Command{
		Use:   "reinstall [DEPENDENCY...]",
		Short: "Uninstall and install dependencies again",
		Long:  "Reinstall the named dependencies, or a whole category (all of them by default)",
		Run: func(cmd *cobra.Command, args []string) {
			runReinstall(a, args, catFlags, cmdFlags)
		},
	}
	cmdReinstall.Flags().SortFlags = false
	addCategoryFlags(cmdReinstall, &catFlags)
	addCommandFlags(cmdReinstall, &cmdFlags)
	rootCmd.AddCommand(cmdReinstall)

	cmdTransit := &cobra.Command{
		Use:   "transit SOURCE_DIR",
		Short: "Install another package's dependencies into this one",
		Long:  "Install the dependencies of the package in SOURCE_DIR that this package lacks, and remember them for untransit",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runTransit(a, args[0], cmdFlags)
		},
	}
	cmdTransit.Flags().SortFlags = false
	addCommandFlags(cmdTransit, &cmdFlags)
	rootCmd.AddCommand(cmdTransit)

	cmdUntransit := &cobra.Command{
		Use:   "untransit SOURCE_DIR",
		Short: "Remove the dependencies a transit installed",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runUntransit(a, args[0], cmdFlags)
		},
	}
	cmdUntransit.Flags().SortFlags = false
	addCommandFlags(cmdUntransit, &cmdFlags)
	rootCmd.AddCommand(cmdUntransit)

	cmdLinks := &cobra.Command{
		Use:   "links",
		Short: "List saved transit links",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runLinks(a, parseOutputFormat(formatStr))
		},
	}
	cmdLinks.Flags().StringVarP(
		&formatStr, "format", "f", "table", `output format ("table" or "json")`,
	)
	rootCmd.AddCommand(cmdLinks)

	cmdWhichBackend := &cobra.Command{
		Use:   "which-backend",
		Short: "Print the package manager used for this package",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runWhichBackend(a, cmdFlags, showBackendVersion)
		},
	}
	cmdWhichBackend.Flags().StringVar(
		&cmdFlags.packageManager, "package-manager", "", "package manager to use",
	)
	cmdWhichBackend.Flags().BoolVar(
		&showBackendVersion, "show-version", false, "also print the package manager's version",
	)
	rootCmd.AddCommand(cmdWhichBackend)

	specialArgs := map[string](func()){}
	for _, helpFlag := range []string{"-help", "-?"} {
		specialArgs[helpFlag] = func() {
			rootCmd.Usage()
			os.Exit(0)
		}
	}
	for _, versionFlag := range []string{"-version", "-V"} {
		specialArgs[versionFlag] = func() {
			fmt.Println(getVersion())
			os.Exit(0)
		}
	}

	if len(os.Args) >= 2 {
		fn, ok := specialArgs[os.Args[1]]
		if ok {
			fn()
		}
	}

	err := rootCmd.Execute()
	a.close()
	trace.Stop()
	if err != nil {
		os.Exit(1)
	}
}
