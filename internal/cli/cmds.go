package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/deps"
	"github.com/ikmich/package-deps-admin/internal/domain"
	"github.com/ikmich/package-deps-admin/internal/installer"
	"github.com/ikmich/package-deps-admin/internal/table"
	"github.com/ikmich/package-deps-admin/internal/util"
)

func parseRefs(args []string) []api.DependencyRef {
	refs := []api.DependencyRef{}
	for _, arg := range args {
		refs = append(refs, deps.Parse(arg))
	}
	return refs
}

// dieOnFailure terminates the process with err if it is set.
func dieOnFailure(what string, err error) {
	if err != nil {
		util.Die("%s failed: %s", what, err)
	}
}

func uninstallErr(report *installer.UninstallReport) error {
	if report == nil {
		return nil
	}
	return report.Err
}

func reinstallErr(report *domain.ReinstallReport) error {
	var errs []error
	if err := uninstallErr(report.Uninstall); err != nil {
		errs = append(errs, err)
	}
	if report.Install != nil {
		if err := report.Install.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// runInstall implements 'pda install'.
func runInstall(a *app, args []string, catFlags categoryFlags, cmdFlags commandFlags) {
	if len(args) == 0 {
		a.logger.Warn(api.ErrNoDependencies.Error())
		return
	}

	d := a.domain(a.root, cmdFlags)
	sel := selectCategories(d, parseRefs(args), catFlags)
	report, err := d.Install(context.Background(), sel)
	if err != nil {
		util.Die("%s", err)
	}
	dieOnFailure("install", report.Err())
}

// runUninstall implements 'pda uninstall'.
func runUninstall(a *app, args []string, catFlags categoryFlags, cmdFlags commandFlags) {
	ctx := context.Background()
	d := a.domain(a.root, cmdFlags)

	var report *installer.UninstallReport
	var err error
	if len(args) > 0 {
		report, err = d.RemoveDependencies(ctx, parseRefs(args))
	} else {
		switch resolveWholeCategory(catFlags, wholeNone) {
		case wholeRuntime:
			report, err = d.RemoveRuntimeDependencies(ctx)
		case wholeDev:
			report, err = d.RemoveDevDependencies(ctx)
		case wholeAll:
			report, err = d.RemoveAllDependencies(ctx)
		default:
			a.logger.Warn("No dependencies to remove. Name them, or pass --runtime, --dev or --all.")
			return
		}
	}
	if err != nil {
		util.Die("%s", err)
	}
	dieOnFailure("uninstall", uninstallErr(report))
}

// runReinstall implements 'pda reinstall'.
func runReinstall(a *app, args []string, catFlags categoryFlags, cmdFlags commandFlags) {
	ctx := context.Background()
	d := a.domain(a.root, cmdFlags)
	catFlags.global = false

	var report *domain.ReinstallReport
	var err error
	if len(args) > 0 {
		report, err = d.Reinstall(ctx, selectCategories(d, parseRefs(args), catFlags))
	} else {
		switch resolveWholeCategory(catFlags, wholeAll) {
		case wholeRuntime:
			report, err = d.ReinstallRuntimeDependencies(ctx)
		case wholeDev:
			report, err = d.ReinstallDevDependencies(ctx)
		default:
			report, err = d.ReinstallAllDependencies(ctx)
		}
	}
	if err != nil {
		util.Die("%s", err)
	}
	dieOnFailure("reinstall", reinstallErr(report))
}

// runTransit implements 'pda transit'.
func runTransit(a *app, sourceDir string, cmdFlags commandFlags) {
	dest := a.domain(a.root, cmdFlags)
	source := a.domain(sourceDir, commandFlags{})

	report, err := domain.Transit(context.Background(), source, dest, a.links())
	if err != nil {
		util.Die("%s", err)
	}
	transited := report.Link.TransitedDependencies
	a.logger.Info("saved transit link",
		"id", report.Link.ID,
		"runtime", len(transited.Runtime),
		"dev", len(transited.Dev),
	)
	if report.Install != nil {
		dieOnFailure("transit", report.Install.Err())
	}
}

// runUntransit implements 'pda untransit'.
func runUntransit(a *app, sourceDir string, cmdFlags commandFlags) {
	dest := a.domain(a.root, cmdFlags)
	source := a.domain(sourceDir, commandFlags{})

	report, err := domain.RemoveTransit(context.Background(), source, dest, a.links())
	if errors.Is(err, api.ErrLinkNotFound) {
		a.logger.Warn("nothing to undo", "err", err)
		return
	} else if err != nil {
		util.Die("%s", err)
	}
	dieOnFailure("untransit", uninstallErr(report))
}

func linkRows(links []api.TransitLink) []linkRow {
	rows := []linkRow{}
	for _, link := range links {
		rows = append(rows, linkRow{
			ID:      link.ID,
			Source:  link.Source.Root,
			Dest:    link.Dest.Root,
			Runtime: link.TransitedDependencies.Runtime,
			Dev:     link.TransitedDependencies.Dev,
			Created: link.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return rows
}

func writeLinksJSON(w io.Writer, links []api.TransitLink) error {
	if links == nil {
		links = []api.TransitLink{}
	}
	outputB, err := json.Marshal(links)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(outputB))
	return err
}

// runLinks implements 'pda links'.
func runLinks(a *app, outputFormat outputFormat) {
	links := a.links().GetLinks()

	switch outputFormat {
	case outputFormatTable:
		if len(links) == 0 {
			util.ProgressMsg("no transit links")
			return
		}
		t := table.FromStructs(linkRows(links))
		t.SortBy("ID")
		t.Print()

	case outputFormatJSON:
		if err := writeLinksJSON(os.Stdout, links); err != nil {
			util.Die("%s", err)
		}

	default:
		util.Panicf("unknown output format %d", outputFormat)
	}
}

// runWhichBackend implements 'pda which-backend'.
func runWhichBackend(a *app, cmdFlags commandFlags, showVersion bool) {
	d := a.domain(a.root, cmdFlags)
	b := d.Backend()
	if !showVersion {
		fmt.Println(b.Name)
		return
	}
	result := util.RunCmd([]string{b.Command, "--version"})
	fmt.Printf("%s %s\n", b.Name, strings.TrimSpace(result.Stdout))
}
