package main

import (
	"fmt"
	"io"
	"strings"

	"nettune/internal/application/usecases"
	"nettune/internal/domain/entities"
	"nettune/internal/infrastructure/config"

	"gopkg.in/yaml.v3"
)

// render는 format에 따라 v를 YAML로 쓰거나 text 함수를 호출합니다
func render(w io.Writer, format string, v interface{}, text func(io.Writer)) error {
	if format != config.OutputYAML {
		text(w)
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeReportText는 dry-run/apply 요약을 사람이 읽는 형식으로 씁니다.
// dry-run은 apply가 실행할 명령을 같은 순서로 나열합니다.
func writeReportText(w io.Writer, r *usecases.RunReport) {
	fmt.Fprintf(w, "# %s: profile %s on %s (%d settings, %d changes)\n",
		r.Action, r.Profile, r.Interface, r.Settings, len(r.Planned))
	if r.ProfileOverride != "" {
		fmt.Fprintf(w, "# profile override: %s\n", r.ProfileOverride)
	}

	if r.Action == entities.ActionDryRun {
		if len(r.Planned) == 0 {
			fmt.Fprintln(w, "# already tuned, nothing to change")
		}
		for _, p := range r.Planned {
			fmt.Fprintln(w, p.Command)
		}
	} else {
		failed := make(map[string]bool, len(r.Failed))
		for _, k := range r.Failed {
			failed[k] = true
		}
		for _, p := range r.Planned {
			mark := "ok  "
			if failed[p.Key] {
				mark = "FAIL"
			}
			fmt.Fprintf(w, "[%s] %s\n", mark, p.Command)
		}
	}

	if len(r.Mismatches) > 0 {
		fmt.Fprintln(w, "\nmismatches:")
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "  %s: wanted %s, kernel reports %s\n", m.Key, m.Target, m.Actual)
		}
	}
	writeWarnings(w, r.Warnings)

	if r.SnapshotPath != "" {
		fmt.Fprintf(w, "\nsnapshot: %s\n", r.SnapshotPath)
	}
	if r.ConfigDiff != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, r.ConfigDiff)
	}
}

func writeWarnings(w io.Writer, warnings []entities.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(w, "\nwarnings:")
	for _, warning := range warnings {
		fmt.Fprintf(w, "  %s\n", warning)
	}
}

func writeRevertText(w io.Writer, o *usecases.RevertTuningOutput) {
	if len(o.RemovedFiles) == 0 {
		fmt.Fprintln(w, "nothing to revert")
	}
	for _, f := range o.RemovedFiles {
		fmt.Fprintf(w, "removed %s\n", f)
	}
	if o.Reloaded {
		fmt.Fprintln(w, "reloaded sysctl settings (sysctl --system)")
		fmt.Fprintln(w, "NIC offload, coalescing, IRQ affinity, MTU and qdisc are not restored until reboot")
	}
	if o.LatestSnapshot != "" {
		fmt.Fprintf(w, "latest snapshot: %s\n", o.LatestSnapshot)
	}
	writeWarnings(w, o.Warnings)
}

func writeStatusText(w io.Writer, s *entities.InterfaceStatus) {
	row := func(name, value string) {
		fmt.Fprintf(w, "%-20s %s\n", name+":", value)
	}

	iface := s.Interface
	if s.Driver != "" {
		iface += " (" + s.Driver + ")"
	}
	row("interface", iface)
	row("mtu", fmt.Sprintf("%d", s.MTU))
	row("default qdisc", orUnknown(s.DefaultQdisc))
	row("root qdisc", orUnknown(s.RootQdisc))
	row("congestion control", orUnknown(s.CongestionControl))

	if len(s.Offloads) > 0 {
		var parts []string
		for _, name := range s.SortedOffloads() {
			state := "off"
			if s.Offloads[name] {
				state = "on"
			}
			parts = append(parts, name+"="+state)
		}
		row("offloads", strings.Join(parts, " "))
	}
	if len(s.Coalesce) > 0 {
		var parts []string
		for _, name := range s.SortedCoalesce() {
			parts = append(parts, fmt.Sprintf("%s=%d", name, s.Coalesce[name]))
		}
		row("coalesce", strings.Join(parts, " "))
	}

	unit := "not installed"
	if s.BootUnit.Installed {
		unit = "installed, disabled"
		if s.BootUnit.Enabled {
			unit = "installed, enabled"
		}
		unit += " (" + s.BootUnit.Path + ")"
	}
	row("boot unit", unit)
}

func writeBootUnitText(w io.Writer, action entities.Action, o *usecases.BootPersistenceOutput) {
	switch {
	case action == entities.ActionInstallService:
		fmt.Fprintf(w, "installed and enabled %s\n", o.UnitPath)
	case o.Removed:
		fmt.Fprintf(w, "removed boot unit for %s\n", o.Interface)
	default:
		fmt.Fprintf(w, "no boot unit installed for %s\n", o.Interface)
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
