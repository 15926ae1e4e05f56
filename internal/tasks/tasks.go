// Package tasks defines the fixed maintenance sequence. The set and order of
// tasks never change at runtime, configuration can only swap the command a
// task runs.
package tasks

import (
	"fmt"

	"github.com/upkeep-sh/upkeep/internal/model"
)

// unneededQuery lists removable dependencies without touching anything. It
// doubles as the autoremove pre-check and as the input of the removal itself.
const unneededQuery = `zypper --quiet packages --unneeded | awk -F'|' 'NR>2 {gsub(/ /,"",$3); print $3}'`

// Default returns the fixed, ordered maintenance sequence.
func Default() []model.Task {
	return []model.Task{
		{
			Key:     "refresh",
			Label:   "Repository refresh",
			Command: "zypper --non-interactive refresh",
		},
		{
			Key:     "update",
			Label:   "Package update",
			Command: "zypper --non-interactive update",
		},
		{
			Key:     "dist_upgrade",
			Label:   "Distribution upgrade",
			Command: "zypper --non-interactive dist-upgrade",
		},
		{
			Key:     "autoremove",
			Label:   "Unneeded package removal",
			Command: fmt.Sprintf("zypper --non-interactive remove --clean-deps $(%s)", unneededQuery),
			Check:   unneededQuery,
		},
		{
			Key:     "flatpak_update",
			Label:   "Flatpak update",
			Command: "flatpak update --noninteractive",
		},
		{
			Key:     "flatpak_cleanup",
			Label:   "Flatpak cleanup",
			Command: "flatpak uninstall --unused --noninteractive",
		},
	}
}

// WithOverrides returns the default sequence with per-task command overrides
// applied. Overriding an unknown task key fails.
func WithOverrides(overrides map[string]string) ([]model.Task, error) {
	ts := Default()

	known := make(map[string]int, len(ts))
	for i, t := range ts {
		known[t.Key] = i
	}

	for key, command := range overrides {
		i, ok := known[key]
		if !ok {
			return nil, fmt.Errorf("unknown task %q in command overrides: %w", key, model.ErrNotValid)
		}
		if command == "" {
			return nil, fmt.Errorf("empty command override for task %q: %w", key, model.ErrNotValid)
		}
		ts[i].Command = command
	}

	return ts, nil
}
