package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/shaiso/bootkit/internal/config"
	"github.com/shaiso/bootkit/internal/domain"
	"github.com/shaiso/bootkit/internal/jobs"
	"github.com/shaiso/bootkit/internal/orchestrator"
	"github.com/shaiso/bootkit/internal/scheduler"
)

// Способ запуска job в плане.
const (
	dispatchOnce     = "once"
	dispatchCron     = "cron"
	dispatchDisabled = "disabled"
)

// Plan — что сделает bootkit при старте с текущей конфигурацией.
type Plan struct {
	Mode domain.Mode `json:"mode"`
	Jobs []PlanEntry `json:"jobs"`
}

// PlanEntry — план для одного job.
type PlanEntry struct {
	Name     string     `json:"name"`
	Enabled  bool       `json:"enabled"`
	Cron     string     `json:"cron,omitempty"`
	Dispatch string     `json:"dispatch"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}

// BuildPlan классифицирует фабрики так же, как оркестратор.
// Невалидные cron-выражения включённых jobs собираются в одну ошибку;
// план при этом строится целиком.
func BuildPlan(factories []domain.WorkItemFactory, runOnce bool, now time.Time) (*Plan, error) {
	plan := &Plan{
		Mode: modeOf(factories, runOnce),
		Jobs: make([]PlanEntry, 0, len(factories)),
	}

	var errs *multierror.Error
	for _, f := range factories {
		entry := PlanEntry{
			Name:     f.Name(),
			Enabled:  f.Enabled(),
			Cron:     f.CronSchedule(),
			Dispatch: dispatchOnce,
		}

		switch {
		case !f.Enabled():
			entry.Dispatch = dispatchDisabled
		case plan.Mode == domain.ModeScheduled && domain.HasSchedule(f.CronSchedule()):
			next, err := scheduler.NextRun(strings.TrimSpace(f.CronSchedule()), now)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%w: %s: %v", orchestrator.ErrInvalidSchedule, f.Name(), err))
				break
			}
			entry.Dispatch = dispatchCron
			entry.NextRun = &next
		}

		plan.Jobs = append(plan.Jobs, entry)
	}

	return plan, errs.ErrorOrNil()
}

func newValidateCmd(defaults config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and the jobs file without side effects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), jsonOutput)

			cfg, err := resolveConfig(cmd, defaults)
			if err != nil {
				return err
			}

			factories, err := jobs.Load(cfg.JobsFile, jobs.NewRegistry())
			if err != nil {
				return err
			}

			plan, planErr := BuildPlan(factories, cfg.RunOnce, time.Now())

			if cfg.PopulateContainerDirs {
				out.Message(fmt.Sprintf("seeding: %s -> %s (marker %q)", cfg.SourceDir, cfg.TargetDir, cfg.EmptyMarker))
			} else {
				out.Message("seeding: disabled")
			}
			out.Message("mode: " + string(plan.Mode))

			headers := []string{"NAME", "ENABLED", "CRON", "DISPATCH", "NEXT_RUN"}
			rows := make([][]string, len(plan.Jobs))
			for i, j := range plan.Jobs {
				next := ""
				if j.NextRun != nil {
					next = j.NextRun.Format(time.RFC3339)
				}
				rows[i] = []string{j.Name, strconv.FormatBool(j.Enabled), j.Cron, j.Dispatch, next}
			}

			if err := out.Print(headers, rows, plan); err != nil {
				return err
			}
			return planErr
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
