package commands

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/logger"
	"github.com/stoutes/chapel/internal/resolution"
	"github.com/stoutes/chapel/internal/types"
)

// Domain accessors that are only generated in parenless form.
var parenlessNames = map[string]bool{"rank": true, "idxType": true, "stridable": true, "parSafe": true}

type surveyRow struct {
	subject string
	routine string
	sig     *resolution.TypedFnSignature
	err     error
}

func (r surveyRow) result() string {
	switch {
	case r.err != nil && errors.IsUnimplemented(r.err):
		return "unimplemented: " + r.err.Error()
	case r.err != nil:
		return "error: " + r.err.Error()
	case r.sig == nil:
		return "-"
	}
	return r.sig.String()
}

type surveyTask struct {
	subject string
	routine string
	run     func(ctx context.Context) (*resolution.TypedFnSignature, error)
}

func newSurveyCmd(a *app) *cobra.Command {
	var (
		jobs  int
		extra []string
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "survey <program>",
		Short: "Query every configured routine name for every declared type",
		Long: `survey asks for each configured routine name (survey.names) on every type
the program declares, plus the types given with --type, and for the enum casts
to and from int on every enum. Queries run concurrently.

Rows with no generated routine are hidden unless --all is given. Known
limitations are shown as "unimplemented" rows; only internal errors fail the
command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("jobs") {
				jobs = a.cfg.Survey.Jobs
			}
			tasks, err := surveyTasks(s, a.cfg.Survey.Names, extra)
			if err != nil {
				return err
			}
			rows, err := runSurvey(cmd.Context(), tasks, jobs)
			if err != nil {
				return err
			}
			return renderSurvey(cmd.OutOrStdout(), rows, all)
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of concurrent queries (default: survey.jobs)")
	cmd.Flags().StringSliceVar(&extra, "type", nil, "additional type expression to survey (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "also list routines that are not generated")
	return cmd
}

func surveyTasks(s *session, names, extra []string) ([]surveyTask, error) {
	subjects := s.fe.DeclaredTypes()
	for _, text := range extra {
		t, err := s.resolveType(text)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, t)
	}

	var tasks []surveyTask
	for _, t := range subjects {
		t := t
		for _, name := range names {
			name := name
			tasks = append(tasks, surveyTask{
				subject: t.String(),
				routine: name,
				run: func(ctx context.Context) (*resolution.TypedFnSignature, error) {
					return s.res.GetCompilerGeneratedMethod(ctx, t, name, parenlessNames[name])
				},
			})
		}
		e, ok := t.(*types.EnumType)
		if !ok {
			continue
		}
		integer := s.fe.Types().Int()
		enumVal := types.Q(types.IntentValue, e)
		tasks = append(tasks,
			surveyTask{
				subject: e.String(),
				routine: ": int",
				run: func(ctx context.Context) (*resolution.TypedFnSignature, error) {
					return s.res.GetCompilerGeneratedBinaryOp(ctx, enumVal, types.Q(types.IntentType, integer), resolution.OpCast)
				},
			},
			surveyTask{
				subject: "int",
				routine: ": " + e.String(),
				run: func(ctx context.Context) (*resolution.TypedFnSignature, error) {
					return s.res.GetCompilerGeneratedBinaryOp(ctx, types.Q(types.IntentValue, integer), types.Q(types.IntentType, e), resolution.OpCast)
				},
			})
	}
	return tasks, nil
}

// runSurvey runs the tasks on at most jobs goroutines. Unimplemented results
// are recorded in their row; any other error stops the survey.
func runSurvey(ctx context.Context, tasks []surveyTask, jobs int) ([]surveyRow, error) {
	if jobs < 1 {
		jobs = 1
	}
	rows := make([]surveyRow, len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			sig, err := task.run(ctx)
			rows[i] = surveyRow{subject: task.subject, routine: task.routine, sig: sig, err: err}
			if err != nil && !errors.IsUnimplemented(err) {
				return errors.Wrapf(err, "%s %s", task.subject, task.routine)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Logger.Infow("survey finished", "queries", len(tasks), "jobs", jobs)
	return rows, nil
}

func renderSurvey(w io.Writer, rows []surveyRow, all bool) error {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].subject != rows[j].subject {
			return rows[i].subject < rows[j].subject
		}
		return rows[i].routine < rows[j].routine
	})

	data := pterm.TableData{{"Type", "Routine", "Generated"}}
	generated := 0
	for _, r := range rows {
		if r.sig != nil {
			generated++
		}
		if r.sig == nil && r.err == nil && !all {
			continue
		}
		data = append(data, []string{r.subject, r.routine, r.result()})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render survey")
	}
	fmt.Fprintln(w, table)
	fmt.Fprintf(w, "%d of %d queries generated a routine\n", generated, len(rows))
	return nil
}
