package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/superagent-dev/superagent/internal/errors"
	"github.com/superagent-dev/superagent/internal/plan"
)

var flagPlanFile string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Inspect and validate an execution plan",
	Long: `Work with a declared plan of steps and inter-step dependencies:
validate its structure, compute a safe execution order, group independent
steps for parallel execution, and estimate the critical path.`,
}

var planValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate plan structure and dependency declarations",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, g, err := loadPlanGraph()
		if err != nil {
			return err
		}

		if cycle := g.DetectCycle(); cycle != nil {
			return errors.New(errors.ErrCodePlanCyclicDep,
				fmt.Sprintf("circular dependency: %s", strings.Join(cycle, " -> "))).
				WithSuggestion("Break the cycle by removing one of the depends_on edges")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %d steps, no cycles\n",
			styleHeader.Render("plan OK:"), len(p.Steps))
		return nil
	},
}

var planOrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Print a strict linear execution order",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, g, err := loadPlanGraph()
		if err != nil {
			return err
		}

		order, err := g.ExecutionOrder()
		if err != nil {
			return wrapCycleErr(err)
		}

		for i, id := range order {
			step := p.StepByID(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s %s\n", i+1, id,
				styleDim.Render(fmt.Sprintf("(%s, %s)", step.Agent, step.EstimatedTime)))
		}
		return nil
	},
}

var planGroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Print parallel execution layers",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, g, err := loadPlanGraph()
		if err != nil {
			return err
		}

		groups, err := g.ParallelGroups()
		if err != nil {
			return wrapCycleErr(err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(groups)
		}

		for i, group := range groups {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				styleHeader.Render(fmt.Sprintf("layer %d:", i+1)),
				strings.Join(group, ", "))
		}
		return nil
	},
}

var planCriticalCmd = &cobra.Command{
	Use:   "critical-path",
	Short: "Estimate the longest dependency chain by duration",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, g, err := loadPlanGraph()
		if err != nil {
			return err
		}

		critical, err := plan.CriticalPath(p.Steps, g)
		if err != nil {
			return wrapCycleErr(err)
		}

		var total plan.Duration
		for _, step := range p.Steps {
			total += step.EstimatedTime
		}

		fmt.Fprintf(cmd.OutOrStdout(), "critical path: %s (total work: %s)\n",
			styleHeader.Render(critical.String()), total)
		return nil
	},
}

// loadPlanGraph loads the plan file and builds its dependency graph
func loadPlanGraph() (*plan.Plan, *plan.Graph, error) {
	p, err := plan.LoadPlan(flagPlanFile)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodePlanInvalid, "invalid plan", err)
	}
	g, err := plan.BuildGraph(p.Steps)
	if err != nil {
		return nil, nil, err
	}
	return p, g, nil
}

// wrapCycleErr maps scheduler cycle errors onto the coded error type so the
// CLI exits with the cycle-specific exit code.
func wrapCycleErr(err error) error {
	if cycErr, ok := err.(*plan.CyclicDependencyError); ok {
		return errors.Wrap(errors.ErrCodePlanCyclicDep, "plan cannot be scheduled", cycErr).
			WithSuggestion("Run 'superagent plan validate' to locate the offending dependency")
	}
	return err
}

func init() {
	planCmd.PersistentFlags().StringVar(&flagPlanFile, "in", "plan.yaml", "plan file (YAML or JSON)")
	planGroupsCmd.Flags().Bool("json", false, "output layers as JSON")

	planCmd.AddCommand(planValidateCmd)
	planCmd.AddCommand(planOrderCmd)
	planCmd.AddCommand(planGroupsCmd)
	planCmd.AddCommand(planCriticalCmd)
	rootCmd.AddCommand(planCmd)
}
