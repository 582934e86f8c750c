package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/brewline/maitre/app"
	"github.com/brewline/maitre/config"
	"github.com/brewline/maitre/core/model"
)

var (
	dispatchTableID string
	dispatchKind    string
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Inject a test task and cascade it through the staff queue",
	RunE:  dispatchTask,
}

func init() {
	dispatchCmd.Flags().StringVarP(&planPath, "plan", "p", "floor.json", "floor plan file")
	dispatchCmd.Flags().StringVarP(&dispatchTableID, "table", "t", "", "table the task originates from")
	dispatchCmd.Flags().StringVarP(&dispatchKind, "kind", "k", "new_order", "task kind: new_order or assistance")
	rootCmd.AddCommand(dispatchCmd)
}

func dispatchTask(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	plan, err := app.LoadFloorPlan(planPath)
	if err != nil {
		return err
	}
	if dispatchTableID == "" {
		return fmt.Errorf("--table is required")
	}
	var kind model.TaskKind
	switch dispatchKind {
	case "new_order":
		kind = model.TaskNewOrder
	case "assistance":
		kind = model.TaskAssistance
	default:
		return fmt.Errorf("unknown task kind %q", dispatchKind)
	}
	var table *model.Table
	for i := range plan.Tables {
		if plan.Tables[i].ID == dispatchTableID {
			table = &plan.Tables[i]
			break
		}
	}
	if table == nil {
		return fmt.Errorf("table %s not in floor plan", dispatchTableID)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			cmd.PrintErrf("service close: %v\n", cerr)
		}
	}()
	svc.Roster.Replace(plan.Waiters)

	task := model.Task{
		ID:        "task-" + uuid.NewString(),
		Kind:      kind,
		TableID:   table.ID,
		CreatedAt: time.Now(),
	}
	id, err := svc.DispatchTask(task, table.Position)
	if err != nil {
		return err
	}
	cmd.Printf("started assignment %s\n", id)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rec, ok := svc.Orchestrator.Assignment(id)
			if !ok {
				return fmt.Errorf("assignment %s disappeared", id)
			}
			if rec.State.Terminal() {
				cmd.Printf("assignment %s finished: %s\n", id, rec.State)
				return nil
			}
		}
	}
}
