package application

import (
	"context"
	"errors"
	"fmt"
)

// completeTasks claims every task the server still reports as incomplete.
// A failing check does not stop the remaining ones; the failures are returned joined.
func (c *Controller) completeTasks(ctx context.Context) error {
	tasks, err := c.game.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	var errs []error
	for _, task := range tasks {
		if task.IsCompleted {
			continue
		}

		result, err := c.game.CheckTask(ctx, task.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("check task %s: %w", task.ID, err))
			continue
		}
		if !result.Task.IsCompleted {
			c.logger.Debug("task not completed yet", "task_id", task.ID)
			continue
		}

		if result.User != nil {
			c.state.Balance = result.User.BalanceCoins
		}
		c.updateStats(func(s *Stats) {
			s.TasksCompleted++
			s.Balance = c.state.Balance
		})
		c.logger.Info("task completed", "task_id", task.ID, "reward", result.Task.RewardCoins, "balance", c.state.Balance)
	}

	return errors.Join(errs...)
}
