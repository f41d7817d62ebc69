package stats

import (
	"context"
	"math"

	"github.com/artem13815/productivity/pkg/goal"
	"github.com/artem13815/productivity/pkg/task"
	"github.com/artem13815/productivity/pkg/validator"
)

// Summary feeds the dashboard cards.
type Summary struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
	PendingTasks   int `json:"pendingTasks"`
	// CompletionRate is a whole percentage, 0 when there are no tasks.
	CompletionRate int `json:"completionRate"`
	WeeklyGoals    int `json:"weeklyGoals"`
	MonthlyGoals   int `json:"monthlyGoals"`
}

type TaskCounter interface {
	CountByOwner(ctx context.Context, email string) (task.Counts, error)
}

type GoalCounter interface {
	CountByType(ctx context.Context, email string) (map[goal.Type]int, error)
}

type UseCase interface {
	Summary(ctx context.Context, email string) (Summary, error)
}

type service struct {
	tasks TaskCounter
	goals GoalCounter
}

func NewService(tasks TaskCounter, goals GoalCounter) UseCase {
	return &service{tasks: tasks, goals: goals}
}

func (s *service) Summary(ctx context.Context, email string) (Summary, error) {
	email = validator.NormalizeEmail(email)
	v := validator.New()
	v.Required(email, "email")
	if err := v.Err("Email is required"); err != nil {
		return Summary{}, err
	}

	tc, err := s.tasks.CountByOwner(ctx, email)
	if err != nil {
		return Summary{}, err
	}
	gc, err := s.goals.CountByType(ctx, email)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		TotalTasks:     tc.Total,
		CompletedTasks: tc.Completed,
		PendingTasks:   tc.Total - tc.Completed,
		WeeklyGoals:    gc[goal.TypeWeekly],
		MonthlyGoals:   gc[goal.TypeMonthly],
	}
	if tc.Total > 0 {
		out.CompletionRate = int(math.Round(float64(tc.Completed) * 100 / float64(tc.Total)))
	}
	return out, nil
}
