package services

import (
	"context"
	"sort"
	"time"

	"github.com/yukikurage/task-dashboard-api/internal/constants"
	"github.com/yukikurage/task-dashboard-api/internal/models"
)

// TaskSummary is a task with its weak references resolved for display
type TaskSummary struct {
	models.Task
	ProjectName  string    `json:"projectName"`
	AssigneeName string    `json:"assigneeName"`
	DeadlineAt   time.Time `json:"deadlineAt"`
}

// DashboardSummary aggregates the three collections
type DashboardSummary struct {
	TotalProjects     int           `json:"totalProjects"`
	ActiveProjects    int           `json:"activeProjects"`
	TotalTasks        int           `json:"totalTasks"`
	PendingTasks      int           `json:"pendingTasks"`
	InProgressTasks   int           `json:"inProgressTasks"`
	CompletedTasks    int           `json:"completedTasks"`
	OverdueTasks      int           `json:"overdueTasks"`
	TotalUsers        int           `json:"totalUsers"`
	UpcomingDeadlines []TaskSummary `json:"upcomingDeadlines"`
}

// DashboardService builds the dashboard view
type DashboardService struct {
	projects *ProjectService
	tasks    *TaskService
	users    *UserService
	clock    func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(projects *ProjectService, tasks *TaskService, users *UserService) *DashboardService {
	return &DashboardService{
		projects: projects,
		tasks:    tasks,
		users:    users,
		clock:    time.Now,
	}
}

// Summary returns the counts and the nearest unfinished deadlines
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	projects, err := s.projects.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	summary := &DashboardSummary{
		TotalProjects:     len(projects),
		TotalTasks:        len(tasks),
		TotalUsers:        len(users),
		UpcomingDeadlines: []TaskSummary{},
	}
	for _, p := range projects {
		if p.Status == models.ProjectStatusActive {
			summary.ActiveProjects++
		}
	}

	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}
	userNames := make(map[string]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}

	upcoming := make([]TaskSummary, 0)
	for _, task := range tasks {
		switch task.Status {
		case models.TaskStatusPending:
			summary.PendingTasks++
		case models.TaskStatusInProgress:
			summary.InProgressTasks++
		case models.TaskStatusCompleted:
			summary.CompletedTasks++
			continue
		}
		if task.IsOverdue(now) {
			summary.OverdueTasks++
		}

		deadline, ok := task.DeadlineTime()
		if !ok {
			continue
		}
		upcoming = append(upcoming, TaskSummary{
			Task:         task,
			ProjectName:  ResolveProjectName(task.ProjectID, projectNames),
			AssigneeName: ResolveUserName(task.AssignedTo, userNames),
			DeadlineAt:   deadline,
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DeadlineAt.Before(upcoming[j].DeadlineAt)
	})
	if len(upcoming) > constants.UpcomingDeadlineLimit {
		upcoming = upcoming[:constants.UpcomingDeadlineLimit]
	}
	summary.UpcomingDeadlines = upcoming

	return summary, nil
}

// ResolveProjectName maps a weak project reference to a display name
func ResolveProjectName(projectID *string, names map[string]string) string {
	if projectID == nil || *projectID == "" {
		return constants.DisplayNoProject
	}
	if name, ok := names[*projectID]; ok {
		return name
	}
	return constants.DisplayUnknownProject
}

// ResolveUserName maps a weak user reference to a display name
func ResolveUserName(userID *string, names map[string]string) string {
	if userID == nil || *userID == "" {
		return constants.DisplayUnassigned
	}
	if name, ok := names[*userID]; ok {
		return name
	}
	return constants.DisplayUnknownUser
}
