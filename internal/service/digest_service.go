package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// Notifier delivers a rendered digest somewhere a human will read it.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// DigestService builds per-user summaries of open tasks.
type DigestService struct {
	userRepo     *repository.UserRepository
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	log          *log.Logger
}

func NewDigestService(userRepo *repository.UserRepository, taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository, logger *log.Logger) *DigestService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &DigestService{userRepo: userRepo, taskRepo: taskRepo, categoryRepo: categoryRepo, log: logger}
}

// Summary renders the open tasks of user grouped by category. It returns an
// empty string when the user has nothing open.
func (s *DigestService) Summary(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.taskRepo.ListOpenByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "", nil
	}

	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return "", err
	}
	catNames := make(map[uint]string, len(categories))
	for _, cat := range categories {
		catNames[cat.ID] = strings.TrimSpace(cat.Name)
	}

	grouped := make(map[string][]model.Task)
	for _, task := range tasks {
		name := catNames[task.CategoryID]
		grouped[name] = append(grouped[name], task)
	}
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Open tasks for %s (%s): %d\n", strings.TrimSpace(user.Name), now.Format("2006-01-02"), len(tasks)))
	for _, name := range names {
		builder.WriteString(fmt.Sprintf("\n%s\n", name))
		for _, task := range grouped[name] {
			builder.WriteString(formatTask(task, now))
		}
	}
	return strings.TrimSpace(builder.String()), nil
}

// SendAll delivers a summary for every user with open tasks. A failure for one
// user is logged and does not stop the others.
func (s *DigestService) SendAll(ctx context.Context, notifier Notifier, now time.Time) (int, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, user := range users {
		select {
		case <-ctx.Done():
			return sent, ctx.Err()
		default:
		}
		text, err := s.Summary(ctx, user, now)
		if err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("digest: build summary")
			continue
		}
		if text == "" {
			continue
		}
		if err := notifier.Notify(ctx, text); err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("digest: notify")
			continue
		}
		sent++
	}
	return sent, nil
}

func formatTask(task model.Task, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  - [#%d] %s", task.ID, strings.TrimSpace(task.Title)))
	if age := int(now.Sub(task.CreatedAt).Hours() / 24); age > 0 {
		sb.WriteString(fmt.Sprintf(" (open %dd)", age))
	}
	if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
		sb.WriteString(fmt.Sprintf("\n      %s", strings.TrimSpace(*task.Description)))
	}
	sb.WriteByte('\n')
	return sb.String()
}
