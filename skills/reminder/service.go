// Package reminder is the built-in scheduling skill. It validates standard
// 5-field cron expressions and keeps reminders in memory for the process
// lifetime.
package reminder

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/edisonhq/edison/internal/pkg/utils"
	"github.com/edisonhq/edison/internal/skill"
)

func init() {
	skill.MustRegisterService("skills/reminder/service", "ReminderService",
		func(args []any, kwargs map[string]any) (any, error) {
			return NewReminderService(), nil
		})
}

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

type Reminder struct {
	ID       string
	Spec     string
	Text     string
	Schedule cron.Schedule
}

type ReminderService struct {
	mu        sync.Mutex
	reminders []Reminder
}

func NewReminderService() *ReminderService {
	return &ReminderService{}
}

// AddReminder registers a reminder on a cron schedule like "0 9 * * 1-5".
func (s *ReminderService) AddReminder(spec, text string) (string, error) {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("reminder text cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := Reminder{
		ID:       utils.RandDigits(6),
		Spec:     spec,
		Text:     strings.TrimSpace(text),
		Schedule: schedule,
	}
	s.reminders = append(s.reminders, r)

	return fmt.Sprintf("⏰ Reminder %s set for %q, next run %s",
		r.ID, r.Spec, schedule.Next(time.Now()).Format(time.RFC1123)), nil
}

// ListReminders renders the active reminders with their next run times.
func (s *ReminderService) ListReminders() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reminders) == 0 {
		return "No reminders set."
	}

	now := time.Now()
	var b strings.Builder
	fmt.Fprintf(&b, "%d reminders:\n", len(s.reminders))
	for _, r := range s.reminders {
		fmt.Fprintf(&b, "• [%s] %q → %s (next %s)\n",
			r.ID, r.Spec, utils.Truncate80(r.Text), r.Schedule.Next(now).Format(time.RFC1123))
	}
	return b.String()
}

// NextRun reports when a cron expression would next fire.
func (s *ReminderService) NextRun(spec string) (string, error) {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return schedule.Next(time.Now()).Format(time.RFC1123), nil
}

// RemoveReminder deletes a reminder by ID.
func (s *ReminderService) RemoveReminder(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.reminders {
		if r.ID == id {
			s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
			return fmt.Sprintf("Reminder %s removed.", id), nil
		}
	}
	return "", fmt.Errorf("no reminder with ID %s", id)
}
