package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edisonhq/edison/internal/channel"
	"github.com/edisonhq/edison/internal/cronjob"
	"github.com/edisonhq/edison/internal/pkg/utils"
)

const remindUsage = "Usage: /remind <interval|cron|timestamp> | <text>\n" +
	"Examples: /remind 30m | drink water\n" +
	"          /remind 0 9 * * 1-5 | stand-up in 15 minutes"

// deliverReminder is the scheduler's delivery callback: it sends the
// reminder text back to the chat it was created from.
func deliverReminder(ctx context.Context, job *cronjob.Job) error {
	ch, err := channel.Get(job.ChannelID)
	if err != nil {
		return fmt.Errorf("reminder %s: delivery channel gone: %w", job.ID, err)
	}
	return ch.SendMessage(ctx, job.ChatID, "⏰ "+job.Text)
}

// addReminder handles "/remind <schedule> | <text>". Without a separator the
// first token is taken as the schedule, which covers intervals and
// timestamps; cron expressions contain spaces and need the pipe.
func addReminder(msg *channel.Message, rest string) string {
	var rawSchedule, text string
	if i := strings.Index(rest, "|"); i >= 0 {
		rawSchedule = strings.TrimSpace(rest[:i])
		text = strings.TrimSpace(rest[i+1:])
	} else if parts := strings.SplitN(strings.TrimSpace(rest), " ", 2); len(parts) == 2 {
		rawSchedule = parts[0]
		text = strings.TrimSpace(parts[1])
	}
	if rawSchedule == "" || text == "" {
		return remindUsage
	}

	scheduleType, err := cronjob.ParseSchedule(rawSchedule)
	if err != nil {
		return fmt.Sprintf("Could not read the schedule: %v", err)
	}

	sched := cronjob.Default()
	if sched == nil {
		return "Reminders are not available right now."
	}

	job := cronjob.Job{
		ID:           utils.RandDigits(6),
		Text:         text,
		ScheduleType: scheduleType,
		Schedule:     rawSchedule,
		ChannelID:    msg.ChannelID,
		ChatID:       msg.ChatID,
		Enabled:      true,
		CreatedAt:    time.Now(),
	}
	if err := sched.AddJob(job); err != nil {
		return fmt.Sprintf("Could not set the reminder: %v", err)
	}
	return fmt.Sprintf("⏰ Reminder %s set (%s %q).", job.ID, job.ScheduleType, job.Schedule)
}

func renderReminders() string {
	sched := cronjob.Default()
	if sched == nil {
		return "Reminders are not available right now."
	}

	jobs := sched.ListJobs()
	if len(jobs) == 0 {
		return "No reminders set."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d reminders:\n", len(jobs))
	for _, j := range jobs {
		next := "done"
		if j.NextFireAt != nil {
			next = j.NextFireAt.Format(time.RFC1123)
		}
		fmt.Fprintf(&b, "• [%s] %s (%s %q, next %s)\n",
			j.ID, utils.Truncate80(j.Text), j.ScheduleType, j.Schedule, next)
	}
	return b.String()
}

func removeReminder(rawID string) string {
	sched := cronjob.Default()
	if sched == nil {
		return "Reminders are not available right now."
	}

	id := strings.TrimSpace(rawID)
	removed, err := sched.RemoveJob(id)
	if err != nil {
		return fmt.Sprintf("Could not remove reminder %s: %v", id, err)
	}
	if !removed {
		return fmt.Sprintf("No reminder with ID %s.", id)
	}
	return fmt.Sprintf("Reminder %s removed.", id)
}
