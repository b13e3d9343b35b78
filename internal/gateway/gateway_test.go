package gateway

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/edisonhq/edison/internal/channel"
	"github.com/edisonhq/edison/internal/config"
	"github.com/edisonhq/edison/internal/cronjob"
	"github.com/edisonhq/edison/internal/skill"
)

type echoService struct{}

func (s *echoService) DetectRequest(text string) (string, error) {
	if !strings.Contains(strings.ToLower(text), "echo") {
		return "", nil
	}
	return "echo: " + text, nil
}

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()

	root := t.TempDir()
	meta := map[string]any{
		"module": "test/echo", "class": "EchoService",
		"name":            "Echo",
		"required_config": []any{"ECHO_API_KEY"},
		"status_label":    "Echo API",
	}
	payload, err := sonic.Marshal(meta)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(root, "echo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, skill.MetadataFile), payload, 0o644); err != nil {
		t.Fatal(err)
	}

	f := skill.NewFactory()
	err = f.Register("test/echo", "EchoService", func(args []any, kwargs map[string]any) (any, error) {
		return &echoService{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{Vars: map[string]string{"ECHO_API_KEY": "set"}}
	return &Gateway{
		cfg:      cfg,
		registry: skill.NewRegistry(root, f),
	}
}

func inbound(text string) *channel.Message {
	return &channel.Message{
		ID:        "m1",
		ChannelID: "tg-main",
		ChatID:    "42",
		Content:   text,
	}
}

func TestRoute_Skills(t *testing.T) {
	gw := newTestGateway(t)

	reply := gw.route(inbound("/skills"))
	if !strings.Contains(reply, "Echo (echo)") || !strings.Contains(reply, "DetectRequest") {
		t.Fatalf("skills listing: %q", reply)
	}
}

func TestRoute_Status(t *testing.T) {
	gw := newTestGateway(t)

	reply := gw.route(inbound("/status"))
	if !strings.Contains(reply, "Echo API ✅") {
		t.Fatalf("status: %q", reply)
	}
}

func TestRoute_FreeText(t *testing.T) {
	gw := newTestGateway(t)

	if reply := gw.route(inbound("please echo this")); reply != "echo: please echo this" {
		t.Errorf("answered text: %q", reply)
	}
	if reply := gw.route(inbound("something unrelated")); reply != unavailableReply {
		t.Errorf("unanswered text: %q", reply)
	}
	if reply := gw.route(inbound("   ")); reply != "" {
		t.Errorf("blank text should be dropped, got %q", reply)
	}
}

func TestRoute_RemindUsage(t *testing.T) {
	gw := newTestGateway(t)

	if reply := gw.route(inbound("/remind onlyschedule")); reply != remindUsage {
		t.Errorf("missing text: %q", reply)
	}
	if reply := gw.route(inbound("/remind gibberish | hi")); !strings.Contains(reply, "Could not read the schedule") {
		t.Errorf("bad schedule: %q", reply)
	}
}

func TestReminderCommands(t *testing.T) {
	gw := newTestGateway(t)
	cronjob.Init(config.ReminderConfig{
		StorePath: filepath.Join(t.TempDir(), "jobs.json"),
	}, deliverReminder)

	reply := gw.route(inbound("/remind 30m | drink water"))
	if !strings.Contains(reply, "Reminder") || !strings.Contains(reply, "set") {
		t.Fatalf("add: %q", reply)
	}

	listed := gw.route(inbound("/reminders"))
	if !strings.Contains(listed, "drink water") {
		t.Fatalf("list: %q", listed)
	}

	jobs := cronjob.Default().ListJobs()
	if len(jobs) != 1 {
		t.Fatalf("jobs: %v", jobs)
	}
	if jobs[0].ChannelID != "tg-main" || jobs[0].ChatID != "42" {
		t.Errorf("delivery target not captured: %+v", jobs[0])
	}

	removed := gw.route(inbound("/unremind " + jobs[0].ID))
	if !strings.Contains(removed, "removed") {
		t.Fatalf("remove: %q", removed)
	}
	if reply := gw.route(inbound("/unremind " + jobs[0].ID)); !strings.Contains(reply, "No reminder") {
		t.Fatalf("remove unknown: %q", reply)
	}
}
