package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/edisonhq/edison/internal/channel"
	"github.com/edisonhq/edison/internal/channel/telegram"
	"github.com/edisonhq/edison/internal/config"
	"github.com/edisonhq/edison/internal/cronjob"
	"github.com/edisonhq/edison/internal/pkg/logs"
	"github.com/edisonhq/edison/internal/skill"
)

// unavailableReply is what the user sees when no loaded skill could answer.
const unavailableReply = "This feature is not available right now."

// Gateway connects chat channels to the skill registry: slash commands map
// to registry queries, free text is routed through cascading dispatch.
type Gateway struct {
	cfg      *config.Config
	registry *skill.Registry

	runCtx    context.Context
	runCancel context.CancelFunc

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewGateway(cfg *config.Config) *Gateway {
	return &Gateway{
		cfg:      cfg,
		registry: skill.NewRegistry(cfg.Skills.Dir, nil),
	}
}

func (gw *Gateway) Start(ctx context.Context) error {
	gw.runCtx, gw.runCancel = context.WithCancel(ctx)

	if err := gw.initChannels(gw.runCtx, gw.cfg.Channels); err != nil {
		return fmt.Errorf("init channels: %w", err)
	}

	cronjob.Init(gw.cfg.Reminder, deliverReminder)
	if err := cronjob.Start(gw.runCtx); err != nil {
		return fmt.Errorf("start reminder scheduler: %w", err)
	}

	slugs := gw.registry.InstanceSlugs()
	logs.CtxInfo(ctx, "[gateway] serving %d loaded skills: %s", len(slugs), strings.Join(slugs, ", "))
	return nil
}

func (gw *Gateway) Stop(ctx context.Context) error {
	gw.stopOnce.Do(func() {
		if gw.runCancel != nil {
			gw.runCancel()
		}

		cronjob.Stop(ctx)

		for _, ch := range channel.List() {
			if err := ch.Stop(ctx); err != nil {
				logs.CtxWarn(ctx, "[gateway] stop channel %s error: %v", ch.ID(), err)
			}
			channel.Unregister(ch.ID())
		}

		gw.wg.Wait()
		logs.CtxInfo(ctx, "[gateway] all resources stopped")
	})
	return nil
}

func (gw *Gateway) initChannels(ctx context.Context, channels map[string]config.ChannelConfig) error {
	for id, one := range channels {
		if !one.Enabled {
			logs.CtxInfo(ctx, "[gateway] channel %s disabled, skipping", id)
			continue
		}

		ch, err := newChannel(id, one)
		if err != nil {
			return fmt.Errorf("create channel %s: %w", id, err)
		}
		if err := ch.RegisterMessageHandler(gw.handleMessage); err != nil {
			return fmt.Errorf("register handler on %s: %w", id, err)
		}
		if err := channel.Register(ch); err != nil {
			return fmt.Errorf("register channel %s: %w", id, err)
		}

		gw.wg.Add(1)
		go func(ch channel.Channel) {
			defer gw.wg.Done()
			if err := ch.Start(ctx); err != nil {
				logs.CtxError(ctx, "[gateway] channel %s stopped with error: %v", ch.ID(), err)
			}
		}(ch)

		logs.CtxInfo(ctx, "[gateway] channel %s (%s) started", id, one.Type)
	}
	return nil
}

func newChannel(id string, cfg config.ChannelConfig) (channel.Channel, error) {
	switch channel.Type(cfg.Type) {
	case channel.Telegram:
		return telegram.NewChannel(id, &cfg)
	default:
		return nil, fmt.Errorf("unsupported channel type: %s", cfg.Type)
	}
}

// handleMessage is the inbound entry point for every channel.
func (gw *Gateway) handleMessage(ctx context.Context, msg *channel.Message) error {
	ch, err := channel.Get(msg.ChannelID)
	if err != nil {
		return err
	}

	reply := gw.route(msg)
	if reply == "" {
		return nil
	}
	return ch.SendMessage(ctx, msg.ChatID, reply)
}

func (gw *Gateway) route(msg *channel.Message) string {
	text := strings.TrimSpace(msg.Content)
	switch {
	case text == "":
		return ""
	case text == "/skills":
		return gw.renderSkills()
	case text == "/status":
		return gw.renderStatus()
	case text == "/reminders":
		return renderReminders()
	case strings.HasPrefix(text, "/remind "):
		return addReminder(msg, strings.TrimPrefix(text, "/remind "))
	case strings.HasPrefix(text, "/unremind "):
		return removeReminder(strings.TrimPrefix(text, "/unremind "))
	default:
		return gw.dispatchFreeText(text)
	}
}

func (gw *Gateway) renderSkills() string {
	var b strings.Builder
	b.WriteString("Loaded skills:\n")
	for _, slug := range gw.registry.InstanceSlugs() {
		d := gw.registry.Descriptor(slug)
		commands := gw.registry.ExportedCommands(slug, false)
		fmt.Fprintf(&b, "• %s (%s): %s\n", d.Name, slug, strings.Join(commands, ", "))
	}
	return b.String()
}

func (gw *Gateway) renderStatus() string {
	statuses := gw.registry.APIStatus(gw.cfg, false)
	if len(statuses) == 0 {
		return "No skill requires configuration."
	}
	return strings.Join(statuses, "\n")
}

// dispatchFreeText asks every loaded skill, in order, whether it can handle
// the text. The first usable answer wins; a canned reply covers the rest.
func (gw *Gateway) dispatchFreeText(text string) string {
	result := gw.registry.InvokeFirstAvailable("DetectRequest", []any{text}, nil)
	if reply, ok := result.(string); ok && reply != "" {
		return reply
	}
	return unavailableReply
}
