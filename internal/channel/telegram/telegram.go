package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/bytedance/gg/gslice"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edisonhq/edison/internal/channel"
	"github.com/edisonhq/edison/internal/config"
	"github.com/edisonhq/edison/internal/pkg/logs"
)

var _ channel.Channel = (*Telegram)(nil)

type Telegram struct {
	id      string
	config  Config
	bot     *bot.Bot
	handler func(ctx context.Context, msg *channel.Message) error
	mu      sync.RWMutex
	cancel  context.CancelFunc
}

func NewChannel(chanID string, chCfg *config.ChannelConfig) (channel.Channel, error) {
	cfg, err := ParseConfig(chCfg.Config)
	if err != nil {
		return nil, fmt.Errorf("parse telegram config: %w", err)
	}

	tg := &Telegram{
		id:     chanID,
		config: *cfg,
	}

	tgBot, err := bot.New(cfg.Token, bot.WithDefaultHandler(tg.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	tg.bot = tgBot

	return tg, nil
}

func (c *Telegram) ID() string {
	return c.id
}

func (c *Telegram) Type() channel.Type {
	return channel.Telegram
}

func (c *Telegram) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	c.bot.Start(ctx)
	return nil
}

func (c *Telegram) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	if c.bot != nil {
		c.bot.Close(ctx)
	}
	return nil
}

func (c *Telegram) SendMessage(ctx context.Context, chatID string, content string) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	_, err = c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatIDInt,
		Text:   content,
	})
	return err
}

func (c *Telegram) RegisterMessageHandler(handler func(ctx context.Context, msg *channel.Message) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	c.handler = handler
	return nil
}

// handleUpdate normalizes incoming Telegram updates into channel messages
// and forwards them to the registered handler.
func (c *Telegram) handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	if len(c.config.AllowedUsers) > 0 && !gslice.Contains(c.config.AllowedUsers, msg.From.ID) {
		logs.Debug("[channel:telegram] dropping message from unlisted user %d", msg.From.ID)
		return
	}

	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()
	if handler == nil {
		return
	}

	inbound := &channel.Message{
		ID:          strconv.Itoa(msg.ID),
		ChannelID:   c.id,
		ChannelType: channel.Telegram,
		UserID:      strconv.FormatInt(msg.From.ID, 10),
		ChatID:      strconv.FormatInt(msg.Chat.ID, 10),
		Content:     msg.Text,
	}

	ctx = logs.SetLogID(ctx, logs.NewLogID())
	if err := handler(ctx, inbound); err != nil {
		logs.CtxError(ctx, "[channel:telegram] handler failed for message %s: %v", inbound.ID, err)
	}
}
