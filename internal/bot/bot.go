// Package bot is the Discord front end: prefix commands in, answers and
// reminder deliveries out. All state it holds is conversation context; the
// cache and scheduler do the real work.
package bot

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/cache"
	"github.com/plexcord/plexcord/internal/perplexity"
	"github.com/plexcord/plexcord/internal/scheduler"
	"github.com/plexcord/plexcord/internal/store"
	"github.com/plexcord/plexcord/model"
)

const systemPrompt = "You are a concise, helpful assistant in a Discord server. " +
	"Answer briefly and plainly."

// UsageSource reads per-user consumption totals for the stats command.
type UsageSource interface {
	GetUsage(ctx context.Context, userID string) (*store.Usage, error)
}

type Bot struct {
	session *discordgo.Session
	cfg     *config.DiscordCfg
	llm     *perplexity.Client
	sched   *scheduler.Scheduler
	cache   *cache.Store
	usage   UsageSource
	logger  *slog.Logger
	hist    *history
}

func New(
	cfg *config.DiscordCfg,
	llm *perplexity.Client,
	sched *scheduler.Scheduler,
	cacheStore *cache.Store,
	usage UsageSource,
	logger *slog.Logger,
) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, errors.Wrap(err, "create discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		session: session,
		cfg:     cfg,
		llm:     llm,
		sched:   sched,
		cache:   cacheStore,
		usage:   usage,
		logger:  logger,
		hist:    newHistory(),
	}
	session.AddHandler(b.onMessage)
	sched.Subscribe(b.deliverReminder)
	return b, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return errors.Wrap(err, "open discord gateway")
	}
	b.logger.Info("discord bot connected", "prefix", b.cfg.Prefix)
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// deliverReminder sends a due reminder to its origin channel, or to a DM
// when the reminder was created outside a guild channel.
func (b *Bot) deliverReminder(rec *model.Reminder) {
	channelID := rec.ChannelID
	if channelID == "" {
		dm, err := b.session.UserChannelCreate(rec.UserID)
		if err != nil {
			b.logger.Error("reminder DM channel", "user", rec.UserID, "err", err)
			return
		}
		channelID = dm.ID
	}
	msg := "<@" + rec.UserID + "> Reminder: " + rec.Message
	if _, err := b.session.ChannelMessageSend(channelID, msg); err != nil {
		b.logger.Error("reminder delivery", "reminder", rec.ID, "err", err)
	}
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	cmd, args, ok := b.parseCommand(m.Content)
	if !ok {
		return
	}
	b.dispatch(s, m, cmd, args)
}
