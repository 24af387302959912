package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/plexcord/plexcord/internal/errs"
)

const commandTimeout = 2 * time.Minute

// parseCommand splits "<prefix><cmd> <args>" into its parts. Anything not
// starting with the prefix is ordinary chat and ignored.
func (b *Bot) parseCommand(content string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(content, b.cfg.Prefix) {
		return "", "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(content, b.cfg.Prefix))
	if rest == "" {
		return "", "", false
	}
	cmd, args, _ = strings.Cut(rest, " ")
	return strings.ToLower(cmd), strings.TrimSpace(args), true
}

func (b *Bot) dispatch(s *discordgo.Session, m *discordgo.MessageCreate, cmd, args string) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var reply string
	switch cmd {
	case "ask":
		reply = b.cmdAsk(ctx, m, args)
	case "remind":
		reply = b.cmdRemind(ctx, m, args)
	case "reminders":
		reply = b.cmdReminders(ctx, m, args)
	case "cancel":
		reply = b.cmdCancel(ctx, m, args)
	case "delete":
		reply = b.cmdDelete(ctx, m, args)
	case "stats":
		reply = b.cmdStats(ctx, m)
	case "reset":
		b.hist.reset(m.Author.ID)
		reply = "Conversation context cleared."
	case "help":
		reply = b.helpText()
	default:
		return
	}
	if reply == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		b.logger.Error("reply send", "channel", m.ChannelID, "err", err)
	}
}

func (b *Bot) cmdAsk(ctx context.Context, m *discordgo.MessageCreate, question string) string {
	if question == "" {
		return "Usage: " + b.cfg.Prefix + "ask <question>"
	}

	conv := b.hist.conversation(m.Author.ID, systemPrompt, question)
	answer, cached, err := b.llm.Ask(ctx, m.Author.ID, conv)
	if err != nil {
		b.logger.Error("ask", "user", m.Author.ID, "err", err)
		return "Sorry, I could not get an answer right now."
	}

	b.hist.record(m.Author.ID, question, answer)
	if cached {
		answer += "\n_(cached)_"
	}
	return answer
}

// cmdRemind accepts "<duration> <message>" (e.g. "45m stand up") or an
// RFC3339 timestamp followed by the message.
func (b *Bot) cmdRemind(ctx context.Context, m *discordgo.MessageCreate, args string) string {
	when, message, perr := parseRemindArgs(args, time.Now())
	if perr != "" {
		return perr
	}

	rec, err := b.sched.Create(ctx, m.Author.ID, message, when, "", m.ChannelID, m.GuildID)
	if err != nil {
		if errs.IsValidation(err) {
			return err.Error()
		}
		b.logger.Error("remind create", "user", m.Author.ID, "err", err)
		return "Sorry, the reminder could not be saved."
	}
	return fmt.Sprintf("Reminder `%s` set for %s.", rec.ID, rec.ScheduledAt.Format(time.RFC1123))
}

func parseRemindArgs(args string, now time.Time) (when time.Time, message, errText string) {
	first, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)
	if first == "" || rest == "" {
		return time.Time{}, "", "Usage: remind <duration|RFC3339 time> <message> (e.g. `remind 45m stand up`)"
	}

	if d, err := time.ParseDuration(first); err == nil {
		return now.Add(d), rest, ""
	}
	if t, err := time.Parse(time.RFC3339, first); err == nil {
		return t, rest, ""
	}
	return time.Time{}, "", "Could not parse `" + first + "` as a duration (45m, 2h) or RFC3339 time."
}

func (b *Bot) cmdReminders(ctx context.Context, m *discordgo.MessageCreate, args string) string {
	includeCompleted := strings.EqualFold(args, "all")
	list, err := b.sched.UserReminders(ctx, m.Author.ID, includeCompleted)
	if err != nil {
		b.logger.Error("reminders list", "user", m.Author.ID, "err", err)
		return "Sorry, reminders are unavailable right now."
	}
	if len(list) == 0 {
		return "No reminders."
	}

	var sb strings.Builder
	sb.WriteString("Your reminders:\n")
	for _, r := range list {
		fmt.Fprintf(&sb, "`%s` - %s at %s (%s)\n",
			r.ID, r.Message, r.ScheduledAt.Format(time.RFC1123), r.Status)
	}
	return sb.String()
}

func (b *Bot) cmdCancel(ctx context.Context, m *discordgo.MessageCreate, id string) string {
	if id == "" {
		return "Usage: " + b.cfg.Prefix + "cancel <reminder id>"
	}
	ok, err := b.sched.Cancel(ctx, id, m.Author.ID)
	if err != nil {
		b.logger.Error("remind cancel", "user", m.Author.ID, "err", err)
		return "Sorry, the reminder could not be cancelled."
	}
	if !ok {
		return "No active reminder `" + id + "` found for you."
	}
	return "Reminder `" + id + "` cancelled."
}

func (b *Bot) cmdDelete(ctx context.Context, m *discordgo.MessageCreate, id string) string {
	if id == "" {
		return "Usage: " + b.cfg.Prefix + "delete <reminder id>"
	}
	ok, err := b.sched.Delete(ctx, id, m.Author.ID)
	if err != nil {
		b.logger.Error("remind delete", "user", m.Author.ID, "err", err)
		return "Sorry, the reminder could not be deleted."
	}
	if !ok {
		return "No reminder `" + id + "` found for you."
	}
	return "Reminder `" + id + "` deleted."
}

func (b *Bot) cmdStats(ctx context.Context, m *discordgo.MessageCreate) string {
	st := b.cache.Stats()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cache: %d entries, %s used of %s, hit rate %.1f%% (uptime %s)\n",
		st.EntryCount, st.MemoryUsageFormatted, st.MaxMemoryFormatted, st.HitRate*100, st.UptimeFormatted)

	if b.usage != nil {
		u, err := b.usage.GetUsage(ctx, m.Author.ID)
		if err != nil {
			b.logger.Warn("usage read", "user", m.Author.ID, "err", err)
		} else {
			fmt.Fprintf(&sb, "You: %d messages, %d prompt + %d completion tokens, %d cache hits",
				u.Messages, u.PromptTokens, u.CompletionTokens, u.CacheHits)
		}
	}
	return sb.String()
}

func (b *Bot) helpText() string {
	p := b.cfg.Prefix
	return strings.Join([]string{
		"Commands:",
		p + "ask <question> - ask the assistant",
		p + "remind <duration|RFC3339> <message> - set a reminder",
		p + "reminders [all] - list your reminders",
		p + "cancel <id> - cancel an active reminder",
		p + "delete <id> - delete a reminder",
		p + "stats - cache and usage statistics",
		p + "reset - clear your conversation context",
	}, "\n")
}

