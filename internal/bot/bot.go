package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"yurcoinbot/internal/ledger"
	"yurcoinbot/internal/logger"
	"yurcoinbot/internal/service"
	"yurcoinbot/internal/storage"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

const (
	ButtonTryMyLuck = "Try My Luck"
	ButtonBalance   = "Balance"

	historyLimit     = 5
	leaderboardLimit = 10

	// Telegram allows roughly 30 messages per second per bot
	sendRate  = 30
	sendBurst = 30
)

// formatBalance formats an amount as YC
func formatBalance(amount int64) string {
	return humanize.Comma(amount) + " YC"
}

// Bot wires the draw service to Telegram
type Bot struct {
	tb      *telebot.Bot
	draws   *service.DrawService
	limiter *rate.Limiter
	menu    *telebot.ReplyMarkup
	now     func() time.Time
}

// New creates the Telegram bot and registers its handlers
func New(token string, draws *service.DrawService) (*Bot, error) {
	tb, err := telebot.NewBot(telebot.Settings{
		Token: token,
		Poller: &telebot.LongPoller{
			Timeout: 10 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		tb:      tb,
		draws:   draws,
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		menu:    mainKeyboard(),
		now:     time.Now,
	}
	b.register()
	return b, nil
}

// Start polls for updates until Stop is called
func (b *Bot) Start() {
	logger.Info(0, "bot_started", fmt.Sprintf("username=%s", b.tb.Me.Username))
	b.tb.Start()
}

// Stop stops polling
func (b *Bot) Stop() {
	b.tb.Stop()
}

func mainKeyboard() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(menu.Row(menu.Text(ButtonTryMyLuck), menu.Text(ButtonBalance)))
	return menu
}

func (b *Bot) register() {
	b.tb.Handle("/start", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logger.Debug(chatID, "command_start", fmt.Sprintf("username=%s", c.Sender().Username))
		return b.send(c, "Welcome to YurCoinBot! Choose an action:")
	})

	b.tb.Handle("/help", func(c telebot.Context) error {
		logger.Debug(c.Chat().ID, "command_help", "")
		helpText := "Tap *" + ButtonTryMyLuck + "* to draw a YurCoin (once every 5 seconds).\n" +
			"Tap *" + ButtonBalance + "* to see your balance.\n\n" +
			"/history - Your last draws\n" +
			"/top - Leaderboard\n" +
			"/help - Show this help message"
		return b.send(c, helpText, telebot.ModeMarkdown)
	})

	b.tb.Handle("/history", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logger.Debug(chatID, "command_history", "")

		draws, err := storage.GetUserDraws(chatID, historyLimit)
		if err != nil {
			logger.Debug(chatID, "error", fmt.Sprintf("failed to get draws: %v", err))
			return b.send(c, "Error retrieving your draws. Please try again.")
		}
		stats, err := storage.GetUserDrawStats(chatID)
		if err != nil {
			logger.Debug(chatID, "error", fmt.Sprintf("failed to get draw stats: %v", err))
			stats = &storage.UserDrawStats{}
		}
		return b.send(c, historyReply(draws, stats))
	})

	b.tb.Handle("/top", func(c telebot.Context) error {
		logger.Debug(c.Chat().ID, "command_top", "")
		return b.send(c, leaderboardReply(b.draws.Leaderboard(leaderboardLimit)))
	})

	b.tb.Handle(telebot.OnText, func(c telebot.Context) error {
		return b.send(c, b.replyTo(c.Chat().ID, c.Text()))
	})
}

// replyTo maps a keyboard message to what the bot sends back: text, or a photo on a win
func (b *Bot) replyTo(chatID int64, text string) interface{} {
	switch strings.TrimSpace(text) {
	case ButtonTryMyLuck:
		out := b.draws.AttemptDraw(context.Background(), chatID, b.now())
		reply, photo := drawReply(out)
		if photo == "" {
			return reply
		}
		return &telebot.Photo{File: telebot.FromDisk(photo), Caption: reply}
	case ButtonBalance:
		balance := b.draws.Balance(chatID)
		logger.Debug(chatID, "balance_displayed", fmt.Sprintf("balance=%d", balance))
		return balanceReply(balance)
	default:
		return "Please use the buttons below."
	}
}

// send waits for the outbound rate limiter and replies with the main keyboard attached
func (b *Bot) send(c telebot.Context, what interface{}, opts ...interface{}) error {
	if err := b.limiter.Wait(context.Background()); err != nil {
		return err
	}
	opts = append(opts, b.menu)
	if err := c.Send(what, opts...); err != nil {
		logger.Debug(c.Chat().ID, "send_failed", err.Error())
		return err
	}
	return nil
}

// drawReply maps a draw outcome to the message text and, on a win, the image to show
func drawReply(out service.Outcome) (text string, photo string) {
	switch out.Kind {
	case service.OutcomeThrottled:
		return fmt.Sprintf("Please wait %d seconds.", out.WaitSeconds), ""
	case service.OutcomeNoAssets:
		return "No images found. Please check images.env.", ""
	case service.OutcomeWon:
		return fmt.Sprintf("You won %s. Balance: %s.", formatBalance(out.Value), formatBalance(out.Balance)), out.Asset.Path
	default:
		return "Something went wrong. Please try again.", ""
	}
}

func balanceReply(balance int64) string {
	return fmt.Sprintf("Your balance: %s", formatBalance(balance))
}

func historyReply(draws []storage.Draw, stats *storage.UserDrawStats) string {
	if len(draws) == 0 {
		return "No draws yet. Tap " + ButtonTryMyLuck + " to start!"
	}

	var sb strings.Builder
	if stats != nil && stats.TotalDraws > 0 {
		fmt.Fprintf(&sb, "Draws: %d | Won: %s | Best: %s\n\n",
			stats.TotalDraws, formatBalance(stats.TotalPoints), formatBalance(stats.BestValue))
	}
	sb.WriteString("Your last draws:\n")
	for i, d := range draws {
		fmt.Fprintf(&sb, "\n%d. %s  +%s  (balance %s)  %s",
			i+1,
			strings.TrimSuffix(d.Asset, filepath.Ext(d.Asset)),
			formatBalance(d.Value),
			formatBalance(d.BalanceAfter),
			humanize.Time(d.DrawnAt))
	}
	return sb.String()
}

func leaderboardReply(records []ledger.Record) string {
	if len(records) == 0 {
		return "Nobody has drawn yet."
	}

	var sb strings.Builder
	sb.WriteString("Top balances:\n")
	for i, r := range records {
		fmt.Fprintf(&sb, "\n%d. #%d  %s", i+1, r.UserID, formatBalance(r.Balance))
	}
	return sb.String()
}
