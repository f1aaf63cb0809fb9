package remind

import (
	"fmt"
	"io"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/muesli/termenv"

	"github.com/ritual-sh/ritual/internal/ui"
)

// Notifier delivers a daily digest through one channel.
type Notifier interface {
	Name() string
	Notify(d Digest) error
}

// TerminalNotifier prints the digest to the daemon's terminal.
type TerminalNotifier struct {
	out io.Writer
}

func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalNotifier{out: out}
}

func (n *TerminalNotifier) Name() string { return "terminal" }

func (n *TerminalNotifier) Notify(d Digest) error {
	header := ui.Title.Render(ui.IconBell + " " + d.Heading())
	body := ui.Muted.Render(d.Plain())
	if _, err := fmt.Fprintf(n.out, "\n%s\n%s\n", header, body); err != nil {
		return fmt.Errorf("writing digest: %w", err)
	}
	return nil
}

// DesktopNotifier raises a desktop notification through the controlling
// terminal (OSC 777). Terminals without support ignore the sequence.
type DesktopNotifier struct {
	output *termenv.Output
}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{output: termenv.NewOutput(os.Stdout)}
}

func (n *DesktopNotifier) Name() string { return "desktop" }

func (n *DesktopNotifier) Notify(d Digest) error {
	n.output.Notify("ritual", d.Heading())
	return nil
}

// TelegramNotifier sends the digest to a Telegram chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier authorizes against the Bot API. Fails fast on a
// bad token so the daemon refuses to start half-configured.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Notify(d Digest) error {
	msg := tgbotapi.NewMessage(n.chatID, d.HTML())
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
