// Package alerts pushes operational alerts to a Telegram channel so
// operators notice delivery failures and sweep errors without watching
// logs.
package alerts

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends alert messages to a single operations chat.
type Notifier struct {
	BotAPI *tgbotapi.BotAPI
	ChatID int64
}

// NewNotifier connects the bot. An empty token or zero chat ID disables
// alerting and returns a nil Notifier, which is safe to use.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	log.Printf("INFO: Operations alerts enabled via bot @%s", bot.Self.UserName)
	return &Notifier{BotAPI: bot, ChatID: chatID}, nil
}

// Alert formats and sends one alert. A send failure is only logged; alerts
// must never take down the path that raised them.
func (n *Notifier) Alert(format string, args ...interface{}) {
	if n == nil || n.BotAPI == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.ChatID, "⚠️ jansevak: "+fmt.Sprintf(format, args...))
	if _, err := n.BotAPI.Send(msg); err != nil {
		log.Printf("ERROR: Failed to send ops alert: %v", err)
	}
}
