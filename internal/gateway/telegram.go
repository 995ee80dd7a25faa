package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/movihq/movi/internal/orchestrator"
)

// threadPrefix namespaces Telegram chat ids so they can never collide
// with thread ids minted for HTTP clients.
const threadPrefix = "tg-"

type TelegramGateway struct {
	Bot  *tgbotapi.BotAPI
	Orch *orchestrator.Orchestrator
}

func NewTelegramGateway(token string, orch *orchestrator.Orchestrator) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:  bot,
		Orch: orch,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		ctx := context.Background()
		threadID := fmt.Sprintf("%s%d", threadPrefix, update.Message.Chat.ID)
		result, err := tg.Orch.Run(ctx, threadID, update.Message.Text, "")
		if err != nil {
			log.Printf("Error processing turn: %v", err)
			result.ResponseText = "I ran into a problem handling that. Please try again."
		}

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, result.ResponseText)
		tg.Bot.Send(msg)
	}
	return nil
}

// Send pushes an unsolicited message to a Telegram-originated thread.
// Threads from other gateways are silently skipped.
func (tg *TelegramGateway) Send(threadID string, text string) error {
	if !strings.HasPrefix(threadID, threadPrefix) {
		return nil
	}

	id := int64(0)
	fmt.Sscanf(strings.TrimPrefix(threadID, threadPrefix), "%d", &id)
	if id == 0 {
		return fmt.Errorf("invalid chat ID: %s", threadID)
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = "Markdown"
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
