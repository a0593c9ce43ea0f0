package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// InvoiceParams describes a Stars invoice presented to a user.
type InvoiceParams struct {
	Title       string
	Description string
	Payload     string
	Currency    string
	Amount      int64
}

// Gateway is the outbound Telegram surface the services depend on. The
// pre-checkout answer is the only call that is mandatory for correctness;
// everything else is best-effort.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendInvoice(ctx context.Context, chatID int64, params InvoiceParams) error
	AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage string) error
}

// BotGateway adapts *bot.Bot to the Gateway interface.
type BotGateway struct {
	b *bot.Bot
}

func NewBotGateway(b *bot.Bot) *BotGateway {
	return &BotGateway{b: b}
}

func (g *BotGateway) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := g.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (g *BotGateway) SendInvoice(ctx context.Context, chatID int64, params InvoiceParams) error {
	_, err := g.b.SendInvoice(ctx, &bot.SendInvoiceParams{
		ChatID:      chatID,
		Title:       params.Title,
		Description: params.Description,
		Payload:     params.Payload,
		Currency:    params.Currency,
		Prices: []models.LabeledPrice{
			{Label: params.Title, Amount: int(params.Amount)},
		},
	})
	if err != nil {
		return fmt.Errorf("send invoice: %w", err)
	}
	return nil
}

func (g *BotGateway) AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage string) error {
	_, err := g.b.AnswerPreCheckoutQuery(ctx, &bot.AnswerPreCheckoutQueryParams{
		PreCheckoutQueryID: queryID,
		OK:                 ok,
		ErrorMessage:       errorMessage,
	})
	if err != nil {
		return fmt.Errorf("answer pre-checkout query: %w", err)
	}
	return nil
}
