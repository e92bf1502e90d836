package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"qabot/core/logger"
	"qabot/core/telegram/format"
	"qabot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// recipientKey identifies the destination chat so the dispatcher can keep
// messages to one chat in order.
func recipientKey(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	if from := c.Sender(); from != nil {
		return from.ID
	}
	return 0
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, recipientKey(c), action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendHTML sends a message with HTML parse mode and optional reply markup.
// When the API rejects the markup the text is resent with tags stripped.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm}
	return sendAsync(c, "send.html", "sendMessage", func() error {
		err := c.Send(text, opts)
		if err == nil {
			return nil
		}
		var apiErr *tele.Error
		if errors.As(err, &apiErr) && apiErr.Code == 400 {
			logger.Warn(BuildContext(c), "tg.sender", "send.html.fallback",
				slog.String("err", apiErr.Error()),
			)
			return c.Send(format.StripHTML(text), &tele.SendOptions{ReplyMarkup: rm})
		}
		return err
	})
}

// SendHTMLChunks splits long HTML output on line boundaries and sends each
// chunk in order. The reply markup is attached to the last chunk only.
func SendHTMLChunks(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	chunks := format.ChunkLines(text, format.MessageLimit)
	for i, chunk := range chunks {
		if i == len(chunks)-1 {
			return SendHTML(c, chunk, markup...)
		}
		if err := SendHTML(c, chunk); err != nil {
			return err
		}
	}
	return nil
}

// EditOrSendHTML tries to edit the current message with HTML parse mode,
// falling back to sending a new one when there is nothing to edit.
func EditOrSendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return c.EditOrSend(text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm})
}
