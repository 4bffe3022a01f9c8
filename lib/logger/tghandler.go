package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// AdminNotifier delivers a short text message to the service admins.
// Implemented by bot.TgBot.
type AdminNotifier interface {
	NotifyAdmins(msg string)
}

// TelegramHandler is a slog.Handler that mirrors records at or above
// minLevel to the admin Telegram chat, after passing them through the
// wrapped handler unchanged.
type TelegramHandler struct {
	handler  slog.Handler
	notifier AdminNotifier
	minLevel slog.Level
	attrs    []slog.Attr
	group    string
}

func NewTelegramHandler(handler slog.Handler, notifier AdminNotifier, minLevel slog.Level) *TelegramHandler {
	return &TelegramHandler{
		handler:  handler,
		notifier: notifier,
		minLevel: minLevel,
	}
}

func (h *TelegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *TelegramHandler) Handle(ctx context.Context, record slog.Record) error {
	if err := h.handler.Handle(ctx, record); err != nil {
		return err
	}
	if record.Level < h.minLevel || h.notifier == nil {
		return nil
	}

	msg := fmt.Sprintf("%s %s", record.Level.String(), record.Message)
	if h.group != "" {
		msg = fmt.Sprintf("%s %s.%s", record.Level.String(), h.group, record.Message)
	}
	for _, attr := range h.attrs {
		msg += fmt.Sprintf("\n%s: %v", attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		msg += fmt.Sprintf("\n%s: %v", attr.Key, attr.Value)
		return true
	})

	h.notifier.NotifyAdmins(msg)
	return nil
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &TelegramHandler{
		handler:  h.handler.WithAttrs(attrs),
		notifier: h.notifier,
		minLevel: h.minLevel,
		attrs:    newAttrs,
		group:    h.group,
	}
}

func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}

	return &TelegramHandler{
		handler:  h.handler.WithGroup(name),
		notifier: h.notifier,
		minLevel: h.minLevel,
		attrs:    h.attrs,
		group:    group,
	}
}
