package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"

	"mealbook/entity"
	"mealbook/lib/sl"
)

// BotConfig holds Telegram-specific configuration loaded from the YAML
// config file. AdminIds is the closed list of chats allowed to manage
// invite codes; the bot has no self-registration.
type BotConfig struct {
	AdminIds         []int64
	InviteCodeLength int
}

// Database defines the invite administration operations the bot depends
// on. Implemented by internal/database/mongo.go. Deliberately excludes
// the redemption path: issuance tooling never touches uses counters.
type Database interface {
	CreateInviteCode(code *entity.InviteCode) error
	RevokeInviteCode(code string) error
	GetInviteCode(code string) (*entity.InviteCode, error)
	GetInviteCodes() ([]*entity.InviteCode, error)
}

// TgBot lets admins create, list and revoke invite codes from Telegram,
// and receives redemption notifications from the core.
type TgBot struct {
	log     *slog.Logger
	api     *tgbotapi.Bot
	db      Database
	updater *ext.Updater
	config  BotConfig
}

func NewTgBot(apiKey string, db Database, log *slog.Logger, cfg BotConfig) (*TgBot, error) {
	if cfg.InviteCodeLength == 0 {
		cfg.InviteCodeLength = 8
	}

	tgBot := &TgBot{
		log:    log.With(sl.Module("tgbot")),
		db:     db,
		config: cfg,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update:", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	t.updater = ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("invite", t.invite))
	dispatcher.AddHandler(handlers.NewCommand("codes", t.codes))
	dispatcher.AddHandler(handlers.NewCommand("code", t.code))
	dispatcher.AddHandler(handlers.NewCommand("revoke", t.revoke))
	dispatcher.AddHandler(handlers.NewCommand("help", t.help))

	err := t.updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.updater.Idle()
	return nil
}

func (t *TgBot) Stop() {
	if t.updater != nil {
		t.log.Info("stopping telegram bot")
		t.updater.Stop()
	}
}

// NotifyAdmins sends a plain message to every configured admin chat.
func (t *TgBot) NotifyAdmins(msg string) {
	for _, id := range t.config.AdminIds {
		t.plainResponse(id, Sanitize(msg))
	}
}

func (t *TgBot) requireAdmin(chatId int64) bool {
	for _, id := range t.config.AdminIds {
		if id == chatId {
			return true
		}
	}
	return false
}

func (t *TgBot) plainResponse(chatId int64, text string) {
	if text == "" {
		t.log.With("id", chatId).Debug("empty message")
		return
	}

	_, err := t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{
		ParseMode: "MarkdownV2",
	})
	if err != nil {
		t.log.With(slog.Int64("id", chatId)).Warn("sending message", sl.Err(err))
		_, err = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
		if err != nil {
			t.log.With(slog.Int64("id", chatId)).Error("sending safe message", sl.Err(err))
		}
	}
}

func Sanitize(input string) string {
	reservedChars := "\\_{}#+-.!|()[]=*"
	sanitized := ""
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sanitized += "\\" + string(char)
		} else {
			sanitized += string(char)
		}
	}
	return sanitized
}
