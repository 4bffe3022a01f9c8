package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"mealbook/bot"
	"mealbook/impl/auth"
	"mealbook/impl/core"
	"mealbook/internal/config"
	"mealbook/internal/database"
	"mealbook/internal/http-server/api"
	"mealbook/internal/storage"
	applogger "mealbook/lib/logger"
	"mealbook/lib/sl"
)

const logFileName = "mealbook.log"

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logger := applogger.SetupLogger(conf.Env, filepath.Join(*logPath, logFileName))
	logger.Info("starting mealbook", slog.String("config", *configPath), slog.String("env", conf.Env))

	db := database.NewMongoClient(conf)
	if db == nil {
		logger.Error("mongo is not enabled; no storage backend available")
		os.Exit(1)
	}

	handler := core.New(db, logger)
	handler.SetAuthService(auth.New(db))

	objectStore, err := storage.NewObjectStorage(conf, logger)
	if err != nil {
		logger.Error("object storage", sl.Err(err))
		os.Exit(1)
	}
	if objectStore != nil {
		handler.SetObjectStorage(objectStore)
	}

	if conf.Telegram.Enabled {
		tgBot, err := bot.NewTgBot(conf.Telegram.ApiKey, db, logger, bot.BotConfig{
			AdminIds:         conf.Telegram.AdminIds,
			InviteCodeLength: conf.Telegram.InviteCodeLength,
		})
		if err != nil {
			logger.Error("telegram bot", sl.Err(err))
		} else {
			handler.SetNotifier(tgBot)
			logger = slog.New(applogger.NewTelegramHandler(logger.Handler(), tgBot, slog.LevelError))
			go func() {
				if err := tgBot.Start(); err != nil {
					logger.Error("telegram bot stopped", sl.Err(err))
				}
			}()
			defer tgBot.Stop()
		}
	}

	err = api.New(conf, logger, handler)
	if err != nil {
		logger.Error("api server stopped", sl.Err(err))
		os.Exit(1)
	}
}
