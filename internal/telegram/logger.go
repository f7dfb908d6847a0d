package telegram

import (
	"fmt"
	"log/slog"
	"strings"
)

// libraryLogPrefix marks lines emitted by the Bot API library itself.
const libraryLogPrefix = "tgbotapi: "

// slogBotLogger adapts slog.Logger to tgbotapi.BotLogger so library logs go through slog.
type slogBotLogger struct {
	log *slog.Logger
}

func (s *slogBotLogger) Println(v ...any) {
	s.log.Warn(libraryLogPrefix + strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (s *slogBotLogger) Printf(format string, v ...any) {
	s.log.Warn(libraryLogPrefix + strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}
