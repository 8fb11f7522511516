package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"github.com/samgozman/morning-thread/jobs"
	"github.com/samgozman/morning-thread/scheduler"
)

// TriggerPhrase is the text of the reply keyboard button asking for the data right now.
const TriggerPhrase = "Получить данные сейчас"

const (
	stopText       = "Ежедневная рассылка отключена. Отправьте /start, чтобы включить её снова."
	stopFailedText = "Не удалось отключить ежедневную рассылку, попробуйте ещё раз позже."
	helpText       = "Команды:\n" +
		"/start - подписаться на ежедневную сводку\n" +
		"/now - получить данные сейчас\n" +
		"/stop - отписаться от ежедневной сводки\n" +
		"/help - список команд"
)

// triggerPhrases are the plain texts starting an on-demand report.
var triggerPhrases = []string{TriggerPhrase}

// replier sends a single message to a chat. Implemented by publisher.TelegramPublisher.
type replier interface {
	Reply(chatID int64, text string, markup any) error
}

// registry keeps daily timers per chat. Implemented by scheduler.Scheduler.
type registry interface {
	Register(chatID int64, task func()) (bool, error)
	Unregister(chatID int64) error
}

// runner builds the report job for a chat. Implemented by jobs.BriefJob.
type runner interface {
	Run(chatID int64, trigger jobs.Trigger) jobs.JobFunc
}

// updatesSource is the long polling part of tgbotapi.BotAPI.
type updatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Dispatcher routes incoming chat messages to the report job and the timer registry.
type Dispatcher struct {
	replier  replier
	registry registry
	runner   runner
	wg       sync.WaitGroup // on-demand runs in flight
	logger   *slog.Logger
}

func NewDispatcher(replier replier, registry registry, runner runner) *Dispatcher {
	return &Dispatcher{
		replier:  replier,
		registry: registry,
		runner:   runner,
		logger:   slog.Default(),
	}
}

// Keyboard is the one-button reply keyboard shown after /start.
func Keyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(TriggerPhrase)))
	kb.ResizeKeyboard = true
	return kb
}

// HandleUpdate reacts to a single update. Anything but known commands and the trigger phrase is ignored.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	var err error
	switch {
	case msg.IsCommand():
		switch msg.Command() {
		case "start":
			err = d.start(chatID)
		case "now":
			err = d.now(chatID)
		case "stop":
			err = d.stop(chatID)
		case "help":
			err = d.replier.Reply(chatID, helpText, nil)
		}
	case lo.Contains(triggerPhrases, strings.TrimSpace(msg.Text)):
		err = d.now(chatID)
	}

	if err != nil {
		d.logger.Error("[Dispatcher.HandleUpdate]", "chat_id", chatID, "update_id", update.UpdateID, "error", err)
	}
}

// start registers the daily report and greets the chat with the keyboard.
func (d *Dispatcher) start(chatID int64) error {
	if err := d.register(chatID); err != nil {
		return err
	}

	text := fmt.Sprintf("Ваш chat_id: %d\nТеперь вы сможете получать обновления.", chatID)
	if err := d.replier.Reply(chatID, text, Keyboard()); err != nil {
		return fmt.Errorf("[Dispatcher.start][replier.Reply]: %w", err)
	}
	return nil
}

// now starts an on-demand report in its own goroutine.
func (d *Dispatcher) now(chatID int64) error {
	if err := d.register(chatID); err != nil {
		d.logger.Warn("[Dispatcher.now][register]", "chat_id", chatID, "error", err)
	}

	run := d.runner.Run(chatID, jobs.TriggerOnDemand)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		run()
	}()
	return nil
}

func (d *Dispatcher) stop(chatID int64) error {
	if err := d.registry.Unregister(chatID); err != nil {
		if !errors.Is(err, scheduler.ErrNotRegistered) {
			if rErr := d.replier.Reply(chatID, stopFailedText, nil); rErr != nil {
				err = errors.Join(err, rErr)
			}
			return fmt.Errorf("[Dispatcher.stop][registry.Unregister]: %w", err)
		}
		d.logger.Info("[Dispatcher.stop] chat was not subscribed", "chat_id", chatID)
	}
	if err := d.replier.Reply(chatID, stopText, tgbotapi.NewRemoveKeyboard(false)); err != nil {
		return fmt.Errorf("[Dispatcher.stop][replier.Reply]: %w", err)
	}
	return nil
}

// register adds the daily timer for the chat unless it already has one.
func (d *Dispatcher) register(chatID int64) error {
	created, err := d.registry.Register(chatID, d.runner.Run(chatID, jobs.TriggerScheduled))
	if err != nil {
		return fmt.Errorf("[Dispatcher.register][registry.Register]: %w", err)
	}
	if created {
		d.logger.Info("[Dispatcher.register] chat subscribed", "chat_id", chatID)
	}
	return nil
}

// Poll receives updates with long polling until ctx is done.
func (d *Dispatcher) Poll(ctx context.Context, source updatesSource) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := source.GetUpdatesChan(cfg)
	defer source.StopReceivingUpdates()

	d.logger.Info("[Dispatcher.Poll] waiting for updates")
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			d.HandleUpdate(ctx, update)
		}
	}
}

// WebhookHandler decodes updates pushed by Telegram.
func (d *Dispatcher) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			d.logger.Warn("[Dispatcher.WebhookHandler] bad update", "error", err)
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		d.HandleUpdate(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	}
}

// Wait blocks until every on-demand run started so far has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
