package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/samgozman/morning-thread/internal/utils"
	"github.com/samgozman/morning-thread/metrics"
)

// Trigger is the reason a report is built.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled" // daily timer
	TriggerOnDemand  Trigger = "on-demand" // user asked for the data
)

// Greeting returns the first line of the report for the trigger.
func (t Trigger) Greeting() string {
	switch t {
	case TriggerScheduled:
		return "Доброе утро!"
	case TriggerOnDemand:
		return "Данные по запросу:"
	default:
		return ""
	}
}

// reportComposer builds the report text. Implemented by composer.Composer.
type reportComposer interface {
	Compose(ctx context.Context, greeting string) string
}

// reportPublisher delivers the report to a chat. Implemented by publisher.TelegramPublisher.
type reportPublisher interface {
	Publish(ctx context.Context, chatID int64, text string) ([]int, error)
}

// BriefJob fetches all report sections and delivers the report to a chat.
type BriefJob struct {
	composer  reportComposer  // composer that builds the report from all sources
	publisher reportPublisher // publisher that delivers the report to the chat
	logger    *slog.Logger    // special logger for the job
	options   *JobOptions     // job options
}

// JobOptions holds job options needed for the job execution.
type JobOptions struct {
	timeout       time.Duration // bound for a whole fetch and deliver cycle
	shouldPublish bool          // if true, will send the report to the chat. Else: will just print it to the console (for development)
}

// DefaultTimeout bounds a single report cycle.
const DefaultTimeout = 30 * time.Second

// NewBriefJob creates a new BriefJob instance.
func NewBriefJob(composer reportComposer, publisher reportPublisher) *BriefJob {
	return &BriefJob{
		composer:  composer,
		publisher: publisher,
		logger:    slog.Default(),
		options: &JobOptions{
			timeout: DefaultTimeout,
		},
	}
}

// Publish sets the flag that will send reports to the chats. Else: will just print them to the console (for development).
func (job *BriefJob) Publish() *BriefJob {
	job.options.shouldPublish = true
	return job
}

// Timeout overrides DefaultTimeout.
func (job *BriefJob) Timeout(d time.Duration) *BriefJob {
	job.options.timeout = d
	return job
}

// Run returns job function that will be executed by the scheduler or the bot.
func (job *BriefJob) Run(chatID int64, trigger Trigger) JobFunc {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), job.options.timeout)
		defer cancel()

		if err := job.Execute(ctx, chatID, trigger); err != nil {
			job.logger.Error("[BriefJob.Run][Execute]", "chat_id", chatID, "trigger", trigger, "error", err)
		}
	}
}

// Execute runs one full cycle: fetch every section, then deliver the report.
func (job *BriefJob) Execute(ctx context.Context, chatID int64, trigger Trigger) error {
	cycleID := uuid.New()
	jobName := fmt.Sprintf("Brief.%s", trigger)

	// Sentry performance monitoring
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
		ctx = sentry.SetHubOnContext(ctx, hub)
	}
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("cycle_id", cycleID.String())
		scope.SetTag("trigger", string(trigger))
	})

	tx := sentry.StartTransaction(ctx, fmt.Sprintf("Job.%s", jobName))
	tx.Op = "job"
	defer func() {
		tx.Finish()
		hub.Flush(2 * time.Second)
	}()

	logger := job.logger.With("cycle_id", cycleID.String(), "chat_id", chatID, "trigger", trigger)

	started := time.Now()
	span := tx.StartChild("Fetching")
	report := job.composer.Compose(span.Context(), trigger.Greeting())
	span.Finish()
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category: "successful",
		Message:  fmt.Sprintf("Compose built a report of %d bytes in %s", len(report), time.Since(started)),
		Level:    sentry.LevelInfo,
	}, nil)

	if !job.options.shouldPublish {
		fmt.Printf("--- chat %d (%s) ---\n%s\n", chatID, trigger, report)
		return nil
	}

	span = tx.StartChild("Delivering")
	ids, err := job.publisher.Publish(span.Context(), chatID, report)
	span.Finish()
	metrics.ObserveDelivery(string(trigger), err)
	if err != nil {
		utils.CaptureSentryException("jobPublishError", hub, err)
		return fmt.Errorf("[BriefJob.Execute][publisher.Publish]: %w", err)
	}

	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category: "successful",
		Message:  fmt.Sprintf("Publish delivered %d messages", len(ids)),
		Level:    sentry.LevelInfo,
	}, nil)
	logger.Info("[BriefJob.Execute] report delivered", "messages", len(ids))

	return nil
}

// JobFunc is a type for job function that will be executed by the scheduler.
type JobFunc func()
