package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samgozman/morning-thread/metrics"
	"github.com/samgozman/morning-thread/utils"
)

// ErrNotRegistered is returned for chats without a daily report.
var ErrNotRegistered = errors.New("chat has no daily report")

// gocron answers job lookups only when its loop is idle.
const nextRunAttempts = 5

func chatTag(chatID int64) string {
	return "chat:" + strconv.FormatInt(chatID, 10)
}

// Scheduler keeps one daily report job per chat.
type Scheduler struct {
	cron     gocron.Scheduler
	location *time.Location
	hour     uint
	minute   uint

	mu    sync.Mutex
	chats map[int64]uuid.UUID // chat id -> gocron job id

	logger *slog.Logger
}

// NewScheduler creates a scheduler that fires every day at clock ("HH:MM") in the given IANA timezone.
func NewScheduler(timezone, clock string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("[scheduler.NewScheduler][time.LoadLocation]: %w", err)
	}

	hour, minute, err := utils.ParseClock(clock)
	if err != nil {
		return nil, fmt.Errorf("[scheduler.NewScheduler][utils.ParseClock]: %w", err)
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("[scheduler.NewScheduler][gocron.NewScheduler]: %w", err)
	}

	return &Scheduler{
		cron:     cron,
		location: loc,
		hour:     hour,
		minute:   minute,
		chats:    make(map[int64]uuid.UUID),
		logger:   slog.Default(),
	}, nil
}

// Register adds a daily job running task for the chat.
// A chat is registered at most once: the second call is a no-op and returns false.
func (s *Scheduler) Register(chatID int64, task func()) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; ok {
		return false, nil
	}

	id := strconv.FormatInt(chatID, 10)
	job, err := s.cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(s.hour, s.minute, 0))),
		gocron.NewTask(task),
		gocron.WithName("brief:"+id),
		gocron.WithTags(chatTag(chatID)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return false, fmt.Errorf("[Scheduler.Register][cron.NewJob]: %w", err)
	}

	s.chats[chatID] = job.ID()
	metrics.ScheduledChats.Set(float64(len(s.chats)))
	s.logger.Info("[Scheduler.Register] daily report scheduled", "chat_id", chatID, "job_id", job.ID().String())

	return true, nil
}

// Unregister removes the chat's daily job.
func (s *Scheduler) Unregister(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.chats[chatID]
	if !ok {
		return fmt.Errorf("[Scheduler.Unregister]: chat %d: %w", chatID, ErrNotRegistered)
	}

	// RemoveJob drops the request when the cron loop is busy, removal by tag waits for it.
	s.cron.RemoveByTags(chatTag(chatID))

	delete(s.chats, chatID)
	metrics.ScheduledChats.Set(float64(len(s.chats)))
	s.logger.Info("[Scheduler.Unregister] daily report removed", "chat_id", chatID, "job_id", id.String())

	return nil
}

// IsRegistered reports whether the chat has a daily job.
func (s *Scheduler) IsRegistered(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.chats[chatID]
	return ok
}

// Chats returns ids of all registered chats.
func (s *Scheduler) Chats() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.Keys(s.chats)
}

// NextRun returns the next time the chat's report fires.
func (s *Scheduler) NextRun(chatID int64) (time.Time, error) {
	s.mu.Lock()
	id, ok := s.chats[chatID]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, fmt.Errorf("[Scheduler.NextRun]: chat %d: %w", chatID, ErrNotRegistered)
	}

	job, ok := lo.Find(s.cron.Jobs(), func(j gocron.Job) bool { return j.ID() == id })
	if !ok {
		return time.Time{}, fmt.Errorf("[Scheduler.NextRun]: job %s: %w", id, ErrNotRegistered)
	}

	var next time.Time
	err := retry.Do(
		func() error {
			var err error
			next, err = job.NextRun()
			return err
		},
		retry.Attempts(nextRunAttempts),
		retry.Delay(10*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return time.Time{}, fmt.Errorf("[Scheduler.NextRun][job.NextRun]: %w", err)
	}

	return next, nil
}

// Location returns the timezone daily jobs fire in.
func (s *Scheduler) Location() *time.Location {
	return s.location
}

// Start starts firing registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("[Scheduler.Stop][cron.Shutdown]: %w", err)
	}
	return nil
}
