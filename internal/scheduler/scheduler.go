package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/revocab/internal/database"
)

// Default window during which due-review reminders may be sent.
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	records   *database.ReviewRecordRepository
	notifier  Notifier
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(userID int64, dueCount int) error
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		records:   database.NewReviewRecordRepository(),
		notifier:  notifier,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	// Hourly sweep for users with due reviews.
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders notifies every user who has due review records,
// but only inside the configured notification window.
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().UTC().Hour()

	startHour := envHour("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := envHour("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now().UTC()
	userIDs, err := s.records.GetDueUserIDs(ctx, now)
	if err != nil {
		log.Printf("Error getting users with due reviews: %v", err)
		return
	}

	for _, userID := range userIDs {
		stats, err := s.records.GetStats(ctx, userID, now)
		if err != nil {
			log.Printf("Error getting stats for user %d: %v", userID, err)
			continue
		}
		if stats.DueToday == 0 {
			continue
		}
		if err := s.notifier.SendReminder(userID, stats.DueToday); err != nil {
			log.Printf("Error sending reminder to user %d: %v", userID, err)
		}
	}
}

// RunManualCheck forces a reminder check for a specific user
func (s *Scheduler) RunManualCheck(userID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := s.records.GetStats(ctx, userID, time.Now().UTC())
	if err != nil {
		return err
	}
	if stats.DueToday == 0 {
		return nil
	}
	return s.notifier.SendReminder(userID, stats.DueToday)
}

func envHour(name string, def int) int {
	if raw := os.Getenv(name); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return def
}
