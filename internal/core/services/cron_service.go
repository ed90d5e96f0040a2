package services

import (
	"context"
	"log"
	"time"

	"shamba-credit/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs the daily repayment reminder job. It only reads the
// schedule: overdue stays a derived property and stored payment status is
// never rewritten by this job.
type CronService struct {
	cron          *cron.Cron
	paymentRepo   repositories.PaymentRepository
	notifyService *NotificationService
}

// NewCronService creates a new cron service
func NewCronService(paymentRepo repositories.PaymentRepository, notifyService *NotificationService) *CronService {
	return &CronService{
		cron:          cron.New(),
		paymentRepo:   paymentRepo,
		notifyService: notifyService,
	}
}

// Start schedules the reminder job (08:30 daily) and starts the cron loop
func (s *CronService) Start() {
	s.cron.AddFunc("30 8 * * *", s.RunDueReminders)
	s.cron.Start()
	log.Println("✅ Cron service started (due reminders at 08:30 daily)")
}

// Stop stops the cron loop
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("🛑 Cron service stopped")
}

// RunDueReminders sends a reminder for every pending payment past its due
// date as of now
func (s *CronService) RunDueReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	payments, err := s.paymentRepo.ListDuePending(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Due reminder job failed: %v", err)
		return
	}

	if len(payments) == 0 {
		log.Println("✅ Due reminder job: no overdue payments")
		return
	}

	for _, payment := range payments {
		if s.notifyService != nil {
			s.notifyService.NotifyPaymentDue(payment)
		}
	}

	log.Printf("✅ Due reminder job: %d overdue payments notified", len(payments))
}
