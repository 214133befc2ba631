package cron

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/CodOfTrade/Sys-Ticket-sub003/db"
	"github.com/CodOfTrade/Sys-Ticket-sub003/models"
	"github.com/CodOfTrade/Sys-Ticket-sub003/utils"
)

const defaultStaleTimerHours = 12

// StartCronJobs initializes and starts the cron scheduler for stale timer reminders
func StartCronJobs() {
	fmt.Println("Starting cron job scheduler...")
	c := cron.New()
	// Run hourly to catch timers a technician forgot to stop
	_, err := c.AddFunc("0 * * * *", sendStaleTimerReminders)
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduler started for stale timer reminders")
}

func staleTimerThreshold() time.Duration {
	hours := defaultStaleTimerHours
	if raw := os.Getenv("STALE_TIMER_HOURS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			hours = parsed
		}
	}
	return time.Duration(hours) * time.Hour
}

// sendStaleTimerReminders finds timers running past the threshold and emails the technician
func sendStaleTimerReminders() {
	cutoff := time.Now().Add(-staleTimerThreshold())

	var appointments []models.Appointment
	err := db.DB.Preload("Technician").Preload("Ticket").
		Where("timer_stopped_at IS NULL AND timer_started_at < ?", cutoff).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Error fetching stale timers: %v", err)
		return
	}

	for _, appointment := range appointments {
		if err := sendStaleTimerEmail(&appointment); err != nil {
			log.Printf("Failed to send stale timer reminder for appointment %d: %v", appointment.ID, err)
			continue
		}
		log.Printf("Sent stale timer reminder for appointment %d to %s", appointment.ID, appointment.Technician.Email)
	}
}

// sendStaleTimerEmail constructs and sends the reminder email
func sendStaleTimerEmail(appointment *models.Appointment) error {
	subject := fmt.Sprintf("Reminder: timer still running on ticket #%d", appointment.TicketID)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your appointment timer on ticket <strong>#%d — %s</strong> has been running since %s.</p>
		<p>If the work is done, stop the timer so the appointment can be billed correctly.</p>
		<p>Best regards,</p>
		<p>Your Helpdesk Team</p>
	`, appointment.Technician.Name, appointment.TicketID, appointment.Ticket.Title,
		appointment.TimerStartedAt.Format("2006-01-02 15:04:05"))

	return utils.SendEmail(appointment.Technician.Email, subject, body)
}
