package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/craftlink/marketplace-api/db"
	"github.com/craftlink/marketplace-api/models"
	"github.com/craftlink/marketplace-api/utils"
)

// StaleBookingAge is how long a pending, unpaid booking may hold its
// slot before the sweeper releases it. Matches the hosted checkout
// session lifetime, with slack for webhook delivery.
const StaleBookingAge = 2 * time.Hour

// StartCronJobs initializes and starts the background sweeps: session
// reminders and stale-booking cleanup.
func StartCronJobs() {
	c := cron.New()
	_, err := c.AddFunc("* * * * *", sendBookingReminders)
	if err != nil {
		log.Fatalf("Failed to add reminder cron job: %v", err)
	}
	_, err = c.AddFunc("*/10 * * * *", releaseStaleBookings)
	if err != nil {
		log.Fatalf("Failed to add stale-booking cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduler started")
}

// sendBookingReminders emails clients about confirmed sessions starting
// in roughly one hour.
func sendBookingReminders() {
	var bookings []models.Booking
	now := time.Now()
	startWindow := now.Add(55 * time.Minute)
	endWindow := now.Add(65 * time.Minute)

	err := db.DB.Preload("Client").Preload("SessionType").Preload("Builder").
		Where("status = ? AND start_time BETWEEN ? AND ?", models.StatusConfirmed, startWindow, endWindow).
		Find(&bookings).Error
	if err != nil {
		log.Printf("Error fetching bookings for reminders: %v", err)
		return
	}

	for _, booking := range bookings {
		if err := sendReminderEmail(&booking); err != nil {
			log.Printf("Failed to send reminder for booking %d: %v", booking.ID, err)
			continue
		}
		log.Printf("Sent reminder for booking %d to %s", booking.ID, booking.Client.Email)
	}
}

// releaseStaleBookings cancels pending bookings whose checkout was never
// completed, so the slot becomes bookable again.
func releaseStaleBookings() {
	cutoff := time.Now().Add(-StaleBookingAge)

	var stale []models.Booking
	err := db.DB.
		Where("status = ?", models.StatusPending).
		Where("payment_status IN ?", []models.PaymentStatus{models.PaymentUnpaid, models.PaymentPending, models.PaymentFailed}).
		Where("created_at < ?", cutoff).
		Find(&stale).Error
	if err != nil {
		log.Printf("Error fetching stale bookings: %v", err)
		return
	}

	for _, booking := range stale {
		booking.Status = models.StatusCancelled
		if err := db.DB.Save(&booking).Error; err != nil {
			log.Printf("Failed to release stale booking %d: %v", booking.ID, err)
			continue
		}
		log.Printf("Released stale booking %d (slot %s)", booking.ID, booking.StartTime.Format(time.RFC3339))
	}
}

// sendReminderEmail constructs and sends the reminder email
func sendReminderEmail(booking *models.Booking) error {
	subject := fmt.Sprintf("Reminder: Upcoming Session - %s", booking.SessionType.Title)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming session scheduled in one hour.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Session:</strong> %s</li>
			<li><strong>Builder:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>End Time:</strong> %s</li>
		</ul>
		<p>If you need to cancel, please do so as soon as possible.</p>
		<p>Best regards,</p>
		<p>The CraftLink Team</p>
	`, booking.Client.Name, booking.SessionType.Title, booking.Builder.Name,
		booking.StartTime.Format("2006-01-02 15:04:05"),
		booking.EndTime.Format("2006-01-02 15:04:05"))

	return utils.SendEmail(booking.Client.Email, subject, body)
}
