// pkg/cron/subscriber_stats.go

package cron

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
	"projexino_backend/pkg/email"
)

var (
	lastStatsRun time.Time
	statsMutex   sync.Mutex
)

// InitSubscriberStatsCron emails admins a daily count of new newsletter
// subscribers at 19:00.
func InitSubscriberStatsCron() {
	c := cron.New()

	_, err := c.AddFunc("0 19 * * *", func() {
		statsMutex.Lock()
		defer statsMutex.Unlock()

		if time.Since(lastStatsRun) < 23*time.Hour {
			log.Printf("Subscriber stats already sent today, skipping...")
			return
		}

		sendDailySubscriberStats()
		lastStatsRun = time.Now()
	})

	if err != nil {
		log.Printf("Could not initialize subscriber stats cron: %v", err)
		return
	}

	c.Start()
	log.Printf("Subscriber stats cron initialized successfully")
}

func sendDailySubscriberStats() {
	dayStart := time.Now().Truncate(24 * time.Hour)
	log.Printf("Running subscriber stats for date: %s", dayStart.Format("2006-01-02"))

	var newSubscribers int64
	err := database.DB.Model(&model.Subscriber{}).
		Where("subscribed_at >= ?", dayStart).
		Count(&newSubscribers).Error
	if err != nil {
		log.Printf("Error counting new subscribers: %v", err)
		return
	}

	if newSubscribers == 0 {
		log.Printf("No new subscribers today, skipping stats email")
		return
	}

	var admins []model.User
	if err := database.DB.Where("role = ?", model.RoleAdmin).Find(&admins).Error; err != nil {
		log.Printf("Error fetching admin users: %v", err)
		return
	}

	for _, admin := range admins {
		if email.GlobalEmailService != nil {
			err := email.GlobalEmailService.SendDailySubscriberStats(
				admin.Email,
				admin.Name,
				newSubscribers,
				time.Now(),
			)
			if err != nil {
				log.Printf("Error sending subscriber stats to %s: %v", admin.Email, err)
			} else {
				log.Printf("Successfully sent subscriber stats to %s", admin.Email)
			}
		}
	}
}
