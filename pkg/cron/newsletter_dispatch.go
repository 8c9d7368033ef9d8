// pkg/cron/newsletter_dispatch.go

package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"projexino_backend/pkg/newsletter"
)

// InitNewsletterDispatchCron starts the sweep that sends scheduled
// newsletters. Due times live in the database, so a process restart only
// delays a dispatch until the next tick instead of losing it.
func InitNewsletterDispatchCron(d *newsletter.Dispatcher) {
	c := cron.New()

	_, err := c.AddFunc("* * * * *", func() {
		d.DispatchDue(time.Now())
	})

	if err != nil {
		log.Printf("Could not initialize newsletter dispatch cron: %v", err)
		return
	}

	c.Start()
	log.Printf("Newsletter dispatch cron initialized successfully")
}
