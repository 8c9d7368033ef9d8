package controller

import (
	"github.com/gofiber/fiber/v2"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
)

// GetDashboardStats aggregates the headline numbers for the admin
// dashboard in a single round trip.
func GetDashboardStats(c *fiber.Ctx) error {
	db := database.GetDB()

	var blogs, publishedBlogs int64
	db.Model(&model.Blog{}).Count(&blogs)
	db.Model(&model.Blog{}).Where("status = ?", model.BlogStatusPublished).Count(&publishedBlogs)

	var subscribers, activeSubscribers int64
	db.Model(&model.Subscriber{}).Count(&subscribers)
	db.Model(&model.Subscriber{}).
		Where("status = ?", model.SubscriberStatusSubscribed).
		Count(&activeSubscribers)

	var newsletters, sentNewsletters, scheduledNewsletters int64
	db.Model(&model.Newsletter{}).Count(&newsletters)
	db.Model(&model.Newsletter{}).
		Where("status = ?", model.NewsletterStatusSent).
		Count(&sentNewsletters)
	db.Model(&model.Newsletter{}).
		Where("status = ?", model.NewsletterStatusScheduled).
		Count(&scheduledNewsletters)

	var careers, activeCareers, applications int64
	db.Model(&model.Career{}).Count(&careers)
	db.Model(&model.Career{}).Where("status = ?", model.CareerStatusActive).Count(&activeCareers)
	db.Model(&model.CareerApplication{}).Count(&applications)

	var contacts int64
	db.Model(&model.Contact{}).Count(&contacts)

	return c.JSON(fiber.Map{
		"blogs": fiber.Map{
			"total":     blogs,
			"published": publishedBlogs,
		},
		"subscribers": fiber.Map{
			"total":  subscribers,
			"active": activeSubscribers,
		},
		"newsletters": fiber.Map{
			"total":     newsletters,
			"sent":      sentNewsletters,
			"scheduled": scheduledNewsletters,
		},
		"careers": fiber.Map{
			"total":        careers,
			"active":       activeCareers,
			"applications": applications,
		},
		"contacts": fiber.Map{
			"total": contacts,
		},
	})
}
