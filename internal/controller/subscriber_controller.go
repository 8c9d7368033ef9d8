package controller

import (
	"net/mail"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
)

type SubscribeInput struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
}

func AddSubscriber(c *fiber.Ctx) error {
	input := new(SubscribeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	if _, err := mail.ParseAddress(input.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email format",
		})
	}

	var existing model.Subscriber
	if err := database.GetDB().Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email is already subscribed",
		})
	}

	subscriber := model.Subscriber{
		Name:  input.Name,
		Email: input.Email,
	}

	if err := database.GetDB().Create(&subscriber).Error; err != nil {
		// Unique index backstop for concurrent subscribes
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Could not complete subscription",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Subscriber added successfully",
		"subscriber": subscriber,
	})
}

func GetSubscribers(c *fiber.Ctx) error {
	var subscribers []model.Subscriber
	if err := database.GetDB().Order("subscribed_at desc").Find(&subscribers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch subscribers",
		})
	}

	return c.JSON(fiber.Map{
		"subscribers": subscribers,
		"total":       len(subscribers),
	})
}

func UpdateSubscriber(c *fiber.Ctx) error {
	var subscriber model.Subscriber
	if err := database.GetDB().First(&subscriber, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Subscriber not found",
		})
	}

	input := new(SubscribeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid email format",
			})
		}
		updates["email"] = input.Email
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(&subscriber).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update subscriber",
			})
		}
	}

	return c.JSON(subscriber)
}

func DeleteSubscriber(c *fiber.Ctx) error {
	var subscriber model.Subscriber
	if err := database.GetDB().First(&subscriber, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Subscriber not found",
		})
	}

	if err := database.GetDB().Delete(&subscriber).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete subscriber",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Subscriber deleted successfully",
	})
}

type UnsubscribeInput struct {
	Email string `json:"email" validate:"required,email"`
}

func UnsubscribeSubscriber(c *fiber.Ctx) error {
	input := new(UnsubscribeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	var subscriber model.Subscriber
	if err := database.GetDB().Where("email = ?", input.Email).First(&subscriber).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Subscriber not found",
		})
	}

	// Already-unsubscribed is a no-op, not an error; subscribed_at stays
	// untouched either way.
	if subscriber.Status == model.SubscriberStatusUnsubscribed {
		return c.JSON(fiber.Map{
			"message":    "Subscriber is already unsubscribed",
			"subscriber": subscriber,
		})
	}

	if err := database.GetDB().Model(&subscriber).
		Update("status", model.SubscriberStatusUnsubscribed).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not unsubscribe",
		})
	}

	return c.JSON(fiber.Map{
		"message":    "Subscriber unsubscribed successfully",
		"subscriber": subscriber,
	})
}

func GetSubscriberCounts(c *fiber.Ctx) error {
	db := database.GetDB()

	var total, active, inactive int64
	db.Model(&model.Subscriber{}).Count(&total)
	db.Model(&model.Subscriber{}).Where("status = ?", model.SubscriberStatusSubscribed).Count(&active)
	db.Model(&model.Subscriber{}).Where("status = ?", model.SubscriberStatusUnsubscribed).Count(&inactive)

	return c.JSON(fiber.Map{
		"total":    total,
		"active":   active,
		"inactive": inactive,
	})
}

type MonthlySubscriberCount struct {
	Month    int   `json:"month"`
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

func GetMonthlySubscriberCounts(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		year = time.Now().Year()
	}

	db := database.GetDB()
	counts := make([]MonthlySubscriberCount, 0, 12)

	for month := 0; month < 12; month++ {
		start := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)

		var row MonthlySubscriberCount
		row.Month = month + 1

		db.Model(&model.Subscriber{}).
			Where("subscribed_at >= ? AND subscribed_at < ?", start, end).
			Count(&row.Total)
		db.Model(&model.Subscriber{}).
			Where("subscribed_at >= ? AND subscribed_at < ? AND status = ?", start, end, model.SubscriberStatusSubscribed).
			Count(&row.Active)
		db.Model(&model.Subscriber{}).
			Where("subscribed_at >= ? AND subscribed_at < ? AND status = ?", start, end, model.SubscriberStatusUnsubscribed).
			Count(&row.Inactive)

		counts = append(counts, row)
	}

	return c.JSON(counts)
}

type DateRangeInput struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func GetSubscriberCountsBetweenDates(c *fiber.Ctx) error {
	input := new(DateRangeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	if input.StartDate == "" || input.EndDate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Start date and end date are required",
		})
	}

	start, err1 := time.Parse(time.RFC3339, input.StartDate)
	end, err2 := time.Parse(time.RFC3339, input.EndDate)
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date format, expected RFC 3339",
		})
	}

	db := database.GetDB()
	var total, active, inactive int64
	db.Model(&model.Subscriber{}).
		Where("subscribed_at >= ? AND subscribed_at < ?", start, end).
		Count(&total)
	db.Model(&model.Subscriber{}).
		Where("subscribed_at >= ? AND subscribed_at < ? AND status = ?", start, end, model.SubscriberStatusSubscribed).
		Count(&active)
	db.Model(&model.Subscriber{}).
		Where("subscribed_at >= ? AND subscribed_at < ? AND status = ?", start, end, model.SubscriberStatusUnsubscribed).
		Count(&inactive)

	return c.JSON(fiber.Map{
		"total":    total,
		"active":   active,
		"inactive": inactive,
	})
}

func GetRecentSubscribers(c *fiber.Ctx) error {
	var recent []model.Subscriber
	if err := database.GetDB().
		Order("subscribed_at desc").
		Limit(5).
		Find(&recent).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch recent subscribers",
		})
	}

	return c.JSON(recent)
}
