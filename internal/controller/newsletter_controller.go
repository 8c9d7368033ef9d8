package controller

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
	"projexino_backend/pkg/email"
	"projexino_backend/pkg/newsletter"
	imageutil "projexino_backend/pkg/utils/image"
	"projexino_backend/pkg/utils/storage"
	"projexino_backend/pkg/utils/validation"
)

var newsletterDispatcher *newsletter.Dispatcher

func InitNewsletterController(d *newsletter.Dispatcher) {
	newsletterDispatcher = d
}

func siteBaseURL() string {
	if base := os.Getenv("SITE_URL"); base != "" {
		return base
	}
	return "https://projexino.com"
}

type NewsletterInput struct {
	Title        string   `json:"title"`
	Subject      string   `json:"subject"`
	Content      string   `json:"content"`
	Images       []string `json:"images"`
	Status       string   `json:"status"`
	ScheduledFor string   `json:"scheduled_for"`
	Tags         []string `json:"tags"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
}

func GetNewsletters(c *fiber.Ctx) error {
	var newsletters []model.Newsletter
	if err := database.GetDB().Order("created_at desc").Find(&newsletters).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch newsletters",
		})
	}
	return c.JSON(newsletters)
}

func GetNewsletterByID(c *fiber.Ctx) error {
	var n model.Newsletter
	if err := database.GetDB().First(&n, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Newsletter not found",
		})
	}
	return c.JSON(n)
}

func CreateNewsletter(c *fiber.Ctx) error {
	input := new(NewsletterInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	if input.Title == "" || input.Subject == "" || input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title, subject and content are required",
		})
	}

	status := model.NewsletterStatusDraft
	var scheduledFor *time.Time

	switch model.NewsletterStatus(input.Status) {
	case "", model.NewsletterStatusDraft:
	case model.NewsletterStatusScheduled:
		if input.ScheduledFor == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "scheduled_for is required for a scheduled newsletter",
			})
		}
		t, err := time.Parse(time.RFC3339, input.ScheduledFor)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid scheduled_for, expected RFC 3339",
			})
		}
		utc := t.UTC()
		scheduledFor = &utc
		status = model.NewsletterStatusScheduled
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Newsletters can only be created as Draft or Scheduled",
		})
	}

	n := model.Newsletter{
		Title:        input.Title,
		Subject:      input.Subject,
		Content:      input.Content,
		Images:       datatypes.NewJSONSlice(input.Images),
		Status:       status,
		ScheduledFor: scheduledFor,
		Tags:         datatypes.NewJSONSlice(input.Tags),
		Category:     input.Category,
		Description:  input.Description,
	}

	if err := database.GetDB().Create(&n).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create newsletter",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(n)
}

func UpdateNewsletter(c *fiber.Ctx) error {
	var n model.Newsletter
	if err := database.GetDB().First(&n, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Newsletter not found",
		})
	}

	if n.Status.IsTerminal() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Sent or failed newsletters cannot be modified",
		})
	}

	input := new(NewsletterInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Subject != "" {
		updates["subject"] = input.Subject
	}
	if input.Content != "" {
		updates["content"] = input.Content
	}
	if input.Images != nil {
		updates["images"] = datatypes.NewJSONSlice(input.Images)
	}
	if input.Tags != nil {
		updates["tags"] = datatypes.NewJSONSlice(input.Tags)
	}
	if input.Category != "" {
		updates["category"] = input.Category
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.ScheduledFor != "" {
		t, err := time.Parse(time.RFC3339, input.ScheduledFor)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid scheduled_for, expected RFC 3339",
			})
		}
		updates["scheduled_for"] = t.UTC()
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(&n).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update newsletter",
			})
		}
	}

	return c.JSON(n)
}

func DeleteNewsletter(c *fiber.Ctx) error {
	var n model.Newsletter
	if err := database.GetDB().First(&n, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Newsletter not found",
		})
	}

	if err := database.GetDB().Delete(&n).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete newsletter",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Newsletter deleted successfully",
	})
}

// SendNewsletter runs an immediate dispatch. The response reports the
// pass ran, with per-recipient failures surfaced only in the stats.
func SendNewsletter(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid newsletter ID",
		})
	}

	summary, _, err := newsletterDispatcher.Dispatch(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, newsletter.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Newsletter not found",
			})
		case errors.Is(err, newsletter.ErrAlreadyFinal):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Newsletter has already been dispatched",
			})
		case errors.Is(err, newsletter.ErrNotDispatchable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A dispatch for this newsletter is already running",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Newsletter sent successfully",
		"stats": fiber.Map{
			"total":      summary.Total,
			"successful": summary.Successful,
			"failed":     summary.Failed,
		},
	})
}

type ScheduleBlogInput struct {
	BlogIDs           []uint `json:"blog_ids"`
	ScheduledFor      string `json:"scheduled_for"`
	Subject           string `json:"subject"`
	AdditionalContent string `json:"additional_content"`
}

// ScheduleBlogNewsletter builds a digest from the referenced blog posts
// and persists it as a Scheduled newsletter. The dispatch cron picks it
// up once the due time passes; nothing is armed in memory, so a restart
// cannot lose the send.
func ScheduleBlogNewsletter(c *fiber.Ctx) error {
	input := new(ScheduleBlogInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	if len(input.BlogIDs) == 0 || input.ScheduledFor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input. Required: blog_ids array and scheduled_for date",
		})
	}

	scheduledFor, err := time.Parse(time.RFC3339, input.ScheduledFor)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scheduled_for, expected RFC 3339",
		})
	}
	scheduledUTC := scheduledFor.UTC()

	var blogs []model.Blog
	if err := database.GetDB().Where("id IN ?", input.BlogIDs).Find(&blogs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch blogs",
		})
	}
	if len(blogs) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No blogs found with the provided IDs",
		})
	}

	if email.GlobalEmailService == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Email service is not available",
		})
	}

	digest := email.BlogDigestData{Intro: input.AdditionalContent}
	for _, blog := range blogs {
		publishedAt := blog.CreatedAt
		if blog.PublishedDate != nil {
			publishedAt = *blog.PublishedDate
		}
		digest.Blogs = append(digest.Blogs, email.BlogDigestItem{
			Title:         blog.Title,
			URL:           fmt.Sprintf("%s/blogs/%s", siteBaseURL(), blog.Slug),
			Excerpt:       blog.Excerpt,
			AuthorName:    blog.AuthorName,
			FeaturedImage: blog.FeaturedImage,
			PublishedAt:   publishedAt,
		})
	}

	content, err := email.GlobalEmailService.RenderBlogDigest(digest)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not render blog digest",
		})
	}

	subject := input.Subject
	if subject == "" {
		subject = "Latest Blog Posts You Might Like"
	}

	n := model.Newsletter{
		Title:        "Featured Blog Posts",
		Subject:      subject,
		Content:      content,
		Status:       model.NewsletterStatusScheduled,
		ScheduledFor: &scheduledUTC,
		Tags:         datatypes.NewJSONSlice([]string{"blog-newsletter"}),
		Category:     "Blog Digest",
		Description:  fmt.Sprintf("Scheduled newsletter featuring %d blog posts", len(blogs)),
	}

	if err := database.GetDB().Create(&n).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create newsletter",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Newsletter scheduled successfully",
		"newsletter": n,
	})
}

func GetScheduledNewsletters(c *fiber.Ctx) error {
	var newsletters []model.Newsletter
	err := database.GetDB().
		Where("status = ? AND scheduled_for > ?", model.NewsletterStatusScheduled, time.Now().UTC()).
		Order("scheduled_for asc").
		Find(&newsletters).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch scheduled newsletters",
		})
	}

	if len(newsletters) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No scheduled newsletters found",
		})
	}

	return c.JSON(newsletters)
}

func CancelScheduledNewsletter(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid newsletter ID",
		})
	}

	n, err := newsletterDispatcher.Cancel(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, newsletter.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Newsletter not found",
			})
		case errors.Is(err, newsletter.ErrNotScheduled):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Only scheduled newsletters can be cancelled",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"message":    "Newsletter cancelled successfully",
		"newsletter": n,
	})
}

func GetTotalNewslettersCount(c *fiber.Ctx) error {
	var total int64
	if err := database.GetDB().Model(&model.Newsletter{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not count newsletters",
		})
	}
	return c.JSON(fiber.Map{"total_count": total})
}

type MonthlyCount struct {
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

func GetMonthlyNewsletterCounts(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid year provided",
		})
	}

	counts := make([]MonthlyCount, 0, 12)
	for month := 0; month < 12; month++ {
		start := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)

		var count int64
		database.GetDB().Model(&model.Newsletter{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Count(&count)

		counts = append(counts, MonthlyCount{Month: month + 1, Count: count})
	}

	return c.JSON(counts)
}

func GetScheduledNewslettersCount(c *fiber.Ctx) error {
	var count int64
	if err := database.GetDB().Model(&model.Newsletter{}).
		Where("status = ?", model.NewsletterStatusScheduled).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not count scheduled newsletters",
		})
	}
	return c.JSON(fiber.Map{"scheduled_count": count})
}

// SendAnnouncement creates an announcement newsletter from a multipart
// form, uploads its images to object storage, and dispatches it right
// away.
func SendAnnouncement(c *fiber.Ctx) error {
	title := c.FormValue("title")
	content := c.FormValue("content")
	if title == "" || content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and content are required",
		})
	}

	subject := c.FormValue("subject")
	if subject == "" {
		subject = title
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid multipart form",
		})
	}

	files := form.File["images"]
	if len(files) > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "An announcement can carry at most 5 images",
		})
	}

	imageURLs := make([]string, 0, len(files))
	for _, file := range files {
		if err := validation.ValidateImage(file); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		processed, contentType, err := imageutil.ProcessImage(file)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not process image",
			})
		}

		url, err := storage.UploadBytes(processed, "announcements", file.Filename, contentType)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not upload image",
			})
		}
		imageURLs = append(imageURLs, url)
	}

	n := model.Newsletter{
		Title:       title,
		Subject:     subject,
		Content:     content,
		Images:      datatypes.NewJSONSlice(imageURLs),
		Status:      model.NewsletterStatusDraft,
		Tags:        datatypes.NewJSONSlice([]string{"announcement"}),
		Category:    "Announcement",
		Description: c.FormValue("description"),
	}

	if err := database.GetDB().Create(&n).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create announcement",
		})
	}

	summary, _, err := newsletterDispatcher.Dispatch(n.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Announcement sent successfully",
		"stats": fiber.Map{
			"total":      summary.Total,
			"successful": summary.Successful,
			"failed":     summary.Failed,
		},
	})
}

func GetAnnouncementCounts(c *fiber.Ctx) error {
	var total int64
	if err := database.GetDB().Model(&model.Newsletter{}).
		Where("category = ?", "Announcement").
		Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not count announcements",
		})
	}

	var sent int64
	database.GetDB().Model(&model.Newsletter{}).
		Where("category = ? AND status = ?", "Announcement", model.NewsletterStatusSent).
		Count(&sent)

	return c.JSON(fiber.Map{
		"total_count": total,
		"sent_count":  sent,
	})
}

func GetMonthlyAnnouncementCounts(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid year provided",
		})
	}

	counts := make([]MonthlyCount, 0, 12)
	for month := 0; month < 12; month++ {
		start := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)

		var count int64
		database.GetDB().Model(&model.Newsletter{}).
			Where("category = ? AND created_at >= ? AND created_at < ?", "Announcement", start, end).
			Count(&count)

		counts = append(counts, MonthlyCount{Month: month + 1, Count: count})
	}

	return c.JSON(counts)
}

func GetCancelledNewslettersCount(c *fiber.Ctx) error {
	var count int64
	if err := database.GetDB().Model(&model.Newsletter{}).
		Where("status = ?", model.NewsletterStatusDraft).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not count cancelled newsletters",
		})
	}
	return c.JSON(fiber.Map{"cancelled_count": count})
}
