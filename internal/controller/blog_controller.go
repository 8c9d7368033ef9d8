package controller

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"

	"projexino_backend/internal/middleware"
	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
	imageutil "projexino_backend/pkg/utils/image"
	"projexino_backend/pkg/utils/storage"
	"projexino_backend/pkg/utils/validation"
)

// uniqueBlogSlug derives a URL slug from the title, suffixing a counter
// when the base form is already taken.
func uniqueBlogSlug(title string) string {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		database.GetDB().Model(&model.Blog{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// estimateReadingTime assumes an average pace of 200 words per minute.
func estimateReadingTime(blocks []model.BlogBlock) int {
	words := 0
	for _, b := range blocks {
		words += len(strings.Fields(b.Text))
		for _, item := range b.Items {
			words += len(strings.Fields(item))
		}
	}
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func uploadBlogImage(c *fiber.Ctx, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	if err := validation.ValidateImage(file); err != nil {
		return "", err
	}
	processed, contentType, err := imageutil.ProcessImage(file)
	if err != nil {
		return "", fmt.Errorf("could not process image: %w", err)
	}
	return storage.UploadBytes(processed, "blogs", file.Filename, contentType)
}

func GetBlogs(c *fiber.Ctx) error {
	query := database.GetDB().
		Where("status = ? AND visibility = ?", model.BlogStatusPublished, "Public")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var blogs []model.Blog
	if err := query.Order("published_date desc").Find(&blogs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch blogs",
		})
	}
	return c.JSON(blogs)
}

func GetAllBlogs(c *fiber.Ctx) error {
	var blogs []model.Blog
	if err := database.GetDB().Order("created_at desc").Find(&blogs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch blogs",
		})
	}
	return c.JSON(blogs)
}

// GetBlogBySlug is the public read path; every hit counts as a view.
func GetBlogBySlug(c *fiber.Ctx) error {
	var blog model.Blog
	err := database.GetDB().
		Where("slug = ? AND status = ?", c.Params("slug"), model.BlogStatusPublished).
		First(&blog).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Blog not found",
		})
	}

	database.GetDB().Model(&blog).UpdateColumn("views", blog.Views+1)
	blog.Views++

	return c.JSON(blog)
}

func GetBlogByID(c *fiber.Ctx) error {
	var blog model.Blog
	if err := database.GetDB().First(&blog, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Blog not found",
		})
	}
	return c.JSON(blog)
}

func CreateBlog(c *fiber.Ctx) error {
	title := c.FormValue("title")
	rawContent := c.FormValue("content")
	if title == "" || rawContent == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and content are required",
		})
	}

	var blocks []model.BlogBlock
	if err := json.Unmarshal([]byte(rawContent), &blocks); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Content must be a JSON array of blocks",
		})
	}
	if err := model.ValidateBlocks(blocks); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	featuredImage, err := uploadBlogImage(c, "featured_image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	authorImage, err := uploadBlogImage(c, "author_image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	status := model.BlogStatusDraft
	var publishedDate *time.Time
	if c.FormValue("status") == string(model.BlogStatusPublished) {
		status = model.BlogStatusPublished
		now := time.Now().UTC()
		publishedDate = &now
	}

	var tags []string
	if raw := c.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Tags must be a JSON array of strings",
			})
		}
	}
	var keywords []string
	if raw := c.FormValue("seo_keywords"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &keywords); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Keywords must be a JSON array of strings",
			})
		}
	}

	blog := model.Blog{
		Title:         title,
		Slug:          uniqueBlogSlug(title),
		Content:       datatypes.NewJSONSlice(blocks),
		AuthorName:    c.FormValue("author_name"),
		AuthorImage:   authorImage,
		Tags:          datatypes.NewJSONSlice(tags),
		Category:      c.FormValue("category"),
		FeaturedImage: featuredImage,
		ImageAltText:  c.FormValue("image_alt_text"),
		Status:        status,
		PublishedDate: publishedDate,
		Excerpt:       c.FormValue("excerpt"),
		SEOMetadata: model.SEOMetadata{
			MetaTitle:       c.FormValue("seo_meta_title"),
			MetaDescription: c.FormValue("seo_meta_description"),
			Keywords:        datatypes.NewJSONSlice(keywords),
		},
		ReadingTime: estimateReadingTime(blocks),
		IsFeatured:  c.FormValue("is_featured") == "true",
		Visibility:  "Public",
	}
	if v := c.FormValue("visibility"); v != "" {
		blog.Visibility = v
	}

	if claims, ok := middleware.UserClaims(c); ok {
		blog.CreatedByID = claims.UserID
	}

	if err := database.GetDB().Omit("CreatedBy").Create(&blog).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create blog",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(blog)
}

func UpdateBlog(c *fiber.Ctx) error {
	var blog model.Blog
	if err := database.GetDB().First(&blog, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Blog not found",
		})
	}

	updates := map[string]interface{}{}

	if title := c.FormValue("title"); title != "" && title != blog.Title {
		updates["title"] = title
		updates["slug"] = uniqueBlogSlug(title)
	}
	if rawContent := c.FormValue("content"); rawContent != "" {
		var blocks []model.BlogBlock
		if err := json.Unmarshal([]byte(rawContent), &blocks); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Content must be a JSON array of blocks",
			})
		}
		if err := model.ValidateBlocks(blocks); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		updates["content"] = datatypes.NewJSONSlice(blocks)
		updates["reading_time"] = estimateReadingTime(blocks)
	}
	if authorName := c.FormValue("author_name"); authorName != "" {
		updates["author_name"] = authorName
	}
	if category := c.FormValue("category"); category != "" {
		updates["category"] = category
	}
	if excerpt := c.FormValue("excerpt"); excerpt != "" {
		updates["excerpt"] = excerpt
	}
	if raw := c.FormValue("tags"); raw != "" {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Tags must be a JSON array of strings",
			})
		}
		updates["tags"] = datatypes.NewJSONSlice(tags)
	}
	if v := c.FormValue("is_featured"); v != "" {
		updates["is_featured"] = v == "true"
	}
	if v := c.FormValue("visibility"); v != "" {
		updates["visibility"] = v
	}

	if status := c.FormValue("status"); status != "" && status != string(blog.Status) {
		updates["status"] = status
		if status == string(model.BlogStatusPublished) && blog.PublishedDate == nil {
			updates["published_date"] = time.Now().UTC()
		}
	}

	if featuredImage, err := uploadBlogImage(c, "featured_image"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	} else if featuredImage != "" {
		if blog.FeaturedImage != "" {
			storage.DeleteObject(blog.FeaturedImage)
		}
		updates["featured_image"] = featuredImage
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(&blog).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update blog",
			})
		}
	}

	return c.JSON(blog)
}

func DeleteBlog(c *fiber.Ctx) error {
	var blog model.Blog
	if err := database.GetDB().First(&blog, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Blog not found",
		})
	}

	if blog.FeaturedImage != "" {
		storage.DeleteObject(blog.FeaturedImage)
	}
	if blog.AuthorImage != "" {
		storage.DeleteObject(blog.AuthorImage)
	}

	if err := database.GetDB().Delete(&blog).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete blog",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Blog deleted successfully",
	})
}

// RecordBlogView counts a read without returning the post body, for
// clients that render from a cached copy.
func RecordBlogView(c *fiber.Ctx) error {
	var blog model.Blog
	if err := database.GetDB().First(&blog, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Blog not found",
		})
	}

	database.GetDB().Model(&blog).UpdateColumn("views", blog.Views+1)

	return c.JSON(fiber.Map{
		"views": blog.Views + 1,
	})
}

func LikeBlog(c *fiber.Ctx) error {
	var blog model.Blog
	err := database.GetDB().
		Where("slug = ?", c.Params("slug")).
		First(&blog).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Blog not found",
		})
	}

	database.GetDB().Model(&blog).UpdateColumn("likes", blog.Likes+1)

	return c.JSON(fiber.Map{
		"message": "Blog liked",
		"likes":   blog.Likes + 1,
	})
}

func GetBlogCounts(c *fiber.Ctx) error {
	var total int64
	if err := database.GetDB().Model(&model.Blog{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not count blogs",
		})
	}

	var published int64
	database.GetDB().Model(&model.Blog{}).
		Where("status = ?", model.BlogStatusPublished).
		Count(&published)

	return c.JSON(fiber.Map{
		"total_count":     total,
		"published_count": published,
		"draft_count":     total - published,
	})
}

func GetMonthlyBlogCounts(c *fiber.Ctx) error {
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
		database.GetDB().Model(&model.Blog{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Count(&count)

		counts = append(counts, MonthlyCount{Month: month + 1, Count: count})
	}

	return c.JSON(counts)
}

func GetRecentBlogs(c *fiber.Ctx) error {
	var blogs []model.Blog
	err := database.GetDB().
		Where("status = ?", model.BlogStatusPublished).
		Order("published_date desc").
		Limit(5).
		Find(&blogs).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch recent blogs",
		})
	}
	return c.JSON(blogs)
}

func GetFeaturedBlogs(c *fiber.Ctx) error {
	var blogs []model.Blog
	err := database.GetDB().
		Where("status = ? AND is_featured = ?", model.BlogStatusPublished, true).
		Order("published_date desc").
		Find(&blogs).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch featured blogs",
		})
	}
	return c.JSON(blogs)
}
