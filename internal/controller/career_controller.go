package controller

import (
	"net/mail"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"projexino_backend/internal/middleware"
	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
	"projexino_backend/pkg/utils/storage"
	"projexino_backend/pkg/utils/validation"
)

type CareerInput struct {
	Title            string   `json:"title"`
	Department       string   `json:"department"`
	Location         string   `json:"location"`
	Type             string   `json:"type"`
	ExperienceMin    int      `json:"experience_min"`
	ExperienceMax    int      `json:"experience_max"`
	SalaryMin        int      `json:"salary_min"`
	SalaryMax        int      `json:"salary_max"`
	Description      string   `json:"description"`
	Requirements     []string `json:"requirements"`
	Responsibilities []string `json:"responsibilities"`
	Benefits         []string `json:"benefits"`
	Status           string   `json:"status"`
	Deadline         string   `json:"application_deadline"`
}

// GetCareers lists open positions. Postings past their application
// deadline stay listed; the apply endpoint is what enforces the cutoff.
func GetCareers(c *fiber.Ctx) error {
	query := database.GetDB().Where("status = ?", model.CareerStatusActive)

	if department := c.Query("department"); department != "" {
		query = query.Where("department = ?", department)
	}
	if location := c.Query("location"); location != "" {
		query = query.Where("location = ?", location)
	}

	var careers []model.Career
	if err := query.Order("created_at desc").Find(&careers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch careers",
		})
	}
	return c.JSON(careers)
}

func GetAllCareers(c *fiber.Ctx) error {
	var careers []model.Career
	if err := database.GetDB().Order("created_at desc").Find(&careers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch careers",
		})
	}
	return c.JSON(careers)
}

func GetCareerByID(c *fiber.Ctx) error {
	var career model.Career
	if err := database.GetDB().First(&career, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Career not found",
		})
	}
	return c.JSON(career)
}

func CreateCareer(c *fiber.Ctx) error {
	input := new(CareerInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	if input.Title == "" || input.Department == "" || input.Location == "" || input.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title, department, location and description are required",
		})
	}

	career := model.Career{
		Title:            input.Title,
		Department:       input.Department,
		Location:         input.Location,
		ExperienceMin:    input.ExperienceMin,
		ExperienceMax:    input.ExperienceMax,
		SalaryMin:        input.SalaryMin,
		SalaryMax:        input.SalaryMax,
		Description:      input.Description,
		Requirements:     datatypes.NewJSONSlice(input.Requirements),
		Responsibilities: datatypes.NewJSONSlice(input.Responsibilities),
		Benefits:         datatypes.NewJSONSlice(input.Benefits),
	}

	if input.Type != "" {
		career.Type = model.EmploymentType(input.Type)
	}
	if input.Status != "" {
		career.Status = model.CareerStatus(input.Status)
	}
	if input.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, input.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid application_deadline, expected RFC 3339",
			})
		}
		utc := deadline.UTC()
		career.Deadline = &utc
	}

	if claims, ok := middleware.UserClaims(c); ok {
		career.PostedByID = claims.UserID
	}

	if err := database.GetDB().Omit("PostedBy").Create(&career).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create career",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(career)
}

func UpdateCareer(c *fiber.Ctx) error {
	var career model.Career
	if err := database.GetDB().First(&career, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Career not found",
		})
	}

	input := new(CareerInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Department != "" {
		updates["department"] = input.Department
	}
	if input.Location != "" {
		updates["location"] = input.Location
	}
	if input.Type != "" {
		updates["type"] = input.Type
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.Status != "" {
		updates["status"] = input.Status
	}
	if input.Requirements != nil {
		updates["requirements"] = datatypes.NewJSONSlice(input.Requirements)
	}
	if input.Responsibilities != nil {
		updates["responsibilities"] = datatypes.NewJSONSlice(input.Responsibilities)
	}
	if input.Benefits != nil {
		updates["benefits"] = datatypes.NewJSONSlice(input.Benefits)
	}
	if input.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, input.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid application_deadline, expected RFC 3339",
			})
		}
		updates["deadline"] = deadline.UTC()
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(&career).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update career",
			})
		}
	}

	return c.JSON(career)
}

func DeleteCareer(c *fiber.Ctx) error {
	var career model.Career
	if err := database.GetDB().First(&career, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Career not found",
		})
	}

	if err := database.GetDB().Delete(&career).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete career",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Career deleted successfully",
	})
}

// ApplyForCareer accepts an application with a PDF resume. Applying to
// a closed posting or past the deadline is rejected.
func ApplyForCareer(c *fiber.Ctx) error {
	var career model.Career
	if err := database.GetDB().First(&career, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Career not found",
		})
	}

	if career.Status != model.CareerStatusActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "This position is no longer accepting applications",
		})
	}
	if career.Deadline != nil && time.Now().After(*career.Deadline) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "The application deadline has passed",
		})
	}

	name := c.FormValue("name")
	emailAddr := c.FormValue("email")
	if name == "" || emailAddr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and email are required",
		})
	}
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email address",
		})
	}

	resume, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Resume file is required",
		})
	}
	if err := validation.ValidateResume(resume); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	resumeURL, err := storage.UploadFile(resume, "resumes")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not upload resume",
		})
	}

	application := model.CareerApplication{
		CareerID:  career.ID,
		Name:      name,
		Email:     emailAddr,
		Phone:     c.FormValue("phone"),
		ResumeURL: resumeURL,
	}

	if err := database.GetDB().Create(&application).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not submit application",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Application submitted successfully",
		"application": application,
	})
}

func GetCareerApplications(c *fiber.Ctx) error {
	var career model.Career
	if err := database.GetDB().First(&career, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Career not found",
		})
	}

	var applications []model.CareerApplication
	err := database.GetDB().
		Where("career_id = ?", career.ID).
		Order("applied_at desc").
		Find(&applications).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch applications",
		})
	}

	return c.JSON(applications)
}

func GetAllApplications(c *fiber.Ctx) error {
	var applications []model.CareerApplication
	err := database.GetDB().
		Order("applied_at desc").
		Find(&applications).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch applications",
		})
	}
	return c.JSON(applications)
}

func GetCareerCounts(c *fiber.Ctx) error {
	var total int64
	if err := database.GetDB().Model(&model.Career{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not count careers",
		})
	}

	var active int64
	database.GetDB().Model(&model.Career{}).
		Where("status = ?", model.CareerStatusActive).
		Count(&active)

	var applications int64
	database.GetDB().Model(&model.CareerApplication{}).Count(&applications)

	return c.JSON(fiber.Map{
		"total_count":       total,
		"active_count":      active,
		"application_count": applications,
	})
}

func GetMonthlyCareerCounts(c *fiber.Ctx) error {
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
		database.GetDB().Model(&model.Career{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Count(&count)

		counts = append(counts, MonthlyCount{Month: month + 1, Count: count})
	}

	return c.JSON(counts)
}
