package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"projexino_backend/internal/controller"
	"projexino_backend/internal/middleware"
	"projexino_backend/internal/model"
	"projexino_backend/pkg/config"
	"projexino_backend/pkg/cron"
	"projexino_backend/pkg/database"
	"projexino_backend/pkg/email"
	"projexino_backend/pkg/newsletter"
	"projexino_backend/pkg/seed"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/forgot-password", controller.ForgotPassword)
	auth.Post("/reset-password", controller.ResetPassword)

	profile := api.Group("/profile", middleware.AuthMiddleware())
	profile.Get("/", controller.GetProfile)
	profile.Put("/", controller.UpdateProfile)
	profile.Delete("/", controller.DeleteProfile)

	// Public blog routes
	blogs := api.Group("/blogs")
	blogs.Get("/", controller.GetBlogs)
	blogs.Get("/recent", controller.GetRecentBlogs)
	blogs.Get("/featured", controller.GetFeaturedBlogs)
	blogs.Get("/slug/:slug", controller.GetBlogBySlug)
	blogs.Post("/slug/:slug/like", controller.LikeBlog)
	blogs.Post("/:id/view", controller.RecordBlogView)

	// Protected blog management
	blogAdmin := blogs.Group("/", middleware.AuthMiddleware())
	blogAdmin.Get("/all", controller.GetAllBlogs)
	blogAdmin.Get("/counts", controller.GetBlogCounts)
	blogAdmin.Get("/counts/monthly/:year", controller.GetMonthlyBlogCounts)
	blogAdmin.Get("/:id", controller.GetBlogByID)
	blogAdmin.Post("/", controller.CreateBlog)
	blogAdmin.Put("/:id", controller.UpdateBlog)
	blogAdmin.Delete("/:id", controller.DeleteBlog)

	// Public subscriber routes
	subscribers := api.Group("/subscribers")
	subscribers.Post("/", controller.AddSubscriber)
	subscribers.Post("/unsubscribe", controller.UnsubscribeSubscriber)

	// Protected subscriber management
	subAdmin := subscribers.Group("/", middleware.AuthMiddleware())
	subAdmin.Get("/", controller.GetSubscribers)
	subAdmin.Get("/recent", controller.GetRecentSubscribers)
	subAdmin.Get("/counts", controller.GetSubscriberCounts)
	subAdmin.Get("/counts/monthly/:year", controller.GetMonthlySubscriberCounts)
	subAdmin.Post("/counts/range", controller.GetSubscriberCountsBetweenDates)
	subAdmin.Put("/:id", controller.UpdateSubscriber)
	subAdmin.Delete("/:id", controller.DeleteSubscriber)

	// Newsletter routes are management-only
	newsletters := api.Group("/newsletters", middleware.AuthMiddleware())
	newsletters.Get("/", controller.GetNewsletters)
	newsletters.Get("/scheduled", controller.GetScheduledNewsletters)
	newsletters.Get("/counts", controller.GetTotalNewslettersCount)
	newsletters.Get("/counts/monthly/:year", controller.GetMonthlyNewsletterCounts)
	newsletters.Get("/counts/scheduled", controller.GetScheduledNewslettersCount)
	newsletters.Get("/counts/cancelled", controller.GetCancelledNewslettersCount)
	newsletters.Get("/counts/announcements", controller.GetAnnouncementCounts)
	newsletters.Get("/counts/announcements/monthly/:year", controller.GetMonthlyAnnouncementCounts)
	newsletters.Get("/:id", controller.GetNewsletterByID)
	newsletters.Post("/", controller.CreateNewsletter)
	newsletters.Put("/:id", controller.UpdateNewsletter)
	newsletters.Delete("/:id", controller.DeleteNewsletter)
	newsletters.Post("/:id/send", controller.SendNewsletter)
	newsletters.Post("/:id/cancel", controller.CancelScheduledNewsletter)
	newsletters.Post("/schedule-blog", controller.ScheduleBlogNewsletter)
	newsletters.Post("/announcement", controller.SendAnnouncement)

	// Public career routes
	careers := api.Group("/careers")
	careers.Get("/", controller.GetCareers)
	careers.Get("/:id", controller.GetCareerByID)
	careers.Post("/:id/apply", controller.ApplyForCareer)

	// Protected career management
	careerAdmin := careers.Group("/", middleware.AuthMiddleware())
	careerAdmin.Get("/all/list", controller.GetAllCareers)
	careerAdmin.Get("/all/counts", controller.GetCareerCounts)
	careerAdmin.Get("/all/counts/monthly/:year", controller.GetMonthlyCareerCounts)
	careerAdmin.Get("/all/applications", controller.GetAllApplications)
	careerAdmin.Get("/:id/applications", controller.GetCareerApplications)
	careerAdmin.Post("/", controller.CreateCareer)
	careerAdmin.Put("/:id", controller.UpdateCareer)
	careerAdmin.Delete("/:id", controller.DeleteCareer)

	// Contact form
	api.Post("/contact", controller.CreateContact)
	contactAdmin := api.Group("/contact", middleware.AuthMiddleware())
	contactAdmin.Get("/", controller.GetContacts)
	contactAdmin.Delete("/:id", controller.DeleteContact)

	// Dashboard
	dashboard := api.Group("/dashboard", middleware.AuthMiddleware())
	dashboard.Get("/stats", controller.GetDashboardStats)

	// Admin-only user management
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.Get("/users", controller.GetAllUsers)
	admin.Put("/users/:id/role", controller.UpdateUserRole)
	admin.Delete("/users/:id", controller.DeleteUser)
}

func main() {
	cfg := config.Load()

	if err := email.InitEmailService(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Email.ContactInbox); err != nil {
		log.Fatal("Could not initialize email service:", err)
	}

	if cfg.DB.URL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	database.InitDB(cfg.DB.URL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.Blog{},
		&model.Subscriber{},
		&model.Newsletter{},
		&model.Career{},
		&model.CareerApplication{},
		&model.Contact{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	seed.SeedAdminUser(database.GetDB())

	dispatcher := newsletter.NewDispatcher(
		database.GetDB(),
		email.GlobalEmailService,
		email.GlobalEmailService.NewsletterRenderer(cfg.Site.BaseURL),
	)
	controller.InitNewsletterController(dispatcher)

	cron.InitNewsletterDispatchCron(dispatcher)
	cron.InitSubscriberStatsCron()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
