package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
	"projexino_backend/pkg/newsletter"
)

type recordedMail struct {
	To      string
	Subject string
}

type stubMailer struct {
	sent []recordedMail
}

func (m *stubMailer) SendHTML(to, subject, html string) error {
	m.sent = append(m.sent, recordedMail{To: to, Subject: subject})
	return nil
}

func stubRender(n *model.Newsletter, subscriberEmail string) (string, error) {
	return "<p>" + n.Content + "</p>", nil
}

// setupTest points the shared DB handle at a fresh in-memory database
// and returns an app with the API routes mounted, auth left off.
func setupTest(t *testing.T) (*fiber.App, *stubMailer) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Blog{},
		&model.Subscriber{},
		&model.Newsletter{},
		&model.Career{},
		&model.CareerApplication{},
		&model.Contact{},
	))
	database.DB = db

	mailer := &stubMailer{}
	InitNewsletterController(newsletter.NewDispatcher(db, mailer, stubRender))

	app := fiber.New()
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", Register)
	auth.Post("/login", Login)

	subscribers := api.Group("/subscribers")
	subscribers.Post("/", AddSubscriber)
	subscribers.Post("/unsubscribe", UnsubscribeSubscriber)
	subscribers.Get("/", GetSubscribers)
	subscribers.Get("/counts", GetSubscriberCounts)

	newsletters := api.Group("/newsletters")
	newsletters.Get("/", GetNewsletters)
	newsletters.Get("/scheduled", GetScheduledNewsletters)
	newsletters.Get("/:id", GetNewsletterByID)
	newsletters.Post("/", CreateNewsletter)
	newsletters.Put("/:id", UpdateNewsletter)
	newsletters.Post("/:id/send", SendNewsletter)
	newsletters.Post("/:id/cancel", CancelScheduledNewsletter)

	careers := api.Group("/careers")
	careers.Get("/", GetCareers)
	careers.Post("/", CreateCareer)
	careers.Post("/:id/apply", ApplyForCareer)

	api.Post("/contact", CreateContact)

	return app, mailer
}

func decodeList(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}
