package controller

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
)

func TestCreateNewsletterDraft(t *testing.T) {
	app, _ := setupTest(t)

	resp, body := doJSON(t, app, "POST", "/api/newsletters/", map[string]interface{}{
		"title":   "October Update",
		"subject": "What we shipped in October",
		"content": "A lot, actually.",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Draft", body["status"])
	assert.Nil(t, body["scheduled_for"])
}

func TestCreateNewsletterScheduledRequiresDueTime(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doJSON(t, app, "POST", "/api/newsletters/", map[string]interface{}{
		"title":   "October Update",
		"subject": "What we shipped",
		"content": "Things.",
		"status":  "Scheduled",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	due := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	resp, body := doJSON(t, app, "POST", "/api/newsletters/", map[string]interface{}{
		"title":         "October Update",
		"subject":       "What we shipped",
		"content":       "Things.",
		"status":        "Scheduled",
		"scheduled_for": due,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Scheduled", body["status"])
	assert.NotNil(t, body["scheduled_for"])
}

func TestCreateNewsletterRejectsTerminalStatus(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doJSON(t, app, "POST", "/api/newsletters/", map[string]interface{}{
		"title":   "Sneaky",
		"subject": "Pre-sent",
		"content": "Nope.",
		"status":  "Sent",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendNewsletterReportsStats(t *testing.T) {
	app, mailer := setupTest(t)

	for _, email := range []string{"one@example.com", "two@example.com"} {
		resp, _ := doJSON(t, app, "POST", "/api/subscribers/", map[string]string{"email": email})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	n := model.Newsletter{Title: "T", Subject: "S", Content: "C"}
	require.NoError(t, database.GetDB().Create(&n).Error)

	resp, body := doJSON(t, app, "POST", fmt.Sprintf("/api/newsletters/%d/send", n.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stats := body["stats"].(map[string]interface{})
	assert.EqualValues(t, 2, stats["total"])
	assert.EqualValues(t, 2, stats["successful"])
	assert.EqualValues(t, 0, stats["failed"])
	assert.Len(t, mailer.sent, 2)

	// A second send hits the terminal status.
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/newsletters/%d/send", n.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendNewsletterNotFound(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doJSON(t, app, "POST", "/api/newsletters/4242/send", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendNewsletterConflictWhileClaimed(t *testing.T) {
	app, mailer := setupTest(t)

	n := model.Newsletter{Title: "T", Subject: "S", Content: "C", DispatchInProgress: true}
	require.NoError(t, database.GetDB().Create(&n).Error)

	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/api/newsletters/%d/send", n.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Empty(t, mailer.sent)
}

func TestCancelScheduledNewsletter(t *testing.T) {
	app, _ := setupTest(t)

	due := time.Now().UTC().Add(time.Hour)
	n := model.Newsletter{
		Title:        "T",
		Subject:      "S",
		Content:      "C",
		Status:       model.NewsletterStatusScheduled,
		ScheduledFor: &due,
	}
	require.NoError(t, database.GetDB().Create(&n).Error)

	resp, body := doJSON(t, app, "POST", fmt.Sprintf("/api/newsletters/%d/cancel", n.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Newsletter cancelled successfully", body["message"])

	var got model.Newsletter
	require.NoError(t, database.GetDB().First(&got, n.ID).Error)
	assert.Equal(t, model.NewsletterStatusDraft, got.Status)
}

func TestCancelRejectsNonScheduled(t *testing.T) {
	app, _ := setupTest(t)

	n := model.Newsletter{Title: "T", Subject: "S", Content: "C"}
	require.NoError(t, database.GetDB().Create(&n).Error)

	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/api/newsletters/%d/cancel", n.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/newsletters/4242/cancel", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateNewsletterRejectsTerminal(t *testing.T) {
	app, _ := setupTest(t)

	sentAt := time.Now().UTC()
	n := model.Newsletter{
		Title:   "T",
		Subject: "S",
		Content: "C",
		Status:  model.NewsletterStatusSent,
		SentAt:  &sentAt,
	}
	require.NoError(t, database.GetDB().Create(&n).Error)

	resp, _ := doJSON(t, app, "PUT", fmt.Sprintf("/api/newsletters/%d", n.ID), map[string]string{
		"title": "Rewritten history",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
