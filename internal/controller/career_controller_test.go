package controller

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
)

func TestCreateCareer(t *testing.T) {
	app, _ := setupTest(t)

	resp, body := doJSON(t, app, "POST", "/api/careers/", map[string]interface{}{
		"title":        "Backend Engineer",
		"department":   "Engineering",
		"location":     "Remote",
		"type":         "Full-time",
		"description":  "Build and run our APIs.",
		"requirements": []string{"Go", "SQL"},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Backend Engineer", body["title"])
	assert.Equal(t, "Active", body["status"])
}

func TestCreateCareerRequiresCoreFields(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doJSON(t, app, "POST", "/api/careers/", map[string]interface{}{
		"title": "Incomplete",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCareersListsOnlyActive(t *testing.T) {
	app, _ := setupTest(t)

	require.NoError(t, database.GetDB().Create(&model.Career{
		Title: "Open Role", Department: "Eng", Location: "Remote",
		Description: "x", Status: model.CareerStatusActive,
	}).Error)
	require.NoError(t, database.GetDB().Create(&model.Career{
		Title: "Closed Role", Department: "Eng", Location: "Remote",
		Description: "x", Status: model.CareerStatusClosed,
	}).Error)

	req := httptest.NewRequest("GET", "/api/careers/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var careers []model.Career
	decodeList(t, resp, &careers)
	require.Len(t, careers, 1)
	assert.Equal(t, "Open Role", careers[0].Title)
}

func TestApplyRejectedForClosedPosting(t *testing.T) {
	app, _ := setupTest(t)

	career := model.Career{
		Title: "Closed Role", Department: "Eng", Location: "Remote",
		Description: "x", Status: model.CareerStatusClosed,
	}
	require.NoError(t, database.GetDB().Create(&career).Error)

	resp, body := doJSON(t, app, "POST", fmt.Sprintf("/api/careers/%d/apply", career.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "This position is no longer accepting applications", body["error"])
}

func TestApplyRejectedPastDeadline(t *testing.T) {
	app, _ := setupTest(t)

	deadline := time.Now().UTC().Add(-24 * time.Hour)
	career := model.Career{
		Title: "Expired Role", Department: "Eng", Location: "Remote",
		Description: "x", Status: model.CareerStatusActive, Deadline: &deadline,
	}
	require.NoError(t, database.GetDB().Create(&career).Error)

	resp, body := doJSON(t, app, "POST", fmt.Sprintf("/api/careers/%d/apply", career.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "The application deadline has passed", body["error"])
}
