package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
)

func TestCreateContactStoresMessage(t *testing.T) {
	app, _ := setupTest(t)

	resp, body := doJSON(t, app, "POST", "/api/contact", map[string]string{
		"name":    "Ravi",
		"email":   "ravi@example.com",
		"message": "Do you take on consulting work?",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body["message"], "Message received")

	var got model.Contact
	require.NoError(t, database.GetDB().Where("email = ?", "ravi@example.com").First(&got).Error)
	assert.Equal(t, "Do you take on consulting work?", got.Message)
}

func TestCreateContactValidation(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doJSON(t, app, "POST", "/api/contact", map[string]string{
		"name": "No message",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/contact", map[string]string{
		"name":    "Bad email",
		"email":   "nope",
		"message": "hi",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
