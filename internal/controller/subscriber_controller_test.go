package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
)

func TestAddSubscriber(t *testing.T) {
	app, _ := setupTest(t)

	resp, body := doJSON(t, app, "POST", "/api/subscribers/", map[string]string{
		"name":  "Asha",
		"email": "asha@example.com",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Subscriber added successfully", body["message"])

	var got model.Subscriber
	require.NoError(t, database.GetDB().Where("email = ?", "asha@example.com").First(&got).Error)
	assert.Equal(t, model.SubscriberStatusSubscribed, got.Status)
	assert.False(t, got.SubscribedAt.IsZero())
}

func TestAddSubscriberRejectsDuplicate(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doJSON(t, app, "POST", "/api/subscribers/", map[string]string{
		"email": "dup@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/api/subscribers/", map[string]string{
		"email": "dup@example.com",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email is already subscribed", body["error"])
}

func TestAddSubscriberRejectsBadEmail(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doJSON(t, app, "POST", "/api/subscribers/", map[string]string{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doJSON(t, app, "POST", "/api/subscribers/", map[string]string{
		"email": "leaver@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var before model.Subscriber
	require.NoError(t, database.GetDB().Where("email = ?", "leaver@example.com").First(&before).Error)

	resp, body := doJSON(t, app, "POST", "/api/subscribers/unsubscribe", map[string]string{
		"email": "leaver@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Subscriber unsubscribed successfully", body["message"])

	// Second unsubscribe is a no-op, not an error.
	resp, body = doJSON(t, app, "POST", "/api/subscribers/unsubscribe", map[string]string{
		"email": "leaver@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Subscriber is already unsubscribed", body["message"])

	var after model.Subscriber
	require.NoError(t, database.GetDB().Where("email = ?", "leaver@example.com").First(&after).Error)
	assert.Equal(t, model.SubscriberStatusUnsubscribed, after.Status)
	assert.Equal(t, before.SubscribedAt.UTC(), after.SubscribedAt.UTC())
}

func TestUnsubscribeUnknownEmail(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doJSON(t, app, "POST", "/api/subscribers/unsubscribe", map[string]string{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSubscriberCounts(t *testing.T) {
	app, _ := setupTest(t)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		resp, _ := doJSON(t, app, "POST", "/api/subscribers/", map[string]string{"email": email})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, _ := doJSON(t, app, "POST", "/api/subscribers/unsubscribe", map[string]string{
		"email": "b@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, "GET", "/api/subscribers/counts", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 2, body["active"])
	assert.EqualValues(t, 1, body["inactive"])
}
