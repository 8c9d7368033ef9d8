package newsletter

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"projexino_backend/internal/model"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]bool
}

func (m *fakeMailer) SendHTML(to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[to] {
		return errors.New("smtp said no")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: html})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func testRender(n *model.Newsletter, subscriberEmail string) (string, error) {
	return fmt.Sprintf("<p>%s</p><a>unsubscribe %s</a>", n.Content, subscriberEmail), nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Newsletter{}, &model.Subscriber{}))
	return db
}

func seedSubscribers(t *testing.T, db *gorm.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		require.NoError(t, db.Create(&model.Subscriber{
			Email:  e,
			Status: model.SubscriberStatusSubscribed,
		}).Error)
	}
}

func createNewsletter(t *testing.T, db *gorm.DB, status model.NewsletterStatus, scheduledFor *time.Time) *model.Newsletter {
	t.Helper()
	n := &model.Newsletter{
		Title:        "Monthly Update",
		Subject:      "News from the team",
		Content:      "Hello readers",
		Status:       status,
		ScheduledFor: scheduledFor,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestDispatchSendsToAllSubscribed(t *testing.T) {
	db := setupTestDB(t)
	seedSubscribers(t, db, "a@example.com", "b@example.com", "c@example.com")
	require.NoError(t, db.Create(&model.Subscriber{
		Email:  "gone@example.com",
		Status: model.SubscriberStatusUnsubscribed,
	}).Error)

	mailer := &fakeMailer{}
	d := NewDispatcher(db, mailer, testRender)
	n := createNewsletter(t, db, model.NewsletterStatusDraft, nil)

	summary, results, err := d.Dispatch(n.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Successful)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, results, 3)
	assert.Equal(t, 3, mailer.sentCount())

	var got model.Newsletter
	require.NoError(t, db.First(&got, n.ID).Error)
	assert.Equal(t, model.NewsletterStatusSent, got.Status)
	assert.NotNil(t, got.SentAt)
	assert.False(t, got.DispatchInProgress)
	assert.Equal(t, summary, got.Recipients)
}

func TestDispatchCountsFailuresWithoutAborting(t *testing.T) {
	db := setupTestDB(t)
	seedSubscribers(t, db, "ok1@example.com", "broken@example.com", "ok2@example.com")

	mailer := &fakeMailer{failFor: map[string]bool{"broken@example.com": true}}
	d := NewDispatcher(db, mailer, testRender)
	n := createNewsletter(t, db, model.NewsletterStatusDraft, nil)

	summary, results, err := d.Dispatch(n.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, summary.Successful+summary.Failed, summary.Total)

	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Address)
		}
	}
	assert.Equal(t, []string{"broken@example.com"}, failed)

	// A completed pass is Sent even with failures in it.
	var got model.Newsletter
	require.NoError(t, db.First(&got, n.ID).Error)
	assert.Equal(t, model.NewsletterStatusSent, got.Status)
}

func TestDispatchWithNoSubscribers(t *testing.T) {
	db := setupTestDB(t)
	mailer := &fakeMailer{}
	d := NewDispatcher(db, mailer, testRender)
	n := createNewsletter(t, db, model.NewsletterStatusDraft, nil)

	summary, results, err := d.Dispatch(n.ID)
	require.NoError(t, err)

	assert.Equal(t, model.RecipientSummary{}, summary)
	assert.Empty(t, results)
	assert.Equal(t, 0, mailer.sentCount())

	var got model.Newsletter
	require.NoError(t, db.First(&got, n.ID).Error)
	assert.Equal(t, model.NewsletterStatusSent, got.Status)
}

func TestDispatchRejectsTerminalStatus(t *testing.T) {
	db := setupTestDB(t)
	d := NewDispatcher(db, &fakeMailer{}, testRender)
	n := createNewsletter(t, db, model.NewsletterStatusDraft, nil)

	_, _, err := d.Dispatch(n.ID)
	require.NoError(t, err)

	_, _, err = d.Dispatch(n.ID)
	assert.ErrorIs(t, err, ErrAlreadyFinal)
}

func TestDispatchUnknownID(t *testing.T) {
	db := setupTestDB(t)
	d := NewDispatcher(db, &fakeMailer{}, testRender)

	_, _, err := d.Dispatch(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDispatchClaimBlocksSecondCaller(t *testing.T) {
	db := setupTestDB(t)
	seedSubscribers(t, db, "a@example.com")
	mailer := &fakeMailer{}
	d := NewDispatcher(db, mailer, testRender)
	n := createNewsletter(t, db, model.NewsletterStatusDraft, nil)

	// Another dispatch is mid-flight: the claim flag is held.
	require.NoError(t, db.Model(&model.Newsletter{}).
		Where("id = ?", n.ID).
		Update("dispatch_in_progress", true).Error)

	_, _, err := d.Dispatch(n.ID)
	assert.ErrorIs(t, err, ErrNotDispatchable)
	assert.Equal(t, 0, mailer.sentCount())
}

func TestDispatchDueSendsOnlyPastDue(t *testing.T) {
	db := setupTestDB(t)
	seedSubscribers(t, db, "a@example.com", "b@example.com")
	mailer := &fakeMailer{}
	d := NewDispatcher(db, mailer, testRender)

	now := time.Now().UTC()
	past := now.Add(-5 * time.Minute)
	future := now.Add(1 * time.Hour)

	due := createNewsletter(t, db, model.NewsletterStatusScheduled, &past)
	notYet := createNewsletter(t, db, model.NewsletterStatusScheduled, &future)

	d.DispatchDue(now)

	var got model.Newsletter
	require.NoError(t, db.First(&got, due.ID).Error)
	assert.Equal(t, model.NewsletterStatusSent, got.Status)
	assert.Equal(t, 2, got.Recipients.Total)

	got = model.Newsletter{}
	require.NoError(t, db.First(&got, notYet.ID).Error)
	assert.Equal(t, model.NewsletterStatusScheduled, got.Status)
	assert.Equal(t, 2, mailer.sentCount())
}

func TestDispatchDueIgnoresDrafts(t *testing.T) {
	db := setupTestDB(t)
	seedSubscribers(t, db, "a@example.com")
	mailer := &fakeMailer{}
	d := NewDispatcher(db, mailer, testRender)

	past := time.Now().UTC().Add(-time.Minute)
	n := createNewsletter(t, db, model.NewsletterStatusDraft, &past)

	d.DispatchDue(time.Now().UTC())

	var got model.Newsletter
	require.NoError(t, db.First(&got, n.ID).Error)
	assert.Equal(t, model.NewsletterStatusDraft, got.Status)
	assert.Equal(t, 0, mailer.sentCount())
}

func TestCancelScheduled(t *testing.T) {
	db := setupTestDB(t)
	seedSubscribers(t, db, "a@example.com")
	mailer := &fakeMailer{}
	d := NewDispatcher(db, mailer, testRender)

	past := time.Now().UTC().Add(-time.Minute)
	n := createNewsletter(t, db, model.NewsletterStatusScheduled, &past)

	cancelled, err := d.Cancel(n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NewsletterStatusDraft, cancelled.Status)

	// The sweep must not pick up a cancelled newsletter, even past due.
	d.DispatchDue(time.Now().UTC())
	assert.Equal(t, 0, mailer.sentCount())
}

func TestCancelRequiresScheduledStatus(t *testing.T) {
	db := setupTestDB(t)
	d := NewDispatcher(db, &fakeMailer{}, testRender)

	draft := createNewsletter(t, db, model.NewsletterStatusDraft, nil)
	_, err := d.Cancel(draft.ID)
	assert.ErrorIs(t, err, ErrNotScheduled)

	_, err = d.Cancel(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelBlockedDuringRunningDispatch(t *testing.T) {
	db := setupTestDB(t)
	d := NewDispatcher(db, &fakeMailer{}, testRender)

	future := time.Now().UTC().Add(time.Hour)
	n := createNewsletter(t, db, model.NewsletterStatusScheduled, &future)

	require.NoError(t, db.Model(&model.Newsletter{}).
		Where("id = ?", n.ID).
		Update("dispatch_in_progress", true).Error)

	_, err := d.Cancel(n.ID)
	assert.ErrorIs(t, err, ErrNotScheduled)
}

func TestDispatchRendersPerRecipient(t *testing.T) {
	db := setupTestDB(t)
	seedSubscribers(t, db, "first@example.com", "second@example.com")
	mailer := &fakeMailer{}
	d := NewDispatcher(db, mailer, testRender)
	n := createNewsletter(t, db, model.NewsletterStatusDraft, nil)

	_, _, err := d.Dispatch(n.ID)
	require.NoError(t, err)

	require.Equal(t, 2, mailer.sentCount())
	assert.Contains(t, mailer.sent[0].Body, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[1].Body, mailer.sent[1].To)
	assert.NotEqual(t, mailer.sent[0].Body, mailer.sent[1].Body)
}

func TestSummarize(t *testing.T) {
	results := []SendResult{
		{Address: "a@example.com"},
		{Address: "b@example.com", Err: errors.New("bounce")},
		{Address: "c@example.com"},
	}
	summary := Summarize(results)
	assert.Equal(t, model.RecipientSummary{Total: 3, Successful: 2, Failed: 1}, summary)

	assert.Equal(t, model.RecipientSummary{}, Summarize(nil))
}
