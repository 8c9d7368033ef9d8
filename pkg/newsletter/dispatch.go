// Package newsletter implements the dispatch engine: sending one
// newsletter to every currently subscribed reader and recording the
// aggregate outcome on the record.
package newsletter

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"projexino_backend/internal/model"
)

var (
	ErrNotFound = errors.New("newsletter not found")

	// ErrAlreadyFinal means the newsletter is Sent or Failed; those
	// states have no outgoing transitions.
	ErrAlreadyFinal = errors.New("newsletter has already been dispatched")

	// ErrNotDispatchable means the claim update matched no row: either
	// another dispatch holds the claim flag or the status changed
	// between read and claim (e.g. a concurrent cancel).
	ErrNotDispatchable = errors.New("newsletter cannot be dispatched right now")

	ErrNotScheduled = errors.New("only scheduled newsletters can be cancelled")
)

// Mailer delivers a single rendered message.
type Mailer interface {
	SendHTML(to, subject, html string) error
}

// RenderFunc builds the message body for one recipient. Rendering is
// per-recipient because the body carries a personal unsubscribe link.
type RenderFunc func(n *model.Newsletter, subscriberEmail string) (string, error)

// SendResult is the outcome for a single recipient. Err is nil when the
// mail collaborator accepted the message.
type SendResult struct {
	Address string
	Err     error
}

type Dispatcher struct {
	db     *gorm.DB
	mailer Mailer
	render RenderFunc
}

func NewDispatcher(db *gorm.DB, mailer Mailer, render RenderFunc) *Dispatcher {
	return &Dispatcher{db: db, mailer: mailer, render: render}
}

// Dispatch runs a full send pass for the newsletter with the given id.
// It is safe against concurrent calls: the claim flag is checked and set
// in a single conditional update, so only one caller runs the loop.
//
// Per-recipient failures are recorded and counted, never propagated; a
// newsletter whose every send failed still finishes as Sent, with the
// failures visible in the recipients summary. The terminal status means
// "dispatch ran to completion", not "every email arrived".
func (d *Dispatcher) Dispatch(id uint) (model.RecipientSummary, []SendResult, error) {
	return d.dispatch(id, []model.NewsletterStatus{
		model.NewsletterStatusDraft,
		model.NewsletterStatusScheduled,
	})
}

// DispatchDue claims and dispatches every Scheduled newsletter whose due
// time has passed. The claim re-checks status = Scheduled, so a cancel
// that lands between the scan and the claim wins: no emails go out for a
// cancelled newsletter.
func (d *Dispatcher) DispatchDue(now time.Time) {
	var ids []uint
	err := d.db.Model(&model.Newsletter{}).
		Where("status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ? AND dispatch_in_progress = ?",
			model.NewsletterStatusScheduled, now, false).
		Order("scheduled_for asc").
		Pluck("id", &ids).Error
	if err != nil {
		log.Printf("Error scanning for due newsletters: %v", err)
		return
	}

	for _, id := range ids {
		summary, _, err := d.dispatch(id, []model.NewsletterStatus{model.NewsletterStatusScheduled})
		if err != nil {
			log.Printf("Scheduled dispatch of newsletter %d failed: %v", id, err)
			continue
		}
		log.Printf("Scheduled newsletter %d dispatched: total=%d successful=%d failed=%d",
			id, summary.Total, summary.Successful, summary.Failed)
	}
}

// Cancel flips a Scheduled newsletter back to Draft. The update is
// conditional on the claim flag being clear, so a cancel can never land
// in the middle of a running send pass.
func (d *Dispatcher) Cancel(id uint) (*model.Newsletter, error) {
	var n model.Newsletter
	if err := d.db.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	res := d.db.Model(&model.Newsletter{}).
		Where("id = ? AND status = ? AND dispatch_in_progress = ?",
			id, model.NewsletterStatusScheduled, false).
		Update("status", model.NewsletterStatusDraft)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotScheduled
	}

	if err := d.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (d *Dispatcher) dispatch(id uint, from []model.NewsletterStatus) (model.RecipientSummary, []SendResult, error) {
	var summary model.RecipientSummary

	var n model.Newsletter
	if err := d.db.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, nil, ErrNotFound
		}
		return summary, nil, err
	}
	if n.Status.IsTerminal() {
		return summary, nil, ErrAlreadyFinal
	}

	claim := d.db.Model(&model.Newsletter{}).
		Where("id = ? AND dispatch_in_progress = ? AND status IN ?", id, false, from).
		Update("dispatch_in_progress", true)
	if claim.Error != nil {
		return summary, nil, claim.Error
	}
	if claim.RowsAffected == 0 {
		return summary, nil, ErrNotDispatchable
	}

	// Snapshot: subscribers added or unsubscribed after this point are
	// not re-evaluated during the run.
	var subscribers []model.Subscriber
	if err := d.db.Where("status = ?", model.SubscriberStatusSubscribed).
		Order("subscribed_at asc").
		Find(&subscribers).Error; err != nil {
		d.finalize(id, model.NewsletterStatusFailed, nil, summary)
		return summary, nil, err
	}

	results := make([]SendResult, 0, len(subscribers))
	for _, sub := range subscribers {
		body, err := d.render(&n, sub.Email)
		if err == nil {
			err = d.mailer.SendHTML(sub.Email, n.Subject, body)
		}
		if err != nil {
			log.Printf("Failed to send newsletter %d to %s: %v", n.ID, sub.Email, err)
		}
		results = append(results, SendResult{Address: sub.Email, Err: err})
	}

	summary = Summarize(results)
	sentAt := time.Now().UTC()
	if err := d.finalize(id, model.NewsletterStatusSent, &sentAt, summary); err != nil {
		// Emails already handed to the mail collaborator cannot be
		// un-sent; surface the persistence failure to the caller.
		return summary, results, err
	}

	return summary, results, nil
}

func (d *Dispatcher) finalize(id uint, status model.NewsletterStatus, sentAt *time.Time, summary model.RecipientSummary) error {
	updates := map[string]interface{}{
		"status":                status,
		"dispatch_in_progress":  false,
		"recipients_total":      summary.Total,
		"recipients_successful": summary.Successful,
		"recipients_failed":     summary.Failed,
	}
	if sentAt != nil {
		updates["sent_at"] = *sentAt
	}
	return d.db.Model(&model.Newsletter{}).Where("id = ?", id).Updates(updates).Error
}

// Summarize derives the aggregate counts from per-recipient results.
func Summarize(results []SendResult) model.RecipientSummary {
	summary := model.RecipientSummary{Total: len(results)}
	for _, r := range results {
		if r.Err == nil {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	return summary
}
