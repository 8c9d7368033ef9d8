package email

import (
	"fmt"
	"html/template"
	"net/url"

	"projexino_backend/internal/model"
)

// NewsletterRenderer builds the per-recipient render function used by
// the dispatch engine. The content stored on the newsletter is trusted
// HTML authored through the admin surface.
func (s *EmailService) NewsletterRenderer(siteBaseURL string) func(n *model.Newsletter, subscriberEmail string) (string, error) {
	return func(n *model.Newsletter, subscriberEmail string) (string, error) {
		return s.RenderNewsletter(NewsletterEmailData{
			Title:          n.Title,
			Content:        template.HTML(n.Content),
			Images:         []string(n.Images),
			UnsubscribeURL: fmt.Sprintf("%s/unsubscribe/%s", siteBaseURL, url.PathEscape(subscriberEmail)),
		})
	}
}
