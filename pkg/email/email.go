// pkg/email/email.go
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

type EmailService struct {
	apiKey       string
	from         string
	contactInbox string
	templates    *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type NewsletterEmailData struct {
	Title          string
	Content        template.HTML
	Images         []string
	UnsubscribeURL string
}

type BlogDigestItem struct {
	Title         string
	URL           string
	Excerpt       string
	AuthorName    string
	FeaturedImage string
	PublishedAt   time.Time
}

type BlogDigestData struct {
	Intro string
	Blogs []BlogDigestItem
}

type ContactNotificationData struct {
	Name        string
	Email       string
	Message     string
	SubmittedAt time.Time
}

type PasswordResetOTPData struct {
	Name         string
	OTP          string
	ValidMinutes int
}

type SubscriberStatsData struct {
	Name            string
	SubscriberCount int64
	Date            time.Time
}

func NewEmailService(apiKey, from, contactInbox string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:       apiKey,
		from:         from,
		contactInbox: contactInbox,
		templates:    templates,
	}, nil
}

// SendHTML posts a fully rendered message to the Resend API.
func (s *EmailService) SendHTML(to, subject, html string) error {
	emailData := EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    html,
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("Resend API response: Status: %d, Body: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	return nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}
	return s.SendHTML(to, subject, body.String())
}

// RenderNewsletter produces the full issue body for one recipient.
func (s *EmailService) RenderNewsletter(data NewsletterEmailData) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "newsletter.html", data); err != nil {
		return "", fmt.Errorf("template execution error: %v", err)
	}
	return body.String(), nil
}

// RenderBlogDigest produces the content fragment stored on a scheduled
// blog newsletter; it is wrapped by newsletter.html at dispatch time.
func (s *EmailService) RenderBlogDigest(data BlogDigestData) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "blog_digest.html", data); err != nil {
		return "", fmt.Errorf("template execution error: %v", err)
	}
	return body.String(), nil
}

func (s *EmailService) SendContactNotification(name, fromEmail, message string, submittedAt time.Time) error {
	data := ContactNotificationData{
		Name:        name,
		Email:       fromEmail,
		Message:     message,
		SubmittedAt: submittedAt,
	}
	return s.sendTemplateEmail(s.contactInbox, "New Contact Form Submission", "contact_notification.html", data)
}

func (s *EmailService) SendPasswordResetOTP(to, name, otp string, validMinutes int) error {
	data := PasswordResetOTPData{
		Name:         name,
		OTP:          otp,
		ValidMinutes: validMinutes,
	}
	return s.sendTemplateEmail(to, "Your Password Reset Code", "password_reset_otp.html", data)
}

func (s *EmailService) SendDailySubscriberStats(to, name string, count int64, date time.Time) error {
	data := SubscriberStatsData{
		Name:            name,
		SubscriberCount: count,
		Date:            date,
	}
	return s.sendTemplateEmail(to, "Daily Newsletter Subscriber Report", "subscriber_stats.html", data)
}
