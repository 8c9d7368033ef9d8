// pkg/email/service.go
package email

var GlobalEmailService *EmailService

func InitEmailService(apiKey, from, contactInbox string) error {
	service, err := NewEmailService(apiKey, from, contactInbox)
	if err != nil {
		return err
	}
	GlobalEmailService = service
	return nil
}
