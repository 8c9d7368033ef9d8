package controller

import (
	"log"
	"net/mail"
	"time"

	"github.com/gofiber/fiber/v2"

	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
	"projexino_backend/pkg/email"
)

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// CreateContact stores the submission and notifies the site inbox. The
// notification is best effort: a mail failure never loses the message.
func CreateContact(c *fiber.Ctx) error {
	input := new(ContactInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	if input.Name == "" || input.Email == "" || input.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, email and message are required",
		})
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email address",
		})
	}

	contact := model.Contact{
		Name:    input.Name,
		Email:   input.Email,
		Message: input.Message,
	}

	if err := database.GetDB().Create(&contact).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save contact message",
		})
	}

	if email.GlobalEmailService != nil {
		err := email.GlobalEmailService.SendContactNotification(
			contact.Name, contact.Email, contact.Message, time.Now().UTC())
		if err != nil {
			log.Printf("Failed to send contact notification: %v", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message received. We will get back to you soon.",
		"contact": contact,
	})
}

func GetContacts(c *fiber.Ctx) error {
	var contacts []model.Contact
	if err := database.GetDB().Order("created_at desc").Find(&contacts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch contact messages",
		})
	}
	return c.JSON(contacts)
}

func DeleteContact(c *fiber.Ctx) error {
	var contact model.Contact
	if err := database.GetDB().First(&contact, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Contact message not found",
		})
	}

	if err := database.GetDB().Delete(&contact).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete contact message",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Contact message deleted successfully",
	})
}
