package controller

import (
	"github.com/gofiber/fiber/v2"

	"projexino_backend/internal/middleware"
	"projexino_backend/internal/model"
	"projexino_backend/pkg/database"
)

func GetAllUsers(c *fiber.Ctx) error {
	var users []model.User
	if err := database.GetDB().Order("created_at desc").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch users",
		})
	}

	profiles := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].GetPublicProfile())
	}
	return c.JSON(profiles)
}

type RoleUpdateInput struct {
	Role string `json:"role"`
}

func UpdateUserRole(c *fiber.Ctx) error {
	var user model.User
	if err := database.GetDB().First(&user, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	input := new(RoleUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	switch model.UserRole(input.Role) {
	case model.RoleAdmin, model.RoleAuthor, model.RoleReader:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role",
		})
	}

	if err := database.GetDB().Model(&user).Update("role", input.Role).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update role",
		})
	}

	return c.JSON(user.GetPublicProfile())
}

// DeleteUser removes an account. Admins cannot delete themselves, so
// the system always keeps at least the acting admin.
func DeleteUser(c *fiber.Ctx) error {
	var user model.User
	if err := database.GetDB().First(&user, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if claims, ok := middleware.UserClaims(c); ok && claims.UserID == user.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You cannot delete your own account from here",
		})
	}

	if err := database.GetDB().Delete(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete user",
		})
	}

	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}
