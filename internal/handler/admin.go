package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"license-key-server/internal/middleware"
	"license-key-server/internal/model"
	"license-key-server/internal/service"
	"license-key-server/internal/util"
)

type AdminLoginInput struct {
	Password string `json:"password"`
}

// HandleAdminLogin exchanges the operator password for a session token.
// Both outcomes land in the audit log.
func HandleAdminLogin(c *fiber.Ctx) error {
	input := new(AdminLoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := bcrypt.CompareHashAndPassword(adminPassword, []byte(input.Password)); err != nil {
		service.LogAction(model.ActionAdminLoginFailed, nil, "from "+c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "wrong password",
		})
	}

	token, err := util.GenerateSessionToken(sessionSecret, sessionTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "session token generation failed",
		})
	}

	service.LogAction(model.ActionAdminLogin, nil, "from "+c.IP())
	return c.JSON(fiber.Map{
		"token": token,
	})
}

// HandleCreateLicense mints a new license.
func HandleCreateLicense(c *fiber.Ctx) error {
	input := new(model.CreateLicenseInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	license, err := service.CreateLicense(c.Context(), middleware.SessionFrom(c), *input)
	if err != nil {
		return adminError(c, err)
	}

	if sheetSync != nil {
		go sheetSync.SyncLicense(license)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "license created",
		"license": license,
	})
}

type ExtendInput struct {
	Days int `json:"days" validate:"required,min=1,max=3650"`
}

// HandleExtendLicense adds days to the stored expiry.
func HandleExtendLicense(c *fiber.Ctx) error {
	key := c.Params("key")
	input := &ExtendInput{Days: 30}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	license, err := service.ExtendLicense(c.Context(), middleware.SessionFrom(c), key, input.Days)
	if err != nil {
		return adminError(c, err)
	}

	if sheetSync != nil {
		go sheetSync.SyncLicense(license)
	}

	return c.JSON(fiber.Map{
		"message": "license extended by " + strconv.Itoa(input.Days) + " days",
		"license": license,
	})
}

// HandleResetDevice clears the device binding.
func HandleResetDevice(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := service.ResetDevice(c.Context(), middleware.SessionFrom(c), key); err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "device binding reset",
	})
}

// HandleDeactivateLicense turns a license off.
func HandleDeactivateLicense(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := service.DeactivateLicense(c.Context(), middleware.SessionFrom(c), key); err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "license deactivated",
	})
}

// HandleReactivateLicense turns a license back on.
func HandleReactivateLicense(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := service.ReactivateLicense(c.Context(), middleware.SessionFrom(c), key); err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "license reactivated",
	})
}

// HandleDeleteLicense hard-deletes a license. The audit entry survives.
func HandleDeleteLicense(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := service.DeleteLicense(c.Context(), middleware.SessionFrom(c), key); err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "license deleted",
	})
}

// HandleListLicenses returns all licenses for the dashboard.
func HandleListLicenses(c *fiber.Ctx) error {
	licenses, err := service.ListLicenses(c.Context(), middleware.SessionFrom(c))
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(fiber.Map{
		"licenses": licenses,
	})
}

// HandleLicenseUsage lists the latest verification events for a license.
func HandleLicenseUsage(c *fiber.Ctx) error {
	key := c.Params("key")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	stats, err := service.RecentUsage(c.Context(), key, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "usage query failed",
		})
	}
	return c.JSON(fiber.Map{
		"usages": stats,
	})
}

// HandleStatistics returns dashboard counters.
func HandleStatistics(c *fiber.Ctx) error {
	stats, err := service.Statistics(c.Context(), middleware.SessionFrom(c))
	if err != nil {
		return adminError(c, err)
	}
	return c.JSON(stats)
}

// HandleGetAdminLogs returns a page of audit entries, newest first.
func HandleGetAdminLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	logs, total, err := service.GetAdminLogs(page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "audit log query failed",
		})
	}
	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
	})
}

func adminError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNoAdminSession):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "admin session required",
		})
	case errors.Is(err, model.ErrLicenseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "license not found",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "server error",
		})
	}
}
