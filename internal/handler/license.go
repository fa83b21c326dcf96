package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"license-key-server/internal/model"
	"license-key-server/internal/service"
)

type VerifyInput struct {
	LicenseKey string `json:"license_key"`
	DeviceID   string `json:"device_id"`
}

// HandleVerify validates a license/device pair, binding the device on first
// use. Deactivated and unknown keys get the same answer.
func HandleVerify(c *fiber.Ctx) error {
	input := new(VerifyInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	snapshot, err := service.Verify(c.Context(), input.LicenseKey, input.DeviceID, c.IP())
	if err != nil {
		return verifyError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"license_key":    snapshot.LicenseKey,
		"expires_at":     snapshot.ExpiresAt.Format(time.RFC3339),
		"tier":           snapshot.Tier,
		"days_remaining": snapshot.DaysRemaining,
	})
}

func verifyError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrMalformedRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": model.ErrMalformedRequest.Error(),
		})
	case errors.Is(err, model.ErrLicenseNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": model.ErrLicenseNotFound.Error(),
		})
	case errors.Is(err, model.ErrLicenseExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": model.ErrLicenseExpired.Error(),
		})
	case errors.Is(err, model.ErrDeviceMismatch):
		// No detail about the bound device leaves the server.
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": model.ErrDeviceMismatch.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "server error",
		})
	}
}

// HandleLicenseConfig serves the per-license client configuration: tier and
// expiry for an active key, the generic invalid answer otherwise.
func HandleLicenseConfig(c *fiber.Ctx) error {
	snapshot, err := service.LicenseConfig(c.Context(), c.Params("key"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMalformedRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "license key is required",
			})
		case errors.Is(err, model.ErrStorageUnavailable):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "server error",
			})
		default:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": model.ErrLicenseNotFound.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"stake_level": snapshot.Tier,
		"expiry_date": snapshot.ExpiresAt.Format(time.RFC3339),
	})
}

// HandleIdentity serves the authenticated-identity endpoint. Entitlements
// come from the current license state, not from the token claims, so an
// admin change is visible on the next call.
func HandleIdentity(c *fiber.Ctx) error {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing token",
		})
	}

	snapshot, err := tokens.Authenticate(c.Context(), tokenString)
	if err != nil {
		if errors.Is(err, model.ErrStorageUnavailable) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "server error",
			})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(identityPayload(snapshot))
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
		return ""
	}
	return authHeader[len(prefix):]
}
