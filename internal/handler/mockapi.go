package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"license-key-server/internal/model"
	"license-key-server/internal/service"
)

// Static stand-ins for the upstream vendor API. Clients poll these for
// version and configuration data; nothing here touches license state.

// HandleVersions serves the version manifest the client updater expects.
func HandleVersions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": []fiber.Map{
			{
				"id": 47,
				"attributes": fiber.Map{
					"gui_version":  "137.0.2",
					"core_version": "10.0.14",
					"changelog":    nil,
					"type":         "tygto",
					"published":    true,
				},
			},
			{
				"id": 51,
				"attributes": fiber.Map{
					"gui_version":  "137.5.0",
					"core_version": "10.1.8",
					"changelog":    nil,
					"type":         "tygto",
					"published":    true,
				},
			},
		},
		"meta": fiber.Map{
			"pagination": fiber.Map{
				"page":      1,
				"pageSize":  25,
				"pageCount": 1,
				"total":     2,
			},
		},
	})
}

// HandleAppConfig serves the static application configuration.
func HandleAppConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"server_status":   "",
		"postflop_status": "",
		"game_modes": []fiber.Map{
			{"code": "rush", "value": "Rush & Cash", "label": "Rush & Cash", "type": "cash", "max": 6, "available": true},
			{"code": "nlh", "value": "NLH", "label": "NLH 6max", "type": "cash", "max": 6, "available": true},
		},
	})
}

type AuthLocalInput struct {
	LicenseKey string `json:"license_key"`
	DeviceID   string `json:"device_id"`
}

// HandleAuthLocal is the client login. Unlike the upstream it mimics, the
// returned JWT is real: the pair is verified (binding rules included) and a
// token is minted only on success.
func HandleAuthLocal(c *fiber.Ctx) error {
	input := new(AuthLocalInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	snapshot, err := service.Verify(c.Context(), input.LicenseKey, input.DeviceID, c.IP())
	if err != nil {
		return verifyError(c, err)
	}

	token, err := tokens.Issue(snapshot)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "token generation failed",
		})
	}

	return c.JSON(fiber.Map{
		"jwt":  token,
		"user": identityPayload(snapshot),
	})
}

// identityPayload renders a snapshot in the user shape the client consumes.
func identityPayload(s *model.LicenseSnapshot) fiber.Map {
	nickname := s.LicenseKey
	if s.ExternalID != "" {
		nickname = s.ExternalID
	}
	return fiber.Map{
		"username":     nickname,
		"nickname":     nickname,
		"license_key":  s.LicenseKey,
		"plan":         s.Plan,
		"userPlan":     s.Plan,
		"stakes_level": s.Tier,
		"confirmed":    true,
		"blocked":      false,
		"expired_at":   s.ExpiresAt.Format(time.RFC3339),
		"isPro":        s.Plan != "Standard",
	}
}

// HandleHealth is the deployment liveness probe.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
