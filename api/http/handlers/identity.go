package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/productivity/pkg/apperr"
	"github.com/artem13815/productivity/pkg/security/jwt"
	"github.com/artem13815/productivity/pkg/validator"
)

var errEmailMismatch = apperr.Auth("email does not match credentials")

// ownerEmail resolves whose data the request touches. With a verified token the
// supplied email must match it, and an omitted email means the token's owner.
func ownerEmail(c *fiber.Ctx, supplied string) (string, error) {
	supplied = validator.NormalizeEmail(supplied)
	tokenEmail, _ := c.Locals(jwt.LocalsEmail).(string)
	tokenEmail = validator.NormalizeEmail(tokenEmail)
	switch {
	case tokenEmail == "":
		return supplied, nil
	case supplied == "":
		return tokenEmail, nil
	case supplied != tokenEmail:
		return "", errEmailMismatch
	}
	return supplied, nil
}

// queryOrBodyEmail reads ?email= and falls back to a JSON body field.
func queryOrBodyEmail(c *fiber.Ctx) string {
	if e := c.Query("email"); e != "" {
		return e
	}
	if len(c.Body()) == 0 {
		return ""
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return ""
	}
	return body.Email
}

var errInvalidJSON = apperr.Validation("invalid JSON payload")
