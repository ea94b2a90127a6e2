package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pennywise-app/gateguard/pkg/common"
)

// requestIDMiddleware tags every request with an id so log lines across the
// pipeline can be correlated. An id supplied by the caller is kept; otherwise
// a fresh one is generated. The id is echoed back in the response header.
type requestIDMiddleware struct {
	logger *logrus.Logger
}

func NewRequestIDMiddleware(logger *logrus.Logger) Middleware {
	return &requestIDMiddleware{logger: logger}
}

func (m *requestIDMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(common.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(common.RequestIDKey, id)
		c.Set(common.RequestIDHeader, id)

		m.logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Method(),
			"path":       c.Path(),
		}).Debug("request received")

		return c.Next()
	}
}
