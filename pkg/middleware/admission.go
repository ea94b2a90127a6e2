package middleware

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/pennywise-app/gateguard/pkg/guards"
	"github.com/pennywise-app/gateguard/pkg/types"
)

// admissionMiddleware runs a guard chain ahead of the route handler. A
// blocking guard result is written out as-is; otherwise validated data is
// copied into fiber locals and the request continues.
type admissionMiddleware struct {
	chain  *guards.Chain
	logger *logrus.Logger
}

func NewAdmissionMiddleware(chain *guards.Chain, logger *logrus.Logger) Middleware {
	return &admissionMiddleware{chain: chain, logger: logger}
}

func (m *admissionMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := requestFromFiber(c)

		if result := m.chain.Execute(c.UserContext(), req); result != nil {
			for key, vals := range result.Headers {
				for _, v := range vals {
					c.Set(key, v)
				}
			}
			return c.Status(result.StatusCode).JSON(result.Body)
		}

		for key, value := range req.Metadata {
			c.Locals(key, value)
		}
		return c.Next()
	}
}

func requestFromFiber(c *fiber.Ctx) *types.RequestContext {
	query := make(url.Values)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		query.Add(string(key), string(value))
	})

	return &types.RequestContext{
		Context:    c.UserContext(),
		Headers:    c.GetReqHeaders(),
		Method:     c.Method(),
		Path:       c.Path(),
		Query:      query,
		Body:       c.Body(),
		RemoteAddr: c.Context().RemoteAddr().String(),
		Metadata:   make(map[string]interface{}),
	}
}
