package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/encuestas-api/pkg/logger"
)

// ServerOptions parámetros de la aplicación Fiber.
type ServerOptions struct {
	AppName     string
	CORSOrigins string
	BodyLimit   int // bytes; 0 = 10 MB
	// ProxyHeader (p. ej. X-Forwarded-For) solo se lee si el socket es uno de TrustedProxies.
	// Vacío: c.IP() es siempre la IP del socket.
	ProxyHeader    string
	TrustedProxies []string
}

// NewApp crea la aplicación Fiber con el middleware común: recover, request id, CORS y log de peticiones.
func NewApp(opts ServerOptions, log *logger.Logger) *fiber.App {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 10 * 1024 * 1024
	}
	if opts.CORSOrigins == "" {
		opts.CORSOrigins = "*"
	}
	app := fiber.New(fiber.Config{
		AppName:      opts.AppName,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    opts.BodyLimit,
		ErrorHandler: NewErrorHandler(log),

		ProxyHeader:             opts.ProxyHeader,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          opts.TrustedProxies,
		EnableIPValidation:      true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": opts.AppName})
	})
	return app
}
