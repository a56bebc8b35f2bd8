package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"unitalent/talent-center/internal/models"
)

const AppName = "UniTalent Talent Center API"

// Version is overridden at build time with -ldflags "-X ...handlers.Version=".
var Version = "dev"

// multipartHeadroom covers boundaries, part headers and form fields sent
// alongside an upload.
const multipartHeadroom = 1 << 20

// BodyLimitFor returns the request body limit that lets an upload of exactly
// maxFileSize bytes reach the storage layer.
func BodyLimitFor(maxFileSize int64) int {
	return int(maxFileSize) + multipartHeadroom
}

// Deps is everything NewApp needs to mount the routes.
type Deps struct {
	Score         *ScoreHandler
	Students      *StudentHandler
	Portfolio     *PortfolioHandler
	Search        *SearchHandler
	Organizations *CatalogHandler[models.Organization]
	News          *CatalogHandler[models.News]
	StudentOrgs   *CatalogHandler[models.StudentOrganization]

	AdminAPIKey string
	Gatherer    prometheus.Gatherer
	BodyLimit   int
	AccessLog   bool
}

func NewApp(d Deps) *fiber.App {
	bodyLimit := d.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 10 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:      AppName,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsHandler := adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	app.Get("/metrics", metricsHandler)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	api.Get("/metrics", metricsHandler)

	api.Post("/score", d.Score.HandleScore)

	students := api.Group("/students")
	students.Post("/", d.Students.HandleRegister)
	students.Get("/", d.Students.HandleList)
	students.Get("/leaderboard", d.Students.HandleLeaderboard)
	students.Get("/:id", d.Students.HandleGet)
	students.Put("/:id", d.Students.HandleUpdate)
	students.Delete("/:id", d.Students.HandleDelete)
	students.Post("/:id/score", d.Score.HandleRecompute)

	students.Post("/:id/projects", d.Portfolio.HandleAddProject)
	students.Delete("/:id/projects/:itemId", d.Portfolio.HandleDeleteProject)
	students.Post("/:id/achievements", d.Portfolio.HandleAddAchievement)
	students.Delete("/:id/achievements/:itemId", d.Portfolio.HandleDeleteAchievement)
	students.Post("/:id/certificates", d.Portfolio.HandleAddCertificate)
	students.Delete("/:id/certificates/:itemId", d.Portfolio.HandleDeleteCertificate)

	api.Get("/search", d.Search.HandleSearch)

	api.Get("/organizations", d.Organizations.HandleList)
	api.Get("/organizations/:id", d.Organizations.HandleGet)
	api.Get("/news", d.News.HandleList)
	api.Get("/news/:id", d.News.HandleGet)
	api.Get("/student-organizations", d.StudentOrgs.HandleList)
	api.Get("/student-organizations/:id", d.StudentOrgs.HandleGet)

	admin := api.Group("/admin", adminAuth(d.AdminAPIKey)...)
	mountCatalog(admin.Group("/organizations"), d.Organizations)
	mountCatalog(admin.Group("/news"), d.News)
	mountCatalog(admin.Group("/student-organizations"), d.StudentOrgs)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": AppName,
			"version": Version,
		})
	})

	return app
}

func mountCatalog[T any](r fiber.Router, h *CatalogHandler[T]) {
	r.Post("/", h.HandleCreate)
	r.Put("/:id", h.HandleUpdate)
	r.Delete("/:id", h.HandleDelete)
}

// adminAuth guards the admin group with a Bearer key. Without a configured
// key the group answers 503.
func adminAuth(apiKey string) []fiber.Handler {
	if apiKey == "" {
		return []fiber.Handler{func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "admin API is not configured",
				"code":  fiber.StatusServiceUnavailable,
			})
		}}
	}

	expected := []byte(apiKey)
	return []fiber.Handler{keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), expected) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing admin API key",
				"code":  fiber.StatusUnauthorized,
			})
		},
	})}
}
