package handlers

import (
	"github.com/gin-gonic/gin"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/middleware"
	"github.com/makznkaljaafari/makhzan_ledger/internal/platform/config"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	registerCustomValidations()

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services, rateLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the entity
// route registrations. Every route requires an authenticated actor header;
// company-scoped routes resolve role-based authorization in the services.
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	v1 := r.Group("/api/v1", middleware.RateLimit(rateLimiter), middleware.ActorMiddleware())

	registerCurrencyRoutes(v1, services.Currency)
	registerCompanyRoutes(v1, services.Company)

	// Company-scoped resources.
	company := v1.Group("/companies/:company_id")
	registerAccountRoutes(company, services.Account)
	registerJournalRoutes(company, services.Journal)
	registerDocumentRoutes(company, services.Document, services.Posting)
	registerPaymentRoutes(company, services.Allocation)
	registerPartyRoutes(company, services.Party)
	registerItemRoutes(company, services.Valuation)
	registerExchangeRateRoutes(company, services.ExchangeRate)
	registerReportingRoutes(company, services.Reporting)
}
