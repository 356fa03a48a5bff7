// Package fleetcontrol предоставляет маршруты основного приложения.
package fleetcontrol

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/auth/register"
	companyupdate "github.com/magabrotheeeer/fleet-control/internal/http/handlers/company/update"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/fleet/customer"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/fleet/driver"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/fleet/employee"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/fleet/trip"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/fleet/vehicle"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/payment/requestapprove"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/payment/requestcreate"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/payment/requestlist"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/payment/requestreject"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/payment/requestremove"
	"github.com/magabrotheeeer/fleet-control/internal/http/handlers/payment/requeststatus"
	pinsetup "github.com/magabrotheeeer/fleet-control/internal/http/handlers/pin/setup"
	pinstatus "github.com/magabrotheeeer/fleet-control/internal/http/handlers/pin/status"
	pinverify "github.com/magabrotheeeer/fleet-control/internal/http/handlers/pin/verify"
	"github.com/magabrotheeeer/fleet-control/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/fleet-control/internal/services/auth"
	fleetservice "github.com/magabrotheeeer/fleet-control/internal/services/fleet"
	paymentservice "github.com/magabrotheeeer/fleet-control/internal/services/paymentrequest"
	pinservice "github.com/magabrotheeeer/fleet-control/internal/services/pin"
	subscriptionservice "github.com/magabrotheeeer/fleet-control/internal/services/subscription"
	"github.com/magabrotheeeer/fleet-control/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage,
	authService *authservice.Service, pinService *pinservice.Service,
	subscriptionService *subscriptionservice.Service,
	paymentService *paymentservice.Service, fleetService *fleetservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией. Guard-функция подписки
		// выполняется на каждом запросе группы.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.SubscriptionStatusMiddleware(logger, db, subscriptionService))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			// PIN и заявки на оплату доступны и при статусе pending_payment:
			// арендатор должен иметь возможность оплатить.
			r.Post("/pin", pinsetup.New(logger, pinService).ServeHTTP)
			r.Post("/pin/verify", pinverify.New(logger, pinService).ServeHTTP)
			r.Get("/pin/status", pinstatus.New(logger, pinService).ServeHTTP)

			r.Post("/payments/requests", requestcreate.New(logger, db, paymentService).ServeHTTP)
			r.Get("/payments/requests/latest", requeststatus.New(logger, paymentService).ServeHTTP)

			// Решения по заявкам принимает только администратор.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Get("/payments/requests", requestlist.New(logger, paymentService).ServeHTTP)
				r.Post("/payments/requests/{id}/approve", requestapprove.New(logger, pinService, paymentService).ServeHTTP)
				r.Post("/payments/requests/{id}/reject", requestreject.New(logger, pinService, paymentService).ServeHTTP)
				r.Delete("/payments/requests/{id}", requestremove.New(logger, pinService, paymentService).ServeHTTP)
			})

			// Рабочие разделы дашборда закрыты до оплаты.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequirePaidAccess(logger))

				r.Put("/company", companyupdate.New(logger, pinService, db).ServeHTTP)

				driverHandler := driver.New(logger, fleetService)
				r.Post("/drivers", driverHandler.Create)
				r.Get("/drivers", driverHandler.List)
				r.Put("/drivers/{id}", driverHandler.Update)
				r.Delete("/drivers/{id}", driverHandler.Remove)

				vehicleHandler := vehicle.New(logger, fleetService)
				r.Post("/vehicles", vehicleHandler.Create)
				r.Get("/vehicles", vehicleHandler.List)
				r.Put("/vehicles/{id}", vehicleHandler.Update)
				r.Delete("/vehicles/{id}", vehicleHandler.Remove)

				tripHandler := trip.New(logger, fleetService)
				r.Post("/trips", tripHandler.Create)
				r.Get("/trips", tripHandler.List)
				r.Put("/trips/{id}/status", tripHandler.UpdateStatus)
				r.Delete("/trips/{id}", tripHandler.Remove)

				customerHandler := customer.New(logger, fleetService)
				r.Post("/customers", customerHandler.Create)
				r.Get("/customers", customerHandler.List)
				r.Delete("/customers/{id}", customerHandler.Remove)

				employeeHandler := employee.New(logger, pinService, fleetService)
				r.Post("/employees", employeeHandler.Create)
				r.Get("/employees", employeeHandler.List)
				r.Delete("/employees/{id}", employeeHandler.Remove)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
