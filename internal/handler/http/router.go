package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	app config.AppConfig,
	JWTService jwt.Service,
	leaveHandler LeaveHandler,
	certificateHandler CertificateHandler,
	odHandler ODHandler,
	punchMissedHandler PunchMissedHandler,
	attendanceHandler AttendanceHandler,
	holidayHandler HolidayHandler,
	balanceHandler BalanceHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hrms-cmlabs"),
		slog.String("version", app.Version),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot set headers, the stream authenticates with its own token
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/leaves", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", leaveHandler.Submit)
				r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).Get("/my", leaveHandler.GetMyLeaves)
				r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/", leaveHandler.List)

				r.Route("/certificates", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", certificateHandler.Upload)
					r.Get("/{employeeID}/{name}", certificateHandler.Download)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", leaveHandler.Get)
					r.With(middleware.RequirePermission(user.PermissionLeaveDecide)).Post("/decide", leaveHandler.Decide)
					r.With(middleware.RequirePermission(user.PermissionLeaveUnlock)).Post("/unlock", leaveHandler.Unlock)
				})
			})

			r.Route("/ods", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionODCreate)).Post("/", odHandler.Submit)
				r.Get("/my", odHandler.GetMyODs)
				r.With(middleware.RequirePermission(user.PermissionODDecide)).Get("/", odHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", odHandler.Get)
					r.With(middleware.RequirePermission(user.PermissionODDecide)).Post("/decide", odHandler.Decide)
					r.With(middleware.RequirePermission(user.PermissionLeaveUnlock)).Post("/unlock", odHandler.Unlock)
				})
			})

			r.Route("/punch-missed", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionPunchMissedCreate)).Post("/", punchMissedHandler.Submit)
				r.Get("/", punchMissedHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", punchMissedHandler.Get)
					r.With(middleware.RequirePermission(user.PermissionPunchMissedDecide)).Post("/decide", punchMissedHandler.Decide)
					r.With(middleware.RequirePermission(user.PermissionLeaveUnlock)).Post("/unlock", punchMissedHandler.Unlock)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/my", attendanceHandler.GetMyAttendance)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", attendanceHandler.List)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceReconcile))
					r.Post("/reconcile", attendanceHandler.Reconcile)
					r.Post("/punches", attendanceHandler.IngestPunches)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", attendanceHandler.Get)
					r.Post("/late-arrival/reason", attendanceHandler.SubmitLateArrivalReason)
					r.With(middleware.RequirePermission(user.PermissionLateArrivalDecide)).Post("/late-arrival/decide", attendanceHandler.DecideLateArrival)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", holidayHandler.List)
				r.With(middleware.RequireAdmin).Post("/", holidayHandler.Create)
			})

			r.Route("/balances", func(r chi.Router) {
				r.Get("/my", balanceHandler.GetMyBalance)
				r.With(middleware.RequirePermission(user.PermissionLeaveDecide)).Get("/{id}", balanceHandler.GetBalance)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/read", notificationHandler.MarkAsRead)
				r.Post("/read-all", notificationHandler.MarkAllAsRead)
				r.Post("/sse-token", notificationHandler.GetSSEToken)
			})
		})
	})
	return r
}
