package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resolveit/helpdesk/internal/api/http/handlers"
	"github.com/resolveit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	AgentTickets   *handlers.AgentTicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	Invites        *handlers.InvitesHandler
	Directory      *handlers.DirectoryHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/forgot", cfg.Auth.ForgotPassword)
	authGroup.Post("/password/reset", cfg.Auth.ResetPassword)
	authGroup.Post("/invites/accept", cfg.Auth.AcceptInvite)
	authGroup.Post("/password/change",
		cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/attachments", cfg.Tickets.AddAttachment)
	tickets.Get("/:id/attachments", cfg.Tickets.ListAttachments)
	tickets.Delete("/:id/attachments/:attachmentId", cfg.Tickets.DeleteAttachment)

	reference := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	reference.Get("/categories", cfg.Directory.ListCategories)
	reference.Get("/priorities", cfg.Directory.ListPriorities)

	agent := app.Group("/agent", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	agent.Get("/tickets", cfg.AgentTickets.ListTickets)
	agent.Get("/tickets/:id", cfg.AgentTickets.GetTicket)
	agent.Patch("/tickets/:id/status", cfg.AgentTickets.UpdateStatus)
	agent.Patch("/tickets/:id/priority", cfg.AgentTickets.UpdatePriority)
	agent.Get("/tickets/:id/events", cfg.AgentTickets.AuditTrail)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/tickets", cfg.AgentTickets.ListTickets)
	admin.Patch("/tickets/:id/assignee", cfg.AdminTickets.UpdateAssignee)

	admin.Post("/invites", cfg.Invites.CreateInvite)
	admin.Get("/invites", cfg.Invites.ListInvites)
	admin.Get("/invites/:id", cfg.Invites.GetInvite)
	admin.Post("/invites/:id/resend", cfg.Invites.ResendInvite)
	admin.Post("/invites/:id/revoke", cfg.Invites.RevokeInvite)

	admin.Get("/users", cfg.Directory.ListUsers)
	admin.Get("/users/:id", cfg.Directory.GetUser)
	admin.Patch("/users/:id", cfg.Directory.UpdateUser)

	admin.Post("/organizations", cfg.Directory.CreateOrganization)
	admin.Get("/organizations", cfg.Directory.ListOrganizations)
	admin.Patch("/organizations/:id", cfg.Directory.UpdateOrganization)
	admin.Get("/organizations/:id/members", cfg.Directory.ListMembers)
	admin.Post("/organizations/:id/members", cfg.Directory.AddMember)
	admin.Delete("/organizations/:id/members/:userId", cfg.Directory.RemoveMember)
	admin.Put("/organizations/:id/members/:userId/primary", cfg.Directory.SetPrimaryMember)

	admin.Post("/categories", cfg.Directory.CreateCategory)
	admin.Patch("/categories/:id", cfg.Directory.UpdateCategory)
	admin.Post("/priorities", cfg.Directory.CreatePriority)
	admin.Patch("/priorities/:id", cfg.Directory.UpdatePriority)

	admin.Get("/analytics/dashboard", cfg.Analytics.Dashboard)
	admin.Get("/analytics/users", cfg.Analytics.Users)
	admin.Get("/analytics/agents", cfg.Analytics.AgentPerformance)
}
