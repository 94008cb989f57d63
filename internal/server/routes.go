package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	api.Get("/health", s.health)
	api.Get("/registration-status", s.registrationStatus)

	api.Post("/auth/register", s.rateLimited(s.registerLimit), s.register)
	api.Post("/auth/login", s.rateLimited(s.loginLimit), s.login)

	authed := api.Group("", s.requireAuth)

	authed.Get("/auth/me", s.me)
	authed.Put("/auth/me", s.updateProfile)
	authed.Put("/auth/password", s.changePassword)
	authed.Get("/auth/api-keys", s.listApiKeys)
	authed.Post("/auth/api-keys", s.createApiKey)
	authed.Delete("/auth/api-keys/:keyID", s.revokeApiKey)
	authed.Get("/auth/invites", s.listInvites)
	authed.Post("/auth/invites", s.createInvite)

	authed.Get("/lists", s.listLists)
	authed.Post("/lists", s.createList)
	authed.Get("/lists/:listID", s.getList)
	authed.Put("/lists/:listID", s.updateList)
	authed.Delete("/lists/:listID", s.deleteList)
	authed.Get("/lists/:listID/members", s.listMembers)
	authed.Post("/lists/:listID/share", s.shareList)
	authed.Delete("/lists/:listID/share/:userID", s.unshareList)

	authed.Get("/lists/:listID/items", s.listItems)
	authed.Post("/lists/:listID/items", s.addItem)
	authed.Put("/lists/:listID/items/reorder", s.reorderItems)
	authed.Put("/lists/:listID/items/:itemID", s.updateItem)
	authed.Put("/lists/:listID/items/:itemID/check", s.checkItem)
	authed.Delete("/lists/:listID/items/:itemID", s.removeItem)
	authed.Delete("/lists/:listID/checked", s.clearChecked)

	authed.Get("/categories", s.listCategories)
	authed.Post("/categories", s.createCategory)
	authed.Put("/categories/:categoryID", s.updateCategory)
	authed.Delete("/categories/:categoryID", s.deleteCategory)

	authed.Get("/suggestions", s.suggestions)

	authed.Get("/push/vapid-key", s.vapidKey)
	authed.Post("/push/subscribe", s.pushSubscribe)
	authed.Post("/push/unsubscribe", s.pushUnsubscribe)
	authed.Get("/push/settings", s.pushSettings)
	authed.Put("/push/settings", s.updatePushSettings)

	if s.handshake != nil {
		s.app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		s.app.Get("/ws/:listID", websocket.New(s.handshake.Handler()))
	}
}
