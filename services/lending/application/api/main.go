package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/lendingdesk/pkg/app"
	"github.com/ghuser/lendingdesk/pkg/auth"
	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/services/lending/application/handlers"
	appsvcs "github.com/ghuser/lendingdesk/services/lending/application/services"
)

// LendingRoutes registers lending endpoints on the provided chi router.
func LendingRoutes(r chi.Router, a *app.Application) error {
	svcs, err := appsvcs.New(a)
	if err != nil {
		return fmt.Errorf("lending services: %w", err)
	}
	requireAuth := auth.RequireAuth(a.SessionStore, a.Logger, auth.Options{TrustHeaders: a.Config.TrustIdentityHeaders})
	Mount(r, svcs, requireAuth, a.Logger)
	return nil
}

// Mount wires the handlers behind requireAuth. Admin routes additionally
// require the admin role.
func Mount(r chi.Router, svcs *appsvcs.Services, requireAuth func(http.Handler) http.Handler, log logger.Logger) {
	items := handlers.NewItemHandler(svcs)
	borrows := handlers.NewBorrowHandler(svcs)
	penalties := handlers.NewPenaltyHandler(svcs)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/items", items.List)
		r.Get("/items/{id}", items.Get)
		r.Post("/items/{id}/borrow", borrows.Request)

		r.Get("/me/borrows", borrows.ListMine)
		r.Get("/me/penalties", penalties.ListMine)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(log))

			r.Post("/items", items.Create)
			r.Put("/items/{id}", items.Update)
			r.Delete("/items/{id}", items.Delete)
			r.Put("/items/{id}/condition", items.SetCondition)

			r.Get("/borrows", borrows.List)
			r.Post("/borrows/sweep", borrows.Sweep)
			r.Post("/borrows/{id}/approve", borrows.Approve)
			r.Post("/borrows/{id}/reject", borrows.Reject)
			r.Post("/borrows/{id}/return", borrows.Return)
			r.Post("/borrows/{id}/cancel-overdue", borrows.CancelOverdue)
			r.Put("/borrows/{id}/status", borrows.UpdateStatus)

			r.Get("/penalties", penalties.List)
			r.Post("/penalties/{id}/pay", penalties.Pay)

			r.Get("/reports", penalties.Report)
		})
	})
}
