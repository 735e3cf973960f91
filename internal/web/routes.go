package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/mhornak/faceclock/internal/gallery"
	"github.com/mhornak/faceclock/internal/ledger"
	"github.com/mhornak/faceclock/internal/recognize"
	"github.com/mhornak/faceclock/internal/web/handlers"
)

func (s *Server) setupRoutes(g *gallery.Gallery, led *ledger.Ledger, registrar *recognize.Registrar) {
	// Create handlers
	recognizer := recognize.New(g, led, s.config.Recognition.Tolerance, s.config.Liveness.VariationThreshold)
	galleryHandler := handlers.NewGalleryHandler(g, registrar, s.config.Gallery.Path)
	recognizeHandler := handlers.NewRecognizeHandler(recognizer)
	recordsHandler := handlers.NewRecordsHandler(led)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Gallery
		r.Get("/gallery", galleryHandler.List)
		r.Post("/gallery/enroll", galleryHandler.Enroll)
		r.Post("/gallery/register", galleryHandler.Register)

		// Recognition
		r.Post("/recognize", recognizeHandler.Attempt)

		// Attendance records
		r.Get("/records/day/{date}", recordsHandler.Day)
		r.Get("/records/{identity}", recordsHandler.Month)
		r.Get("/records/{identity}/summary", recordsHandler.Summary)
	})
}
