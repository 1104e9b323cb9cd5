package handler

import (
	"linkup/backend/internal/feed"
	"linkup/backend/internal/messaging"
	"linkup/backend/internal/social"

	"gorm.io/gorm"
)

var (
	graph      *social.Graph
	feedSvc    *feed.Service
	messageSvc *messaging.Service
)

// InitServices wires the handler layer to the shared database connection.
// Called once from main after the database connects; tests call it with
// their own connection.
func InitServices(db *gorm.DB) {
	graph = social.NewGraph(db)
	feedSvc = feed.NewService(db)
	messageSvc = messaging.NewService(db)
}
