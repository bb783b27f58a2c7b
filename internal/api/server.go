package api

import "github.com/RoyceAzure/lab/storefront/internal/api/handler"

type Server struct {
	AuthHandler    *handler.AuthHandler
	CatalogHandler *handler.CatalogHandler
	CartHandler    *handler.CartHandler
	OrderHandler   *handler.OrderHandler
	ReportHandler  *handler.ReportHandler
}

func NewServer(
	authHandler *handler.AuthHandler,
	catalogHandler *handler.CatalogHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	reportHandler *handler.ReportHandler,
) *Server {
	return &Server{
		AuthHandler:    authHandler,
		CatalogHandler: catalogHandler,
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
		ReportHandler:  reportHandler,
	}
}
