package handlers

import (
	"applestore/internal/cache"
	"applestore/internal/services"
)

type Deps struct {
	StorefrontHandler *StorefrontHandler
	APIHandler        *APIHandler
	AdminHandler      *AdminHandler
}

func NewDeps(store *services.CatalogStore, monitor *services.LowStockMonitor, views cache.Views) *Deps {
	if views == nil {
		views = cache.NewMemory(cache.DefaultTTL)
	}
	return &Deps{
		StorefrontHandler: &StorefrontHandler{Store: store, Views: views},
		APIHandler:        &APIHandler{Store: store},
		AdminHandler:      &AdminHandler{Store: store, Monitor: monitor},
	}
}
