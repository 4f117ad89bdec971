package handlers

import (
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/config"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/store"
)

type Deps struct {
	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	ListingHandler  *ListingHandler
	CartHandler     *CartHandler
	MessageHandler  *MessageHandler
}

func NewDeps(st store.Store, cfg config.Config, auth *services.AuthService) *Deps {
	listingSvc := services.NewListingService(st)
	cartSvc := services.NewCartService(st)
	messageSvc := services.NewMessageService(st)

	return &Deps{
		AuthHandler:     &AuthHandler{Auth: auth},
		CategoryHandler: &CategoryHandler{Store: st, Listings: listingSvc},
		ListingHandler:  &ListingHandler{Listings: listingSvc, UploadDir: cfg.UploadDir},
		CartHandler:     &CartHandler{Cart: cartSvc},
		MessageHandler:  &MessageHandler{Messages: messageSvc},
	}
}
