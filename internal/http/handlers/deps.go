package handlers

import (
	"shelfkeeper/internal/expiry"
	"shelfkeeper/internal/services"
)

type Deps struct {
	AuthHandler      *AuthHandler
	DashboardHandler *DashboardHandler
	InventoryHandler *InventoryHandler
	IntakeHandler    *IntakeHandler
	ProfileHandler   *ProfileHandler
	AdvisoryHandler  *AdvisoryHandler
	PageHandler      *PageHandler
}

func NewDeps(auth *services.AuthService, ws *services.WorkspaceService, adv *services.AdvisoryService) *Deps {
	settings := ws.Settings
	if settings == nil {
		settings = expiry.Defaults()
	}
	return &Deps{
		AuthHandler:      &AuthHandler{Auth: auth},
		DashboardHandler: &DashboardHandler{Workspace: ws},
		InventoryHandler: &InventoryHandler{Workspace: ws},
		IntakeHandler:    &IntakeHandler{Workspace: ws},
		ProfileHandler:   &ProfileHandler{Workspace: ws, Settings: settings},
		AdvisoryHandler:  &AdvisoryHandler{Advisory: adv},
		PageHandler:      &PageHandler{Workspace: ws},
	}
}
