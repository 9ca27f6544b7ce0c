package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shelfkeeper/internal/domain"
	applog "shelfkeeper/internal/log"
	"shelfkeeper/internal/services"
	"shelfkeeper/internal/validate"
)

type IntakeHandler struct {
	Workspace *services.WorkspaceService
}

// GET /api/v1/products/:barcode
func (h *IntakeHandler) Lookup(c *fiber.Ctx) error {
	bc, ok := validate.Barcode(c.Params("barcode"))
	if !ok {
		return badRequest(c, "barcode", "invalid barcode")
	}
	p, found, err := h.Workspace.LookupProduct(c.UserContext(), userID(c), bc)
	if err != nil {
		return apiError(c, "product.lookup.fail", err)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown barcode", "barcode": bc})
	}
	return c.JSON(p)
}

type newProductRequest struct {
	Name     string           `json:"name"`
	Category string           `json:"category"`
	Price    *decimal.Decimal `json:"price"`
}

type addBatchRequest struct {
	Barcode    string             `json:"barcode"`
	ExpiryDate string             `json:"expiryDate"`
	Quantity   int                `json:"quantity"`
	Product    *newProductRequest `json:"product"`
}

// POST /api/v1/batches
func (h *IntakeHandler) AddBatch(c *fiber.Ctx) error {
	var req addBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	bc, ok := validate.Barcode(req.Barcode)
	if !ok {
		return badRequest(c, "barcode", "invalid barcode")
	}
	exp, ok := validate.Date(req.ExpiryDate)
	if !ok {
		return badRequest(c, "expiryDate", "expiryDate must be YYYY-MM-DD")
	}
	qty, ok := validate.Quantity(req.Quantity)
	if !ok {
		return badRequest(c, "quantity", "quantity must be a positive number")
	}

	in := services.IntakeInput{Barcode: bc, ExpiryDate: exp, Quantity: qty}
	if p := req.Product; p != nil {
		name, ok := validate.Name(p.Name)
		if !ok {
			return badRequest(c, "product.name", "product name is required")
		}
		cat, ok := validate.Category(p.Category)
		if !ok {
			return badRequest(c, "product.category", "unknown category")
		}
		np := &services.NewProduct{Name: name, Category: cat}
		if p.Price != nil {
			np.Price = p.Price.String()
		}
		in.Product = np
	}

	b, err := h.Workspace.AddBatch(c.UserContext(), userID(c), in)
	if err != nil {
		return apiError(c, "batch.add.fail", err)
	}
	applog.Audit(c, "batch.add", map[string]any{"batch_id": b.ID, "barcode": b.Barcode, "quantity": b.Quantity})
	return c.Status(fiber.StatusCreated).JSON(b)
}

type statusRequest struct {
	Status string `json:"status"`
}

// PATCH /api/v1/batches/:id/status
func (h *IntakeHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid batch id")
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	st, ok := validate.Status(req.Status)
	if !ok {
		return badRequest(c, "status", "status must be reduced, wasted or sold")
	}
	res, err := setStatus(c, h.Workspace, id, st)
	if err != nil {
		if res.State == services.UpdateRolledBack {
			applog.Error(c, "batch.status.fail", err, map[string]any{"batch_id": id})
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":  "Could not update status. Check connection.",
				"update": res,
			})
		}
		return apiError(c, "batch.status.fail", err)
	}
	return c.JSON(res)
}

// setStatus is shared with the inventory page form.
func setStatus(c *fiber.Ctx, ws *services.WorkspaceService, id string, st domain.BatchStatus) (services.StatusUpdate, error) {
	res, err := ws.UpdateBatchStatus(c.UserContext(), userID(c), id, st)
	if err == nil {
		applog.Audit(c, "batch.status", map[string]any{"batch_id": id, "status": st, "previous": res.Previous.Status})
	}
	return res, err
}
