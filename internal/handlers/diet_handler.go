package handlers

import (
	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
	v "github.com/SAP-F-2025/diet-service/internal/validator"
)

type DietHandler struct {
	BaseHandler
	dietService services.DietService
}

func NewDietHandler(dietService services.DietService, logger utils.Logger) *DietHandler {
	return &DietHandler{
		BaseHandler: NewBaseHandler(logger),
		dietService: dietService,
	}
}

func (h *DietHandler) Endpoints() []Endpoint {
	return []Endpoint{
		{Group: "diet", Name: "post_create", Actor: true, Fields: createDietFields, Handle: h.Create},
		{Group: "diet", Name: "post_edit", Actor: true, Fields: editDietFields, Handle: h.Edit},
		{Group: "diet", Name: "delete_delete", Param: "diet_id", Actor: true, Handle: h.Delete},
		{Group: "diet", Name: "get_query", Param: "diet_id", Handle: h.Query},
		{Group: "diet", Name: "get_all", Param: "page", Handle: h.All},
	}
}

func createDietFields(*Request) v.Fields {
	return v.Fields{
		"name":        v.String(32),
		"description": v.Text(v.Optional),
		"photo_url":   v.URL(),
	}
}

func editDietFields(*Request) v.Fields {
	return v.Fields{
		"diet_id":     v.Integer(),
		"name":        v.String(32, v.Optional),
		"description": v.Text(v.Optional),
		"photo_url":   v.URL(v.Optional),
	}
}

func dietRequest(a *v.Args) *services.DietRequest {
	return &services.DietRequest{
		DietID:      keyArg(a, "diet_id"),
		Name:        stringArg(a, "name"),
		Description: stringArg(a, "description"),
		PhotoURL:    stringArg(a, "photo_url"),
	}
}

func (h *DietHandler) Create(r *Request) (int, interface{}) {
	h.LogRequest(r, "Creating diet", "name", r.Args.String("name"))

	diet, err := h.dietService.Create(r.Context(), r.Actor, dietRequest(r.Args))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(dietView(diet))
}

func (h *DietHandler) Edit(r *Request) (int, interface{}) {
	diet, err := h.dietService.Edit(r.Context(), r.Actor, dietRequest(r.Args))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(dietView(diet))
}

func (h *DietHandler) Delete(r *Request) (int, interface{}) {
	h.LogRequest(r, "Deleting diet", "diet_id", r.Param)

	if err := h.dietService.Delete(r.Context(), r.Actor, paramID(r)); err != nil {
		return h.failure(r, err)
	}
	return empty()
}

func (h *DietHandler) Query(r *Request) (int, interface{}) {
	diet, err := h.dietService.Get(r.Context(), paramID(r))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(dietView(diet))
}

func (h *DietHandler) All(r *Request) (int, interface{}) {
	page, err := h.dietService.List(r.Context(), r.Param)
	if err != nil {
		return h.failure(r, err)
	}
	return ok(pageView(page, dietView))
}
