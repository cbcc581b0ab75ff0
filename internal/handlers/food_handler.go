package handlers

import (
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
	v "github.com/SAP-F-2025/diet-service/internal/validator"
)

type FoodHandler struct {
	BaseHandler
	foodService services.FoodService
}

func NewFoodHandler(foodService services.FoodService, logger utils.Logger) *FoodHandler {
	return &FoodHandler{
		BaseHandler: NewBaseHandler(logger),
		foodService: foodService,
	}
}

func (h *FoodHandler) Endpoints() []Endpoint {
	return []Endpoint{
		{Group: "food", Name: "post_create", Actor: true, Fields: createFoodFields, Handle: h.Create},
		{Group: "food", Name: "post_edit", Actor: true, Fields: editFoodFields, Handle: h.Edit},
		{Group: "food", Name: "get_query", Param: "food_id", Handle: h.Query},
		{Group: "food", Name: "get_all", Param: "page", Handle: h.All},
		{Group: "food", Name: "delete_delete", Param: "food_id", Actor: true, Handle: h.Delete},
	}
}

func createFoodFields(*Request) v.Fields {
	return v.Fields{
		"name":        v.String(32),
		"description": v.Text(),
		"photo_url":   v.URL(),
		"carbs":       v.Float(),
		"protein":     v.Float(),
		"fat":         v.Float(),
		"calories":    v.Float(),
		"vitamins":    v.FloatMap(models.Vitamins),
		"minerals":    v.FloatMap(models.Minerals),
		"amino_acids": v.FloatMap(models.AminoAcids),
	}
}

func editFoodFields(*Request) v.Fields {
	return v.Fields{
		"food_id":     v.Integer(),
		"name":        v.String(32, v.Optional),
		"description": v.Text(v.Optional),
		"photo_url":   v.URL(v.Optional),
		"carbs":       v.Float(v.Optional),
		"protein":     v.Float(v.Optional),
		"fat":         v.Float(v.Optional),
		"calories":    v.Float(v.Optional),
		"vitamins":    v.FloatMap(models.Vitamins, v.Optional),
		"minerals":    v.FloatMap(models.Minerals, v.Optional),
		"amino_acids": v.FloatMap(models.AminoAcids, v.Optional),
	}
}

func foodRequest(a *v.Args) *services.FoodRequest {
	return &services.FoodRequest{
		FoodID:      keyArg(a, "food_id"),
		Name:        stringArg(a, "name"),
		Description: stringArg(a, "description"),
		PhotoURL:    stringArg(a, "photo_url"),
		Carbs:       floatArg(a, "carbs"),
		Protein:     floatArg(a, "protein"),
		Fat:         floatArg(a, "fat"),
		Calories:    floatArg(a, "calories"),
		Vitamins:    floatsArg(a, "vitamins"),
		Minerals:    floatsArg(a, "minerals"),
		AminoAcids:  floatsArg(a, "amino_acids"),
	}
}

func (h *FoodHandler) Create(r *Request) (int, interface{}) {
	h.LogRequest(r, "Creating food", "name", r.Args.String("name"))

	food, err := h.foodService.Create(r.Context(), r.Actor, foodRequest(r.Args))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(foodResponseView(food))
}

func (h *FoodHandler) Edit(r *Request) (int, interface{}) {
	h.LogRequest(r, "Editing food", "food_id", r.Args.Int("food_id"))

	food, err := h.foodService.Edit(r.Context(), r.Actor, foodRequest(r.Args))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(foodResponseView(food))
}

func (h *FoodHandler) Query(r *Request) (int, interface{}) {
	food, err := h.foodService.Get(r.Context(), paramID(r))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(foodResponseView(food))
}

func (h *FoodHandler) All(r *Request) (int, interface{}) {
	page, err := h.foodService.List(r.Context(), r.Param)
	if err != nil {
		return h.failure(r, err)
	}
	return ok(pageView(page, foodResponseView))
}

func (h *FoodHandler) Delete(r *Request) (int, interface{}) {
	if err := h.foodService.Delete(r.Context(), r.Actor, paramID(r)); err != nil {
		return h.failure(r, err)
	}
	return empty()
}
