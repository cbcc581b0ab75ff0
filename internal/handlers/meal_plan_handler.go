package handlers

import (
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
	v "github.com/SAP-F-2025/diet-service/internal/validator"
)

type MealPlanHandler struct {
	BaseHandler
	mealPlanService services.MealPlanService
}

func NewMealPlanHandler(mealPlanService services.MealPlanService, logger utils.Logger) *MealPlanHandler {
	return &MealPlanHandler{
		BaseHandler:     NewBaseHandler(logger),
		mealPlanService: mealPlanService,
	}
}

func (h *MealPlanHandler) Endpoints() []Endpoint {
	return []Endpoint{
		{Group: "mealplan", Name: "post_create", Actor: true, Fields: createMealPlanFields, Handle: h.Create},
		{Group: "mealplan", Name: "post_edit", Actor: true, Fields: editMealPlanFields, Handle: h.Edit},
		{Group: "mealplan", Name: "get_query", Param: "meal_plan_id", Handle: h.Query},
		{Group: "mealplan", Name: "get_all", Param: "page", Handle: h.All},
		{Group: "mealplan", Name: "delete_delete", Param: "meal_plan_id", Actor: true, Handle: h.Delete},
	}
}

func createMealPlanFields(*Request) v.Fields {
	return v.Fields{
		"time":    v.MealTime(),
		"diet_id": v.Integer(),
		"foods":   v.IDList(),
	}
}

func editMealPlanFields(*Request) v.Fields {
	return v.Fields{
		"meal_plan_id": v.Integer(),
		"time":         v.MealTime(v.Optional),
		"diet_id":      v.Integer(v.Optional),
		"foods":        v.IDList(v.Optional),
	}
}

func mealPlanRequest(a *v.Args) *services.MealPlanRequest {
	req := &services.MealPlanRequest{
		MealPlanID: keyArg(a, "meal_plan_id"),
		DietID:     uintArg(a, "diet_id"),
	}
	if a.Has("time") {
		t := models.MealTime(a.Int("time"))
		req.Time = &t
	}
	if a.Has("foods") {
		req.Foods = a.IDs("foods")
	}
	return req
}

func (h *MealPlanHandler) Create(r *Request) (int, interface{}) {
	h.LogRequest(r, "Creating meal plan", "diet_id", r.Args.Int("diet_id"))

	plan, err := h.mealPlanService.Create(r.Context(), r.Actor, mealPlanRequest(r.Args))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(mealPlanView(plan))
}

func (h *MealPlanHandler) Edit(r *Request) (int, interface{}) {
	plan, err := h.mealPlanService.Edit(r.Context(), r.Actor, mealPlanRequest(r.Args))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(mealPlanView(plan))
}

func (h *MealPlanHandler) Query(r *Request) (int, interface{}) {
	plan, err := h.mealPlanService.Get(r.Context(), paramID(r))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(mealPlanView(plan))
}

func (h *MealPlanHandler) All(r *Request) (int, interface{}) {
	page, err := h.mealPlanService.List(r.Context(), r.Param)
	if err != nil {
		return h.failure(r, err)
	}
	return ok(pageView(page, mealPlanView))
}

func (h *MealPlanHandler) Delete(r *Request) (int, interface{}) {
	if err := h.mealPlanService.Delete(r.Context(), r.Actor, paramID(r)); err != nil {
		return h.failure(r, err)
	}
	return empty()
}
