package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
	v "github.com/SAP-F-2025/diet-service/internal/validator"
)

type SystemHandler struct {
	BaseHandler
	systemService  services.SystemService
	accountService services.AccountService
}

func NewSystemHandler(systemService services.SystemService, accountService services.AccountService, logger utils.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler:    NewBaseHandler(logger),
		systemService:  systemService,
		accountService: accountService,
	}
}

func (h *SystemHandler) Endpoints() []Endpoint {
	return []Endpoint{
		{Group: "system", Name: "get_backup", Param: "resource", Actor: true, Handle: h.Backup},
		{Group: "system", Name: "get_workbook", Param: "resource", Actor: true, Handle: h.Workbook},
		{Group: "system", Name: "post_rollback", Actor: true, Fields: rollbackFields, Handle: h.Rollback},
		{Group: "iot", Name: "post_update", Fields: iotUpdateFields, Handle: h.UpdateVitals},
	}
}

func rollbackFields(*Request) v.Fields {
	return v.Fields{
		"resource": v.Text(),
		"data":     v.Text(),
	}
}

// iotUpdateFields is the reading a bedside device pushes.
func iotUpdateFields(*Request) v.Fields {
	return v.Fields{
		"user_id":        v.String(16),
		"blood_pressure": v.Integer(),
		"heart_rate":     v.Integer(),
		"oxygen_level":   v.Integer(),
	}
}

// Backup answers with the CSV body, empty for an unknown resource.
func (h *SystemHandler) Backup(r *Request) (int, interface{}) {
	h.LogRequest(r, "Exporting resource", "resource", r.Param, "actor", r.Actor.UserID)

	data, err := h.systemService.Backup(r.Context(), r.Actor, r.Param)
	if err != nil {
		return h.failure(r, err)
	}
	return http.StatusCreated, Raw{ContentType: contentTypeCSV, Body: data}
}

func (h *SystemHandler) Workbook(r *Request) (int, interface{}) {
	data, err := h.systemService.Workbook(r.Context(), r.Actor, r.Param)
	if err != nil {
		return h.failure(r, err)
	}
	if data == nil {
		return http.StatusCreated, ""
	}
	return http.StatusCreated, Raw{ContentType: contentTypeXLSX, Body: data}
}

func (h *SystemHandler) Rollback(r *Request) (int, interface{}) {
	resource := r.Args.String("resource")
	h.LogRequest(r, "Importing resource", "resource", resource, "actor", r.Actor.UserID)

	result, err := h.systemService.Rollback(r.Context(), r.Actor, resource, []byte(r.Args.String("data")))
	if err != nil {
		return h.failure(r, err)
	}
	if !result.Known {
		return http.StatusCreated, ""
	}
	return ok(map[string]bool{"has_errors": result.HasErrors})
}

func (h *SystemHandler) UpdateVitals(r *Request) (int, interface{}) {
	user, err := h.accountService.UpdateVitals(r.Context(), r.Args.String("user_id"), services.Vitals{
		BloodPressure: intArg(r.Args, "blood_pressure"),
		HeartRate:     intArg(r.Args, "heart_rate"),
		OxygenLevel:   intArg(r.Args, "oxygen_level"),
	})
	if err != nil {
		return h.failure(r, err)
	}
	return ok(userView(r.Lang, user))
}
