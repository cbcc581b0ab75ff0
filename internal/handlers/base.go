package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
)

// ErrorResponse is the envelope of every failed call. Error is a message,
// or a field tree for rejected arguments.
type ErrorResponse struct {
	Error interface{} `json:"error"`
}

// Raw is written as-is with a 201 status instead of being JSON encoded.
type Raw struct {
	ContentType string
	Body        []byte
}

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(r *Request) utils.Logger {
	if r.Log != nil {
		return r.Log
	}
	return h.logger
}

func (h *BaseHandler) LogRequest(r *Request, msg string, args ...any) {
	h.log(r).Info(msg, args...)
}

func (h *BaseHandler) LogError(r *Request, err error, msg string, args ...any) {
	h.log(r).Error(msg, append(args, "error", err)...)
}

// failure turns a service error into a response. Domain errors carry their
// own translated message; anything else is a 500.
func (h *BaseHandler) failure(r *Request, err error) (int, interface{}) {
	var domainErr *services.Error
	if !errors.As(err, &domainErr) {
		h.LogError(r, err, "Unexpected service error")
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrUnauthenticated):
		status = http.StatusUnauthorized
	}
	return status, ErrorResponse{Error: domainErr.Message(r.Lang)}
}

func (h *BaseHandler) notFound(r *Request) (int, interface{}) {
	return http.StatusNotFound, ErrorResponse{Error: r.Lang.Translate("generic.not_found")}
}

func ok(payload interface{}) (int, interface{}) {
	return http.StatusOK, payload
}

func empty() (int, interface{}) {
	return http.StatusOK, struct{}{}
}

// paramID parses the path parameter as a record key. Malformed keys
// become 0, which no record uses.
func paramID(r *Request) uint {
	id, err := strconv.ParseUint(r.Param, 10, 63)
	if err != nil {
		return 0
	}
	return uint(id)
}
