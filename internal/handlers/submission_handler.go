package handlers

import (
	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
	v "github.com/SAP-F-2025/diet-service/internal/validator"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

func (h *SubmissionHandler) Endpoints() []Endpoint {
	return []Endpoint{
		{Group: "submission", Name: "post_create", Actor: true, Fields: createSubmissionFields, Handle: h.Create},
		{Group: "submission", Name: "post_edit", Actor: true, Fields: editSubmissionFields, Handle: h.Edit},
		{Group: "submission", Name: "get_query", Param: "submission_id", Handle: h.Query},
		{Group: "submission", Name: "get_all", Param: "page", Handle: h.All},
		{Group: "submission", Name: "delete_delete", Param: "submission_id", Actor: true, Handle: h.Delete},
	}
}

func createSubmissionFields(*Request) v.Fields {
	return v.Fields{"note": v.Text()}
}

func editSubmissionFields(*Request) v.Fields {
	return v.Fields{
		"submission_id": v.Integer(),
		"note":          v.Text(v.Optional),
		"is_accepted":   v.Boolean(v.Optional),
	}
}

func (h *SubmissionHandler) Create(r *Request) (int, interface{}) {
	h.LogRequest(r, "Creating submission", "user_id", r.Actor.UserID)

	submission, err := h.submissionService.Create(r.Context(), r.Actor, r.Args.String("note"))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(submissionView(r.Lang, submission))
}

func (h *SubmissionHandler) Edit(r *Request) (int, interface{}) {
	submission, err := h.submissionService.Edit(r.Context(), r.Actor, &services.SubmissionRequest{
		SubmissionID: keyArg(r.Args, "submission_id"),
		Note:         stringArg(r.Args, "note"),
		IsAccepted:   boolArg(r.Args, "is_accepted"),
	})
	if err != nil {
		return h.failure(r, err)
	}
	return ok(submissionView(r.Lang, submission))
}

func (h *SubmissionHandler) Query(r *Request) (int, interface{}) {
	submission, err := h.submissionService.Get(r.Context(), paramID(r))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(submissionView(r.Lang, submission))
}

func (h *SubmissionHandler) All(r *Request) (int, interface{}) {
	page, err := h.submissionService.List(r.Context(), r.Param)
	if err != nil {
		return h.failure(r, err)
	}
	return ok(pageView(page, func(s *services.SubmissionResponse) SubmissionView {
		return submissionView(r.Lang, s)
	}))
}

func (h *SubmissionHandler) Delete(r *Request) (int, interface{}) {
	if err := h.submissionService.Delete(r.Context(), r.Actor, paramID(r)); err != nil {
		return h.failure(r, err)
	}
	return empty()
}
