package handlers

import (
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
	v "github.com/SAP-F-2025/diet-service/internal/validator"
)

type AccountHandler struct {
	BaseHandler
	accountService services.AccountService
	dietService    services.DietService
}

func NewAccountHandler(accountService services.AccountService, dietService services.DietService, logger utils.Logger) *AccountHandler {
	return &AccountHandler{
		BaseHandler:    NewBaseHandler(logger),
		accountService: accountService,
		dietService:    dietService,
	}
}

func (h *AccountHandler) Endpoints() []Endpoint {
	return []Endpoint{
		{Group: "account", Name: "post_register", Fields: registerFields, Handle: h.Register},
		{Group: "account", Name: "post_login", Fields: loginFields, Handle: h.Login},
		{Group: "account", Name: "delete_delete", Param: "user_id", Actor: true, Handle: h.Delete},
		{Group: "account", Name: "get_query", Param: "user_id", Handle: h.Query},
		{Group: "account", Name: "get_all", Param: "page", Handle: h.All},
		{Group: "account", Name: "post_edit", Actor: true, Fields: editUserFields, Handle: h.Edit},
		{Group: "account", Name: "get_profile", Param: "user_id", Handle: h.Profile},
		{Group: "account", Name: "post_edit_profile", Actor: true, Fields: h.editProfileFields, Handle: h.EditProfile},
	}
}

func registerFields(*Request) v.Fields {
	return v.Fields{
		"user_id":       v.String(16),
		"password":      v.Password(),
		"email":         v.Email(),
		"first_name":    v.String(32),
		"last_name":     v.String(32),
		"date_of_birth": v.Date(),
	}
}

func loginFields(*Request) v.Fields {
	return v.Fields{
		"user_id":  v.String(16),
		"password": v.Password(),
	}
}

func editUserFields(*Request) v.Fields {
	return v.Fields{
		"user_id":       v.String(16),
		"password":      v.Password(v.Optional),
		"email":         v.Email(v.Optional),
		"first_name":    v.String(32, v.Optional),
		"last_name":     v.String(32, v.Optional),
		"date_of_birth": v.Date(v.Optional),
		"role":          v.Role(v.Optional),
		"vitals": v.Group{
			"weight":         v.Float(v.Optional),
			"body_fat":       v.Float(v.Optional),
			"blood_pressure": v.Integer(v.Optional),
			"heart_rate":     v.Integer(v.Optional),
			"oxygen_level":   v.Integer(v.Optional),
		},
	}
}

func (h *AccountHandler) editProfileFields(r *Request) v.Fields {
	findDiet := func(key interface{}) (interface{}, bool) {
		id, _ := key.(int64)
		if id <= 0 {
			return nil, false
		}
		diet, err := h.dietService.Get(r.Context(), uint(id))
		return diet, err == nil
	}
	return v.Fields{
		"user_id":     v.String(16),
		"preferences": v.AnyJSON(v.Optional),
		"diet":        v.ForeignKey("Diet", "diet_id", v.KeyInt, findDiet, v.Optional),
	}
}

func (h *AccountHandler) Register(r *Request) (int, interface{}) {
	h.LogRequest(r, "Registering user", "user_id", r.Args.String("user_id"))

	user, err := h.accountService.Register(r.Context(), &services.RegisterRequest{
		UserID:      r.Args.String("user_id"),
		Password:    r.Args.String("password"),
		Email:       r.Args.String("email"),
		FirstName:   r.Args.String("first_name"),
		LastName:    r.Args.String("last_name"),
		DateOfBirth: parseDate(r.Args.String("date_of_birth")),
	})
	if err != nil {
		return h.failure(r, err)
	}
	return ok(map[string]string{"token": user.Token()})
}

func (h *AccountHandler) Login(r *Request) (int, interface{}) {
	user, err := h.accountService.Login(r.Context(), r.Args.String("user_id"), r.Args.String("password"))
	if err != nil {
		return h.failure(r, err)
	}
	return ok(map[string]string{"token": user.Token()})
}

func (h *AccountHandler) Delete(r *Request) (int, interface{}) {
	h.LogRequest(r, "Deleting user", "user_id", r.Param, "actor", r.Actor.UserID)

	if err := h.accountService.Delete(r.Context(), r.Actor, r.Param); err != nil {
		return h.failure(r, err)
	}
	return empty()
}

func (h *AccountHandler) Query(r *Request) (int, interface{}) {
	user, err := h.accountService.Get(r.Context(), r.Param)
	if err != nil {
		return h.failure(r, err)
	}
	return ok(userView(r.Lang, user))
}

func (h *AccountHandler) All(r *Request) (int, interface{}) {
	page, err := h.accountService.List(r.Context(), r.Param)
	if err != nil {
		return h.failure(r, err)
	}
	return ok(pageView(page, func(u *models.User) UserView { return userView(r.Lang, u) }))
}

func (h *AccountHandler) Edit(r *Request) (int, interface{}) {
	a := r.Args
	req := &services.EditUserRequest{
		UserID:      a.String("user_id"),
		Password:    stringArg(a, "password"),
		Email:       stringArg(a, "email"),
		FirstName:   stringArg(a, "first_name"),
		LastName:    stringArg(a, "last_name"),
		DateOfBirth: dateArg(a, "date_of_birth"),
		Vitals:      vitalsArgs(a, "vitals."),
	}
	if a.Has("role") {
		role := models.UserRole(a.Int("role"))
		req.Role = &role
	}

	user, err := h.accountService.Edit(r.Context(), r.Actor, req)
	if err != nil {
		return h.failure(r, err)
	}
	return ok(userView(r.Lang, user))
}

func (h *AccountHandler) Profile(r *Request) (int, interface{}) {
	profile, err := h.accountService.Profile(r.Context(), r.Param)
	if err != nil {
		return h.failure(r, err)
	}
	return ok(profileView(r.Lang, profile))
}

func (h *AccountHandler) EditProfile(r *Request) (int, interface{}) {
	req := &services.EditProfileRequest{
		UserID:      r.Args.String("user_id"),
		Preferences: r.Args.Object("preferences"),
	}
	if value, found := r.Args.Get("diet"); found {
		if diet, isDiet := value.(*services.DietResponse); isDiet {
			req.DietID = &diet.DietID
		}
	}

	profile, err := h.accountService.EditProfile(r.Context(), r.Actor, req)
	if err != nil {
		return h.failure(r, err)
	}
	return ok(profileView(r.Lang, profile))
}

// vitalsArgs reads the vitals fields under prefix.
func vitalsArgs(a *v.Args, prefix string) services.Vitals {
	return services.Vitals{
		Weight:        floatArg(a, prefix+"weight"),
		BodyFat:       floatArg(a, prefix+"body_fat"),
		BloodPressure: intArg(a, prefix+"blood_pressure"),
		HeartRate:     intArg(a, prefix+"heart_rate"),
		OxygenLevel:   intArg(a, prefix+"oxygen_level"),
	}
}
