package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/diet-service/internal/i18n"
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
	"github.com/SAP-F-2025/diet-service/internal/validator"
)

// Request is one endpoint call after authentication and validation.
type Request struct {
	ctx   context.Context
	Lang  i18n.Translator
	Actor *models.User
	// Param is the path parameter without its "@" marker.
	Param string
	// Args holds the validated body of POST calls.
	Args *validator.Args
	Log  utils.Logger
}

func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Endpoint is one row of the route table.
type Endpoint struct {
	Group string
	// Name selects the verb: "post_" is POST, "delete_" is DELETE and
	// anything else, with or without "get_", is GET.
	Name string
	// Param names the trailing "@<value>" path segment, if any.
	Param string
	// Actor requires an authenticated caller.
	Actor bool
	// Fields builds the POST argument schema. It runs once per request.
	Fields func(r *Request) validator.Fields
	Handle func(r *Request) (int, interface{})
}

// Method and Action split Name by the verb convention.
func (e Endpoint) Method() string {
	method, _ := splitName(e.Name)
	return method
}

func (e Endpoint) Action() string {
	_, action := splitName(e.Name)
	return action
}

// Path is the route below /api/:lang.
func (e Endpoint) Path() string {
	path := "/" + e.Group + "/" + e.Action()
	if e.Param != "" {
		path += "/:" + paramKey
	}
	return path
}

// Pattern documents the route the way clients spell it.
func (e Endpoint) Pattern() string {
	pattern := e.Method() + " /api/<lang>/" + e.Group + "/" + e.Action()
	if e.Param != "" {
		pattern += "/@<" + e.Param + ">"
	}
	return pattern
}

func splitName(name string) (string, string) {
	if action, ok := strings.CutPrefix(name, "post_"); ok {
		return http.MethodPost, action
	}
	if action, ok := strings.CutPrefix(name, "delete_"); ok {
		return http.MethodDelete, action
	}
	if action, ok := strings.CutPrefix(name, "get_"); ok {
		return http.MethodGet, action
	}
	return http.MethodGet, name
}

const paramKey = "param"

// SSO names the local user a Bearer token was issued for.
type SSO interface {
	Subject(token string) (string, error)
}

// Dispatcher adapts endpoints to gin: it binds the locale, resolves the
// actor, runs the argument schema and writes the result.
type Dispatcher struct {
	BaseHandler
	catalog  *i18n.Catalog
	accounts services.AccountService
	sso      SSO
}

// NewDispatcher builds a dispatcher. sso may be nil.
func NewDispatcher(catalog *i18n.Catalog, accounts services.AccountService, sso SSO, logger utils.Logger) *Dispatcher {
	return &Dispatcher{
		BaseHandler: NewBaseHandler(logger),
		catalog:     catalog,
		accounts:    accounts,
		sso:         sso,
	}
}

func (d *Dispatcher) Handle(e Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		r := &Request{
			ctx:  c.Request.Context(),
			Lang: d.catalog.For(c.Param("lang")),
			Log:  utils.GetLogger(c, d.logger),
		}

		if e.Param != "" {
			value, ok := strings.CutPrefix(c.Param(paramKey), "@")
			if !ok {
				d.write(c)(d.notFound(r))
				return
			}
			r.Param = value
		}

		if e.Actor {
			actor, err := d.authenticate(r.Context(), c.GetHeader("Authorization"))
			if err != nil {
				d.write(c)(d.failure(r, err))
				return
			}
			r.Actor = actor
		}

		if e.Method() == http.MethodPost {
			body, err := readBody(c)
			if err != nil {
				d.write(c)(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
			var fields validator.Fields
			if e.Fields != nil {
				fields = e.Fields(r)
			}
			args := validator.NewArgs(r.Lang, fields)
			if !args.ValidateAll(body) {
				d.write(c)(http.StatusBadRequest, ErrorResponse{Error: args.Errors()})
				return
			}
			r.Args = args
		}

		d.write(c)(e.Handle(r))
	}
}

// authenticate accepts "@<user_id>:<credential>" and, when an SSO is
// configured, "Bearer <token>".
func (d *Dispatcher) authenticate(ctx context.Context, header string) (*models.User, error) {
	header = strings.TrimSpace(header)
	if strings.HasPrefix(header, "@") {
		return d.accounts.Authenticate(ctx, header)
	}

	scheme, token, found := strings.Cut(header, " ")
	if d.sso == nil || !found || !strings.EqualFold(scheme, "bearer") {
		return nil, services.NewAuthenticationError()
	}
	userID, err := d.sso.Subject(strings.TrimSpace(token))
	if err != nil {
		return nil, services.NewAuthenticationError()
	}
	return d.accounts.AuthenticateExternal(ctx, userID)
}

func (d *Dispatcher) write(c *gin.Context) func(int, interface{}) {
	return func(status int, payload interface{}) {
		if status != http.StatusCreated {
			c.JSON(status, payload)
			return
		}
		switch body := payload.(type) {
		case Raw:
			c.Data(status, body.ContentType, body.Body)
		case []byte:
			c.Data(status, "text/plain; charset=utf-8", body)
		case string:
			c.Data(status, "text/plain; charset=utf-8", []byte(body))
		case nil:
			c.Status(status)
		default:
			c.Data(status, "text/plain; charset=utf-8", []byte(fmt.Sprint(body)))
		}
	}
}

// readBody decodes a JSON object or a form post. Form values arrive as
// text and are coerced by the validators.
func readBody(c *gin.Context) (map[string]interface{}, error) {
	body := map[string]interface{}{}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return body, nil
	}

	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("invalid form body: %w", err)
		}
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				body[key] = values[0]
			}
		}
		return body, nil
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if body == nil {
		body = map[string]interface{}{}
	}
	return body, nil
}
