// Package ctx gives handlers a single *Context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (c *CartController) Count(x *ctx.Context) {
//	    summary, err := c.carts.Summary(x.Context(), x.SessionID())
//	    ...
//	    x.Success(summary)
//	}
//
//	router.Get("/get_cart_count", "cart.count", ctx.Wrap(cart.Count))
package ctx

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/duka/pkg/bind"
	"github.com/shashiranjanraj/duka/pkg/logger"
	"github.com/shashiranjanraj/duka/pkg/response"
	"github.com/shashiranjanraj/duka/pkg/session"
	"github.com/shashiranjanraj/duka/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter ("/api/products/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value, "" if absent.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// SessionID returns the visitor's session id set by session.Middleware.
func (c *Context) SessionID() string { return session.ID(c.R.Context()) }

// FormFile returns the uploaded file for key. A missing file, or a body
// that is not multipart, is reported as (nil, nil, nil).
func (c *Context) FormFile(key string) (multipart.File, *multipart.FileHeader, error) {
	f, h, err := c.R.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	return f, h, err
}

// ─── Binding / Validation ─────────────────────────────────────────────────────

// BindJSON decodes and validates the JSON body into dest. On failure it
// writes a 400 or 422 response and returns false.
//
//	var in requests.AddToCart
//	if !c.BindJSON(&in) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	return c.bound(errs, err)
}

// BindForm is BindJSON for urlencoded and multipart bodies.
func (c *Context) BindForm(dest any, maxMemory int64) bool {
	errs, err := bind.Form(c.R, dest, maxMemory)
	return c.bound(errs, err)
}

func (c *Context) bound(errs map[string]string, err error) bool {
	switch {
	case errors.Is(err, bind.ErrTooLarge):
		c.Error(http.StatusRequestEntityTooLarge, err.Error())
		return false
	case err != nil:
		c.Error(http.StatusBadRequest, err.Error())
		return false
	case validate.HasErrors(errs):
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes v with the given status code, without an envelope.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// Success sends a 200 envelope: {"status":200,"data":...}
func (c *Context) Success(data any) {
	c.status = http.StatusOK
	response.Success(c.W, data)
}

// Message sends a 200 envelope with a message.
func (c *Context) Message(message string, data any) {
	c.status = http.StatusOK
	response.Message(c.W, message, data)
}

// Created sends a 201 envelope.
func (c *Context) Created(data any) {
	c.status = http.StatusCreated
	response.Created(c.W, data)
}

// Error sends an error envelope with the given status and message.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// ValidationError sends a 422 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.status = http.StatusUnprocessableEntity
	response.ValidationError(c.W, errs)
}

// NotFound sends a 404.
func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}

// InternalError logs err with the request logger and sends a bare 500.
func (c *Context) InternalError(err error) {
	logger.WithCtx(c.Context()).Error("request failed", "error", err, "path", c.R.URL.Path)
	c.Error(http.StatusInternalServerError, "Internal Server Error")
}

// WrittenStatus returns the status written so far, 0 if none.
func (c *Context) WrittenStatus() int { return c.status }
