package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Response builds HTMX-aware responses: HX-Trigger toast events, redirects,
// and plain bodies, through one fluent surface.
type Response struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

func NewResponse() *Response {
	return &Response{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *Response) Status(code int) *Response {
	b.statusCode = code
	return b
}

// Trigger adds a named client event to the HX-Trigger header.
func (b *Response) Trigger(name string, data any) *Response {
	b.triggers[name] = data
	return b
}

// ToastKind classifies a toast for styling.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastWarning ToastKind = "warning"
)

// Toast adds a show-toast trigger. The client shows each trigger exactly
// once, so a single Toast call means a single toast.
func (b *Response) Toast(kind ToastKind, message string) *Response {
	return b.Trigger("show-toast", map[string]any{
		"kind":    string(kind),
		"message": message,
	})
}

func (b *Response) TriggerExpenseCreated() *Response {
	return b.Trigger("expense:created", struct{}{})
}

func (b *Response) TriggerExpenseUpdated(id int64) *Response {
	return b.Trigger("expense:updated", map[string]int64{"id": id})
}

// Redirect issues a client-side redirect. HTMX follows HX-Redirect; plain
// browsers get a 303.
func (b *Response) Redirect(r *http.Request, url string) *Response {
	if isHTMX(r) {
		b.headers["HX-Redirect"] = url
		return b
	}
	b.statusCode = http.StatusSeeOther
	b.headers["Location"] = url
	return b
}

func (b *Response) Header(name, value string) *Response {
	b.headers[name] = value
	return b
}

func (b *Response) BodyHTML(html string) *Response {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Apply sets the built headers and triggers without writing the status or
// body, for handlers that render a template afterwards.
func (b *Response) Apply(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}
}

// Write sends the built response.
func (b *Response) Write(w http.ResponseWriter) {
	b.Apply(w)
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse renders a standard inline error fragment. The message is
// HTML-escaped.
func ErrorResponse(statusCode int, message string) *Response {
	escaped := template.HTMLEscapeString(message)
	return NewResponse().
		Status(statusCode).
		Toast(ToastError, message).
		BodyHTML(`<div class="error">` + escaped + `</div>`)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
