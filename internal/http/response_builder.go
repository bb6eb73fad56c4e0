package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"housesplit/internal/core"
	"housesplit/internal/services"
)

// ResponseBuilder provides a fluent API for building plain responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       []byte
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the body. An encoding failure turns the response into a 500.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		b.statusCode = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}
	b.headers["Content-Type"] = "application/json"
	b.body = data
	return b
}

func (b *ResponseBuilder) Text(content string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/plain; charset=utf-8"
	b.body = []byte(content)
	return b
}

// Attachment marks the body as a download named filename.
func (b *ResponseBuilder) Attachment(filename, contentType, content string) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.headers["Content-Disposition"] = `attachment; filename="` + filename + `"`
	b.body = []byte(content)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorJSON creates a {"error": message} response.
func ErrorJSON(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(map[string]string{"error": message})
}

// errorStatus maps a calculation error to a status code and a message fit
// for the user. Unexpected failures get a generic message.
func errorStatus(err error) (int, string) {
	var um *core.UnknownMemberError
	var uf *core.UnknownFamilyError
	switch {
	case errors.As(err, &um):
		return http.StatusUnprocessableEntity, "Unknown member(s) in Stays: " + strings.Join(um.Members, ", ") +
			". Please add these members to the Families data."
	case errors.As(err, &uf):
		return http.StatusUnprocessableEntity, "Unknown family/families in Expenses: " + strings.Join(uf.Families, ", ") +
			". Please add these families to the Families data."
	case errors.Is(err, core.ErrNoStays):
		return http.StatusUnprocessableEntity, "No stays recorded: add at least one night before calculating."
	case errors.Is(err, core.ErrNightsOverflow):
		return http.StatusUnprocessableEntity, "Total nights are too large to calculate. Please check the Stays data."
	case errors.Is(err, services.ErrIncompleteInput):
		return http.StatusUnprocessableEntity, "Please fill in families, stays and expenses."
	default:
		return http.StatusInternalServerError, services.ErrInternal.Error()
	}
}
