package references

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Failure messages returned in the error field.
const (
	MessageMethodNotAllowed = "method not allowed"
	MessageForbidden        = "access denied"
	MessageCSRF             = "CSRF token missing or incorrect"
	MessageAJAXRequired     = "an AJAX request is required"
	MessageInvalidJSON      = "invalid JSON request"
	MessageNameRequired     = "name is required"
	MessageParentRequired   = "a parent selection is required"
	MessageInvalidParent    = "invalid parent"
	MessageDuplicate        = "an entry with this name already exists"
	MessageCreateFailed     = "could not create the entry"
)

type creationResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Label   string `json:"label,omitempty"`
	Name    string `json:"name,omitempty"`
	Error   string `json:"error,omitempty"`
}

type creationPayload struct {
	Model    string   `json:"model"`
	Name     string   `json:"name"`
	ParentID parentID `json:"parent_id"`
}

// parentID accepts a JSON string or number.
type parentID string

func (p *parentID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*p = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*p = parentID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*p = parentID(n.String())
	return nil
}

// Handler builds a net/http handler with default options plus any overrides.
// It is an alias of NewHandler to match the recommended component API surface.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds a net/http handler from a pre-constructed Options value.
// Callers are expected to pass an Options value produced by NewOptions (or equivalent)
// so defaults apply.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	contract := opts.Contract
	if contract == nil {
		loaded, err := DefaultContract()
		if err != nil {
			opts.Logger.Error("reference contract unavailable", slog.Any("error", err))
		}
		contract = loaded
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			writeFailure(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
			return
		}
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeFailure(w, http.StatusMethodNotAllowed, MessageMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		if opts.RequireAJAX && r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
			writeFailure(w, http.StatusBadRequest, MessageAJAXRequired)
			return
		}
		if opts.CSRFCookie != "" && !csrfMatches(r, opts.CSRFCookie, opts.CSRFHeader) {
			writeFailure(w, http.StatusForbidden, MessageCSRF)
			return
		}

		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeFailure(w, http.StatusRequestEntityTooLarge, http.StatusText(http.StatusRequestEntityTooLarge))
				return
			}
			writeFailure(w, http.StatusBadRequest, MessageInvalidJSON)
			return
		}

		var body any
		if err := json.Unmarshal(raw, &body); err != nil {
			writeFailure(w, http.StatusBadRequest, MessageInvalidJSON)
			return
		}
		if err := contract.Validate(body); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}

		var payload creationPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			writeFailure(w, http.StatusBadRequest, MessageInvalidJSON)
			return
		}

		modelName := normaliseModel(payload.Model)
		model, ok := lookupModel(opts, modelName)
		if !ok {
			writeFailure(w, http.StatusBadRequest, fmt.Sprintf("unknown or disallowed model: %s", modelName))
			return
		}
		name := strings.TrimSpace(payload.Name)
		if name == "" {
			writeFailure(w, http.StatusBadRequest, MessageNameRequired)
			return
		}
		parent := string(payload.ParentID)
		if !model.scoped() {
			parent = ""
		}
		if model.ParentRequired && parent == "" {
			writeFailure(w, http.StatusBadRequest, MessageParentRequired)
			return
		}

		ctx := r.Context()
		var owner Reference
		if parent != "" && model.ParentModel != "" {
			owner, err = opts.Store.Get(ctx, model.ParentModel, parent)
			if errors.Is(err, ErrNotFound) {
				writeFailure(w, http.StatusBadRequest, MessageInvalidParent)
				return
			}
			if err != nil {
				opts.Logger.ErrorContext(ctx, "parent lookup failed",
					slog.String("model", model.ParentModel),
					slog.Any("error", err),
				)
				writeFailure(w, http.StatusInternalServerError, MessageCreateFailed)
				return
			}
		}

		ref, err := opts.Store.Create(ctx, CreateInput{Model: model.Name, Name: name, ParentID: parent})
		if err != nil {
			if errors.Is(err, ErrDuplicate) {
				writeFailure(w, http.StatusConflict, MessageDuplicate)
				return
			}
			opts.Logger.ErrorContext(ctx, "reference creation failed",
				slog.String("model", model.Name),
				slog.Any("error", err),
			)
			writeFailure(w, http.StatusInternalServerError, MessageCreateFailed)
			return
		}

		label := ref.Name
		if owner.ID != "" {
			label = fmt.Sprintf("%s (%s)", ref.Name, owner.Name)
		}

		opts.Logger.InfoContext(ctx, "reference created",
			slog.String("model", ref.Model),
			slog.String("id", ref.ID),
			slog.String("parent_id", ref.ParentID),
		)
		writeJSON(w, http.StatusCreated, creationResponse{Success: true, ID: ref.ID, Label: label, Name: label})
	})
}

func csrfMatches(r *http.Request, cookieName, headerName string) bool {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return r.Header.Get(headerName) == cookie.Value
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	message := MessageForbidden
	if code != http.StatusForbidden {
		message = http.StatusText(code)
	}
	writeFailure(w, code, message)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, creationResponse{Success: false, Error: strings.TrimSpace(message)})
}

func writeJSON(w http.ResponseWriter, status int, payload creationResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}
