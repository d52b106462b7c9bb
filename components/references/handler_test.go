package references

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, h http.Handler, body string, mutate ...func(*http.Request)) (*httptest.ResponseRecorder, creationResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, DefaultRoutePath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, fn := range mutate {
		fn(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp creationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return rec, resp
}

func TestHandler_CreatesReference(t *testing.T) {
	store := NewMemoryStore()
	h := Handler(WithStore(store))

	rec, resp := post(t, h, `{"model":" Company ","name":"  Acme  "}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Acme", resp.Label)
	assert.Equal(t, "Acme", resp.Name)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	refs, err := store.List(context.Background(), "company", "")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, resp.ID, refs[0].ID)
}

func TestHandler_RejectsNonPost(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DefaultRoutePath, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHandler_Failures(t *testing.T) {
	models := WithModels(
		Model{Name: "department"},
		Model{Name: "position", ParentRequired: true, ParentModel: "department"},
	)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{name: "malformed json", body: `{"model":`, status: http.StatusBadRequest, message: MessageInvalidJSON},
		{name: "contract missing name", body: `{"model":"department"}`, status: http.StatusBadRequest, message: "invalid request"},
		{name: "contract wrong type", body: `{"model":"department","name":12}`, status: http.StatusBadRequest, message: "invalid request"},
		{name: "unknown model", body: `{"model":"planet","name":"Mars"}`, status: http.StatusBadRequest, message: "unknown or disallowed model: planet"},
		{name: "blank name", body: `{"model":"department","name":"   "}`, status: http.StatusBadRequest, message: MessageNameRequired},
		{name: "parent required", body: `{"model":"position","name":"Lead"}`, status: http.StatusBadRequest, message: MessageParentRequired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := post(t, Handler(models), tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tc.message)
		})
	}
}

func TestHandler_DuplicateNameConflicts(t *testing.T) {
	h := Handler()

	rec, _ := post(t, h, `{"model":"tag","name":"Go"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := post(t, h, `{"model":"tag","name":"  go "}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, MessageDuplicate, resp.Error)
}

func TestHandler_ParentLabel(t *testing.T) {
	store := NewMemoryStore()
	dept, err := store.Create(context.Background(), CreateInput{Model: "department", Name: "Sales"})
	require.NoError(t, err)

	h := Handler(WithStore(store), WithModels(
		Model{Name: "department"},
		Model{Name: "position", ParentRequired: true, ParentModel: "department"},
	))

	rec, resp := post(t, h, `{"model":"position","name":"Lead","parent_id":"`+dept.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Lead (Sales)", resp.Label)

	positions, err := store.List(context.Background(), "position", dept.ID)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "Lead", positions[0].Name)
}

func TestHandler_UnscopedModelIgnoresParent(t *testing.T) {
	store := NewMemoryStore()
	h := Handler(WithStore(store), WithModels(Model{Name: "tag"}))

	rec, _ := post(t, h, `{"model":"tag","name":"Acme","parent_id":"1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, body := range []string{
		`{"model":"tag","name":"acme","parent_id":"2"}`,
		`{"model":"tag","name":"ACME"}`,
	} {
		rec, resp := post(t, h, body)
		assert.Equal(t, http.StatusConflict, rec.Code, body)
		assert.Equal(t, MessageDuplicate, resp.Error)
	}

	tags, err := store.List(context.Background(), "tag", "")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Empty(t, tags[0].ParentID)
}

func TestHandler_ScopedDuplicatesPerParent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	sales, err := store.Create(ctx, CreateInput{Model: "department", Name: "Sales"})
	require.NoError(t, err)
	support, err := store.Create(ctx, CreateInput{Model: "department", Name: "Support"})
	require.NoError(t, err)

	h := Handler(WithStore(store), WithModels(
		Model{Name: "department"},
		Model{Name: "position", ParentRequired: true, ParentModel: "department"},
	))

	rec, _ := post(t, h, `{"model":"position","name":"Lead","parent_id":"`+sales.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, resp := post(t, h, `{"model":"position","name":"lead","parent_id":"`+support.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "lead (Support)", resp.Label)

	rec, resp = post(t, h, `{"model":"position","name":"LEAD","parent_id":"`+sales.ID+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, MessageDuplicate, resp.Error)
}

func TestHandler_UnknownParentRejected(t *testing.T) {
	store := NewMemoryStore()
	h := Handler(WithStore(store), WithModels(
		Model{Name: "department"},
		Model{Name: "position", ParentModel: "department"},
	))

	rec, resp := post(t, h, `{"model":"position","name":"Dev","parent_id":"does-not-exist"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, MessageInvalidParent, resp.Error)

	positions, err := store.List(context.Background(), "position", "")
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestHandler_NumericParentID(t *testing.T) {
	store := NewMemoryStore()
	h := Handler(WithStore(store), WithModels(Model{Name: "position", ParentRequired: true}))

	rec, _ := post(t, h, `{"model":"position","name":"Lead","parent_id":7}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	positions, err := store.List(context.Background(), "position", "7")
	require.NoError(t, err)
	assert.Len(t, positions, 1)
}

func TestHandler_CSRF(t *testing.T) {
	h := Handler(WithCSRF("csrftoken", ""))
	body := `{"model":"tag","name":"Go"}`

	rec, resp := post(t, h, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, MessageCSRF, resp.Error)

	rec, _ = post(t, h, body, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "csrftoken", Value: "abc"})
		r.Header.Set("X-CSRFToken", "nope")
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = post(t, h, body, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "csrftoken", Value: "abc"})
		r.Header.Set("X-CSRFToken", "abc")
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandler_GuardAndAJAX(t *testing.T) {
	guarded := Handler(WithGuard(func(*http.Request) error {
		return StatusError{Code: http.StatusUnauthorized, Err: errors.New("login required")}
	}))
	rec, resp := post(t, guarded, `{"model":"tag","name":"Go"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusText(http.StatusUnauthorized), resp.Error)

	denied := Handler(WithGuard(func(*http.Request) error { return errors.New("nope") }))
	rec, resp = post(t, denied, `{"model":"tag","name":"Go"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, MessageForbidden, resp.Error)

	ajax := Handler(WithRequireAJAX(true))
	rec, _ = post(t, ajax, `{"model":"tag","name":"Go"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = post(t, ajax, `{"model":"tag","name":"Go"}`, func(r *http.Request) {
		r.Header.Set("X-Requested-With", "XMLHttpRequest")
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandler_BodyLimit(t *testing.T) {
	h := Handler(WithMaxBodyBytes(16))
	rec, _ := post(t, h, `{"model":"tag","name":"a very long name indeed"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
