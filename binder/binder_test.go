package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/medstock/binder"
)

type createUserRequest struct {
	ID       string   `path:"id"`
	Name     string   `form:"name" json:"name"`
	Phone    string   `form:"phone" json:"phone"`
	Role     string   `form:"role" json:"role"`
	Account  bool     `form:"create_account" json:"create_account"`
	Page     int      `query:"page"`
	Tags     []string `query:"tags"`
	Limit    *int     `query:"limit"`
	internal string
}

func TestForm(t *testing.T) {
	t.Parallel()

	t.Run("binds urlencoded body", func(t *testing.T) {
		t.Parallel()
		body := strings.NewReader("name=Amina&phone=%2B255700000001&role=facility_manager&create_account=on")
		req := httptest.NewRequest(http.MethodPost, "/users", body)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var got createUserRequest
		require.NoError(t, binder.Form()(req, &got))
		assert.Equal(t, "Amina", got.Name)
		assert.Equal(t, "+255700000001", got.Phone)
		assert.Equal(t, "facility_manager", got.Role)
		assert.True(t, got.Account)
		assert.Empty(t, got.internal)
	})

	t.Run("not applicable to json", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		var got createUserRequest
		assert.ErrorIs(t, binder.Form()(req, &got), binder.ErrBinderNotApplicable)
	})
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("binds body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"Juma","phone":"0700000001"}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		var got createUserRequest
		require.NoError(t, binder.JSON()(req, &got))
		assert.Equal(t, "Juma", got.Name)
		assert.Equal(t, "0700000001", got.Phone)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"nope":1}`))
		req.Header.Set("Content-Type", "application/json")

		var got createUserRequest
		assert.ErrorIs(t, binder.JSON()(req, &got), binder.ErrInvalidJSON)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"a"}{"name":"b"}`))
		req.Header.Set("Content-Type", "application/json")

		var got createUserRequest
		assert.ErrorIs(t, binder.JSON()(req, &got), binder.ErrInvalidJSON)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/json")

		var got createUserRequest
		assert.ErrorIs(t, binder.JSON()(req, &got), binder.ErrInvalidJSON)
	})
}

func TestQueryAndPath(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/users/u-1?page=2&tags=a,b&tags=c&limit=10", nil)
	extractor := func(_ *http.Request, key string) string {
		if key == "id" {
			return "u-1"
		}
		return ""
	}

	var got createUserRequest
	require.NoError(t, binder.Query()(req, &got))
	require.NoError(t, binder.Path(extractor)(req, &got))

	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, []string{"a", "b", "c"}, got.Tags)
	require.NotNil(t, got.Limit)
	assert.Equal(t, 10, *got.Limit)

	bad := httptest.NewRequest(http.MethodGet, "/users?page=two", nil)
	assert.ErrorIs(t, binder.Query()(bad, &got), binder.ErrInvalidQuery)

	assert.ErrorIs(t, binder.Query()(req, got), binder.ErrInvalidTarget)
}

type Location struct {
	Facility string `form:"facility_name"`
	District string `form:"district"`
}

type updateUserRequest struct {
	ID   string `path:"id"`
	Name string `form:"name"`
	Location
}

func TestFormEmbedded(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPut, "/users/u1", strings.NewReader("name=Juma&facility_name=Bugando&district=Ilemela"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var got updateUserRequest
	require.NoError(t, binder.Form()(req, &got))
	assert.Equal(t, "Juma", got.Name)
	assert.Equal(t, "Bugando", got.Facility)
	assert.Equal(t, "Ilemela", got.District)
}
