package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-lookup/internal/http/handlers/lookup"
	ctrllookup "github.com/aanand-mishra/student-lookup/internal/lookup"
	"github.com/aanand-mishra/student-lookup/internal/store"
	"github.com/aanand-mishra/student-lookup/internal/types"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// memStore is an in-memory store keyed by sid.
type memStore struct {
	students map[string]types.Student
	err      error
}

func (m *memStore) Find(_ context.Context, q store.Query) ([]store.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.students[q.Value]
	if !ok {
		return []store.Record{}, nil
	}
	return []store.Record{store.StudentRecord(s)}, nil
}

func (m *memStore) Insert(_ context.Context, _ string, s types.Student) (string, error) {
	s.ID = "id-" + s.SID
	m.students[s.SID] = s
	return s.ID, nil
}

func newTestServer(t *testing.T, s *memStore, writable bool) *httptest.Server {
	t.Helper()
	ctrl := ctrllookup.New(s, ctrllookup.Config{Logger: discard})

	var writer store.Writer
	if writable {
		writer = s
	}

	srv := httptest.NewServer(NewRouter(ctrl, writer, discard))
	t.Cleanup(srv.Close)
	return srv
}

func seeded() *memStore {
	return &memStore{students: map[string]types.Student{
		"S202411132": {ID: "r1", SID: "S202411132", Name: "Li Hua", College: "Computer Science", Major: "Software Engineering"},
		"S666":       {ID: "r2", SID: "S666", Name: "<script>alert(1)</script>", College: "X", Major: "Y"},
	}}
}

// noRedirect keeps the 303 visible to the test.
var noRedirect = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

func getBody(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func postForm(t *testing.T, srv *httptest.Server, sid string) {
	t.Helper()
	resp, err := noRedirect.PostForm(srv.URL+"/lookup", url.Values{"sid": {sid}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func postLookup(t *testing.T, srv *httptest.Server, body string) (int, lookup.StateResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/lookup", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out lookup.StateResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestPage_Idle(t *testing.T) {
	srv := newTestServer(t, seeded(), false)

	body := getBody(t, srv.URL+"/")

	assert.Contains(t, body, "Student Records Lookup")
	assert.Contains(t, body, Hint)
	assert.NotContains(t, body, `role="alert"`)
	assert.NotContains(t, body, `class="card"`)
}

func TestPage_FormSubmitShowsCard(t *testing.T) {
	srv := newTestServer(t, seeded(), false)

	postForm(t, srv, "  S202411132 ")
	body := getBody(t, srv.URL+"/")

	assert.Contains(t, body, `<dd class="name">Li Hua</dd>`)
	assert.Contains(t, body, `<dd class="college">Computer Science</dd>`)
	assert.Contains(t, body, `<dd class="major">Software Engineering</dd>`)
	assert.NotContains(t, body, `role="alert"`)
	assert.Contains(t, body, `value="  S202411132 "`)
}

func TestPage_EmptyInputShowsNotice(t *testing.T) {
	srv := newTestServer(t, seeded(), false)

	postForm(t, srv, "   ")
	body := getBody(t, srv.URL+"/")

	assert.Contains(t, body, "banner-notice")
	assert.Contains(t, body, ctrllookup.MessageEmptyInput)
	assert.NotContains(t, body, `class="card"`)
}

func TestPage_NotFoundReplacesCard(t *testing.T) {
	srv := newTestServer(t, seeded(), false)

	postForm(t, srv, "S202411132")
	postForm(t, srv, "S0")
	body := getBody(t, srv.URL+"/")

	assert.Contains(t, body, "banner-notice")
	assert.Contains(t, body, ctrllookup.MessageNotFound)
	assert.NotContains(t, body, "Li Hua")
}

func TestPage_StoreErrorIsGeneric(t *testing.T) {
	s := seeded()
	s.err = errors.New("dial tcp: connection refused")
	srv := newTestServer(t, s, false)

	postForm(t, srv, "S202411132")
	body := getBody(t, srv.URL+"/")

	assert.Contains(t, body, "banner-error")
	assert.NotContains(t, body, "connection refused")
}

func TestPage_EscapesRecordFields(t *testing.T) {
	srv := newTestServer(t, seeded(), false)

	postForm(t, srv, "S666")
	body := getBody(t, srv.URL+"/")

	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestAPI_Submit(t *testing.T) {
	srv := newTestServer(t, seeded(), false)

	code, st := postLookup(t, srv, `{"sid":" S202411132 "}`)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", st.Status)
	assert.Equal(t, "S202411132", st.Query)
	require.NotNil(t, st.Student)
	assert.Equal(t, types.Student{ID: "r1", SID: "S202411132", Name: "Li Hua", College: "Computer Science", Major: "Software Engineering"}, *st.Student)
	assert.Empty(t, st.Message)
}

func TestAPI_SubmitOutcomesAreStates(t *testing.T) {
	s := seeded()
	srv := newTestServer(t, s, false)

	_, st := postLookup(t, srv, `{"sid":""}`)
	assert.Equal(t, "failed", st.Status)
	assert.Equal(t, "empty_input", st.Kind)

	_, st = postLookup(t, srv, `{"sid":"nobody"}`)
	assert.Equal(t, "not_found", st.Status)
	assert.Nil(t, st.Student)

	s.err = errors.New("boom")
	_, st = postLookup(t, srv, `{"sid":"S202411132"}`)
	assert.Equal(t, "failed", st.Status)
	assert.Equal(t, "store_error", st.Kind)
	assert.Equal(t, ctrllookup.MessageStoreError, st.Message)
}

func TestAPI_SubmitBadBodies(t *testing.T) {
	srv := newTestServer(t, seeded(), false)

	code, _ := postLookup(t, srv, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = postLookup(t, srv, "{not json")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_GetReflectsLastSubmit(t *testing.T) {
	srv := newTestServer(t, seeded(), false)

	var st lookup.StateResponse
	require.NoError(t, json.Unmarshal([]byte(getBody(t, srv.URL+"/api/lookup")), &st))
	assert.Equal(t, "idle", st.Status)

	postLookup(t, srv, `{"sid":"S202411132"}`)

	require.NoError(t, json.Unmarshal([]byte(getBody(t, srv.URL+"/api/lookup")), &st))
	assert.Equal(t, "success", st.Status)
	assert.Equal(t, "Li Hua", st.Student.Name)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, seeded(), false)

	assert.JSONEq(t, `{"status":"ok"}`, getBody(t, srv.URL+"/healthz"))
}

func TestStudents_OnlyWhenWritable(t *testing.T) {
	body := `{"sid":"S9","name":"N","college":"C","major":"M"}`

	readOnly := newTestServer(t, seeded(), false)
	resp, err := http.Post(readOnly.URL+"/api/students", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	writable := newTestServer(t, seeded(), true)
	resp, err = http.Post(writable.URL+"/api/students", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	_, st := postLookup(t, writable, `{"sid":"S9"}`)
	assert.Equal(t, "success", st.Status)
}
