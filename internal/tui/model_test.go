package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"dow/internal/api"
	"dow/internal/config"
)

func modelFor(base string) *Model {
	cfg := config.Default()
	cfg.API.BaseURL = base
	return New(cfg, api.New(cfg))
}

func pressEnter(t *testing.T, m *Model) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

// settle runs the async submit command and feeds its message back in,
// standing in for the event loop.
func settle(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	m.Update(cmd())
}

func TestInitialStateIsEmpty(t *testing.T) {
	m := modelFor("http://unused")
	if m.Result() != ResultEmpty {
		t.Fatalf("initial state=%v", m.Result())
	}
	if m.Display() != "" {
		t.Fatalf("initial display=%q", m.Display())
	}
}

func TestEmptyInputDoesNotSubmit(t *testing.T) {
	m := modelFor("http://unused")
	if cmd := pressEnter(t, m); cmd != nil {
		t.Fatal("empty input must not produce a request command")
	}
	if m.Result() != ResultEmpty {
		t.Fatalf("state changed on empty submit: %v", m.Result())
	}
	if m.hint == "" {
		t.Fatal("expected a required-field hint")
	}
}

func TestSubmitShowsPendingImmediately(t *testing.T) {
	// No server at all: the pending state must be visible before the
	// network settles, regardless of what happens to the request.
	m := modelFor("http://127.0.0.1:1")
	m.input.SetValue("https://youtu.be/x")
	cmd := pressEnter(t, m)
	if cmd == nil {
		t.Fatal("expected a request command")
	}
	if m.Result() != ResultPending || m.Display() != "Loading..." {
		t.Fatalf("state=%v display=%q", m.Result(), m.Display())
	}
}

func TestSubmitSuccessRendersPrettyJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	m := modelFor(ts.URL)
	m.input.SetValue("https://youtu.be/x")
	settle(t, m, pressEnter(t, m))

	if m.Result() != ResultSuccess {
		t.Fatalf("state=%v display=%q", m.Result(), m.Display())
	}
	if m.Display() != "{\n  \"status\": \"ok\"\n}" {
		t.Fatalf("display=%q", m.Display())
	}
	if !strings.Contains(m.View(), "\"status\": \"ok\"") {
		t.Fatal("rendered view missing result")
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	m := modelFor(ts.URL)
	m.input.SetValue("https://youtu.be/x")
	settle(t, m, pressEnter(t, m))

	if m.Result() != ResultFailure {
		t.Fatalf("state=%v", m.Result())
	}
	if !strings.HasPrefix(m.Display(), "Error: ") {
		t.Fatalf("display=%q", m.Display())
	}
}

func TestSubmitNonJSONBodyIsFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	m := modelFor(ts.URL)
	m.input.SetValue("https://youtu.be/x")
	settle(t, m, pressEnter(t, m))

	if m.Result() != ResultFailure || !strings.HasPrefix(m.Display(), "Error: ") {
		t.Fatalf("state=%v display=%q", m.Result(), m.Display())
	}
}

// Overlapping submissions race for the single result cell: whichever
// response is delivered last is the one shown, independent of submission
// order. That is the intended (and documented) behavior.
func TestOverlappingSubmissionsLastDeliveryWins(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": req["url"]})
	}))
	defer ts.Close()

	m := modelFor(ts.URL)

	m.input.SetValue("first")
	cmdFirst := pressEnter(t, m)
	m.input.SetValue("second")
	cmdSecond := pressEnter(t, m)
	if m.Result() != ResultPending {
		t.Fatalf("second submit should re-enter pending, got %v", m.Result())
	}

	msgFirst := cmdFirst()
	msgSecond := cmdSecond()

	// First request's response arrives after the second's.
	m.Update(msgSecond)
	m.Update(msgFirst)

	if m.Result() != ResultSuccess || !strings.Contains(m.Display(), "\"echo\": \"first\"") {
		t.Fatalf("stale response should win by delivery order, display=%q", m.Display())
	}
}

func TestHistoryTabFetchesAndFilters(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":2,"url":"https://youtu.be/b","host":"youtu.be","status":"success","title":"Cat Video","size_bytes":1048576},
			{"id":1,"url":"https://vimeo.com/a","host":"vimeo.com","status":"error","title":"Dog Clip"}
		]`))
	}))
	defer ts.Close()

	m := modelFor(ts.URL)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if cmd == nil {
		t.Fatal("tab switch should fetch history")
	}
	m.Update(cmd())
	if len(m.jobs) != 2 {
		t.Fatalf("jobs=%v", m.jobs)
	}
	view := m.View()
	if !strings.Contains(view, "Cat Video") || !strings.Contains(view, "1.0 MB") {
		t.Fatalf("view missing rows:\n%s", view)
	}

	m.filter.SetValue("cat")
	if got := m.visibleJobs(); len(got) != 1 || got[0].Title != "Cat Video" {
		t.Fatalf("filtered=%v", got)
	}
}

func TestHistoryErrorShown(t *testing.T) {
	m := modelFor("http://127.0.0.1:1")
	m.activeTab = tabHistory
	m.Update(m.fetchHistory()())
	if m.historyErr == nil {
		t.Fatal("expected history error")
	}
	if !strings.Contains(m.View(), "Error: ") {
		t.Fatal("view should surface the history error")
	}
}
