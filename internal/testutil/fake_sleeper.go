package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// FakePick is a pick as the fake server returns it. A nil PlayerID is sent as JSON null.
type FakePick struct {
	PickNo    int     `json:"pick_no"`
	Round     int     `json:"round"`
	DraftSlot int     `json:"draft_slot"`
	PlayerID  *string `json:"player_id"`
}

// Picked is shorthand for a FakePick with a player
func Picked(pickNo int, playerID string) FakePick {
	return FakePick{PickNo: pickNo, PlayerID: &playerID}
}

type fakeDraft struct {
	picks  []FakePick
	raw    []byte // Overrides picks when set
	status int    // Non-zero forces this status on the picks endpoint
	delay  time.Duration
	name   string
}

// FakeSleeperServer is an httptest server that answers the Sleeper endpoints the board uses
type FakeSleeperServer struct {
	s *httptest.Server

	mu       sync.Mutex
	drafts   map[string]*fakeDraft
	players  []byte
	requests map[string]int
}

// NewFakeSleeperServer starts a fake server. Unknown drafts answer with an empty pick list.
func NewFakeSleeperServer() *FakeSleeperServer {
	f := &FakeSleeperServer{
		drafts:   make(map[string]*fakeDraft),
		players:  []byte(`{}`),
		requests: make(map[string]int),
	}

	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/draft/{draftID}/picks", f.handlePicks).Methods(http.MethodGet)
	v1.HandleFunc("/draft/{draftID}", f.handleDraft).Methods(http.MethodGet)
	v1.HandleFunc("/players/nfl", f.handlePlayers).Methods(http.MethodGet)

	f.s = httptest.NewServer(r)
	return f
}

func (f *FakeSleeperServer) Close() {
	f.s.Close()
}

func (f *FakeSleeperServer) URL() string {
	return f.s.URL
}

func (f *FakeSleeperServer) draft(id string) *fakeDraft {
	d, ok := f.drafts[id]
	if !ok {
		d = &fakeDraft{picks: []FakePick{}}
		f.drafts[id] = d
	}
	return d
}

// SetPicks sets the picks returned for a draft and clears any forced status or raw body
func (f *FakeSleeperServer) SetPicks(draftID string, picks ...FakePick) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.draft(draftID)
	d.picks = append([]FakePick{}, picks...)
	d.raw = nil
	d.status = 0
}

// SetRawPicks makes the picks endpoint return body verbatim with status 200
func (f *FakeSleeperServer) SetRawPicks(draftID string, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft(draftID).raw = []byte(body)
}

// SetStatus forces the picks endpoint to fail with the given status
func (f *FakeSleeperServer) SetStatus(draftID string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft(draftID).status = status
}

// SetDelay makes the picks endpoint wait before answering
func (f *FakeSleeperServer) SetDelay(draftID string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft(draftID).delay = d
}

// SetDraftName sets the name returned by the draft metadata endpoint
func (f *FakeSleeperServer) SetDraftName(draftID, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft(draftID).name = name
}

// SetPlayers sets the raw body of the players endpoint
func (f *FakeSleeperServer) SetPlayers(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players = []byte(body)
}

// Requests returns how many times path has been requested
func (f *FakeSleeperServer) Requests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *FakeSleeperServer) count(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[r.URL.Path]++
}

func (f *FakeSleeperServer) handlePicks(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	id := mux.Vars(r)["draftID"]

	f.mu.Lock()
	d := f.draft(id)
	status, delay, raw := d.status, d.delay, d.raw
	picks := append([]FakePick{}, d.picks...)
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if raw != nil {
		_, _ = w.Write(raw)
		return
	}
	_ = json.NewEncoder(w).Encode(picks)
}

func (f *FakeSleeperServer) handleDraft(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	id := mux.Vars(r)["draftID"]

	f.mu.Lock()
	d, ok := f.drafts[id]
	var name string
	if ok {
		name = d.name
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		// Sleeper answers unknown drafts with 200 and null
		_, _ = w.Write([]byte("null"))
		return
	}

	body := map[string]any{
		"draft_id": id,
		"status":   "drafting",
		"season":   "2025",
		"metadata": map[string]string{"name": name},
		"settings": map[string]int{"teams": 12, "rounds": 15},
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (f *FakeSleeperServer) handlePlayers(w http.ResponseWriter, r *http.Request) {
	f.count(r)

	f.mu.Lock()
	body := f.players
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
