package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/vampire-games/vampired/internal/cache/cachelru"
	storage "github.com/vampire-games/vampired/internal/database"
	sessionDb "github.com/vampire-games/vampired/internal/database/session/database"
	"github.com/vampire-games/vampired/internal/engine"
	"github.com/vampire-games/vampired/internal/passcode"
	"github.com/vampire-games/vampired/internal/sse"
)

type testClient struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx := context.Background()
	db, err := storage.NewFromEnv(ctx, &storage.Config{
		FilePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(ctx)
	})

	c, err := cachelru.NewLRU(16)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	config := &Config{DiscussionTime: 30, VotingTime: 30}
	handler := New(
		config,
		engine.New(engine.NewMemoryStore()),
		sessionDb.New(db, c),
		passcode.NewHasher(1000, "test-pepper"),
		sse.NewHub(),
	)

	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return server
}

func (c *testClient) do(method, path string, body interface{}) (*http.Response, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp, payload
}

func registerPlayer(t *testing.T, server *httptest.Server, name string) *testClient {
	t.Helper()

	client := &testClient{t: t, server: server}
	resp, payload := client.do(http.MethodPost, "/api/players", map[string]string{"name": name})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create player: %d %s", resp.StatusCode, payload)
	}

	var created struct {
		PlayerID string `json:"playerId"`
		Token    string `json:"token"`
	}
	if err := json.Unmarshal(payload, &created); err != nil {
		t.Fatalf("unmarshal player: %v", err)
	}
	if created.Token == "" {
		t.Fatal("registration must return a token")
	}

	client.token = created.Token
	return client
}

func TestCreatePlayerValidation(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := &testClient{t: t, server: server}

	resp, _ := client.do(http.MethodPost, "/api/players", map[string]string{"name": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 got %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := &testClient{t: t, server: server}

	resp, _ := client.do(http.MethodGet, "/api/games", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token got %d", resp.StatusCode)
	}

	client.token = "not-a-token"
	resp, _ = client.do(http.MethodGet, "/api/games", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with unknown token got %d", resp.StatusCode)
	}
}

func TestCreateAndListGames(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	host := registerPlayer(t, server, "Mina")

	resp, payload := host.do(http.MethodPost, "/api/games", map[string]interface{}{
		"name":       "Castle",
		"maxPlayers": 5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create game: %d %s", resp.StatusCode, payload)
	}

	var created engine.Snapshot
	if err := json.Unmarshal(payload, &created); err != nil {
		t.Fatalf("unmarshal game: %v", err)
	}
	if created.Name != "Castle" || len(created.Players) != 1 {
		t.Errorf("creator must be auto-joined: %+v", created)
	}

	resp, payload = host.do(http.MethodGet, "/api/games?state=lobby", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list games: %d %s", resp.StatusCode, payload)
	}

	var listed struct {
		Games []engine.Snapshot `json:"games"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(payload, &listed); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if listed.Total != 1 || len(listed.Games) != 1 {
		t.Errorf("expected 1 lobby got %+v", listed)
	}

	resp, _ = host.do(http.MethodGet, "/api/games?state=haunted", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown state got %d", resp.StatusCode)
	}
}

func TestPasscodeProtectedJoin(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	host := registerPlayer(t, server, "Mina")
	guest := registerPlayer(t, server, "Jonathan")

	resp, payload := host.do(http.MethodPost, "/api/games", map[string]interface{}{
		"name":     "Crypt",
		"passcode": "garlic",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create game: %d %s", resp.StatusCode, payload)
	}

	var created engine.Snapshot
	if err := json.Unmarshal(payload, &created); err != nil {
		t.Fatalf("unmarshal game: %v", err)
	}
	if !created.PasscodeRequired {
		t.Fatal("lobby must be marked passcode protected")
	}

	joinPath := "/api/games/" + created.GameID + "/join"

	resp, _ = guest.do(http.MethodPost, joinPath, map[string]string{"passcode": "stake"})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for wrong passcode got %d", resp.StatusCode)
	}

	resp, payload = guest.do(http.MethodPost, joinPath, map[string]string{"passcode": "garlic"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join: %d %s", resp.StatusCode, payload)
	}

	// Joining again reports success without a second seat.
	resp, payload = guest.do(http.MethodPost, joinPath, map[string]string{"passcode": "garlic"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rejoin: %d %s", resp.StatusCode, payload)
	}

	var joined struct {
		Game *engine.Snapshot `json:"game"`
	}
	if err := json.Unmarshal(payload, &joined); err != nil {
		t.Fatalf("unmarshal join: %v", err)
	}
	if len(joined.Game.Players) != 2 {
		t.Errorf("expected 2 players got %d", len(joined.Game.Players))
	}
}

func TestHostGatedPhaseFlow(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	host := registerPlayer(t, server, "Mina")

	resp, payload := host.do(http.MethodPost, "/api/games", map[string]interface{}{"name": "Castle"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create game: %d %s", resp.StatusCode, payload)
	}

	var created engine.Snapshot
	if err := json.Unmarshal(payload, &created); err != nil {
		t.Fatalf("unmarshal game: %v", err)
	}
	gameID := created.GameID

	guests := make([]*testClient, 0, 3)
	for i := 0; i < 3; i++ {
		guest := registerPlayer(t, server, fmt.Sprintf("Guest %d", i))
		resp, payload := guest.do(http.MethodPost, "/api/games/"+gameID+"/join", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("join: %d %s", resp.StatusCode, payload)
		}
		guests = append(guests, guest)
	}

	// Only the host can start the game or drive phases.
	resp, _ = guests[0].do(http.MethodPost, "/api/games/"+gameID+"/start", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-host start got %d", resp.StatusCode)
	}

	resp, payload = host.do(http.MethodPost, "/api/games/"+gameID+"/start", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: %d %s", resp.StatusCode, payload)
	}

	resp, _ = guests[0].do(http.MethodPost, "/api/games/"+gameID+"/round/question", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-host question got %d", resp.StatusCode)
	}

	resp, payload = host.do(http.MethodPost, "/api/games/"+gameID+"/round/question", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign question: %d %s", resp.StatusCode, payload)
	}

	var withQuestion engine.Snapshot
	if err := json.Unmarshal(payload, &withQuestion); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if withQuestion.CurrentRound == nil || withQuestion.CurrentRound.QuestionText == "" {
		t.Error("snapshot must carry the assigned question")
	}

	// Every player can read their own role, and only their own.
	resp, payload = guests[0].do(http.MethodGet, "/api/games/"+gameID+"/role", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("role: %d %s", resp.StatusCode, payload)
	}

	var role struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(payload, &role); err != nil {
		t.Fatalf("unmarshal role: %v", err)
	}
	if role.Role == "" || role.Role == "Unknown" {
		t.Errorf("expected an assigned role got %q", role.Role)
	}

	resp, payload = host.do(http.MethodPost, "/api/games/"+gameID+"/round/resolve-night", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve night: %d %s", resp.StatusCode, payload)
	}

	resp, _ = host.do(http.MethodPost, "/api/games/"+gameID+"/round/discussion", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start discussion: %d", resp.StatusCode)
	}
	resp, _ = host.do(http.MethodPost, "/api/games/"+gameID+"/round/voting", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start voting: %d", resp.StatusCode)
	}
	resp, payload = host.do(http.MethodPost, "/api/games/"+gameID+"/round/execute", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("close voting: %d %s", resp.StatusCode, payload)
	}

	resp, payload = host.do(http.MethodPost, "/api/games/"+gameID+"/advance", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance: %d %s", resp.StatusCode, payload)
	}

	var advanced struct {
		Ended       bool `json:"ended"`
		RoundNumber int  `json:"roundNumber"`
	}
	if err := json.Unmarshal(payload, &advanced); err != nil {
		t.Fatalf("unmarshal advance: %v", err)
	}
	if advanced.Ended {
		t.Error("empty ballot cannot end the game")
	}
	if advanced.RoundNumber != 2 {
		t.Errorf("expected round 2 got %d", advanced.RoundNumber)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	host := registerPlayer(t, server, "Mina")
	guest := registerPlayer(t, server, "Jonathan")

	resp, payload := host.do(http.MethodPost, "/api/games", map[string]interface{}{"name": "Castle"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create game: %d %s", resp.StatusCode, payload)
	}

	var created engine.Snapshot
	if err := json.Unmarshal(payload, &created); err != nil {
		t.Fatalf("unmarshal game: %v", err)
	}
	leavePath := "/api/games/" + created.GameID + "/players/me"

	// Leaving a game you never joined succeeds quietly.
	resp, _ = guest.do(http.MethodDelete, leavePath, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 got %d", resp.StatusCode)
	}

	// The last player out removes the game.
	resp, _ = host.do(http.MethodDelete, leavePath, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 got %d", resp.StatusCode)
	}

	resp, _ = host.do(http.MethodGet, "/api/games/"+created.GameID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after removal got %d", resp.StatusCode)
	}
}
