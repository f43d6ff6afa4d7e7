package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/game"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
	"github.com/vancomm/minesweeper-agent/internal/middleware"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

var log = logrus.New()

func TestMain(m *testing.M) {
	for _, l := range []*logrus.Logger{log, agent.Log, knowledge.Log} {
		l.SetOutput(io.Discard)
	}
	os.Exit(m.Run())
}

type memStore struct {
	records []*repository.GameRecord
}

func (s *memStore) CreateGameRecord(
	_ context.Context, p repository.CreateGameRecordParams,
) (*repository.GameRecord, error) {
	record := &repository.GameRecord{
		GameRecordId: uuid.New(),
		Width:        p.Width,
		Height:       p.Height,
		MineCount:    p.MineCount,
		Seed:         int64(p.Seed),
		Won:          p.Won,
		Turns:        p.Turns,
		Guesses:      p.Guesses,
		DurationMs:   float64(p.Duration) / float64(time.Millisecond),
		Transcript:   p.Transcript,
		CreatedAt:    pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}
	s.records = append(s.records, record)
	return record, nil
}

func (s *memStore) GetGameRecord(_ context.Context, id uuid.UUID) (*repository.GameRecord, error) {
	for _, r := range s.records {
		if r.GameRecordId == id {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memStore) ListGameRecords(
	_ context.Context, f repository.RecordFilter, limit int,
) ([]repository.GameRecord, error) {
	records := make([]repository.GameRecord, 0)
	for _, r := range s.records {
		if f.Width != nil && *f.Width != r.Width {
			continue
		}
		records = append(records, *r)
	}
	return records, nil
}

func (s *memStore) GetRecordStats(
	ctx context.Context, f repository.RecordFilter,
) (*repository.RecordStats, error) {
	records, _ := s.ListGameRecords(ctx, f, 0)
	stats := &repository.RecordStats{Games: len(records)}
	for _, r := range records {
		if r.Won {
			stats.Wins++
		}
	}
	return stats, nil
}

type testServer struct {
	handler http.Handler
	jwt     *config.JWT
	store   *memStore
}

func newTestServer() *testServer {
	j := config.NewJWTWithSecret([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	store := &memStore{}
	agents := NewAgentHandler(log, NewSessions(16), j, config.NewWebSocket())
	games := NewGameHandler(log, store)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/agent", agents.NewAgent)
	mux.HandleFunc("GET /v1/agent/{id}", agents.GetAgent)
	mux.HandleFunc("POST /v1/agent/{id}/observe", agents.Observe)
	mux.HandleFunc("POST /v1/agent/{id}/move", agents.Move)
	mux.HandleFunc("GET /v1/agent/{id}/connect", agents.Connect)
	mux.HandleFunc("POST /v1/game", games.NewGame)
	mux.HandleFunc("GET /v1/game/{id}", games.GetGame)
	mux.HandleFunc("GET /v1/records", games.Records)

	return &testServer{
		handler: middleware.Wrap(mux, middleware.Auth(log, j)),
		jwt:     j,
		store:   store,
	}
}

func (s *testServer) do(method, target, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) newAgent(t *testing.T) AgentCreatedDTO {
	t.Helper()
	w := s.do(http.MethodPost, "/v1/agent?width=8&height=8&seed=1", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	return decode[AgentCreatedDTO](t, w)
}

func TestAgentSession(t *testing.T) {
	s := newTestServer()
	created := s.newAgent(t)
	base := "/v1/agent/" + created.AgentId

	w := s.do(http.MethodPost, base+"/observe?row=0&col=0&count=0", created.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	obs := decode[ObservationDTO](t, w)
	assert.Equal(t, []knowledge.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}}, obs.Knowledge.Safes)
	assert.Equal(t, 4, obs.Stats.Classified)

	w = s.do(http.MethodPost, base+"/move", created.Token)
	require.Equal(t, http.StatusOK, w.Code)
	move := decode[MoveDTO](t, w)
	assert.Equal(t, agent.Safe, move.Kind)
	assert.Equal(t, 0, move.Row)
	assert.Equal(t, 1, move.Col)

	w = s.do(http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	snapshot := decode[KnowledgeDTO](t, w)
	assert.Equal(t, created.AgentId, snapshot.AgentId)
	assert.Equal(t, []knowledge.Cell{{Row: 0, Col: 0}}, snapshot.Moves)
	assert.Empty(t, snapshot.Mines)
}

func TestAgentErrors(t *testing.T) {
	s := newTestServer()
	created := s.newAgent(t)
	other := s.newAgent(t)
	base := "/v1/agent/" + created.AgentId

	w := s.do(http.MethodPost, base+"/observe?row=0&col=0&count=0", created.Token)
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		code   int
	}{
		{"missing dimensions", http.MethodPost, "/v1/agent?width=8", "", http.StatusBadRequest},
		{"zero width", http.MethodPost, "/v1/agent?width=0&height=8", "", http.StatusBadRequest},
		{"malformed id", http.MethodGet, "/v1/agent/nope", "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/v1/agent/" + uuid.NewString(), "", http.StatusNotFound},
		{"no token", http.MethodPost, base + "/move", "", http.StatusUnauthorized},
		{"bad token", http.MethodPost, base + "/move", "garbage", http.StatusUnauthorized},
		{"foreign token", http.MethodPost, base + "/move", other.Token, http.StatusForbidden},
		{"missing count", http.MethodPost, base + "/observe?row=1&col=1", created.Token, http.StatusBadRequest},
		{"out of bounds", http.MethodPost, base + "/observe?row=8&col=0&count=0", created.Token, http.StatusBadRequest},
		{"repeated move", http.MethodPost, base + "/observe?row=0&col=0&count=0", created.Token, http.StatusBadRequest},
		{"inconsistent", http.MethodPost, base + "/observe?row=0&col=1&count=6", created.Token, http.StatusConflict},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := s.do(test.method, test.target, test.token)
			assert.Equal(t, test.code, w.Code, w.Body.String())
			assert.Contains(t, decode[map[string]string](t, w), "error")
		})
	}

	w = s.do(http.MethodGet, base, "")
	snapshot := decode[KnowledgeDTO](t, w)
	assert.Equal(t, []knowledge.Cell{{Row: 0, Col: 0}}, snapshot.Moves)
}

func TestMoveOnExhaustedAgent(t *testing.T) {
	s := newTestServer()
	w := s.do(http.MethodPost, "/v1/agent?width=1&height=2", "")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[AgentCreatedDTO](t, w)
	base := "/v1/agent/" + created.AgentId

	w = s.do(http.MethodPost, base+"/observe?row=0&col=0&count=1", created.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, base+"/move", created.Token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestConnect(t *testing.T) {
	s := newTestServer()
	created := s.newAgent(t)

	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/v1/agent/" + created.AgentId + "/connect?token=" + created.Token
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("o 0 0 0\nm\nx 1\ns\no 0 0 0")))

	var replies []Reply
	require.NoError(t, c.ReadJSON(&replies))
	require.Len(t, replies, 5)

	assert.Empty(t, replies[0].Error)
	require.NotNil(t, replies[0].Stats)
	assert.Equal(t, 4, replies[0].Stats.Classified)

	require.NotNil(t, replies[1].Move)
	assert.Equal(t, agent.Safe, replies[1].Move.Kind)

	assert.Equal(t, ErrUnknownCommand.Error(), replies[2].Error)

	require.NotNil(t, replies[3].Knowledge)
	assert.Len(t, replies[3].Knowledge.Safes, 4)

	assert.Contains(t, replies[4].Error, knowledge.ErrInvalidInput.Error())
	assert.Equal(t, 4, replies[4].Line)
}

func TestConnectRequiresToken(t *testing.T) {
	s := newTestServer()
	created := s.newAgent(t)

	w := s.do(http.MethodGet, "/v1/agent/"+created.AgentId+"/connect", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type gameResponse struct {
	Id      uuid.UUID   `json:"id"`
	Width   int         `json:"width"`
	Won     bool        `json:"won"`
	Turns   int         `json:"turns"`
	Status  game.Status `json:"status"`
	History []game.Turn `json:"history"`
	Board   string      `json:"board"`
}

func TestGameAutoplay(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/v1/game?width=9&height=9&mine_count=10&seed=7", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	played := decode[gameResponse](t, w)

	assert.Equal(t, 9, played.Width)
	assert.Len(t, played.History, played.Turns)
	assert.Equal(t, played.Won, played.Status == game.Won)
	assert.Equal(t, 9, strings.Count(played.Board, "\n"))
	assert.Zero(t, played.History[0].Count)
	require.Len(t, s.store.records, 1)

	w = s.do(http.MethodGet, "/v1/game/"+played.Id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	stored := decode[gameResponse](t, w)
	assert.Equal(t, played.History, stored.History)

	w = s.do(http.MethodGet, "/v1/records?width=9", "")
	require.Equal(t, http.StatusOK, w.Code)
	records := decode[RecordsDTO](t, w)
	assert.Len(t, records.Records, 1)
	assert.Equal(t, 1, records.Stats.Games)

	w = s.do(http.MethodGet, "/v1/records?width=16", "")
	records = decode[RecordsDTO](t, w)
	assert.Empty(t, records.Records)
}

func TestGameErrors(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/v1/game?width=3&height=3&mine_count=9", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/v1/game?width=9", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/v1/game/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/v1/game/42", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, s.store.records)
}

func TestSessionsEvictOldest(t *testing.T) {
	sessions := NewSessions(2)
	first, err := sessions.Create(4, 4, 1)
	require.NoError(t, err)
	_, err = sessions.Create(4, 4, 2)
	require.NoError(t, err)
	_, err = sessions.Create(4, 4, 3)
	require.NoError(t, err)

	assert.Equal(t, 2, sessions.Len())
	_, ok := sessions.Get(first.Id)
	assert.False(t, ok)
}
