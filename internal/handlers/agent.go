package handlers

import (
	"hash/maphash"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-agent/internal/board"
	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

type AgentHandler struct {
	log      logrus.FieldLogger
	sessions *Sessions
	jwt      *config.JWT
	ws       *config.WebSocket
}

func NewAgentHandler(
	log logrus.FieldLogger,
	sessions *Sessions,
	jwt *config.JWT,
	ws *config.WebSocket,
) *AgentHandler {
	return &AgentHandler{
		log:      log,
		sessions: sessions,
		jwt:      jwt,
		ws:       ws,
	}
}

func randomSeed() uint64 {
	return new(maphash.Hash).Sum64()
}

func (h *AgentHandler) session(r *http.Request) (*Session, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, ErrBadIdentifier
	}
	session, ok := h.sessions.Get(id)
	if !ok {
		return nil, ErrUnknownAgent
	}
	return session, nil
}

// authorizedSession is session plus the bearer token check.
func (h *AgentHandler) authorizedSession(r *http.Request) (*Session, error) {
	session, err := h.session(r)
	if err != nil {
		return nil, err
	}
	if err := authorize(r, session.Id.String()); err != nil {
		return nil, err
	}
	return session, nil
}

func (h *AgentHandler) NewAgent(w http.ResponseWriter, r *http.Request) {
	var params NewAgentParams
	if err := decodeQuery(&params, r); err != nil {
		sendError(w, h.log, err)
		return
	}
	if err := (board.Params{Width: params.Width, Height: params.Height}).Validate(); err != nil {
		sendError(w, h.log, err)
		return
	}
	seed := randomSeed()
	if params.Seed != nil {
		seed = *params.Seed
	}

	session, err := h.sessions.Create(params.Width, params.Height, seed)
	if err != nil {
		sendError(w, h.log, err)
		return
	}
	token, err := h.jwt.SignSession(session.Id.String())
	if err != nil {
		sendError(w, h.log, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"agent": session.Id, "width": params.Width, "height": params.Height,
	}).Info("agent session created")

	sendJSONStatusOrLog(w, h.log, http.StatusCreated, AgentCreatedDTO{
		AgentId: session.Id.String(),
		Token:   token,
		Width:   params.Width,
		Height:  params.Height,
		Seed:    seed,
	})
}

func (h *AgentHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		sendError(w, h.log, err)
		return
	}
	sendJSONOrLog(w, h.log, session.Snapshot())
}

func (h *AgentHandler) Observe(w http.ResponseWriter, r *http.Request) {
	session, err := h.authorizedSession(r)
	if err != nil {
		sendError(w, h.log, err)
		return
	}
	var params ObserveParams
	if err := decodeQuery(&params, r); err != nil {
		sendError(w, h.log, err)
		return
	}

	stats, err := session.Observe(knowledge.Cell{Row: params.Row, Col: params.Col}, params.Count)
	if err != nil {
		sendError(w, h.log.WithField("agent", session.Id), err)
		return
	}
	sendJSONOrLog(w, h.log, ObservationDTO{Stats: stats, Knowledge: session.Snapshot()})
}

func (h *AgentHandler) Move(w http.ResponseWriter, r *http.Request) {
	session, err := h.authorizedSession(r)
	if err != nil {
		sendError(w, h.log, err)
		return
	}
	move, ok := session.NextMove()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	sendJSONOrLog(w, h.log, NewMoveDTO(move))
}
