package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-agent/internal/board"
	"github.com/vancomm/minesweeper-agent/internal/game"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

// RecordStore is the part of the repository the game endpoints use.
type RecordStore interface {
	CreateGameRecord(context.Context, repository.CreateGameRecordParams) (*repository.GameRecord, error)
	GetGameRecord(context.Context, uuid.UUID) (*repository.GameRecord, error)
	ListGameRecords(context.Context, repository.RecordFilter, int) ([]repository.GameRecord, error)
	GetRecordStats(context.Context, repository.RecordFilter) (*repository.RecordStats, error)
}

type GameHandler struct {
	log   logrus.FieldLogger
	store RecordStore
}

func NewGameHandler(log logrus.FieldLogger, store RecordStore) *GameHandler {
	return &GameHandler{log: log, store: store}
}

// NewGame lets a fresh agent play a whole board and stores the outcome.
func (h *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	var params NewGameParams
	if err := decodeQuery(&params, r); err != nil {
		sendError(w, h.log, err)
		return
	}
	p := board.Params{Width: params.Width, Height: params.Height, MineCount: params.MineCount}
	seed := randomSeed()
	if params.Seed != nil {
		seed = *params.Seed
	}
	log := h.log.WithFields(logrus.Fields{"params": p.String(), "seed": seed})

	g, err := game.Start(p, game.GameRand(seed, 0), log)
	if err != nil {
		sendError(w, log, err)
		return
	}
	result, err := g.Play(r.Context())
	if err != nil {
		sendError(w, log, err)
		return
	}
	result.Seed = seed

	recordParams, err := repository.RecordParams(result)
	if err != nil {
		sendError(w, log, err)
		return
	}
	record, err := h.store.CreateGameRecord(r.Context(), recordParams)
	if err != nil {
		sendError(w, log, err)
		return
	}
	log.WithFields(logrus.Fields{
		"record": record.GameRecordId, "status": result.Status, "turns": result.Turns,
	}).Info("game played")

	dto := NewGameRecordDTO(record, result.History)
	dto.Board = result.Board.String()
	sendJSONStatusOrLog(w, log, http.StatusCreated, dto)
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendError(w, h.log, ErrBadIdentifier)
		return
	}
	record, err := h.store.GetGameRecord(r.Context(), id)
	if err != nil {
		sendError(w, h.log, err)
		return
	}
	history, err := game.DecodeHistory(record.Transcript)
	if err != nil {
		sendError(w, h.log.WithField("record", id), err)
		return
	}
	sendJSONOrLog(w, h.log, NewGameRecordDTO(record, history))
}

func (h *GameHandler) Records(w http.ResponseWriter, r *http.Request) {
	var params RecordsParams
	if err := decodeQuery(&params, r); err != nil {
		sendError(w, h.log, err)
		return
	}
	filter := params.Filter()

	records, err := h.store.ListGameRecords(r.Context(), filter, params.Limit)
	if err != nil {
		sendError(w, h.log, err)
		return
	}
	stats, err := h.store.GetRecordStats(r.Context(), filter)
	if err != nil {
		sendError(w, h.log, err)
		return
	}
	sendJSONOrLog(w, h.log, RecordsDTO{Records: records, Stats: stats})
}
