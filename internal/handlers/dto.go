package handlers

import (
	"github.com/google/uuid"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/game"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

type NewAgentParams struct {
	Width  int     `schema:"width,required"`
	Height int     `schema:"height,required"`
	Seed   *uint64 `schema:"seed"`
}

type ObserveParams struct {
	Row   int `schema:"row,required"`
	Col   int `schema:"col,required"`
	Count int `schema:"count,required"`
}

type NewGameParams struct {
	Width     int     `schema:"width,required"`
	Height    int     `schema:"height,required"`
	MineCount int     `schema:"mine_count,required"`
	Seed      *uint64 `schema:"seed"`
}

type RecordsParams struct {
	Width     *int  `schema:"width"`
	Height    *int  `schema:"height"`
	MineCount *int  `schema:"mine_count"`
	Won       *bool `schema:"won"`
	Limit     int   `schema:"limit"`
}

func (p RecordsParams) Filter() repository.RecordFilter {
	return repository.RecordFilter{
		Width:     p.Width,
		Height:    p.Height,
		MineCount: p.MineCount,
		Won:       p.Won,
	}
}

type AgentCreatedDTO struct {
	AgentId string `json:"agent_id"`
	Token   string `json:"token"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Seed    uint64 `json:"seed"`
}

type ConstraintDTO struct {
	Cells []knowledge.Cell `json:"cells"`
	Count int              `json:"count"`
}

type KnowledgeDTO struct {
	AgentId     string           `json:"agent_id"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Mines       []knowledge.Cell `json:"mines"`
	Safes       []knowledge.Cell `json:"safes"`
	Moves       []knowledge.Cell `json:"moves"`
	Constraints []ConstraintDTO  `json:"constraints"`
}

func NewKnowledgeDTO(id uuid.UUID, kb *knowledge.Base) *KnowledgeDTO {
	constraints := kb.Constraints()
	dto := &KnowledgeDTO{
		AgentId:     id.String(),
		Width:       kb.Width(),
		Height:      kb.Height(),
		Mines:       kb.Mines(),
		Safes:       kb.Safes(),
		Moves:       kb.MovesMade(),
		Constraints: make([]ConstraintDTO, 0, len(constraints)),
	}
	for _, c := range constraints {
		dto.Constraints = append(dto.Constraints, ConstraintDTO{c.Cells(), c.Count()})
	}
	return dto
}

type ObservationDTO struct {
	Stats     knowledge.Stats `json:"stats"`
	Knowledge *KnowledgeDTO   `json:"knowledge"`
}

type MoveDTO struct {
	Row  int            `json:"row"`
	Col  int            `json:"col"`
	Kind agent.MoveKind `json:"kind"`
}

func NewMoveDTO(m agent.Move) *MoveDTO {
	return &MoveDTO{Row: m.Cell.Row, Col: m.Cell.Col, Kind: m.Kind}
}

type GameRecordDTO struct {
	*repository.GameRecord
	Status  game.Status `json:"status"`
	History []game.Turn `json:"history,omitempty"`
	Board   string      `json:"board,omitempty"`
}

func NewGameRecordDTO(record *repository.GameRecord, history []game.Turn) *GameRecordDTO {
	status := game.Lost
	if record.Won {
		status = game.Won
	}
	return &GameRecordDTO{GameRecord: record, Status: status, History: history}
}

type RecordsDTO struct {
	Records []repository.GameRecord `json:"records"`
	Stats   *repository.RecordStats `json:"stats"`
}
