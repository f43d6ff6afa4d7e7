package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper-agent/internal/game"
)

type GameRecord struct {
	GameRecordId uuid.UUID          `db:"game_record_id" json:"id"`
	Width        int                `db:"width" json:"width"`
	Height       int                `db:"height" json:"height"`
	MineCount    int                `db:"mine_count" json:"mine_count"`
	Seed         int64              `db:"seed" json:"seed"`
	Won          bool               `db:"won" json:"won"`
	Turns        int                `db:"turns" json:"turns"`
	Guesses      int                `db:"guesses" json:"guesses"`
	DurationMs   float64            `db:"duration_ms" json:"duration_ms"`
	Transcript   []byte             `db:"transcript" json:"-"`
	CreatedAt    pgtype.Timestamptz `db:"created_at" json:"created_at"`
}

type CreateGameRecordParams struct {
	Id         uuid.UUID // generated when zero
	Width      int
	Height     int
	MineCount  int
	Seed       uint64
	Won        bool
	Turns      int
	Guesses    int
	Duration   time.Duration
	Transcript []byte
}

func (q *Queries) CreateGameRecord(
	ctx context.Context, params CreateGameRecordParams,
) (*GameRecord, error) {
	id := params.Id
	if id == uuid.Nil {
		id = uuid.New()
	}
	transcript := params.Transcript
	if transcript == nil {
		transcript = []byte{}
	}
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_record (
			game_record_id, width, height, mine_count, seed,
			won, turns, guesses, duration_ms, transcript
		)
		VALUES (
			@game_record_id, @width, @height, @mine_count, @seed,
			@won, @turns, @guesses, @duration_ms, @transcript
		)
		RETURNING *;`,
		pgx.NamedArgs{
			"game_record_id": id,
			"width":          params.Width,
			"height":         params.Height,
			"mine_count":     params.MineCount,
			"seed":           int64(params.Seed),
			"won":            params.Won,
			"turns":          params.Turns,
			"guesses":        params.Guesses,
			"duration_ms":    float64(params.Duration) / float64(time.Millisecond),
			"transcript":     transcript,
		},
	)
	record, err := pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameRecord],
	)
	return record, translate(err)
}

func (q *Queries) GetGameRecord(ctx context.Context, id uuid.UUID) (*GameRecord, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_record WHERE game_record_id = $1",
		id,
	)
	record, err := pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameRecord],
	)
	return record, translate(err)
}

type RecordFilter struct {
	Width     *int
	Height    *int
	MineCount *int
	Won       *bool
}

func (f RecordFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Width != nil {
		clauses = append(clauses, "width = @width")
		args["width"] = *f.Width
	}
	if f.Height != nil {
		clauses = append(clauses, "height = @height")
		args["height"] = *f.Height
	}
	if f.MineCount != nil {
		clauses = append(clauses, "mine_count = @mine_count")
		args["mine_count"] = *f.MineCount
	}
	if f.Won != nil {
		clauses = append(clauses, "won = @won")
		args["won"] = *f.Won
	}
	return strings.Join(clauses, " AND "), args
}

const DefaultListLimit = 100

func (q *Queries) ListGameRecords(
	ctx context.Context, filter RecordFilter, limit int,
) ([]GameRecord, error) {
	query := `
	SELECT
		game_record_id,
		width,
		height,
		mine_count,
		seed,
		won,
		turns,
		guesses,
		duration_ms,
		''::bytea transcript,
		created_at
	FROM game_record
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	args["limit"] = limit
	query += " ORDER BY created_at DESC LIMIT @limit;"

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[GameRecord])
}

type RecordStats struct {
	Games      int     `db:"games" json:"games"`
	Wins       int     `db:"wins" json:"wins"`
	WinRate    float64 `db:"win_rate" json:"win_rate"`
	AvgGuesses float64 `db:"avg_guesses" json:"avg_guesses"`
	AvgTurns   float64 `db:"avg_turns" json:"avg_turns"`
}

func (q *Queries) GetRecordStats(
	ctx context.Context, filter RecordFilter,
) (*RecordStats, error) {
	query := `
	SELECT
		count(*)::int games,
		count(*) FILTER (WHERE won)::int wins,
		coalesce(avg(won::int), 0)::float8 win_rate,
		coalesce(avg(guesses), 0)::float8 avg_guesses,
		coalesce(avg(turns), 0)::float8 avg_turns
	FROM game_record
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	rows, _ := q.db.Query(ctx, query, args)
	stats, err := pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[RecordStats],
	)
	return stats, translate(err)
}

// RecordParams turns a finished game into insert parameters.
func RecordParams(r *game.Result) (CreateGameRecordParams, error) {
	transcript, err := r.HistoryBytes()
	if err != nil {
		return CreateGameRecordParams{}, err
	}
	return CreateGameRecordParams{
		Width:      r.Params.Width,
		Height:     r.Params.Height,
		MineCount:  r.Params.MineCount,
		Seed:       r.Seed,
		Won:        r.Won(),
		Turns:      r.Turns,
		Guesses:    r.Guesses,
		Duration:   r.Duration,
		Transcript: transcript,
	}, nil
}
