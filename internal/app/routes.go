package app

import "github.com/vancomm/minesweeper-agent/internal/handlers"

func (a *App) loadRoutes(store handlers.RecordStore) {
	agents := handlers.NewAgentHandler(a.log, a.sessions, a.jwt, a.ws)
	games := handlers.NewGameHandler(a.log, store)

	a.router.HandleFunc("POST /v1/agent", agents.NewAgent)
	a.router.HandleFunc("GET /v1/agent/{id}", agents.GetAgent)
	a.router.HandleFunc("POST /v1/agent/{id}/observe", agents.Observe)
	a.router.HandleFunc("POST /v1/agent/{id}/move", agents.Move)
	a.router.HandleFunc("GET /v1/agent/{id}/connect", agents.Connect)

	a.router.HandleFunc("POST /v1/game", games.NewGame)
	a.router.HandleFunc("GET /v1/game/{id}", games.GetGame)
	a.router.HandleFunc("GET /v1/records", games.Records)
}
