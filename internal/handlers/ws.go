package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
)

/*
Connect upgrades to a websocket speaking the text command protocol: every
text message holds newline-separated commands and is answered with a JSON
array of replies, one per command.
*/
func (h *AgentHandler) Connect(w http.ResponseWriter, r *http.Request) {
	session, err := h.authorizedSession(r)
	if err != nil {
		sendError(w, h.log, err)
		return
	}
	log := h.log.WithField("agent", session.Id)

	c, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("upgrade failed")
		return
	}
	defer c.Close()

	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("read failed")
			}
			break
		}
		if mt != websocket.TextMessage {
			c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "text only"))
			break
		}
		log.Debug("\t> ", string(message))
		replies := executeBatch(session, string(message))
		if err := c.WriteJSON(replies); err != nil {
			log.WithError(err).Error("write failed")
			break
		}
	}
}
