package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ShHaWkK/SpootifyCLI/core/player"
	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
	"github.com/ShHaWkK/SpootifyCLI/logger"
	"github.com/ShHaWkK/SpootifyCLI/model"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statusPollInterval paces the remote status reconciliation while a
// client is connected.
const statusPollInterval = 10 * time.Second

// wsCommand is a client's control message.
type wsCommand struct {
	Action     string              `json:"action"`
	LocalID    string              `json:"localId,omitempty"`
	Track      *model.RemoteTrack  `json:"track,omitempty"`
	LocalIDs   []string            `json:"localIds,omitempty"`
	Tracks     []model.RemoteTrack `json:"tracks,omitempty"`
	Start      int                 `json:"start,omitempty"`
	PositionMS int64               `json:"positionMs,omitempty"`
	Volume     int                 `json:"volume,omitempty"`
	State      string              `json:"state,omitempty"`
	On         bool                `json:"on,omitempty"`
	Event      *player.AudioEvent  `json:"event,omitempty"`
}

// wsState wraps outgoing state pushes.
type wsState struct {
	Type  string            `json:"type"`
	State player.NowPlaying `json:"state"`
}

// wsPreviews carries one batch of preview-carrying saved tracks while
// the library walk is in progress. Done marks the final message.
type wsPreviews struct {
	Type  string              `json:"type"`
	Items []model.RemoteTrack `json:"items,omitempty"`
	Done  bool                `json:"done,omitempty"`
	Error string              `json:"error,omitempty"`
}

// PlayerSocketHandler runs one playback session per connected client.
// Commands arrive as JSON messages; every state change is pushed back
// as a full snapshot. The remote player is polled while the connection
// lives so the mirror tracks changes made from other devices.
func (h *APIHandler) PlayerSocketHandler(w http.ResponseWriter, r *http.Request) {
	_, tok, ok := h.sessionToken(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated", "UNAUTHORIZED")
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := h.auth.ClientFor(ctx, tok)
	ctx = NewContextWithClient(ctx, client)

	send := make(chan interface{}, 16)
	push := func(msg interface{}) {
		select {
		case send <- msg:
		default:
			logger.Debug("dropping push, client is slow")
		}
	}
	session := player.NewSession(h.resolver, client, func(st player.NowPlaying) {
		push(wsState{Type: "state", State: st})
	})

	// Single writer for the connection.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					logger.Debug("push failed", logger.ErrorField(err))
					cancel()
					return
				}
			}
		}
	}()

	// Reconcile against the remote player while connected.
	go func() {
		ticker := time.NewTicker(statusPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				status, err := client.Status(ctx)
				if err != nil {
					logger.Debug("status poll failed", logger.ErrorField(err))
					continue
				}
				session.ApplyRemoteStatus(status)
			}
		}
	}()

	push(wsState{Type: "state", State: session.Snapshot()})

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket closed unexpectedly", logger.ErrorField(err))
			}
			return
		}
		h.dispatchCommand(ctx, session, client, cmd, push)
	}
}

func (h *APIHandler) dispatchCommand(ctx context.Context, session *player.Session, client *spotifyx.Client, cmd wsCommand, push func(interface{})) {
	switch cmd.Action {
	case "play":
		var ref model.TrackRef
		switch {
		case cmd.LocalID != "":
			ref = model.LocalRef(cmd.LocalID)
		case cmd.Track != nil:
			ref = model.RemoteRef(cmd.Track)
		default:
			return
		}
		if err := session.Play(ctx, ref); err != nil {
			logger.Warn("play failed", logger.String("ref", ref.Key()), logger.ErrorField(err))
		}
	case "context":
		refs := make([]model.TrackRef, 0, len(cmd.LocalIDs)+len(cmd.Tracks))
		for _, id := range cmd.LocalIDs {
			refs = append(refs, model.LocalRef(id))
		}
		for i := range cmd.Tracks {
			refs = append(refs, model.RemoteRef(&cmd.Tracks[i]))
		}
		session.Navigator().SetContext(refs, cmd.Start)
		if ref, ok := session.Navigator().Current(); ok {
			if err := session.Play(ctx, ref); err != nil {
				logger.Warn("context play failed", logger.ErrorField(err))
			}
		}
	case "toggle":
		session.TogglePlay(ctx)
	case "next":
		if err := session.Next(ctx, false); err != nil {
			logger.Warn("next failed", logger.ErrorField(err))
		}
	case "previous":
		if err := session.Previous(ctx); err != nil {
			logger.Warn("previous failed", logger.ErrorField(err))
		}
	case "seek":
		session.Seek(ctx, cmd.PositionMS)
	case "volume":
		session.SetVolume(ctx, cmd.Volume)
	case "shuffle":
		session.SetShuffle(cmd.On)
	case "repeat":
		session.SetRepeat(model.RepeatMode(cmd.State))
	case "audio":
		if cmd.Event != nil {
			session.HandleAudioEvent(ctx, *cmd.Event)
		}
	case "previews":
		// Walk the whole saved-tracks library in the background,
		// streaming each page's previews down as it lands.
		go func() {
			_, err := spotifyx.CollectPreviews(ctx, client, func(batch []model.RemoteTrack) {
				push(wsPreviews{Type: "previews", Items: batch})
			})
			final := wsPreviews{Type: "previews", Done: true}
			if err != nil && ctx.Err() == nil {
				final.Error = "Library walk stopped early"
			}
			push(final)
		}()
	default:
		logger.Debug("unknown websocket action", logger.String("action", cmd.Action))
	}
}
