// Package server exposes the meeting coordinator over HTTP and a WebSocket caption stream.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"meet-lab/domain/meeting"
	"meet-lab/errors"
	"meet-lab/infrastructure/http/api"
	"meet-lab/runtime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	DefaultPollInterval         = time.Second
	DefaultConnectionBufferSize = 1024
)

// MeetingService is the coordinator surface served over HTTP.
type MeetingService interface {
	CreateMeeting(hostName string) (meeting.Meeting, meeting.Participant, error)
	JoinMeeting(meetingID, name string) (meeting.Participant, []meeting.Participant, error)
	LeaveMeeting(meetingID, name string) error
	EndMeeting(meetingID, requesterName string) error
	GetMeeting(meetingID string) (meeting.Summary, error)
	GetMembership(meetingID string) ([]meeting.Participant, error)
	UpdateDevices(meetingID, name string, devices meeting.Devices) (meeting.Participant, error)
	AppendCaption(meetingID, speaker, text string) (meeting.CaptionEvent, error)
	ReadCaptionsSince(meetingID string, lastSeenSeq uint64) ([]meeting.CaptionEvent, uint64, error)
	SearchCaptions(ctx context.Context, meetingID, query string, limit int) ([]meeting.CaptionEvent, error)
	Subscribe(meetingID string) (*runtime.Subscription, error)
	SubscribeAs(meetingID, name string) (*runtime.Subscription, error)
}

type MeetingServer struct {
	log          *slog.Logger
	service      MeetingService
	upgrader     websocket.Upgrader
	pollInterval time.Duration
}

func NewMeetingServer(log *slog.Logger, service MeetingService, pollInterval time.Duration) *MeetingServer {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &MeetingServer{
		log:     log,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  DefaultConnectionBufferSize,
			WriteBufferSize: DefaultConnectionBufferSize,
			// Origins are enforced by the CORS layer for plain requests
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pollInterval: pollInterval,
	}
}

// WithConnectionBufferSize sizes the read and write buffers of caption stream connections.
func (s *MeetingServer) WithConnectionBufferSize(size int) *MeetingServer {
	if size > 0 {
		s.upgrader.ReadBufferSize = size
		s.upgrader.WriteBufferSize = size
	}
	return s
}

func (s *MeetingServer) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/health", s.health).Methods("GET")
	router.HandleFunc("/meetings", s.createMeeting).Methods("POST")
	router.HandleFunc("/meetings/{id}", s.getMeeting).Methods("GET")
	router.HandleFunc("/meetings/{id}/end", s.endMeeting).Methods("POST")
	router.HandleFunc("/meetings/{id}/participants", s.getMembership).Methods("GET")
	router.HandleFunc("/meetings/{id}/participants", s.joinMeeting).Methods("POST")
	router.HandleFunc("/meetings/{id}/participants/{name}", s.leaveMeeting).Methods("DELETE")
	router.HandleFunc("/meetings/{id}/participants/{name}/devices", s.updateDevices).Methods("PATCH")
	router.HandleFunc("/meetings/{id}/captions", s.appendCaption).Methods("POST")
	router.HandleFunc("/meetings/{id}/captions", s.readCaptions).Methods("GET")
	router.HandleFunc("/meetings/{id}/captions/search", s.searchCaptions).Methods("GET")
	router.HandleFunc("/meetings/{id}/captions/stream", s.streamCaptions).Methods("GET")
	return router
}

// Handler wraps the router with CORS for the given origins.
func (s *MeetingServer) Handler(allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(s.Router())
}

func (s *MeetingServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *MeetingServer) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *MeetingServer) createMeeting(w http.ResponseWriter, r *http.Request) {
	var req api.CreateMeetingRequest
	if !s.decode(w, r, &req) {
		return
	}
	m, host, err := s.service.CreateMeeting(req.HostName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.CreateMeetingResponse{
		Meeting: api.FromMeeting(m),
		Host:    api.FromParticipant(host),
	})
}

func (s *MeetingServer) getMeeting(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.GetMeeting(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromSummary(summary))
}

func (s *MeetingServer) endMeeting(w http.ResponseWriter, r *http.Request) {
	var req api.EndMeetingRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.service.EndMeeting(mux.Vars(r)["id"], req.RequesterName); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *MeetingServer) getMembership(w http.ResponseWriter, r *http.Request) {
	participants, err := s.service.GetMembership(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromParticipants(participants))
}

func (s *MeetingServer) joinMeeting(w http.ResponseWriter, r *http.Request) {
	var req api.JoinMeetingRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, participants, err := s.service.JoinMeeting(mux.Vars(r)["id"], req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.JoinMeetingResponse{
		Participant:  api.FromParticipant(p),
		Participants: api.FromParticipants(participants),
	})
}

func (s *MeetingServer) leaveMeeting(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.service.LeaveMeeting(vars["id"], vars["name"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *MeetingServer) updateDevices(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateDevicesRequest
	if !s.decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	p, err := s.service.UpdateDevices(vars["id"], vars["name"], meeting.Devices{MicOn: req.MicOn, CameraOn: req.CameraOn})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromParticipant(p))
}

func (s *MeetingServer) appendCaption(w http.ResponseWriter, r *http.Request) {
	var req api.AppendCaptionRequest
	if !s.decode(w, r, &req) {
		return
	}
	caption, err := s.service.AppendCaption(mux.Vars(r)["id"], req.Speaker, req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.FromCaption(caption))
}

func (s *MeetingServer) readCaptions(w http.ResponseWriter, r *http.Request) {
	since, ok := s.sinceParam(w, r)
	if !ok {
		return
	}
	captions, last, err := s.service.ReadCaptionsSince(mux.Vars(r)["id"], since)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CaptionsResponse{Captions: api.FromCaptions(captions), LastSeq: last})
}

func (s *MeetingServer) searchCaptions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l < 0 {
			s.writeBadRequest(w, "invalid_limit")
			return
		}
		limit = l
	}
	captions, err := s.service.SearchCaptions(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("q"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CaptionsResponse{Captions: api.FromCaptions(captions)})
}

// streamCaptions pushes every caption after ?since= to a WebSocket client until
// the meeting ends or the client goes away. With ?name= the stream belongs to that
// participant and also ends when they leave. Subscriptions only wake the loop,
// captions are always pulled from the log so nothing is skipped.
func (s *MeetingServer) streamCaptions(w http.ResponseWriter, r *http.Request) {
	since, ok := s.sinceParam(w, r)
	if !ok {
		return
	}
	meetingID := mux.Vars(r)["id"]
	var sub *runtime.Subscription
	var err error
	if name := r.URL.Query().Get("name"); name != "" {
		sub, err = s.service.SubscribeAs(meetingID, name)
	} else {
		sub, err = s.service.Subscribe(meetingID)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer sub.Close()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("WebSocket upgrade failed", "meeting_id", meetingID, "error", err)
		return
	}
	defer conn.Close()
	s.log.Debug("Caption stream opened", "meeting_id", meetingID, "subscription_id", sub.ID, "since", since)

	gone := make(chan struct{})
	go s.readPump(conn, gone)

	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	last := since
	for {
		captions, head, err := s.service.ReadCaptionsSince(meetingID, last)
		if err != nil {
			if errors.KindOf(err) == errors.KindNotFound {
				s.closeStream(conn, api.StreamEnded, last)
				return
			}
			s.log.Error("Caption stream read failed", "meeting_id", meetingID, "error", err)
			return
		}
		if len(captions) > 0 {
			msg := api.StreamMessage{Type: api.StreamCaptions, Captions: api.FromCaptions(captions), LastSeq: head}
			if err := s.write(conn, msg); err != nil {
				s.log.Debug("Caption stream write failed", "meeting_id", meetingID, "error", err)
				return
			}
		}
		last = head

		select {
		case <-sub.Wake():
		case <-poll.C:
		case <-sub.Done():
			if sub.Left() {
				s.closeStream(conn, api.StreamLeft, last)
				return
			}
			s.closeStream(conn, api.StreamEnded, last)
			return
		case <-gone:
			s.log.Debug("Caption stream closed by client", "meeting_id", meetingID)
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *MeetingServer) readPump(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Caption stream read error", "error", err)
			}
			return
		}
	}
}

func (s *MeetingServer) write(conn *websocket.Conn, msg api.StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (s *MeetingServer) closeStream(conn *websocket.Conn, kind string, last uint64) {
	reason := "meeting ended"
	if kind == api.StreamLeft {
		reason = "participant left"
	}
	_ = s.write(conn, api.StreamMessage{Type: kind, LastSeq: last})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(writeWait))
}

func (s *MeetingServer) sinceParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0, true
	}
	since, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.writeBadRequest(w, "invalid_since")
		return 0, false
	}
	return since, true
}

func (s *MeetingServer) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeBadRequest(w, "invalid_body")
		return false
	}
	return true
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch errors.KindOf(err) {
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindConflict:
		return http.StatusConflict
	case errors.KindExhaustion:
		return http.StatusServiceUnavailable
	case errors.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *MeetingServer) writeError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	body := api.Error{Kind: errors.KindOf(err).String(), Code: "internal"}
	var me *errors.MeetingError
	if errors.As(err, &me) {
		body.Code = me.Code()
		body.MeetingID = me.MeetingID
		body.Name = me.Name
	}
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
	}
	s.writeJSON(w, status, body)
}

func (s *MeetingServer) writeBadRequest(w http.ResponseWriter, code string) {
	s.writeJSON(w, http.StatusBadRequest, api.Error{Kind: errors.KindInvalid.String(), Code: code})
}

func (s *MeetingServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error(fmt.Sprintf("Unable to encode %T", v), "error", err)
	}
}
