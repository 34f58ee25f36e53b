// Package client talks to the meeting HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"meet-lab/domain/meeting"
	"meet-lab/errors"
	"meet-lab/infrastructure/http/api"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const DefaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func New(log *slog.Logger, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, log: log}
}

func (c *Client) CreateMeeting(ctx context.Context, hostName string) (api.CreateMeetingResponse, error) {
	var out api.CreateMeetingResponse
	err := c.do(ctx, http.MethodPost, "/meetings", api.CreateMeetingRequest{HostName: hostName}, &out)
	return out, err
}

func (c *Client) GetMeeting(ctx context.Context, meetingID string) (api.Meeting, error) {
	var out api.Meeting
	err := c.do(ctx, http.MethodGet, meetingPath(meetingID), nil, &out)
	return out, err
}

func (c *Client) JoinMeeting(ctx context.Context, meetingID, name string) (api.JoinMeetingResponse, error) {
	var out api.JoinMeetingResponse
	err := c.do(ctx, http.MethodPost, meetingPath(meetingID)+"/participants", api.JoinMeetingRequest{Name: name}, &out)
	return out, err
}

func (c *Client) LeaveMeeting(ctx context.Context, meetingID, name string) error {
	return c.do(ctx, http.MethodDelete, meetingPath(meetingID)+"/participants/"+url.PathEscape(name), nil, nil)
}

func (c *Client) EndMeeting(ctx context.Context, meetingID, requesterName string) error {
	return c.do(ctx, http.MethodPost, meetingPath(meetingID)+"/end", api.EndMeetingRequest{RequesterName: requesterName}, nil)
}

func (c *Client) GetMembership(ctx context.Context, meetingID string) ([]api.Participant, error) {
	var out []api.Participant
	err := c.do(ctx, http.MethodGet, meetingPath(meetingID)+"/participants", nil, &out)
	return out, err
}

func (c *Client) UpdateDevices(ctx context.Context, meetingID, name string, devices meeting.Devices) (api.Participant, error) {
	var out api.Participant
	path := meetingPath(meetingID) + "/participants/" + url.PathEscape(name) + "/devices"
	err := c.do(ctx, http.MethodPatch, path, api.UpdateDevicesRequest{MicOn: devices.MicOn, CameraOn: devices.CameraOn}, &out)
	return out, err
}

func (c *Client) AppendCaption(ctx context.Context, meetingID, speaker, text string) (meeting.CaptionEvent, error) {
	var out api.Caption
	err := c.do(ctx, http.MethodPost, meetingPath(meetingID)+"/captions", api.AppendCaptionRequest{Speaker: speaker, Text: text}, &out)
	if err != nil {
		return meeting.CaptionEvent{}, err
	}
	return out.ToDomain(), nil
}

func (c *Client) ReadCaptionsSince(ctx context.Context, meetingID string, lastSeenSeq uint64) (api.CaptionsResponse, error) {
	var out api.CaptionsResponse
	path := meetingPath(meetingID) + "/captions?since=" + strconv.FormatUint(lastSeenSeq, 10)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) SearchCaptions(ctx context.Context, meetingID, query string, limit int) ([]api.Caption, error) {
	var out api.CaptionsResponse
	params := url.Values{"q": {query}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	err := c.do(ctx, http.MethodGet, meetingPath(meetingID)+"/captions/search?"+params.Encode(), nil, &out)
	return out.Captions, err
}

// Tail streams captions after lastSeenSeq to fn until the meeting ends, ctx is
// canceled or fn returns an error. It returns the last sequence number seen.
func (c *Client) Tail(ctx context.Context, meetingID string, lastSeenSeq uint64, fn func(api.Caption) error) (uint64, error) {
	return c.tail(ctx, meetingID, "", lastSeenSeq, fn)
}

// TailAs is Tail on behalf of a member; the stream also stops when that member leaves.
func (c *Client) TailAs(ctx context.Context, meetingID, name string, lastSeenSeq uint64, fn func(api.Caption) error) (uint64, error) {
	return c.tail(ctx, meetingID, name, lastSeenSeq, fn)
}

func (c *Client) tail(ctx context.Context, meetingID, name string, lastSeenSeq uint64, fn func(api.Caption) error) (uint64, error) {
	params := url.Values{"since": {strconv.FormatUint(lastSeenSeq, 10)}}
	if name != "" {
		params.Set("name", name)
	}
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + meetingPath(meetingID) +
		"/captions/stream?" + params.Encode()
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return lastSeenSeq, decodeError(resp)
		}
		return lastSeenSeq, fmt.Errorf("unable to open caption stream: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	last := lastSeenSeq
	for {
		var msg api.StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			return last, fmt.Errorf("caption stream interrupted: %w", err)
		}
		for _, caption := range msg.Captions {
			if err := fn(caption); err != nil {
				return last, err
			}
			last = caption.Seq
		}
		if msg.Type == api.StreamEnded || msg.Type == api.StreamLeft {
			c.log.Debug("Caption stream closed", "meeting_id", meetingID, "reason", msg.Type, "last_seq", last)
			return last, nil
		}
	}
}

func meetingPath(meetingID string) string {
	return "/meetings/" + url.PathEscape(meetingID)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(b)
	}
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError turns an error document back into a *errors.MeetingError.
func decodeError(resp *http.Response) error {
	var body api.Error
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Code == "" {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return errors.FromCode(body.Code, body.MeetingID, body.Name)
}
