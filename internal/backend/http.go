package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"sealchat/internal/domain"
)

// ErrNotFound is returned when the store has no record at the requested path.
var ErrNotFound = domain.ErrNotFound

// Client is an HTTP client for the hosted backend.
type Client struct {
	Base string
	HTTP *http.Client
}

// New returns a Client for the given base URL.
func New(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Base: base, HTTP: httpClient}
}

// PublishPublicKey writes a directory record. The backend treats the
// (user, scope) pair as create-once.
func (c *Client) PublishPublicKey(ctx context.Context, rec domain.PublicKeyRecord) error {
	return c.post(ctx, "/directory", rec, nil)
}

// FetchPublicKey reads the directory record for (userID, scope). A missing
// record is an explicit per-participant failure, never a silent skip.
func (c *Client) FetchPublicKey(ctx context.Context, userID domain.UserID, scope domain.Scope) (domain.PublicKeyRecord, error) {
	var rec domain.PublicKeyRecord
	path := "/directory/" + url.PathEscape(scope.String()) + "/" + url.PathEscape(userID.String())
	if err := c.getJSON(ctx, path, &rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.PublicKeyRecord{}, fmt.Errorf("public key for %s: %w", userID, ErrNotFound)
		}
		return domain.PublicKeyRecord{}, err
	}
	return rec, nil
}

// CreateConversation writes a new conversation record with its key wraps.
func (c *Client) CreateConversation(ctx context.Context, conv domain.Conversation) error {
	return c.post(ctx, "/conversations", conv, nil)
}

// FetchConversation reads a conversation record.
func (c *Client) FetchConversation(ctx context.Context, id domain.ConversationID) (domain.Conversation, error) {
	var conv domain.Conversation
	if err := c.getJSON(ctx, "/conversations/"+url.PathEscape(id.String()), &conv); err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}

// UpdateKeyWraps replaces a conversation's participant list and key wraps,
// used when an existing member fans a wrap out to a newcomer.
func (c *Client) UpdateKeyWraps(ctx context.Context, id domain.ConversationID, participants []domain.UserID, wraps domain.KeyWraps) error {
	body := struct {
		Participants []domain.UserID `json:"participants"`
		KeyWraps     domain.KeyWraps `json:"keyWraps"`
	}{Participants: participants, KeyWraps: wraps}
	return c.post(ctx, "/conversations/"+url.PathEscape(id.String())+"/keywraps", body, nil)
}

// PutMessage appends a message record.
func (c *Client) PutMessage(ctx context.Context, msg domain.Message) error {
	return c.post(ctx, "/messages", msg, nil)
}

// ListMessages returns up to limit message records for a conversation in
// send order. limit <= 0 means no limit.
func (c *Client) ListMessages(ctx context.Context, id domain.ConversationID, limit int) ([]domain.Message, error) {
	path := "/conversations/" + url.PathEscape(id.String()) + "/messages"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var msgs []domain.Message
	if err := c.getJSON(ctx, path, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := statusErr(resp, path); err != nil {
		return err
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := statusErr(resp, path); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusErr(resp *http.Response, path string) error {
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("backend %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("backend %s: %s", path, resp.Status)
	}
	return nil
}

// Compile-time assertions that Client implements the store contracts.
var (
	_ domain.Directory         = (*Client)(nil)
	_ domain.ConversationStore = (*Client)(nil)
	_ domain.MessageStore      = (*Client)(nil)
)
