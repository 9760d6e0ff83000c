package loyalty

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/stampcard/internal/domain/model"
)

// AuthTokenHeader carries the session token on authenticated calls.
const AuthTokenHeader = "X-Redcat-Authtoken"

// ErrMalformedResponse indicates the loyalty API answered 2xx with an unusable payload.
var ErrMalformedResponse = errors.New("malformed loyalty response")

// StatusError represents a non-2xx answer. Status code and body are kept for diagnostics.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// HTTPClient implements repository.LoyaltyGateway over the loyalty REST API.
type HTTPClient struct {
	baseURL    *url.URL
	authType   string
	httpClient *http.Client
	logger     *slog.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"psw"`
	AuthType string `json:"auth_type"`
}

type loginResponse struct {
	Token *string `json:"token"`
}

type cardRecord struct {
	RecordID      model.RecordID `json:"recid,omitempty"`
	MemberID      *int64         `json:"member_recid"`
	Stamps        int            `json:"no_of_stamps"`
	CardsFilled   int            `json:"no_of_cards_filled"`
	RewardsEarned int            `json:"no_of_rewards_earned"`
}

// cardRef holds the listing fields the lookup needs. Counters of other rows
// are not decoded.
type cardRef struct {
	RecordID model.RecordID `json:"recid"`
	MemberID *int64         `json:"member_recid"`
}

type cardUpdate struct {
	MemberID      int64 `json:"member_recid"`
	Stamps        int   `json:"no_of_stamps"`
	CardsFilled   int   `json:"no_of_cards_filled"`
	RewardsEarned int   `json:"no_of_rewards_earned"`
}

type couponRequest struct {
	Members         []int64 `json:"Members"`
	HandleErrors    bool    `json:"HandleErrors"`
	ReturnAlias     bool    `json:"ReturnAlias"`
	CreateDuplicate bool    `json:"create_duplicate"`
}

type envelope[T any] struct {
	Data *T `json:"data"`
}

// NewHTTPClient creates loyalty API client. timeout bounds every round trip.
func NewHTTPClient(baseURL, authType string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse loyalty api url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("loyalty api url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:  parsed,
		authType: authType,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Login exchanges credentials for a session token.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	payload := loginRequest{Username: username, Password: password, AuthType: c.authType}
	var resp loginResponse
	if err := c.do(ctx, "login", http.MethodPost, "", &payload, &resp, "login"); err != nil {
		return "", err
	}
	if resp.Token == nil || *resp.Token == "" {
		return "", fmt.Errorf("login: %w: token field missing", ErrMalformedResponse)
	}
	return *resp.Token, nil
}

// ListCards returns every stamp card visible to the token. Rows without a
// usable recid or member_recid are skipped.
func (c *HTTPClient) ListCards(ctx context.Context, token string) ([]model.CardRef, error) {
	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, "list cards", http.MethodGet, token, nil, &resp, "stampcard"); err != nil {
		return nil, err
	}
	refs := make([]model.CardRef, 0, len(resp.Data))
	for i, row := range resp.Data {
		var rec cardRef
		if err := json.Unmarshal(row, &rec); err != nil {
			c.logger.Warn("skipping undecodable stamp card row",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		if rec.MemberID == nil || rec.RecordID == "" {
			continue
		}
		refs = append(refs, model.CardRef{RecordID: rec.RecordID, MemberID: *rec.MemberID})
	}
	return refs, nil
}

// GetCard reads one stamp card by record id.
func (c *HTTPClient) GetCard(ctx context.Context, token string, id model.RecordID) (*model.StampCard, error) {
	var resp envelope[cardRecord]
	if err := c.do(ctx, "get card", http.MethodGet, token, nil, &resp, "stampcard", string(id)); err != nil {
		return nil, err
	}
	return toStampCard("get card", id, resp.Data)
}

// UpdateCard replaces the counters of one stamp card.
func (c *HTTPClient) UpdateCard(ctx context.Context, token string, id model.RecordID, card model.StampCard) (*model.StampCard, error) {
	payload := cardUpdate{
		MemberID:      card.MemberID,
		Stamps:        card.Stamps,
		CardsFilled:   card.CardsFilled,
		RewardsEarned: card.RewardsEarned,
	}
	var resp envelope[cardRecord]
	if err := c.do(ctx, "update card", http.MethodPut, token, &payload, &resp, "stampcard", string(id)); err != nil {
		return nil, err
	}
	return toStampCard("update card", id, resp.Data)
}

// AssignCoupon grants a coupon to the listed members.
func (c *HTTPClient) AssignCoupon(ctx context.Context, token string, assignment model.CouponAssignment) (*model.CouponResult, error) {
	payload := couponRequest{
		Members:         assignment.MemberIDs,
		HandleErrors:    true,
		ReturnAlias:     true,
		CreateDuplicate: assignment.AllowDuplicates,
	}
	var raw json.RawMessage
	couponID := strconv.FormatInt(assignment.CouponID, 10)
	if err := c.do(ctx, "assign coupon", http.MethodPost, token, &payload, &raw, "coupons", couponID, "create"); err != nil {
		return nil, err
	}
	return &model.CouponResult{CouponID: assignment.CouponID, Payload: raw}, nil
}

func toStampCard(op string, id model.RecordID, rec *cardRecord) (*model.StampCard, error) {
	if rec == nil || rec.MemberID == nil {
		return nil, fmt.Errorf("%s: %w: card data missing", op, ErrMalformedResponse)
	}
	card := &model.StampCard{
		RecordID:      rec.RecordID,
		MemberID:      *rec.MemberID,
		Stamps:        rec.Stamps,
		CardsFilled:   rec.CardsFilled,
		RewardsEarned: rec.RewardsEarned,
	}
	if card.RecordID == "" {
		card.RecordID = id
	}
	return card, nil
}

// endpoint appends segments to the base path, escaping each one so a record
// id can never address a different resource.
func (c *HTTPClient) endpoint(segments ...string) (string, error) {
	u := *c.baseURL
	raw := strings.TrimRight(u.EscapedPath(), "/")
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("invalid path segment %q", seg)
		}
		raw += "/" + url.PathEscape(seg)
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("build request path: %w", err)
	}
	u.Path = decoded
	u.RawPath = raw
	return u.String(), nil
}

func (c *HTTPClient) do(ctx context.Context, op, method, token string, payload, out any, segments ...string) error {
	endpoint, err := c.endpoint(segments...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(AuthTokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("loyalty request failed",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(data)),
		)
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	return nil
}
