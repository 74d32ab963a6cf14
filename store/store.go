// Package store talks to the downstream time-series API: it reads the most
// recently published month and ingests new observations.
package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/rbb-data/cpisync/cpi"
	"github.com/rbb-data/cpisync/errors"
	"github.com/rbb-data/cpisync/internal/httpclient"
	"github.com/rbb-data/cpisync/logger"
)

// Client is the downstream store client
type Client struct {
	http    *httpclient.Client
	baseURL string
	table   string
	logger  *zap.SugaredLogger
}

// New creates a store client for the API at baseURL writing to table.
func New(hc *httpclient.Client, baseURL, table string) *Client {
	if table == "" {
		table = cpi.Table
	}
	return &Client{
		http:    hc,
		baseURL: baseURL,
		table:   table,
		logger:  logger.ComponentLogger("store"),
	}
}

// MostRecent returns the latest (year, month) that has data for referenceID.
func (c *Client) MostRecent(ctx context.Context, referenceID string) (cpi.Cursor, error) {
	log := logger.FromContext(ctx, c.logger)
	params := url.Values{
		"table": {c.table},
		"mode":  {"most-recent-date"},
		"id":    {referenceID},
	}

	log.Infow("GET "+c.baseURL, "mode", "most-recent-date", "id", referenceID)

	resp, err := c.http.Get(ctx, c.baseURL, params)
	if err != nil {
		return cpi.Cursor{}, errors.RequestFailed("%s", err.Error())
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp.StatusCode) {
		io.Copy(io.Discard, resp.Body)
		log.Errorw("GET request failed",
			logger.FieldMethod, http.MethodGet,
			logger.FieldURL, resp.Request.URL.String(),
			logger.FieldStatus, resp.StatusCode)
		return cpi.Cursor{}, errors.WithDetailf(
			errors.RequestFailed("%d", resp.StatusCode),
			"url: %s", resp.Request.URL.String())
	}

	var raw struct {
		Year  *int `json:"year"`
		Month *int `json:"month"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return cpi.Cursor{}, errors.ParseError("most-recent-date response: %s", err.Error())
	}
	if raw.Year == nil || raw.Month == nil {
		return cpi.Cursor{}, errors.ParseError("most-recent-date response is missing year or month")
	}

	cursor := cpi.Cursor{Year: *raw.Year, Month: *raw.Month}
	if !cursor.Valid() {
		return cpi.Cursor{}, errors.ParseError("most-recent-date response names an invalid month %d-%d", cursor.Year, cursor.Month)
	}

	return cursor, nil
}

// Publish POSTs observations as one JSON array, authenticated with token.
// Any 2xx status is success; nothing is retried.
func (c *Client) Publish(ctx context.Context, observations []cpi.Observation, token string) error {
	log := logger.FromContext(ctx, c.logger)

	if observations == nil {
		observations = []cpi.Observation{}
	}
	body, err := json.Marshal(observations)
	if err != nil {
		return errors.Wrap(err, "failed to encode observations")
	}

	log.Infow("POST "+c.baseURL+" ("+strconv.Itoa(len(observations))+" items)",
		logger.FieldCount, len(observations),
		logger.FieldSize, len(body))

	resp, err := c.http.PostJSON(ctx, c.baseURL,
		url.Values{"table": {c.table}},
		body,
		http.Header{"Authorization": {"Bearer " + token}})
	if err != nil {
		return errors.RequestFailed("%s", err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if !httpclient.IsSuccess(resp.StatusCode) {
		log.Errorw("POST request failed",
			logger.FieldMethod, http.MethodPost,
			logger.FieldStatus, resp.StatusCode)
		return errors.RequestFailed("%d", resp.StatusCode)
	}

	return nil
}
