// Package genesis is the client for the Destatis GENESIS data-delivery
// service. It downloads the consumer-price-index table as a flat-file CSV
// export and parses that export into canonical observations.
package genesis

import (
	"context"
	"io"
	"net/url"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/rbb-data/cpisync/am"
	"github.com/rbb-data/cpisync/catalog"
	"github.com/rbb-data/cpisync/cpi"
	"github.com/rbb-data/cpisync/errors"
	"github.com/rbb-data/cpisync/internal/httpclient"
	"github.com/rbb-data/cpisync/logger"
)

// Request scopes one table download.
type Request struct {
	Username string
	Password string
	Year     int
	Items    []cpi.ItemID
}

// Client downloads tables from the GENESIS tablefile endpoint.
type Client struct {
	http   *httpclient.Client
	cfg    am.GenesisConfig
	logger *zap.SugaredLogger
}

// New creates a GENESIS client. Empty query settings in cfg fall back to the
// values the consumer-price-index table needs.
func New(hc *httpclient.Client, cfg am.GenesisConfig) *Client {
	if cfg.Dataset == "" {
		cfg.Dataset = am.DefaultDataset
	}
	if cfg.Language == "" {
		cfg.Language = "de"
	}
	if cfg.Area == "" {
		cfg.Area = "all"
	}
	if cfg.ClassifyingVariable == "" {
		cfg.ClassifyingVariable = "CC13Z1"
	}
	if cfg.Format == "" {
		cfg.Format = "ffcsv"
	}
	return &Client{
		http:   hc,
		cfg:    cfg,
		logger: logger.ComponentLogger("genesis"),
	}
}

// Params returns the query parameters for req.
func (c *Client) Params(req Request) url.Values {
	year := strconv.Itoa(req.Year)
	return url.Values{
		"username":             {req.Username},
		"password":             {req.Password},
		"language":             {c.cfg.Language},
		"name":                 {c.cfg.Dataset},
		"area":                 {c.cfg.Area},
		"startyear":            {year},
		"endyear":              {year},
		"classifyingvariable1": {c.cfg.ClassifyingVariable},
		"classifyingkey1":      {catalog.Join(req.Items)},
		"format":               {c.cfg.Format},
	}
}

// Download fetches the table scoped by req and writes the raw export to
// dstPath. Failures are *errors.RunError values: request_failed for
// transport errors and non-2xx statuses, request_invalid when the service
// answers with an error envelope. Nothing is written on failure.
func (c *Client) Download(ctx context.Context, req Request, dstPath string) error {
	log := logger.FromContext(ctx, c.logger)
	params := c.Params(req)

	target, err := c.http.BuildURL(c.cfg.URL, params)
	if err != nil {
		return errors.RequestFailed("%s", err.Error())
	}
	log.Infow("GET "+httpclient.Redact(target),
		logger.FieldItems, len(req.Items),
		"year", req.Year)

	resp, err := c.http.Get(ctx, c.cfg.URL, params)
	if err != nil {
		// url.Error embeds the full URL, credentials included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return errors.RequestFailed("%s", uerr.Err.Error())
		}
		return errors.RequestFailed("%s", err.Error())
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp.StatusCode) {
		io.Copy(io.Discard, resp.Body)
		log.Errorw("GET request failed",
			logger.FieldURL, httpclient.Redact(target),
			logger.FieldStatus, resp.StatusCode)
		return errors.RequestFailed("%d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.RequestFailed("reading response body: %s", err.Error())
	}

	if err := ClassifyBody(body); err != nil {
		return err
	}

	if err := os.WriteFile(dstPath, body, 0600); err != nil {
		return errors.Wrapf(err, "failed to write payload to %s", dstPath)
	}

	log.Debugw("payload written", logger.FieldFile, dstPath, logger.FieldSize, len(body))
	return nil
}
