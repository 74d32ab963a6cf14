package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbb-data/cpisync/am"
	"github.com/rbb-data/cpisync/cpi"
	"github.com/rbb-data/cpisync/errors"
	"github.com/rbb-data/cpisync/genesis"
	"github.com/rbb-data/cpisync/secrets"
)

const csvHeader = "statistics_code;Zeit;2_Auspraegung_Label;3_Auspraegung_Code;3_Auspraegung_Label;" +
	"PREIS1__Verbraucherpreisindex__2015=100"

var monthNames = []string{"", "Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember"}

// csvMonths renders an export with one row per month in months.
func csvMonths(year int, months ...int) string {
	lines := []string{csvHeader}
	for _, m := range months {
		lines = append(lines, fmt.Sprintf("61111;%d;%s;CC13-0111101100;Reis;%d,%d", year, monthNames[m], 100+m, m))
	}
	return strings.Join(lines, "\n") + "\n"
}

// fakeStore serves the downstream API: a fixed cursor and a recorder for
// published bodies.
type fakeStore struct {
	mu       sync.Mutex
	cursor   string
	posts    [][]cpi.Observation
	auth     []string
	postCode int
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		w.Write([]byte(f.cursor))
	case http.MethodPost:
		var obs []cpi.Observation
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &obs)
		f.posts = append(f.posts, obs)
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		if f.postCode != 0 {
			w.WriteHeader(f.postCode)
		}
	}
}

type harness struct {
	cfg     *am.Config
	store   *fakeStore
	genesis *httptest.Server
	year    string
}

func newHarness(t *testing.T, cursor string, genesisBody string) *harness {
	t.Helper()
	h := &harness{store: &fakeStore{cursor: cursor}}

	storeSrv := httptest.NewServer(h.store)
	t.Cleanup(storeSrv.Close)

	h.genesis = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.year = r.URL.Query().Get("startyear")
		w.Write([]byte(genesisBody))
	}))
	t.Cleanup(h.genesis.Close)

	items := filepath.Join(t.TempDir(), "warenkorb_ids.txt")
	require.NoError(t, os.WriteFile(items, []byte("CC13-0111101100\n"), 0644))

	h.cfg = &am.Config{
		Store: am.StoreConfig{
			URL:         storeSrv.URL,
			Table:       cpi.Table,
			ReferenceID: "CC13-0111101100",
			TokenSecret: "API_TOKEN",
		},
		Genesis: am.GenesisConfig{
			URL:            h.genesis.URL,
			Username:       "DE1234",
			PasswordSecret: "GENESIS_PASSWORD",
		},
		Items: am.ItemsConfig{Path: items},
		Work:  am.WorkConfig{TmpDir: t.TempDir()},
	}
	return h
}

func (h *harness) pipeline(opts ...Option) *Pipeline {
	provider := secrets.Static{"API_TOKEN": "tok", "GENESIS_PASSWORD": "pw"}
	return New(h.cfg, provider, opts...)
}

func assertNoTransientFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "transient payload must not survive the run")
}

func TestRunPublishesNewMonths(t *testing.T) {
	h := newHarness(t, `{"year": 2023, "month": 5}`, csvMonths(2023, 1, 2, 3, 4, 5, 6, 7, 8))

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomePublished, report.Outcome)
	assert.Equal(t, cpi.Cursor{Year: 2023, Month: 5}, report.Cursor)
	assert.Equal(t, cpi.Cursor{Year: 2023, Month: 6}, report.Next)
	assert.Equal(t, 8, report.Parsed)
	assert.Equal(t, 3, report.Published)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "2023", h.year)

	require.Len(t, h.store.posts, 1)
	var months []int
	for _, o := range h.store.posts[0] {
		months = append(months, o.Month)
	}
	assert.Equal(t, []int{6, 7, 8}, months)
	assert.Equal(t, "Bearer tok", h.store.auth[0])

	assertNoTransientFiles(t, h.cfg.Work.TmpDir)
}

func TestRunYearRollover(t *testing.T) {
	h := newHarness(t, `{"year": 2023, "month": 12}`, csvMonths(2024, 1))

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024", h.year)
	assert.Equal(t, cpi.Cursor{Year: 2024, Month: 1}, report.Next)
	assert.Equal(t, 1, report.Published)
}

func TestRunNoNewData(t *testing.T) {
	h := newHarness(t, `{"year": 2023, "month": 5}`, csvMonths(2023, 1, 2, 3, 4, 5))

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoNewData, report.Outcome)
	assert.Equal(t, 0, report.Selected)
	assert.Empty(t, h.store.posts, "no POST without new rows")
	assertNoTransientFiles(t, h.cfg.Work.TmpDir)
}

func TestRunEmptyTable(t *testing.T) {
	h := newHarness(t, `{"year": 2023, "month": 5}`, csvHeader+"\n")

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoNewData, report.Outcome)
	assert.Empty(t, h.store.posts)
}

func TestRunRequestInvalid(t *testing.T) {
	h := newHarness(t, `{"year": 2023, "month": 5}`, `{"Status": {"Code": 104, "Content": "Invalid key"}}`)

	_, err := h.pipeline().Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeRequestInvalid, errors.CodeOf(err))
	assert.Equal(t, "Invalid key", errors.MessageOf(err))
	assert.Empty(t, h.store.posts)
	assertNoTransientFiles(t, h.cfg.Work.TmpDir)
}

func TestRunParseErrorCleansUp(t *testing.T) {
	body := csvHeader + "\n61111;2023;Brumaire;CC13-01;Reis;100,0\n"
	h := newHarness(t, `{"year": 2023, "month": 5}`, body)

	_, err := h.pipeline().Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.CodeOf(err))
	assert.Empty(t, h.store.posts)
	assertNoTransientFiles(t, h.cfg.Work.TmpDir)
}

func TestRunPublishRejected(t *testing.T) {
	h := newHarness(t, `{"year": 2023, "month": 5}`, csvMonths(2023, 6))
	h.store.postCode = http.StatusForbidden

	_, err := h.pipeline().Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeRequestFailed, errors.CodeOf(err))
	assert.Equal(t, "403", errors.MessageOf(err))
}

func TestRunCursorFailureSkipsFetch(t *testing.T) {
	h := newHarness(t, `not json`, csvMonths(2023, 6))

	_, err := h.pipeline().Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.CodeOf(err))
	assert.Empty(t, h.year, "source must not be queried without a cursor")
}

func TestRunDryRun(t *testing.T) {
	h := newHarness(t, `{"year": 2023, "month": 5}`, csvMonths(2023, 5, 6, 7))

	report, err := h.pipeline(WithDryRun(true)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeDryRun, report.Outcome)
	assert.Equal(t, 2, report.Selected)
	assert.Equal(t, 0, report.Published)
	assert.Len(t, report.Observations, 2)
	assert.Empty(t, h.store.posts)
}

func TestRunMissingSecret(t *testing.T) {
	h := newHarness(t, `{"year": 2023, "month": 5}`, csvMonths(2023, 6))

	_, err := New(h.cfg, secrets.Static{}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, secrets.ErrNotFound))
	assert.Empty(t, h.year)
}

func TestRunDistinctRunIDs(t *testing.T) {
	h := newHarness(t, `{"year": 2023, "month": 5}`, csvMonths(2023, 5))
	p := h.pipeline()

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
}

// stubSource writes a fixed payload without HTTP.
type stubSource struct {
	body string
	path string
}

func (s *stubSource) Download(_ context.Context, _ genesis.Request, dst string) error {
	s.path = dst
	return os.WriteFile(dst, []byte(s.body), 0600)
}

func TestRunWithInjectedSource(t *testing.T) {
	h := newHarness(t, `{"year": 2023, "month": 6}`, "")
	src := &stubSource{body: csvMonths(2023, 7, 8)}

	report, err := h.pipeline(WithSource(src)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Published)
	assert.Equal(t, h.cfg.Work.TmpDir, filepath.Dir(src.path))

	_, statErr := os.Stat(src.path)
	assert.True(t, os.IsNotExist(statErr))
}

// memStore is an in-process Store with a fixed cursor.
type memStore struct {
	cursor    cpi.Cursor
	published [][]cpi.Observation
	tokens    []string
}

func (m *memStore) MostRecent(_ context.Context, _ string) (cpi.Cursor, error) {
	return m.cursor, nil
}

func (m *memStore) Publish(_ context.Context, observations []cpi.Observation, token string) error {
	m.published = append(m.published, observations)
	m.tokens = append(m.tokens, token)
	return nil
}

func TestRunWithInjectedStore(t *testing.T) {
	h := newHarness(t, "", csvMonths(2023, 3, 4, 5))
	store := &memStore{cursor: cpi.Cursor{Year: 2023, Month: 3}}

	report, err := h.pipeline(WithStore(store)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, report.Outcome)
	require.Len(t, store.published, 1)
	assert.Len(t, store.published[0], 2)
	assert.Equal(t, []string{"tok"}, store.tokens)
	assert.Empty(t, h.store.posts, "HTTP store is bypassed")
	assertNoTransientFiles(t, h.cfg.Work.TmpDir)
}

func TestRunWithInjectedStoreNoNewData(t *testing.T) {
	h := newHarness(t, "", csvMonths(2023, 3, 4, 5))
	store := &memStore{cursor: cpi.Cursor{Year: 2023, Month: 5}}

	report, err := h.pipeline(WithStore(store)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoNewData, report.Outcome)
	assert.Empty(t, store.published)
	assertNoTransientFiles(t, h.cfg.Work.TmpDir)
}
