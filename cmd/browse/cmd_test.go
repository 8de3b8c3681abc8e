package browse

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/lepinkainen/shelfsync/internal/enrichment/book"
	"github.com/lepinkainen/shelfsync/internal/fileutil"
	"github.com/lepinkainen/shelfsync/internal/formatcache"
	"github.com/lepinkainen/shelfsync/internal/goodreads"
	"github.com/lepinkainen/shelfsync/internal/libby"
	"github.com/lepinkainen/shelfsync/internal/testutil"
)

func setupBrowseEnv(t *testing.T, rows ...string) (*testutil.TestEnv, string) {
	t.Helper()
	env := testutil.NewTestEnv(t)
	testutil.ResetConfig(t)
	testutil.SetupFormatCache(t, env)
	testutil.SetupE2EOutputDir(t, env)
	csvPath := env.WriteGoodreadsExport("goodreads_library_export.csv", rows...)
	return env, csvPath
}

func installFakeClient(t *testing.T, fake *fakeClient) {
	t.Helper()
	orig := newClient
	newClient = func(context.Context) (catalogClient, error) { return fake, nil }
	t.Cleanup(func() { newClient = orig })
}

func installFakeEnrichers(t *testing.T, sources ...book.Enricher) {
	t.Helper()
	orig := enrichSources
	enrichSources = func() []book.Enricher { return sources }
	t.Cleanup(func() { enrichSources = orig })
}

func readRecordsJSON(t *testing.T, env *testutil.TestEnv) []Record {
	t.Helper()
	var records []Record
	require.NoError(t, json.Unmarshal(env.ReadFile("browse/browse.json"), &records))
	return records
}

func TestBrowseWithParamsWritesReport(t *testing.T) {
	env, csvPath := setupBrowseEnv(t,
		testutil.GoodreadsExportRow("45047384", "Piranesi", "Susanna Clarke", "245", "fantasy", "to-read"),
		testutil.GoodreadsExportRow("19089", "Middlemarch", "George Eliot", "880", "", "to-read"),
		testutil.GoodreadsExportRow("1", "Nowhere Book", "Nobody", "100", "", "to-read"),
	)
	fake := &fakeClient{
		matches: map[string]libby.CatalogMatch{
			"Piranesi":    {ID: "lib-1", Title: "Piranesi", Creator: "Susanna Clarke", IsAvailable: true},
			"Middlemarch": {ID: "lib-2", Title: "Middlemarch", Creator: "George Eliot"},
		},
		formats: map[string][]string{
			"lib-1": {"ebook-kindle", "ebook-overdrive"},
			"lib-2": {"ebook-epub-adobe"},
		},
	}
	installFakeClient(t, fake)

	err := BrowseWithParams(Params{CSVPath: csvPath, Shelf: "to-read", Media: "ebook"})
	require.NoError(t, err)

	report := env.ReadFileString("browse/browse.html")
	assert.Contains(t, report, `"title":"Piranesi"`)
	assert.Contains(t, report, `"title":"Middlemarch"`)
	assert.NotContains(t, report, "Nowhere Book")

	// Available title sorts ahead of the waitlisted one.
	assert.Less(t,
		strings.Index(report, `"title":"Piranesi"`),
		strings.Index(report, `"title":"Middlemarch"`))

	assert.True(t, fake.lastOpts.DeepSearch, "browse should search beyond available copies")
	assert.Equal(t, libby.MediaEbook, fake.lastOpts.MediaType)

	reloaded := formatcache.Load(env.Path("format-cache.json"))
	formats, ok := reloaded.Get("lib-1")
	require.True(t, ok, "fetched formats should persist for the next run")
	assert.Equal(t, []string{"ebook-kindle", "ebook-overdrive"}, formats)
}

func TestBrowseWithParamsWritesJSON(t *testing.T) {
	env, csvPath := setupBrowseEnv(t,
		testutil.GoodreadsExportRow("45047384", "Piranesi", "Susanna Clarke", "245", "fantasy", "to-read"),
	)
	fake := &fakeClient{
		matches: map[string]libby.CatalogMatch{
			"Piranesi": {ID: "lib-1", Title: "Piranesi", Creator: "Susanna Clarke", IsAvailable: true},
		},
		formats: map[string][]string{"lib-1": {"ebook-kindle"}},
	}
	installFakeClient(t, fake)

	err := BrowseWithParams(Params{CSVPath: csvPath, Shelf: "to-read", Media: "ebook", WriteJSON: true})
	require.NoError(t, err)

	records := readRecordsJSON(t, env)
	require.Len(t, records, 1)
	assert.Equal(t, "Piranesi", records[0].Title)
	assert.Equal(t, "lib-1", records[0].LibbyID)
	assert.Equal(t, 45047384, records[0].GoodreadsID)
	assert.Equal(t, intPtr(245), records[0].Pages)
	require.NotNil(t, records[0].HasKindle)
	assert.True(t, *records[0].HasKindle)

	golden := testutil.NewGoldenHelper(t, "testdata")
	golden.AssertGoldenJSON("browse.golden.json", env.ReadFile("browse/browse.json"))
}

func TestBrowseWithParamsAvailableOnly(t *testing.T) {
	env, csvPath := setupBrowseEnv(t,
		testutil.GoodreadsExportRow("1", "Available Book", "A", "200", "", "to-read"),
		testutil.GoodreadsExportRow("2", "Waitlisted Book", "B", "300", "", "to-read"),
	)
	fake := &fakeClient{
		matches: map[string]libby.CatalogMatch{
			"Available Book":  {ID: "lib-1", Title: "Available Book", IsAvailable: true},
			"Waitlisted Book": {ID: "lib-2", Title: "Waitlisted Book"},
		},
	}
	installFakeClient(t, fake)

	err := BrowseWithParams(Params{CSVPath: csvPath, Shelf: "to-read", Media: "ebook", WriteJSON: true, AvailableOnly: true})
	require.NoError(t, err)

	records := readRecordsJSON(t, env)
	require.Len(t, records, 1)
	assert.Equal(t, "Available Book", records[0].Title)
}

func TestBrowseWithParamsWritesDatastore(t *testing.T) {
	env, csvPath := setupBrowseEnv(t,
		testutil.GoodreadsExportRow("1", "Piranesi", "Susanna Clarke", "245", "", "to-read"),
	)
	dbPath := testutil.SetupDatasetteDB(t, env)
	fake := &fakeClient{
		matches: map[string]libby.CatalogMatch{
			"Piranesi": {ID: "lib-1", Title: "Piranesi", IsAvailable: true},
		},
	}
	installFakeClient(t, fake)

	err := BrowseWithParams(Params{CSVPath: csvPath, Shelf: "to-read", Media: "ebook"})
	require.NoError(t, err)

	assert.FileExists(t, dbPath)
}

func TestBrowseWithParamsEnrichFillsPages(t *testing.T) {
	env, csvPath := setupBrowseEnv(t,
		testutil.GoodreadsExportRow("1", "Pageless Book", "A", "", "", "to-read"),
	)
	fake := &fakeClient{
		matches: map[string]libby.CatalogMatch{
			"Pageless Book": {ID: "lib-1", Title: "Pageless Book", IsAvailable: true},
		},
	}
	installFakeClient(t, fake)
	installFakeEnrichers(t, &stubEnricher{pages: 321})

	err := BrowseWithParams(Params{CSVPath: csvPath, Shelf: "to-read", Media: "ebook", WriteJSON: true, Enrich: true})
	require.NoError(t, err)

	records := readRecordsJSON(t, env)
	require.Len(t, records, 1)
	assert.Equal(t, intPtr(321), records[0].Pages)
}

func TestBrowseWithParamsEnrichedPagesFeedFilter(t *testing.T) {
	env, csvPath := setupBrowseEnv(t,
		testutil.GoodreadsExportRow("1", "Pageless Book", "A", "", "", "to-read"),
	)
	fake := &fakeClient{
		matches: map[string]libby.CatalogMatch{
			"Pageless Book": {ID: "lib-1", Title: "Pageless Book", IsAvailable: true},
		},
	}
	installFakeClient(t, fake)
	installFakeEnrichers(t, &stubEnricher{pages: 900})

	err := BrowseWithParams(Params{CSVPath: csvPath, Shelf: "to-read", Media: "ebook", WriteJSON: true, Enrich: true, MaxPages: 500})
	require.NoError(t, err)

	records := readRecordsJSON(t, env)
	assert.Empty(t, records, "enriched page count should be visible to the page filter")
	assert.Empty(t, fake.searched)
}

func TestBrowseWithParamsCovers(t *testing.T) {
	env, csvPath := setupBrowseEnv(t,
		testutil.GoodreadsExportRow("1", "Piranesi", "Susanna Clarke", "245", "", "to-read"),
	)
	fake := &fakeClient{
		matches: map[string]libby.CatalogMatch{
			"Piranesi": {ID: "lib-1", Title: "Piranesi", IsAvailable: true, CoverURL: "https://covers.example/p.jpg"},
		},
	}
	installFakeClient(t, fake)

	var gotURL string
	orig := downloadCover
	downloadCover = func(_ context.Context, opts fileutil.CoverDownloadOptions) (*fileutil.CoverDownloadResult, error) {
		gotURL = opts.URL
		return &fileutil.CoverDownloadResult{
			Downloaded:   true,
			RelativePath: "attachments/" + opts.Filename,
			Filename:     opts.Filename,
		}, nil
	}
	t.Cleanup(func() { downloadCover = orig })

	err := BrowseWithParams(Params{CSVPath: csvPath, Shelf: "to-read", Media: "ebook", WriteJSON: true, Covers: true})
	require.NoError(t, err)

	assert.Equal(t, "https://covers.example/p.jpg", gotURL)
	records := readRecordsJSON(t, env)
	require.Len(t, records, 1)
	assert.Equal(t, "attachments/Piranesi - cover.jpg", records[0].CoverPath)
}

func TestBrowseWithParamsRunLockHeld(t *testing.T) {
	_, csvPath := setupBrowseEnv(t,
		testutil.GoodreadsExportRow("1", "Piranesi", "Susanna Clarke", "245", "", "to-read"),
	)
	installFakeClient(t, &fakeClient{})

	unlock, err := formatcache.AcquireRunLock(config.CacheFile)
	require.NoError(t, err)
	defer unlock()

	err = BrowseWithParams(Params{CSVPath: csvPath, Shelf: "to-read", Media: "ebook"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in progress")
}

func TestBrowseWithParamsMissingExport(t *testing.T) {
	env, _ := setupBrowseEnv(t)

	err := BrowseWithParams(Params{CSVPath: env.Path("missing.csv"), Shelf: "to-read", Media: "ebook"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load shelf")
}

func TestBrowseWithParamsRejectsUnknownMediaType(t *testing.T) {
	err := BrowseWithParams(Params{Media: "vinyl"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown media type")
}

// stubEnricher hands back a fixed page count for every book.
type stubEnricher struct {
	pages int
}

func (s *stubEnricher) Name() string               { return "stub" }
func (s *stubEnricher) Priority() int              { return 1 }
func (s *stubEnricher) Ping(context.Context) error { return nil }

func (s *stubEnricher) Enrich(context.Context, goodreads.Book) (*book.Data, error) {
	pages := s.pages
	return &book.Data{Pages: &pages}, nil
}
