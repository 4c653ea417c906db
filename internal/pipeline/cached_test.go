package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/opdusage/internal/source"
	"github.com/theirongolddev/opdusage/internal/store"
)

const csvHeader = "ren_type,Sum of Policy start Year,Plan Type,Family Structure,Age Band,Age,Sum of Total OPD MRP,Sum of Refund_Amount,Sum of OPD Limit"

func writeData(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
}

func TestLoad_FromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data1.csv")
	writeData(t, path,
		csvHeader,
		"New,2023,Gold,Self,26-35,30,300,33,1000",
		"New,2023,Gold,Self,26-35,31,NaN,,0",
		"New,2023,Gold,Self,26-35,bad,1,1,1",
	)

	lr, err := Load(context.Background(), path, source.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, lr.TotalRows)
	assert.Equal(t, 1, lr.ParseErrors)
	assert.Equal(t, 1, lr.DroppedZeroLimit)
	require.Len(t, lr.Records, 1)
	assert.Equal(t, 33.3, lr.Records[0].OPDUsagePercent)
	assert.Equal(t, "3 rows, 1 kept, 1 parse errors, 1 zero-limit", lr.String())
}

// A blank limit is a missing entitlement: the row is dropped with the zero
// limits and its usage does not reach the totals.
func TestLoad_BlankLimitDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data1.csv")
	writeData(t, path,
		csvHeader,
		"New,2023,Gold,Self,26-35,30,500,0,1000",
		"New,2023,Gold,Self,36-45,45,200,50,",
	)

	lr, err := Load(context.Background(), path, source.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, lr.TotalRows)
	assert.Equal(t, 1, lr.DroppedZeroLimit)
	require.Len(t, lr.Records, 1)
	assert.Equal(t, 30, lr.Records[0].Age)

	_, sum := Aggregate(lr.Records)
	assert.Equal(t, 500.0, sum.OPDExhausted)
	assert.Equal(t, 1000.0, sum.OPDAssigned)
	assert.Equal(t, 1, sum.TotalCustomers)
}

func writeWorkbook(t *testing.T, path string, sheets map[string][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	header := make([]interface{}, 0, len(source.RequiredColumns))
	for _, h := range source.RequiredColumns {
		header = append(header, h)
	}
	for name, row := range sheets {
		if name != "Sheet1" {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		require.NoError(t, f.SetSheetRow(name, "A1", &header))
		require.NoError(t, f.SetSheetRow(name, "A2", &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func TestLoadWithCache_SheetChangeMisses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")
	writeWorkbook(t, path, map[string][]interface{}{
		"Sheet1": {"New", 2023, "Gold", "Self", "26-35", 30, 500, 0, 1000},
		"Other":  {"Renewal", 2024, "Silver", "Family", "36-45", 40, 900, 100, 2000},
	})

	cache, err := store.Open(filepath.Join(dir, "records.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	first, err := LoadWithCache(ctx, path, source.Options{Sheet: "Sheet1"}, cache)
	require.NoError(t, err)
	require.Len(t, first.Records, 1)
	assert.Equal(t, 30, first.Records[0].Age)

	other, err := LoadWithCache(ctx, path, source.Options{Sheet: "Other"}, cache)
	require.NoError(t, err)
	assert.False(t, other.CacheHit, "a different sheet must not be served from cache")
	require.Len(t, other.Records, 1)
	assert.Equal(t, 40, other.Records[0].Age)

	direct, err := Load(ctx, path, source.Options{Sheet: "Other"})
	require.NoError(t, err)
	assert.Equal(t, direct.Records, other.Records)

	again, err := LoadWithCache(ctx, path, source.Options{Sheet: "Other"}, cache)
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Equal(t, direct.Records, again.Records)
}

func TestLoadWithCache_DelimiterChangeMisses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data1.csv")
	writeData(t, path, csvHeader, "New,2023,Gold,Self,26-35,30,500,0,1000")

	cache, err := store.Open(filepath.Join(dir, "records.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	_, err = LoadWithCache(ctx, path, source.Options{}, cache)
	require.NoError(t, err)

	hit, err := LoadWithCache(ctx, path, source.Options{Delimiter: ','}, cache)
	require.NoError(t, err)
	assert.True(t, hit.CacheHit, "zero delimiter means comma")

	_, err = LoadWithCache(ctx, path, source.Options{Delimiter: ';'}, cache)
	var se *source.SchemaError
	require.ErrorAs(t, err, &se, "semicolon split leaves one column")
}

func TestLoadWithCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data1.csv")
	writeData(t, path,
		csvHeader,
		"New,2023,Gold,Self,26-35,30,500,0,1000",
		"Renewal,2024,Silver,Family,36-45,40,2400,,2000",
	)

	cache, err := store.Open(filepath.Join(dir, "cache", "records.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()

	first, err := LoadWithCache(ctx, path, source.Options{}, cache)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	require.Len(t, first.Records, 2)

	second, err := LoadWithCache(ctx, path, source.Options{}, cache)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.TotalRows, second.TotalRows)

	// Rewriting the file invalidates the entry.
	writeData(t, path,
		csvHeader,
		"New,2023,Gold,Self,26-35,30,500,0,1000",
	)
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	third, err := LoadWithCache(ctx, path, source.Options{}, cache)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.Len(t, third.Records, 1)
}

func TestLoadWithCache_SchemaErrorNotCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	writeData(t, path, "Age,Plan Type", "30,Gold")

	cache, err := store.Open(filepath.Join(dir, "records.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	_, err = LoadWithCache(context.Background(), path, source.Options{}, cache)
	var se *source.SchemaError
	require.ErrorAs(t, err, &se)

	n, err := cache.RecordCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadWithCache_StaleEntryEvicted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data1.csv")
	writeData(t, path, csvHeader, "New,2023,Gold,Self,26-35,30,500,0,1000")

	cache, err := store.Open(filepath.Join(dir, "records.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	_, err = LoadWithCache(ctx, path, source.Options{}, cache)
	require.NoError(t, err)

	writeData(t, path, "Age,Plan Type", "30,Gold")
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	_, err = LoadWithCache(ctx, path, source.Options{}, cache)
	require.Error(t, err)

	key, err := filepath.Abs(path)
	require.NoError(t, err)
	_, ok, err := cache.LookupSource(key)
	require.NoError(t, err)
	assert.False(t, ok)
	n, err := cache.RecordCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenSession_UsesCacheOnSecondLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "xdg"))
	path := filepath.Join(dir, "data1.csv")
	writeData(t, path,
		csvHeader,
		"New,2023,Gold,Self,26-35,30,500,0,1000",
		"Renewal,2024,Silver,Family,36-45,40,2400,,0",
	)

	ctx := context.Background()
	first, err := OpenSession(ctx, path, source.Options{}, true)
	require.NoError(t, err)
	assert.False(t, first.Stats.FromCache)
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, first.Stats.DroppedZeroLimit)

	second, err := OpenSession(ctx, path, source.Options{}, true)
	require.NoError(t, err)
	assert.True(t, second.Stats.FromCache)
	assert.Equal(t, first.Records(), second.Records())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestOpenSession_NoCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data1.csv")
	writeData(t, path, csvHeader, "New,2023,Gold,Self,26-35,30,500,0,1000")

	s, err := OpenSession(context.Background(), path, source.Options{}, false)
	require.NoError(t, err)
	assert.False(t, s.Stats.FromCache)
	assert.Equal(t, []int{2023}, s.Dimensions().PolicyStartYears)
}
