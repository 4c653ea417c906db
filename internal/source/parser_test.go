package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const header = "ren_type,Sum of Policy start Year,Plan Type,Family Structure,Age Band,Age,Sum of Total OPD MRP,Sum of Refund_Amount,Sum of OPD Limit"

// writeCSV creates a temp CSV file with the given lines and returns its path.
func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestOpen_CSV(t *testing.T) {
	path := writeCSV(t,
		header,
		"New,2023,Gold,Self,26-35,30,500,100,1000",
		"Renewal,2024,Silver,Family,36-45,40,2000,,2000",
	)

	tbl, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, path, tbl.Location)
	assert.Equal(t, 2, tbl.TotalRows)
	assert.Zero(t, tbl.ParseErrors)
	require.Len(t, tbl.Rows, 2)

	first := tbl.Rows[0]
	assert.Equal(t, "New", first.RenewalType)
	assert.Equal(t, 2023, first.PolicyStartYear)
	assert.Equal(t, "Gold", first.PlanType)
	assert.Equal(t, "Self", first.FamilyStructure)
	assert.Equal(t, "26-35", first.AgeBand)
	assert.Equal(t, 30, first.Age)
	require.NotNil(t, first.OPDMRPAmount)
	assert.Equal(t, 500.0, *first.OPDMRPAmount)

	assert.Nil(t, tbl.Rows[1].RefundAmount, "blank refund should be missing")
	assert.False(t, tbl.ModTime.IsZero())
	assert.Positive(t, tbl.Size)
}

func TestOpen_MissingColumns(t *testing.T) {
	path := writeCSV(t,
		"ren_type,Plan Type,Family Structure,Age Band,Age,Sum of Total OPD MRP,Sum of Refund_Amount",
		"New,Gold,Self,26-35,30,500,100",
	)

	_, err := Open(context.Background(), path, Options{})
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se), "want *SchemaError, got %T", err)
	assert.Equal(t, []string{ColPolicyStartYear, ColOPDLimit}, se.Missing)
}

func TestOpen_HeaderMatchIsExact(t *testing.T) {
	path := writeCSV(t,
		strings.Replace(header, "Plan Type", "plan type", 1),
		"New,2023,Gold,Self,26-35,30,500,100,1000",
	)

	_, err := Open(context.Background(), path, Options{})
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{ColPlanType}, se.Missing)
}

func TestOpen_BOMAndExtraColumns(t *testing.T) {
	path := writeCSV(t,
		"\ufeff"+header+",Notes",
		"New,2023,Gold,Self,26-35,30,500,100,1000,vip",
	)

	tbl, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "New", tbl.Rows[0].RenewalType)
}

func TestOpen_MalformedRowsCounted(t *testing.T) {
	path := writeCSV(t,
		header,
		"New,2023,Gold,Self,26-35,30,500,100,1000",
		"New,2023,Gold,Self,26-35,thirty,500,100,1000",
		"New,2023,Gold,Self,26-35,30.5,500,100,1000",
		"New,,Gold,Self,26-35,30,500,100,1000",
		"New,2023,Gold,Self,26-35,30,abc,100,1000",
		",,,,,,,,",
	)

	tbl, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.TotalRows, "blank rows are not counted")
	assert.Equal(t, 4, tbl.ParseErrors)
	assert.Len(t, tbl.Rows, 1)
	require.Len(t, tbl.Errors, 4)
	assert.Equal(t, 3, tbl.Errors[0].Line)
}

func TestOpen_Semicolon(t *testing.T) {
	path := writeCSV(t,
		strings.ReplaceAll(header, ",", ";"),
		"New;2023;Gold;Self;26-35;30;500;100;1000",
	)

	tbl, err := Open(context.Background(), path, Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpen_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Sheet1"
	for i, h := range RequiredColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	row := []interface{}{"Renewal", 2022, "Platinum", "Family", "46-55", 50, 1500.5, nil, 3000}
	for i, v := range row {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)

	rec := tbl.Rows[0]
	assert.Equal(t, "Renewal", rec.RenewalType)
	assert.Equal(t, 2022, rec.PolicyStartYear)
	assert.Equal(t, 50, rec.Age)
	require.NotNil(t, rec.OPDMRPAmount)
	assert.InDelta(t, 1500.5, *rec.OPDMRPAmount, 1e-9)
	assert.Nil(t, rec.RefundAmount)
	require.NotNil(t, rec.OPDLimit)
	assert.Equal(t, 3000.0, *rec.OPDLimit)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		missing bool
		wantErr bool
	}{
		{in: "", missing: true},
		{in: "NaN", missing: true},
		{in: "N/A", missing: true},
		{in: "null", missing: true},
		{in: "  ", missing: true},
		{in: "0", want: 0},
		{in: "12.5", want: 12.5},
		{in: " 7 ", want: 7},
		{in: "1,250.75", want: 1250.75},
		{in: "-40", want: -40},
		{in: "twelve", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseAmount(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseAmount(%q)", tt.in)
		if tt.missing {
			assert.Nil(t, got, "ParseAmount(%q)", tt.in)
			continue
		}
		require.NotNil(t, got, "ParseAmount(%q)", tt.in)
		assert.Equal(t, tt.want, *got, "ParseAmount(%q)", tt.in)
	}
}

func TestParseWhole(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "30", want: 30},
		{in: "30.0", want: 30},
		{in: "2,024", want: 2024},
		{in: "30.5", wantErr: true},
		{in: "", wantErr: true},
		{in: "NA", wantErr: true},
		{in: "x", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseWhole(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseWhole(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseWhole(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseWhole(%q)", tt.in)
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in     string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://claims/exports/data1.csv", "claims", "exports/data1.csv", true},
		{"s3://claims/data.xlsx", "claims", "data.xlsx", true},
		{"s3://claims", "", "", false},
		{"s3:///data.csv", "", "", false},
		{"s3://claims/", "", "", false},
		{"data1.csv", "", "", false},
		{"/tmp/s3://x/y", "", "", false},
	}

	for _, tt := range tests {
		bucket, key, ok := ParseS3URL(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseS3URL(%q) ok", tt.in)
		assert.Equal(t, tt.bucket, bucket, "ParseS3URL(%q) bucket", tt.in)
		assert.Equal(t, tt.key, key, "ParseS3URL(%q) key", tt.in)
		assert.Equal(t, tt.ok, IsRemote(tt.in))
	}
}
