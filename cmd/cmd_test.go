package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionFromFlags(t *testing.T) {
	c := &cobra.Command{Use: "x"}
	c.Flags().StringArrayVar(&flagRenewal, "renewal", nil, "")
	c.Flags().StringArrayVar(&flagYear, "year", nil, "")
	c.Flags().StringArrayVar(&flagPlan, "plan", nil, "")
	c.Flags().StringArrayVar(&flagFamily, "family", nil, "")
	c.Flags().StringArrayVar(&flagAgeBand, "age-band", nil, "")

	require.NoError(t, c.ParseFlags([]string{
		"--plan", "Gold", "--plan", "Gold, Plus",
		"--year", "2024",
		"--age-band", "",
	}))

	sel := selection(c)
	assert.Nil(t, sel.RenewalTypes)
	assert.Nil(t, sel.FamilyStructures)
	// Values are taken verbatim, commas included.
	assert.Equal(t, []string{"Gold", "Gold, Plus"}, sel.PlanTypes)
	assert.Equal(t, []string{"2024"}, sel.PolicyStartYears)
	assert.NotNil(t, sel.AgeBands)
	assert.Empty(t, sel.AgeBands)
	assert.True(t, hasSelection(sel))

	assert.Equal(t, `year=2024 plan=Gold,Gold, Plus age-band=(none)`, describeFilter(c))
}

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, checkFormat("csv", "table", "csv", "json"))
	err := checkFormat("xml", "table", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, csv")
}

func TestChartCommandWritesPNG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)

	data := filepath.Join(dir, "data1.csv")
	require.NoError(t, os.WriteFile(data, []byte(strings.Join([]string{
		"ren_type,Sum of Policy start Year,Plan Type,Family Structure,Age Band,Age,Sum of Total OPD MRP,Sum of Refund_Amount,Sum of OPD Limit",
		"New,2023,Gold,Self,26-35,30,300,33,1000",
		"New,2023,Gold,Self,26-35,31,900,0,1000",
		"Renewal,2024,Silver,Self,36-45,40,2400,,2000",
	}, "\n")+"\n"), 0o600))
	out := filepath.Join(dir, "slabs.png")

	rootCmd.SetArgs([]string{"chart", "--data", data, "--no-cache", "-q", "-o", out, "--plan", "Gold"})
	require.NoError(t, rootCmd.Execute())

	png, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(png), "\x89PNG"))
	assert.Equal(t, data, cfg.General.DataFile)
	assert.False(t, cfg.General.UseCache)
}

func TestRejectsUnknownFormat(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	rootCmd.SetArgs([]string{"slabs", "--format", "xml", "-q"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}
