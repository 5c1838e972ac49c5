package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsense/shelfsense-go/pkg/core"
)

var storeFiles = map[string]string{
	"movements.csv":                  "Customer_ID,Timestamp,Zone\nC1,2025-07-03 09:00:00,A1\nC2,2025-07-03 09:05:00,A1\nC3,2025-07-03 09:10:00,A1\nC4,2025-07-03 09:15:00,B2\n",
	"store_layout.csv":               "Zone,Product_ID,Product_Name\nA1,P001,Tea\nB2,P002,Sugar\n",
	"online_product_performance.csv": "Product_ID,Product_Name,Online_Views\nP001,Tea,5000\nP002,Sugar,100\n",
	"pos_sales.csv":                  "Zone,Sales\nA1,300\nB2,50\n",
}

// writeStore writes the data files and a YAML config pointing at them.
func writeStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	for name, content := range storeFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0o644))
	}

	config := "data:\n" +
		"  dir: " + dataDir + "\n" +
		"  insights_dir: " + filepath.Join(dir, "insights") + "\n" +
		"memory:\n" +
		"  provider: json\n" +
		"  config:\n" +
		"    path: " + filepath.Join(dir, "decision_log.json") + "\n" +
		"logging:\n" +
		"  level: disabled\n"
	path := filepath.Join(dir, "shelfsense.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_RunThenLookups(t *testing.T) {
	config := writeStore(t)

	out, err := execute(t, "run", "--config", config, "-o", "json")
	require.NoError(t, err)

	var res struct {
		PlanPath string `json:"plan_path"`
		Plan     struct {
			Assignments []struct {
				ProductName string `json:"product_name"`
				ToZone      string `json:"destination_zone"`
			} `json:"assignments"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Plan.Assignments, 2)
	assert.Equal(t, "Tea", res.Plan.Assignments[0].ProductName)
	assert.Equal(t, "B2", res.Plan.Assignments[0].ToZone)
	assert.FileExists(t, res.PlanPath)

	out, err = execute(t, "summary", "--config", config, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Move 'Tea' (currently in A1) to B2")

	out, err = execute(t, "explain", "tea", "--config", config, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Tea will move from A1 to B2 (relocation score 70.00).")

	out, err = execute(t, "zone", "Z9", "--config", config, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "No data found for zone 'Z9'")

	out, err = execute(t, "outcomes", "--config", config, "-o", "json")
	require.NoError(t, err)
	var outcomes struct {
		Entries []json.RawMessage `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	assert.Len(t, outcomes.Entries, 2)
}

func TestCLI_Tools(t *testing.T) {
	config := writeStore(t)

	out, err := execute(t, "tools", "list", "--config", config, "-o", "json")
	require.NoError(t, err)
	var defs []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	assert.Len(t, defs, 11)

	out, err = execute(t, "tools", "call", "get_everything", "--config", config, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, `Unknown tool "get_everything"`)

	out, err = execute(t, "tools", "route", "which", "zones", "are", "cold", "--config", config, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "get_hot_cold_zones")
}

func TestCLI_UnsupportedOutput(t *testing.T) {
	_, err := execute(t, "zones", "-o", "xml")
	assert.Error(t, err)
}

func TestJoinWarnings(t *testing.T) {
	first := make([]core.Warning, 1, 4)
	first[0] = core.Warning{Kind: core.WarnMissingData, Message: "layout"}
	second := []core.Warning{{Kind: core.WarnSyntheticSales, Message: "sales"}}

	joined := joinWarnings(first, second)
	require.Len(t, joined, 2)
	assert.Equal(t, "sales", joined[1].Message)

	// first has spare capacity; joining must not write into it.
	assert.Equal(t, core.Warning{}, first[:2][1])
	joined[0].Message = "changed"
	assert.Equal(t, "layout", first[0].Message)
}
