package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeNode answers sui_getObject for one listing and serves a single listing event
func fakeNode(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64             `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var result any
		switch req.Method {
		case "sui_getObject":
			result = map[string]any{"data": map[string]any{
				"objectId": "0x1",
				"content": map[string]any{
					"dataType": "moveObject",
					"fields": map[string]any{
						"id":     map[string]any{"id": "0x1"},
						"name":   "guitar",
						"minbid": "100",
						"maxbid": "0",
						"expiry": "1761955200000",
					},
				},
			}}
		case "suix_queryEvents":
			var filter struct {
				MoveEventModule struct {
					Package string `json:"package"`
					Module  string `json:"module"`
				} `json:"MoveEventModule"`
			}
			require.NoError(t, json.Unmarshal(req.Params[0], &filter))
			page := map[string]any{"data": []any{}, "nextCursor": nil, "hasNextPage": false}
			if filter.MoveEventModule.Module == "listing" && string(req.Params[1]) == "null" {
				page["data"] = []any{map[string]any{
					"id":         map[string]any{"txDigest": "d1", "eventSeq": "0"},
					"type":       filter.MoveEventModule.Package + "::listing::ListingCreated",
					"parsedJson": map[string]any{"listing_id": "0x1"},
				}}
				page["nextCursor"] = map[string]any{"txDigest": "d1", "eventSeq": "0"}
			}
			result = page
		default:
			t.Errorf("unexpected method %s", req.Method)
		}

		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result}))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// run executes the root command against a config file that does not exist
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AUCTION_DATABASE__URL", "")
	t.Setenv("AUCTION_REDIS__ADDR", "")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSyncCommand(t *testing.T) {
	node := fakeNode(t)
	t.Setenv("AUCTION_SUI__RPC_URL", node.URL)

	_, err := run(t, "sync", "listing", "0x1")
	require.ErrorContains(t, err, "database.url is required")

	_, err = run(t, "sync", "auction", "0x1")
	require.ErrorContains(t, err, "unknown object kind")

	_, err = run(t, "sync", "listing")
	require.Error(t, err)
}

func TestIndexCommand_Once(t *testing.T) {
	node := fakeNode(t)
	t.Setenv("AUCTION_SUI__RPC_URL", node.URL)

	out, err := run(t, "index", "--once")
	require.NoError(t, err)
	require.Contains(t, out, "received=1 upserted=1 skipped=0 failed=0 malformed=0")
}

func TestMigrateCommand_RequiresDatabase(t *testing.T) {
	for _, sub := range []string{"up", "down", "version"} {
		t.Run(sub, func(t *testing.T) {
			_, err := run(t, "migrate", sub)
			require.ErrorContains(t, err, "database.url is required")
		})
	}
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o600))

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "migrate", "up"})
	err := root.ExecuteContext(context.Background())
	require.ErrorContains(t, err, "server.port")
}
