package integrationtests

import (
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/indexer"
	market "auction-marketplace/internal/marketService"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	"auction-marketplace/internal/sui"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const packageID = "0x60e0e56eff9ee19d1baf072bea43883d911d1f9648149fcbc1729ad04fba636b"

// SetupTestRouter initializes the router over repo for integration testing.
func SetupTestRouter(t *testing.T, repo repository.MarketDB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := server.SetupRouter(market.NewMarketService(repo))
	require.NoError(t, err)
	return router
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp, w
}

// LedgerNode is an in-process full node serving objects and module events over JSON-RPC
type LedgerNode struct {
	mu      sync.Mutex
	objects map[string]map[string]any   // object id -> content.fields
	events  map[string][]map[string]any // module -> events in order
	srv     *httptest.Server
}

func NewLedgerNode(t *testing.T) *LedgerNode {
	t.Helper()
	n := &LedgerNode{objects: map[string]map[string]any{}, events: map[string][]map[string]any{}}
	n.srv = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.srv.Close)
	return n
}

func (n *LedgerNode) URL() string { return n.srv.URL }

// Emit stores the object state and appends an event naming it under module
func (n *LedgerNode) Emit(module, eventName, idKey string, fields map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := fields["id"].(map[string]any)["id"].(string)
	n.objects[id] = fields
	seq := len(n.events[module])
	n.events[module] = append(n.events[module], map[string]any{
		"id":         map[string]any{"txDigest": module + "-tx", "eventSeq": strconv.Itoa(seq)},
		"packageId":  packageID,
		"type":       packageID + "::" + module + "::" + eventName,
		"parsedJson": map[string]any{idKey: id},
	})
}

// Delete removes an object so sui_getObject reports it as deleted
func (n *LedgerNode) Delete(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.objects, id)
}

func (n *LedgerNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int64             `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	var result any
	switch req.Method {
	case sui.MethodGetObject:
		var id string
		_ = json.Unmarshal(req.Params[0], &id)
		fields, ok := n.objects[id]
		if !ok {
			result = map[string]any{"error": map[string]any{"code": "deleted", "object_id": id}}
			break
		}
		result = map[string]any{"data": map[string]any{
			"objectId": id,
			"content":  map[string]any{"dataType": "moveObject", "fields": fields},
		}}
	case sui.MethodQueryEvents:
		var filter sui.EventFilter
		_ = json.Unmarshal(req.Params[0], &filter)
		var cursor *struct {
			EventSeq string `json:"eventSeq"`
		}
		_ = json.Unmarshal(req.Params[1], &cursor)
		var limit int
		_ = json.Unmarshal(req.Params[2], &limit)

		events := n.events[filter.MoveEventModule.Module]
		start := 0
		if cursor != nil {
			seq, _ := strconv.Atoi(cursor.EventSeq)
			start = seq + 1
		}
		end := min(start+limit, len(events))
		if start > end {
			start = end
		}
		page := events[start:end]

		var next any
		if len(page) > 0 {
			next = page[len(page)-1]["id"]
		}
		result = map[string]any{"data": page, "nextCursor": next, "hasNextPage": end < len(events)}
	default:
		http.Error(w, "unknown method", http.StatusNotFound)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
}

// NewTestPoller wires a poller from the node into repo
func NewTestPoller(node *LedgerNode, repo repository.MarketDB, batch int) *indexer.Poller {
	cfg := config.IndexerConfig{PollInterval: 10 * time.Millisecond, BatchSize: batch, ListingModule: "listing", BidModule: "bid"}
	client := sui.NewClient(node.URL(), sui.WithTimeout(5*time.Second))
	return indexer.NewPoller(client, indexer.NewHandler(client, repo), repo, indexer.Subscriptions(packageID, cfg), cfg)
}
