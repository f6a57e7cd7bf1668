package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treasury/internal/budget"
	"github.com/roach88/treasury/internal/runtime"
	"github.com/roach88/treasury/internal/store"
	"github.com/roach88/treasury/internal/types"
)

func testGenesis() runtime.Genesis {
	bob := types.AccountID("bob")
	return runtime.Genesis{
		StartBlock: 1,
		Params:     runtime.DefaultParams(),
		Accounts: []runtime.GenesisAccount{
			{ID: "alice", Balance: 1000},
			{ID: "bob", Balance: 1000},
		},
		Members: []runtime.GenesisMember{
			{ID: 1, Controller: "alice"},
			{ID: 2, Controller: "bob"},
		},
		Budgets: []runtime.GenesisBudget{
			{Type: budget.CouncilBudget, Balance: 500},
			{
				Type:       "working-group",
				Balance:    100,
				Recipients: []runtime.GenesisRecipient{{UserID: 2, RewardPerBlock: 5, Account: &bob}},
			},
		},
	}
}

type testNode struct {
	rt     *runtime.Runtime
	server *Server
}

// newTestNode starts a runtime loop recording into a temp store.
func newTestNode(t *testing.T) *testNode {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "node.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	rt, err := runtime.New(context.Background(), testGenesis(),
		runtime.WithRecorder(st),
		runtime.WithSessionGenerator(runtime.NewFixedGenerator("api-test")),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = rt.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return &testNode{rt: rt, server: New(rt, st)}
}

func (n *testNode) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	n.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type receipt struct {
	ID     string `json:"id"`
	Block  uint64 `json:"block"`
	Index  int    `json:"index"`
	Result string `json:"result"`
	Events []struct {
		Module string `json:"module"`
		Name   string `json:"name"`
	} `json:"events"`
}

type apiError struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func createBounty() map[string]any {
	return map[string]any{
		"origin": map[string]any{"kind": "signed", "account": "alice"},
		"method": "bounty.create_bounty",
		"args": map[string]any{
			"params": map[string]any{
				"creator":         "member:1",
				"cherry":          10,
				"entrant_stake":   0,
				"min_amount":      100,
				"max_amount":      500,
				"creator_funding": 0,
				"work_period":     100,
				"judging_period":  10,
			},
			"metadata": "fix the bridge",
		},
	}
}

func TestSubmitCall(t *testing.T) {
	n := newTestNode(t)

	w := n.do(t, http.MethodPost, "/v1/calls", createBounty())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rc := decode[receipt](t, w)
	assert.Equal(t, "ok", rc.Result)
	assert.Equal(t, uint64(1), rc.Block)
	assert.Equal(t, 0, rc.Index)
	assert.NotEmpty(t, rc.ID)

	names := make([]string, 0, len(rc.Events))
	for _, ev := range rc.Events {
		names = append(names, ev.Module+"."+ev.Name)
	}
	assert.Contains(t, names, "bounty.BountyCreated")
}

func TestSubmitCallDispatchFailure(t *testing.T) {
	n := newTestNode(t)

	w := n.do(t, http.MethodPost, "/v1/calls", map[string]any{
		"origin": map[string]any{"kind": "signed", "account": "alice"},
		"method": "ledger.transfer",
		"args":   map[string]any{"to": "bob", "amount": 5000},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rc := decode[receipt](t, w)
	assert.Equal(t, "ledger.InsufficientBalance", rc.Result)
	assert.Empty(t, rc.Events)
}

func TestSubmitCallRejected(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{
			name:   "malformed body",
			body:   `{"method": `,
			status: http.StatusBadRequest,
			code:   "E_DECODE",
		},
		{
			name:   "unknown method",
			body:   map[string]any{"origin": map[string]any{"kind": "root"}, "method": "ledger.mint"},
			status: http.StatusNotFound,
			code:   "E_UNKNOWN_CALL",
		},
		{
			name: "bad arguments",
			body: map[string]any{
				"origin": map[string]any{"kind": "signed", "account": "alice"},
				"method": "ledger.transfer",
				"args":   map[string]any{"to": "bob", "amount": "lots"},
			},
			status: http.StatusBadRequest,
			code:   "E_DECODE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newTestNode(t)
			w := n.do(t, http.MethodPost, "/v1/calls", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[apiError](t, w).Error.Code)
		})
	}
}

func TestSubmitAfterStop(t *testing.T) {
	n := newTestNode(t)
	n.rt.Stop()

	w := n.do(t, http.MethodPost, "/v1/calls", createBounty())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "E_STOPPED", decode[apiError](t, w).Error.Code)
}

func TestHead(t *testing.T) {
	n := newTestNode(t)

	head := decode[runtime.Head](t, n.do(t, http.MethodGet, "/v1/blocks/head", nil))
	assert.Equal(t, types.BlockNumber(1), head.Block)
	assert.Equal(t, "api-test", head.Session)
	assert.Nil(t, head.LastFinalized)

	_, err := n.rt.Seal(context.Background())
	require.NoError(t, err)

	head = decode[runtime.Head](t, n.do(t, http.MethodGet, "/v1/blocks/head", nil))
	assert.Equal(t, types.BlockNumber(2), head.Block)
	require.NotNil(t, head.LastFinalized)
	assert.Equal(t, uint64(1), head.LastFinalized.Number)
	assert.Equal(t, n.rt.GenesisHash(), head.GenesisHash)
}

func TestBounty(t *testing.T) {
	n := newTestNode(t)
	require.Equal(t, http.StatusOK, n.do(t, http.MethodPost, "/v1/calls", createBounty()).Code)

	w := n.do(t, http.MethodGet, "/v1/bounties/1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	v := decode[struct {
		Stage  string `json:"stage"`
		Escrow uint64 `json:"escrow"`
	}](t, w)
	assert.Equal(t, "Funding", v.Stage)
	assert.Equal(t, uint64(10), v.Escrow)

	assert.Equal(t, http.StatusNotFound, n.do(t, http.MethodGet, "/v1/bounties/9", nil).Code)
	w = n.do(t, http.MethodGet, "/v1/bounties/first", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "E_BAD_PARAM", decode[apiError](t, w).Error.Code)
}

func TestBudgetAndRecipient(t *testing.T) {
	n := newTestNode(t)

	w := n.do(t, http.MethodGet, "/v1/budgets/council", nil)
	require.Equal(t, http.StatusOK, w.Code)
	council := decode[struct {
		Type    string `json:"type"`
		Balance uint64 `json:"balance"`
	}](t, w)
	assert.Equal(t, "council", council.Type)
	assert.Equal(t, uint64(500), council.Balance)

	_, err := n.rt.AdvanceTo(context.Background(), 4)
	require.NoError(t, err)

	w = n.do(t, http.MethodGet, "/v1/budgets/working-group/recipients/2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rc := decode[struct {
		UserID        uint64 `json:"user_id"`
		CurrentReward uint64 `json:"current_reward"`
	}](t, w)
	assert.Equal(t, uint64(2), rc.UserID)
	assert.Equal(t, uint64(15), rc.CurrentReward)

	assert.Equal(t, http.StatusNotFound, n.do(t, http.MethodGet, "/v1/budgets/marketing", nil).Code)
	assert.Equal(t, http.StatusNotFound, n.do(t, http.MethodGet, "/v1/budgets/working-group/recipients/7", nil).Code)
	assert.Equal(t, http.StatusBadRequest, n.do(t, http.MethodGet, "/v1/budgets/working-group/recipients/-1", nil).Code)
}

func TestAccount(t *testing.T) {
	n := newTestNode(t)

	acct := decode[struct {
		Free     uint64 `json:"free"`
		Reserved uint64 `json:"reserved"`
	}](t, n.do(t, http.MethodGet, "/v1/accounts/alice", nil))
	assert.Equal(t, uint64(1000), acct.Free)
	assert.Zero(t, acct.Reserved)

	unknown := n.do(t, http.MethodGet, "/v1/accounts/nobody", nil)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.JSONEq(t, `{"free":0,"reserved":0}`, unknown.Body.String())
}

func TestEvents(t *testing.T) {
	n := newTestNode(t)
	require.Equal(t, http.StatusOK, n.do(t, http.MethodPost, "/v1/calls", createBounty()).Code)
	_, err := n.rt.Seal(context.Background())
	require.NoError(t, err)

	type events struct {
		Events []struct {
			Block  uint64 `json:"block"`
			Module string `json:"module"`
			Name   string `json:"name"`
		} `json:"events"`
	}

	all := decode[events](t, n.do(t, http.MethodGet, "/v1/events?block=1", nil))
	require.NotEmpty(t, all.Events)
	for _, ev := range all.Events {
		assert.Equal(t, uint64(1), ev.Block)
	}

	created := decode[events](t, n.do(t, http.MethodGet, "/v1/events?module=bounty&name=BountyCreated", nil))
	require.Len(t, created.Events, 1)

	none := decode[events](t, n.do(t, http.MethodGet, "/v1/events?block=2", nil))
	assert.Empty(t, none.Events)

	assert.Equal(t, http.StatusBadRequest, n.do(t, http.MethodGet, "/v1/events?block=last", nil).Code)
}

func TestEventsWithoutStore(t *testing.T) {
	rt, err := runtime.New(context.Background(), testGenesis())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	New(rt, nil).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
