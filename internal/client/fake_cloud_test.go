package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"qcloud/internal/domain"
)

// fakeCloud scripts the four endpoints. Each queue replays its responses in
// order and then keeps answering with the last one.
type fakeCloud struct {
	t        *testing.T
	mu       sync.Mutex
	queues   map[string][]string
	requests map[string][]map[string]any
	server   *httptest.Server
}

func newFakeCloud(t *testing.T) *fakeCloud {
	t.Helper()
	fc := &fakeCloud{
		t:        t,
		queues:   map[string][]string{},
		requests: map[string][]map[string]any{},
	}
	fc.server = httptest.NewServer(http.HandlerFunc(fc.serve))
	t.Cleanup(fc.server.Close)
	return fc
}

func (fc *fakeCloud) serve(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var body map[string]any
	_ = json.Unmarshal(data, &body)

	fc.mu.Lock()
	fc.requests[r.URL.Path] = append(fc.requests[r.URL.Path], body)
	queue := fc.queues[r.URL.Path]
	var resp string
	switch len(queue) {
	case 0:
		fc.mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
		return
	case 1:
		resp = queue[0]
	default:
		resp = queue[0]
		fc.queues[r.URL.Path] = queue[1:]
	}
	fc.mu.Unlock()
	_, _ = w.Write([]byte(resp))
}

func (fc *fakeCloud) on(path string, responses ...string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.queues[path] = append(fc.queues[path], responses...)
}

func (fc *fakeCloud) calls(path string) int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.requests[path])
}

func (fc *fakeCloud) request(path string, i int) map[string]any {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	require.Greater(fc.t, len(fc.requests[path]), i)
	return fc.requests[path][i]
}

func (fc *fakeCloud) session(t *testing.T) *Session {
	t.Helper()
	session, err := NewSession(fc.server.URL, "test-key")
	require.NoError(t, err)
	return session
}

func (fc *fakeCloud) client(t *testing.T, opts ...func(*ClientOptions)) *Client {
	t.Helper()
	options := ClientOptions{
		PollInterval:      time.Millisecond,
		BatchPollInterval: time.Millisecond,
	}
	for _, opt := range opts {
		opt(&options)
	}
	c, err := NewClient(fc.session(t), options)
	require.NoError(t, err)
	return c
}

func submitOK(taskID string) string {
	return `{"success":true,"obj":{"taskId":"` + taskID + `"}}`
}

func inquireResp(t *testing.T, state, machine string, extra map[string]any) string {
	t.Helper()
	entry := map[string]any{"taskState": state}
	if machine != "" {
		entry["rQMachineType"] = machine
	}
	for k, v := range extra {
		entry[k] = v
	}
	data, err := json.Marshal(map[string]any{
		"success": true,
		"obj": map[string]any{
			"qcodeTaskNewVo": map[string]any{"taskResultList": []any{entry}},
		},
	})
	require.NoError(t, err)
	return string(data)
}

type stepEntry struct {
	step   string
	state  string
	result string
}

func batchInquireResp(t *testing.T, entries ...stepEntry) string {
	t.Helper()
	obj := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		item := map[string]any{"step": e.step, "taskState": e.state}
		if e.result != "" {
			item["taskResult"] = e.result
		}
		obj = append(obj, item)
	}
	data, err := json.Marshal(map[string]any{"success": true, "obj": obj})
	require.NoError(t, err)
	return string(data)
}

func bell() domain.Program {
	return domain.IRProgram{
		Source: "QINIT 2\nCREG 2\nH q[0]\nCNOT q[0],q[1]\nMEASURE q[0],c[0]\nMEASURE q[1],c[1]",
		Qubits: 2,
		Cbits:  2,
	}
}
