package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"qcloud/internal/domain"
)

type scriptedCloud struct {
	mu        sync.Mutex
	responses map[string][]string
	server    *httptest.Server
}

func newScriptedCloud(t *testing.T) *scriptedCloud {
	t.Helper()
	sc := &scriptedCloud{responses: map[string][]string{}}
	sc.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc.mu.Lock()
		queue := sc.responses[r.URL.Path]
		if len(queue) == 0 {
			sc.mu.Unlock()
			w.WriteHeader(http.StatusNotFound)
			return
		}
		resp := queue[0]
		if len(queue) > 1 {
			sc.responses[r.URL.Path] = queue[1:]
		}
		sc.mu.Unlock()
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(sc.server.Close)
	return sc
}

func (sc *scriptedCloud) on(path string, responses ...string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.responses[path] = append(sc.responses[path], responses...)
}

func writeConfig(t *testing.T, dir, apiBase string) string {
	t.Helper()
	path := filepath.Join(dir, "qcloud.yaml")
	body := "apiBase: " + apiBase + "\n" +
		"apiKey: secret-key\n" +
		"pollIntervalMillis: 1\n" +
		"batchPollIntervalMillis: 1\n" +
		"taskStorePath: " + filepath.Join(dir, "tasks.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newTestApp(t *testing.T, sc *scriptedCloud, overrides Overrides) *App {
	t.Helper()
	dir := t.TempDir()
	a, err := New(context.Background(), Options{
		ConfigPath: writeConfig(t, dir, sc.server.URL),
		Overrides:  overrides,
		Logger:     zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func bellSource() string {
	return "QINIT 2\nCREG 2\nH q[0]\nCNOT q[0],q[1]\nMEASURE q[0],c[0]\nMEASURE q[1],c[1]"
}

func TestNewAppliesOverrides(t *testing.T) {
	sc := newScriptedCloud(t)
	verbose := true
	key := "override-key"
	a := newTestApp(t, sc, Overrides{APIKey: &key, Verbose: &verbose})

	cfg := a.Config()
	assert.Equal(t, "override-key", cfg.APIKey)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, sc.server.URL+domain.ComputePath, a.Session().Endpoints().Compute)
}

func TestNewRejectsBadAPIBase(t *testing.T) {
	dir := t.TempDir()
	_, err := New(context.Background(), Options{
		ConfigPath: writeConfig(t, dir, "ftp://example.com"),
		Logger:     zaptest.NewLogger(t),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
}

func TestSubmitQueryWaitPersistsStatus(t *testing.T) {
	sc := newScriptedCloud(t)
	sc.on(domain.ComputePath, `{"success":true,"obj":{"taskId":"T1"}}`)
	sc.on(domain.InquirePath,
		`{"success":true,"obj":{"qcodeTaskNewVo":{"taskResultList":[{"taskState":"3"}]}}}`,
		`{"success":true,"obj":{"qcodeTaskNewVo":{"taskResultList":[{"taskState":"4","taskResult":"{\"Key\":[\"00\",\"11\"],\"Value\":[0.5,0.5]}"}]}}}`,
	)
	a := newTestApp(t, sc, Overrides{})
	ctx := context.Background()

	task := domain.Task{Backend: domain.BackendFullAmplitude, Kind: domain.TaskMeasure, Shots: 100}
	prog, err := ParseProgram(bellSource(), ProgramSizes{})
	require.NoError(t, err)

	submitted, err := a.Submit(ctx, task, []domain.Program{prog}, false)
	require.NoError(t, err)
	require.Equal(t, "T1", submitted.ID)
	assert.Equal(t, domain.TaskStatusWaiting, submitted.Status())

	queried, err := a.Query(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusQueuing, queried.Status())

	store, err := a.Store()
	require.NoError(t, err)
	entry, err := store.Get("T1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusQueuing, entry.Status)

	waited, err := a.Wait(ctx, "T1")
	require.NoError(t, err)
	require.Equal(t, domain.TaskStatusFinished, waited.Status())
	hist, err := waited.Task.Result.Histogram()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"00": 0.5, "11": 0.5}, hist)

	entry, err = store.Get("T1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFinished, entry.Status)
}

func TestSubmitRejectedIsNotStored(t *testing.T) {
	sc := newScriptedCloud(t)
	sc.on(domain.ComputePath, `{"success":false,"enMessage":"quota exceeded"}`)
	a := newTestApp(t, sc, Overrides{})

	task := domain.Task{Backend: domain.BackendFullAmplitude, Kind: domain.TaskMeasure, Shots: 10}
	prog, err := ParseProgram(bellSource(), ProgramSizes{})
	require.NoError(t, err)

	report, err := a.Submit(context.Background(), task, []domain.Program{prog}, false)
	require.NoError(t, err)
	assert.Empty(t, report.ID)
	assert.Equal(t, domain.TaskStatusFailed, report.Status())
	assert.True(t, domain.IsCode(report.Err(), domain.CodeRemoteRejection))

	store, err := a.Store()
	require.NoError(t, err)
	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubmitBatchStoresUnderBatchID(t *testing.T) {
	sc := newScriptedCloud(t)
	sc.on(domain.BatchComputePath, `{"success":true,"obj":{"stepTaskResultList":[{"step":"0","taskId":"A"},{"step":"1","taskId":"B"}]}}`)
	sc.on(domain.BatchInquirePath,
		`{"success":true,"obj":[{"step":"0","taskState":"4","taskResult":"{\"ResultType\":1,\"Key\":[\"0\"],\"Value\":[1]}"},{"step":"1","taskState":"4","taskResult":"{\"ResultType\":1,\"Key\":[\"1\"],\"Value\":[1]}"}]}`,
	)
	a := newTestApp(t, sc, Overrides{})
	ctx := context.Background()

	prog, err := ParseProgram(bellSource(), ProgramSizes{})
	require.NoError(t, err)
	task := domain.Task{Backend: domain.BackendFullAmplitude, Kind: domain.TaskMeasure, Shots: 10}

	report, err := a.Submit(ctx, task, []domain.Program{prog, prog}, false)
	require.NoError(t, err)
	require.Equal(t, "batch:A", report.ID)
	require.NotNil(t, report.Batch)

	waited, err := a.Wait(ctx, report.ID)
	require.NoError(t, err)
	require.NotNil(t, waited.Batch)
	assert.Equal(t, domain.TaskStatusFinished, waited.Status())
	assert.Equal(t, 2, waited.Batch.Result.Len())
}

func TestQueryUnknownID(t *testing.T) {
	sc := newScriptedCloud(t)
	a := newTestApp(t, sc, Overrides{})

	_, err := a.Query(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestCloseWritesMetricsTextfile(t *testing.T) {
	sc := newScriptedCloud(t)
	out := filepath.Join(t.TempDir(), "qcloud.prom")
	a, err := New(context.Background(), Options{
		ConfigPath: writeConfig(t, t.TempDir(), sc.server.URL),
		Overrides:  Overrides{MetricsTextfile: out},
		Logger:     zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	a.metrics.ObserveBatchSteps(domain.BackendFullAmplitude, 3)

	require.NoError(t, a.Close())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "qcloud_batch_steps")
}

func TestParseProgram(t *testing.T) {
	prog, err := ParseProgram(bellSource(), ProgramSizes{})
	require.NoError(t, err)
	assert.Equal(t, 2, prog.Qubits)
	assert.Equal(t, 2, prog.Cbits)

	prog, err = ParseProgram(bellSource(), ProgramSizes{Qubits: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, prog.Qubits)
	assert.Equal(t, 2, prog.Cbits)

	prog, err = ParseProgram("H q[0]", ProgramSizes{Qubits: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, prog.Qubits)

	_, err = ParseProgram("H q[0]", ProgramSizes{})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = ParseProgram("  ", ProgramSizes{Qubits: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestLoadProgramsReadsFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bell.ir")
	require.NoError(t, os.WriteFile(path, []byte(bellSource()), 0o600))

	progs, err := LoadPrograms([]string{path}, ProgramSizes{})
	require.NoError(t, err)
	require.Len(t, progs, 1)
	assert.Equal(t, 2, progs[0].QubitCount())

	_, err = LoadPrograms([]string{filepath.Join(dir, "missing.ir")}, ProgramSizes{})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
}
