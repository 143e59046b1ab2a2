package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goalbridge/internal/app/engine"
	"goalbridge/internal/domain/framework"
	"goalbridge/internal/infra/frameworkstore"
	"goalbridge/internal/shared/logging"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const keyResultJSON = `{
  "id": "kr-1",
  "title": "Reach 100 paying customers",
  "owner_id": "user-1",
  "parent_id": "obj-0",
  "timeframe_start": "2026-04-01T00:00:00Z",
  "timeframe_end": "2026-06-30T00:00:00Z",
  "timeframe_type": "quarter",
  "current_value": 50,
  "target_value": 100,
  "progress_method": "decimal",
  "objective_type": "key_result",
  "status": "active",
  "framework_attributes": {"start_value": 0}
}`

func TestLoadConfigAppliesOverrides(t *testing.T) {
	v := newViper()
	v.Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
	v.Set("database.url", "postgres://localhost/goalbridge")
	v.Set("log.level", "debug")
	v.Set("server.addr", ":9090")

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/goalbridge", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o600))
	v := newViper()
	v.Set("config", path)

	_, err := loadConfig(v)
	assert.Error(t, err)
}

func TestRunTranslateSingleObjective(t *testing.T) {
	var out, errOut bytes.Buffer
	err := runTranslate(context.Background(), engine.New(engine.Deps{}), []byte(keyResultJSON),
		translateOptions{to: "okr", from: "universal"}, &out, &errOut)
	require.NoError(t, err)

	var view framework.TranslatedObjective
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, framework.KindOKR, view.Framework)
	assert.Equal(t, "kr-1", view.OriginalID)
	assert.Equal(t, 0.5, view.Fields["score"])
}

func TestRunTranslatePreviewIncludesValidation(t *testing.T) {
	var out bytes.Buffer
	err := runTranslate(context.Background(), engine.New(engine.Deps{}), []byte(keyResultJSON),
		translateOptions{to: "okr", preview: true}, &out, &bytes.Buffer{})
	require.NoError(t, err)

	var preview map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &preview))
	assert.Contains(t, preview, "validation")
	assert.Contains(t, preview, "compatibility")
}

func TestRunTranslateBatchReportsFailures(t *testing.T) {
	batch := "[" + keyResultJSON + `, {"id": "broken", "status": "someday"}]`
	var out, errOut bytes.Buffer
	err := runTranslate(context.Background(), engine.New(engine.Deps{}), []byte(batch),
		translateOptions{to: "eos", from: "universal"}, &out, &errOut)
	require.NoError(t, err)

	var results []engine.BulkResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, 1, results[1].Index)
	assert.Contains(t, errOut.String(), "1 translated, 1 failed")
}

func TestRunTranslateErrors(t *testing.T) {
	eng := engine.New(engine.Deps{})

	err := runTranslate(context.Background(), eng, []byte("   "), translateOptions{to: "okr"}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.EqualError(t, err, "no objective given")

	err = runTranslate(context.Background(), eng, []byte(keyResultJSON), translateOptions{to: "kanban"}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.True(t, framework.IsUnsupported(err))

	err = runTranslate(context.Background(), eng, []byte(keyResultJSON), translateOptions{hybrid: true, area: "sales"}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, framework.ErrNotInitialized)
}

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runValidate(engine.New(engine.Deps{}), []byte(keyResultJSON), "okr", &out))
	assert.Contains(t, out.String(), "valid for OKR")
	assert.Contains(t, out.String(), "compatibility")

	err := runValidate(engine.New(engine.Deps{}), []byte(`{"id": "x", "objective_type": "key_result"}`), "okr", &out)
	assert.EqualError(t, err, "objective is not valid for OKR")
	assert.Contains(t, out.String(), "title")

	err = runValidate(engine.New(engine.Deps{}), []byte(`{"status": "done"}`), "okr", &bytes.Buffer{})
	assert.True(t, framework.IsMalformed(err))
}

func TestRunRecommend(t *testing.T) {
	count := func(v int64) *int64 { return &v }
	founded := time.Now().AddDate(-5, 0, 0)
	store := frameworkstore.NewMemoryStore()
	store.PutSnapshot("org-1", framework.OrganizationSnapshot{
		EmployeeCount:       count(100),
		TeamCount:           count(5),
		DepartmentCount:     count(2),
		LocationCount:       count(1),
		ObjectiveCount:      count(100),
		CompletedObjectives: count(70),
		Industry:            "Manufacturing",
		FoundedAt:           &founded,
	})
	pool, err := engine.NewPool(engine.Deps{
		Configurations: store,
		Rules:          store,
		Metrics:        store,
		Audit:          store,
		Logger:         logging.Nop(),
	}, engine.PoolConfig{}, nil)
	require.NoError(t, err)
	eng, err := pool.Get(context.Background(), "org-1", "")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runRecommend(context.Background(), eng, &out, false))
	assert.Contains(t, out.String(), "Recommended: EOS")
	assert.Contains(t, out.String(), "Rankings:")

	out.Reset()
	require.NoError(t, runRecommend(context.Background(), eng, &out, true))
	var rec engine.Recommendation
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, framework.KindEOS, rec.Recommended)
	assert.Len(t, rec.Rankings, 4)
}

func TestFrameworksCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"frameworks", "--verbose"})
	require.NoError(t, cmd.Execute())

	for _, kind := range framework.Kinds() {
		assert.Contains(t, out.String(), string(kind))
	}
	assert.Contains(t, out.String(), "Rock")
}

func TestTranslateCommandRequiresTarget(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"translate"})
	err := cmd.Execute()
	assert.EqualError(t, err, "--to is required unless --hybrid is set")
}
