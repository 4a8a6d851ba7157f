package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/recera/rulesheet/internal/cache"
	"github.com/recera/rulesheet/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefinitions = `
sets:
  root:
    size: [sz, ".sz{width:8px}"]
    align: [l, ".l{text-align:left}", r, ".r{text-align:right}"]
  icon:
    size: [sz, ".sz{width:8px}"]
`

// project writes a definitions file and a config pointing at it
func project(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	defsPath := filepath.Join(dir, "styles.yaml")
	require.NoError(t, os.WriteFile(defsPath, []byte(testDefinitions), 0644))

	configPath = filepath.Join(dir, "rulesheet.yaml")
	cfg := fmt.Sprintf(`
log:
  level: error
styles:
  definitions: [%q]
build:
  output: %q
  classMap: %q
  cacheDir: %q
`, defsPath, filepath.Join(dir, "dist", "styles.css"), filepath.Join(dir, "dist", "classes.json"), filepath.Join(dir, "cache"))
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0644))
	return dir, configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuild(t *testing.T) {
	dir, configPath := project(t)

	_, err := execute(t, "build", "--config", configPath)
	require.NoError(t, err)

	css, err := os.ReadFile(filepath.Join(dir, "dist", "styles.css"))
	require.NoError(t, err)
	assert.Equal(t, ".sz{width:8px}\n.l{text-align:left}\n", string(css))

	data, err := os.ReadFile(filepath.Join(dir, "dist", "classes.json"))
	require.NoError(t, err)
	var classes map[string]string
	require.NoError(t, json.Unmarshal(data, &classes))
	assert.Equal(t, map[string]string{"root": "sz l", "icon": "sz"}, classes)

	_, err = os.Stat(filepath.Join(dir, "cache", "index.json"))
	require.NoError(t, err)

	// Second build is served from the cache with identical output
	require.NoError(t, os.Remove(filepath.Join(dir, "dist", "styles.css")))
	_, err = execute(t, "build", "--config", configPath)
	require.NoError(t, err)
	again, err := os.ReadFile(filepath.Join(dir, "dist", "styles.css"))
	require.NoError(t, err)
	assert.Equal(t, css, again)
}

func TestBuild_RTL(t *testing.T) {
	dir, configPath := project(t)
	out := filepath.Join(dir, "rtl.css")

	_, err := execute(t, "build", "--config", configPath, "--rtl", "--no-cache", "-o", out)
	require.NoError(t, err)

	css, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, ".sz{width:8px}\n.r{text-align:right}\n", string(css))
}

func TestBuild_MalformedDefinitions(t *testing.T) {
	dir, configPath := project(t)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sets:\n  x:\n    a: [a, \".a{color:red\"]\n"), 0644))

	_, err := execute(t, "build", "--config", configPath, "--no-cache", "-f", bad)
	assert.ErrorContains(t, err, "malformed rule")
}

func cachedKeys(t *testing.T, dir string) []string {
	t.Helper()
	store, err := cache.New(cache.Config{Dir: filepath.Join(dir, "cache")})
	require.NoError(t, err)
	defer store.Close()
	return store.Keys()
}

func TestCacheCommand(t *testing.T) {
	dir, configPath := project(t)

	_, err := execute(t, "build", "--config", configPath)
	require.NoError(t, err)
	keys := cachedKeys(t, dir)
	require.Len(t, keys, 1)

	out, err := execute(t, "cache", "list", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, keys[0])

	out, err = execute(t, "cache", "prune", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "pruned 0 artifacts")

	_, err = execute(t, "cache", "rm", "--config", configPath, keys[0])
	require.NoError(t, err)
	assert.Empty(t, cachedKeys(t, dir))

	_, err = execute(t, "build", "--config", configPath, "--rtl")
	require.NoError(t, err)
	assert.Len(t, cachedKeys(t, dir), 1)

	_, err = execute(t, "cache", "clear", "--config", configPath)
	require.NoError(t, err)
	assert.Empty(t, cachedKeys(t, dir))
}

func TestInvalidateArtifacts(t *testing.T) {
	dir, configPath := project(t)

	_, err := execute(t, "build", "--config", configPath)
	require.NoError(t, err)
	require.Len(t, cachedKeys(t, dir), 1)

	a := &app{configPath: configPath}
	require.NoError(t, a.setup(newRootCommand()))
	store, err := a.artifactCache()
	require.NoError(t, err)

	invalidateArtifacts(a, store, []string{filepath.Join(dir, "unrelated.yaml")})
	assert.Len(t, store.Keys(), 1)

	invalidateArtifacts(a, store, a.cfg.Styles.Definitions)
	assert.Empty(t, store.Keys())
	require.NoError(t, store.Close())
}

func TestTree(t *testing.T) {
	_, configPath := project(t)

	out, err := execute(t, "tree", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "rulesheet")
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "[new]")
	assert.Contains(t, out, "[cached]")
	assert.Contains(t, out, "size: .sz  .sz{width:8px}")
	assert.Contains(t, out, "align: .l")

	out, err = execute(t, "tree", "--config", configPath, "--rtl")
	require.NoError(t, err)
	assert.Contains(t, out, "align: .r  .r{text-align:right}")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "rulesheet "+version))
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rulesheet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 70000\n"), 0644))

	_, err := execute(t, "tree", "--config", path)
	assert.ErrorContains(t, err, "Port")
}

func TestServe(t *testing.T) {
	_, configPath := project(t)
	a := &app{configPath: configPath}
	require.NoError(t, a.setup(newRootCommand()))

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, a, serveOptions{
			files: a.cfg.Styles.Definitions,
			host:  "127.0.0.1",
			port:  0,
		}, ready)
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/styles/default.css")
	require.NoError(t, err)
	body := new(bytes.Buffer)
	body.ReadFrom(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ".sz{width:8px}\n.l{text-align:left}\n", body.String())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "styles.yaml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("sets: {}\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var batches [][]string
	go watchFiles(ctx, []string{path}, logger.Nop(), func(changed []string) {
		mu.Lock()
		batches = append(batches, changed)
		mu.Unlock()
	})

	// Give the watcher time to register before writing
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("sets: {} # %d\n", i)), 0644))
	}

	abs, _ := filepath.Abs(path)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{abs}, batches[0])
}
