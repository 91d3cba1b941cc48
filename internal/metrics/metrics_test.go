package metrics

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lrem/reorg/internal/adapters/filesystem"
	"github.com/lrem/reorg/internal/adapters/sqlite"
	"github.com/lrem/reorg/internal/fingerprint"
	"github.com/lrem/reorg/internal/scanner"
)

func TestCollectorExposesAllSeries(t *testing.T) {
	catalog, err := sqlite.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer catalog.Close()

	fp, err := fingerprint.New("md5")
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	engine, err := scanner.New(scanner.Config{Roots: []string{t.TempDir()}}, catalog, filesystem.New(), fp, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	collector := NewCollector(engine)
	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		t.Fatalf("register: %v", err)
	}

	if got := testutil.CollectAndCount(collector); got != 9 {
		t.Errorf("collector exposes %d series, want 9", got)
	}
	problems, err := testutil.CollectAndLint(collector)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric %s: %s", p.Metric, p.Text)
	}
}
