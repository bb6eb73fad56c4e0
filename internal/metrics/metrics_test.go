package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCalculation(OutcomeOK, time.Millisecond, 2)
	m.ObserveStorage("memory", "load", time.Millisecond, nil)
	m.ObserveSync(errors.New("boom"))
	m.ObserveCacheLookup(true)
}

func TestObserveCalculation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCalculation(OutcomeOK, time.Millisecond, 2)
	m.ObserveCalculation(OutcomeOK, time.Millisecond, 0)
	m.ObserveCalculation(OutcomeNoStays, time.Millisecond, 0)

	if got := testutil.ToFloat64(m.calculations.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("ok calculations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.calculations.WithLabelValues(OutcomeNoStays)); got != 1 {
		t.Errorf("no_stays calculations = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.settlements); got != 1 {
		t.Errorf("settlement series = %d, want 1", got)
	}
}

func TestObserveStorageAndSync(t *testing.T) {
	m := New(nil)

	m.ObserveStorage("sqlite", "save", time.Millisecond, nil)
	m.ObserveStorage("sqlite", "save", time.Millisecond, errors.New("disk full"))
	m.ObserveSync(nil)
	m.ObserveCacheLookup(false)

	if got := testutil.ToFloat64(m.storageOps.WithLabelValues("sqlite", "save", OutcomeStorageError)); got != 1 {
		t.Errorf("storage errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.syncs.WithLabelValues(OutcomeStorageSuccess)); got != 1 {
		t.Errorf("syncs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
}

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveCalculation(OutcomeOK, time.Millisecond, 1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "housesplit_calculations_total" {
			found = true
		}
	}
	if !found {
		t.Error("housesplit_calculations_total not registered")
	}
}
