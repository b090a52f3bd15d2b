package cron

import (
	"context"
	"reflect"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	warm := &stubJob{name: CatalogWarmJobName}
	syncJob := &stubJob{name: CatalogSyncJobName}
	registry := NewRegistry(warm, nil, syncJob)

	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != warm || jobs[1] != syncJob {
		t.Fatalf("unexpected jobs %v", jobs)
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
	if got := registry.Names(); !reflect.DeepEqual(got, []string{CatalogWarmJobName, CatalogSyncJobName}) {
		t.Fatalf("unexpected names %v", got)
	}
}

func TestRegistryReplacesJobWithSameName(t *testing.T) {
	first := &stubJob{name: CatalogSyncJobName}
	second := &stubJob{name: CatalogSyncJobName}
	registry := NewRegistry(first, &stubJob{name: CatalogWarmJobName})
	registry.Register(second)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != second {
		t.Fatalf("expected replacement to keep the original slot")
	}
}
