package engine

import (
	"context"
	"strings"
	"testing"
)

func TestVerifyUpToDate(t *testing.T) {
	p := newTestProject(t)
	e := &VerifyEngine{Fetcher: p.fetcher}

	result, err := e.Verify(context.Background(), p.cfg, p.lf, nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if strings.Join(result.UpToDate, ",") != "core,chat,economy" {
		t.Errorf("up to date = %v", result.UpToDate)
	}
	if len(result.Changed) != 0 || len(result.Errors) != 0 {
		t.Errorf("changed = %v, errors = %v", result.Changed, result.Errors)
	}
}

func TestVerifyDetectsChange(t *testing.T) {
	p := newTestProject(t)
	p.fetcher.set("mem://chat", "chat 2")
	e := &VerifyEngine{Fetcher: p.fetcher}

	before := p.lf.Entries["chat"]
	result, err := e.Verify(context.Background(), p.cfg, p.lf, nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(result.Changed) != 1 || result.Changed[0].Artifact != "chat" {
		t.Fatalf("changed = %+v", result.Changed)
	}
	if result.Changed[0].Before == result.Changed[0].After {
		t.Errorf("delta should differ: %+v", result.Changed[0])
	}
	if p.lf.Entries["chat"] != before {
		t.Error("verify must not modify the lockfile")
	}
}

func TestVerifySelectedAndUnknown(t *testing.T) {
	p := newTestProject(t)
	delete(p.lf.Entries, "economy")
	e := &VerifyEngine{Fetcher: p.fetcher}

	result, err := e.Verify(context.Background(), p.cfg, p.lf, []string{"economy", "nope"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].Artifact != "nope" {
		t.Errorf("errors = %v", result.Errors)
	}
	if len(result.Changed) != 1 || result.Changed[0].Before != "(not locked)" {
		t.Errorf("changed = %+v", result.Changed)
	}
	if p.fetcher.total() != 1 {
		t.Errorf("only the selected artifact should be fetched, got %d", p.fetcher.total())
	}
}

func TestVerifyFetchErrorIsPerArtifact(t *testing.T) {
	p := newTestProject(t)
	eco := p.cfg.Plugins["economy"]
	eco.URL = "mem://gone"
	p.cfg.Plugins["economy"] = eco

	result, err := (&VerifyEngine{Fetcher: p.fetcher}).Verify(context.Background(), p.cfg, p.lf, nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].Artifact != "economy" {
		t.Errorf("errors = %v", result.Errors)
	}
	if len(result.UpToDate) != 2 {
		t.Errorf("up to date = %v", result.UpToDate)
	}
}
