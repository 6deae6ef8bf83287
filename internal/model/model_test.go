package model

import (
	"reflect"
	"testing"

	"github.com/toeirei/keychain/internal/keystore"
)

func TestHostRecord_RoundTrip(t *testing.T) {
	kc := keystore.NewKeychain("web", "web.lan")
	kc.Set(keystore.DirectiveUser, "deploy")
	kc.Set(keystore.DirectiveHost, "web")
	kc.Set(keystore.UnknownDirective("CustomThing"), "x")

	rec := FromKeychain(kc)
	if rec.Name != "web" {
		t.Fatalf("expected name web, got %q", rec.Name)
	}
	if _, ok := rec.Entries["Host"]; ok {
		t.Fatalf("Host must be carried in Name, not Entries")
	}
	if rec.Entries["CustomThing"] != "x" {
		t.Fatalf("unknown directive lost: %+v", rec.Entries)
	}

	back := rec.ToKeychain()
	if !reflect.DeepEqual(back.Patterns(), kc.Patterns()) {
		t.Fatalf("patterns differ: %v", back.Patterns())
	}
	if !reflect.DeepEqual(back.Entries(), kc.Entries()) {
		t.Fatalf("entries differ: %v vs %v", back.Entries(), kc.Entries())
	}
}

func TestHostRecord_Key(t *testing.T) {
	if k := (HostRecord{Name: "n", Patterns: []string{"p"}}).Key(); k != "n" {
		t.Fatalf("expected name, got %q", k)
	}
	if k := (HostRecord{Patterns: []string{"p", "q"}}).Key(); k != "p" {
		t.Fatalf("expected first pattern, got %q", k)
	}
	if k := (HostRecord{}).Key(); k != "" {
		t.Fatalf("expected empty key, got %q", k)
	}
}

func TestFromKeychains_KeepsOrder(t *testing.T) {
	kcs := keystore.Keychains{keystore.NewKeychain("b"), keystore.NewKeychain("a")}
	recs := FromKeychains(kcs)
	if recs[0].Key() != "b" || recs[1].Key() != "a" {
		t.Fatalf("order not kept: %+v", recs)
	}
	if len(ToKeychains(recs)) != 2 {
		t.Fatalf("ToKeychains lost records")
	}
}
