package keystore

import "testing"

func TestKeychain_UpdateLastWriteWins(t *testing.T) {
	kc := NewKeychain("a")
	kc.Update(Entry{DirectivePort, "22"})
	kc.Update(Entry{DirectivePort, "2222"})
	if v, _ := kc.Get(DirectivePort); v != "2222" {
		t.Fatalf("expected last value, got %q", v)
	}
	if kc.Len() != 1 || kc.IsEmpty() {
		t.Fatalf("expected exactly one entry")
	}
}

func TestKeychain_ExtendIfNotContained(t *testing.T) {
	kc := NewKeychain("a")
	kc.Set(DirectiveUser, "alice")
	other := NewKeychain()
	other.Set(DirectiveUser, "root")
	other.Set(DirectivePort, "22")

	kc.ExtendIfNotContained(other)
	if v, _ := kc.Get(DirectiveUser); v != "alice" {
		t.Fatalf("explicit value overwritten: %q", v)
	}
	if v, _ := kc.Get(DirectivePort); v != "22" {
		t.Fatalf("missing value not copied: %q", v)
	}
}

func TestKeychain_CloneIsDeep(t *testing.T) {
	kc := NewKeychain("a", "b")
	kc.Set(DirectiveUser, "alice")
	c := kc.Clone()
	c.Set(DirectiveUser, "bob")
	c.patterns[0] = "z"
	if v, _ := kc.Get(DirectiveUser); v != "alice" {
		t.Fatalf("clone shares entries")
	}
	if kc.Patterns()[0] != "a" {
		t.Fatalf("clone shares patterns")
	}
}

func TestKeychain_EntriesSorted(t *testing.T) {
	kc := NewKeychain("a")
	kc.Set(DirectiveUser, "u")
	kc.Set(DirectiveHostName, "h")
	kc.Set(DirectivePort, "1")
	got := kc.Entries()
	want := []string{"HostName", "Port", "User"}
	for i, e := range got {
		if e.Directive.String() != want[i] {
			t.Fatalf("entry %d = %s, want %s", i, e.Directive, want[i])
		}
	}
}

func TestMatchingPatternRules(t *testing.T) {
	kc := NewKeychain("plain.example.com", "*.example.com", "web?", "!bad.example.com")
	rules := kc.MatchingPatternRules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}

	cases := []struct {
		rule    int
		host    string
		negated bool
		match   bool
	}{
		{0, "a.example.com", false, true},
		{0, "aexample.com", false, false},
		{0, "example.com", false, false},
		{1, "web1", false, true},
		{1, "web12", false, false},
		{2, "bad.example.com", true, true},
		{2, "good.example.com", true, false},
	}
	for _, tc := range cases {
		r := rules[tc.rule]
		if r.Negated != tc.negated {
			t.Fatalf("rule %q negated = %v", r.Source, r.Negated)
		}
		if got := r.Regexp.MatchString(tc.host); got != tc.match {
			t.Fatalf("rule %q match %q = %v, want %v", r.Source, tc.host, got, tc.match)
		}
		if r.Applies(tc.host) != (tc.match != tc.negated) {
			t.Fatalf("rule %q Applies(%q) inconsistent", r.Source, tc.host)
		}
	}
}

func TestMatchingPatternRules_NoneForPlainPatterns(t *testing.T) {
	if rules := NewKeychain("a", "b.c").MatchingPatternRules(); len(rules) != 0 {
		t.Fatalf("expected no rules, got %d", len(rules))
	}
	if rules := NewKeychain().MatchingPatternRules(); len(rules) != 0 {
		t.Fatalf("expected no rules for empty patterns")
	}
}

func TestMatchingPatternRules_QuotesRegexpMeta(t *testing.T) {
	r := NewKeychain("host+(1)*").MatchingPatternRules()[0]
	if !r.Regexp.MatchString("host+(1)-x") {
		t.Fatalf("literal meta characters must match themselves")
	}
	if r.Regexp.MatchString("hostt(1)") {
		t.Fatalf("'+' must not act as a quantifier")
	}
}
