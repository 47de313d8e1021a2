package redis

import "testing"

func TestConfigOptions_URLWins(t *testing.T) {
	opts, err := Config{URL: "redis://:pw@cache:6380/2", Addr: "ignored:6379"}.options()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "pw" || opts.DB != 2 {
		t.Fatalf("unexpected options: addr=%s db=%d", opts.Addr, opts.DB)
	}
}

func TestConfigOptions_Addr(t *testing.T) {
	opts, err := Config{Addr: "localhost:6379", DB: 1}.options()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 1 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestConfigOptions_BadURL(t *testing.T) {
	if _, err := (Config{URL: "http://nope"}).options(); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
}

func TestDedupKey(t *testing.T) {
	if got := dedupKey("evt-1"); got != "webhook:dedup:evt-1" {
		t.Fatalf("unexpected key %q", got)
	}
}
