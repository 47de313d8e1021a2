package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/makerspace/membership-service/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Mongo.Database != "makerspace" {
		t.Errorf("unexpected defaults: port=%s db=%s", cfg.Port, cfg.Mongo.Database)
	}
	if cfg.Reconcile.Schedule != "@every 1m" || cfg.Reconcile.MaxAttempts != 5 {
		t.Errorf("unexpected reconcile defaults: %+v", cfg.Reconcile)
	}
	if cfg.Redis.DedupTTL != 72*time.Hour {
		t.Errorf("unexpected dedup ttl %s", cfg.Redis.DedupTTL)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoad_ProductionRequiresSquare(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"ENV":        "production",
	}))
	if err == nil {
		t.Fatal("expected error without Square credentials")
	}
}

func TestDiscordConfig_CreatorRoles(t *testing.T) {
	roles := DiscordConfig{MakerRoleID: "1", ArtistRoleID: "3"}.CreatorRoles()

	if len(roles) != 2 || roles[domain.CreatorMaker] != "1" || roles[domain.CreatorArtist] != "3" {
		t.Fatalf("unexpected roles: %v", roles)
	}
	if _, ok := roles[domain.CreatorHacker]; ok {
		t.Fatal("unconfigured category must be skipped")
	}
}
