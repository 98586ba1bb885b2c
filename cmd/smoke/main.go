// Command smoke registers an operator, signs in and runs one CRUD round
// trip against a live API. Run it against a fresh database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"partydesk.org/internal/console/apiclient"
	"partydesk.org/internal/party"
)

func main() {
	base := os.Getenv("PARTYDESK_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := apiclient.New(base)
	email := fmt.Sprintf("smoke-%d@partydesk.org", rand.Int())

	if _, err := client.Register(ctx, "Smoke Test", email, "smoke-pass-1"); err != nil {
		log.Fatalf("register: %v", err)
	}
	token, _, err := client.Login(ctx, email, "smoke-pass-1")
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	authed := client.WithToken(token)
	me, err := authed.Me(ctx)
	if err != nil {
		log.Fatalf("whoami: %v", err)
	}
	if me.Email != email {
		log.Fatalf("whoami returned %q, want %q", me.Email, email)
	}

	countries := apiclient.NewResource[party.Record](client, "country").WithToken(token)
	created, err := countries.Create(ctx, map[string]any{
		"isocode": "ZZ",
		"name_en": "Smoke Land",
	})
	if err != nil {
		log.Fatalf("create country: %v", err)
	}
	id := created.ID()

	updated, err := countries.Update(ctx, id, map[string]any{"name_en": "Smoke Land 2"})
	if err != nil {
		log.Fatalf("update country: %v", err)
	}
	if updated.String("isocode") != "ZZ" {
		log.Fatalf("partial update dropped isocode: %v", updated)
	}
	if err := countries.Delete(ctx, id); err != nil {
		log.Fatalf("delete country: %v", err)
	}
	if _, err := countries.Get(ctx, id); !errors.Is(err, apiclient.ErrNotFound) {
		log.Fatalf("deleted country still readable: %v", err)
	}

	fmt.Printf("✅ partydesk smoke test passed: user=%d country=%d\n", me.ID, id)
}
