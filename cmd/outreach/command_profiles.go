package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const cliTimeout = 15 * time.Second

type ProfilesCommand struct {
	wiring commandWiring
}

func NewProfilesCommand(wiring commandWiring) *ProfilesCommand {
	return &ProfilesCommand{wiring: wiring}
}

func (c *ProfilesCommand) Run(args []string) error {
	fs := pflag.NewFlagSet("profiles", pflag.ContinueOnError)
	fs.SetOutput(c.wiring.stderr)
	asJSON := fs.Bool("json", false, "print profiles and briefcases as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	action := "list"
	if len(rest) > 0 {
		action, rest = rest[0], rest[1:]
	}

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()
	s, err := openSession(ctx, c.wiring, false)
	if err != nil {
		return err
	}
	defer s.Close()

	switch action {
	case "list", "ls":
		if err := s.store.Load(ctx); err != nil {
			return err
		}
		snap := s.store.Snapshot()
		if *asJSON {
			enc := json.NewEncoder(c.wiring.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"profiles": snap.Profiles, "briefcases": snap.Briefcases})
		}
		printProfiles(c.wiring.stdout, snap.Profiles, snap.Briefcases)
		return nil
	case "add":
		name := strings.TrimSpace(strings.Join(rest, " "))
		if err := s.store.AddProfile(ctx, name); err != nil {
			return err
		}
		profiles := s.store.Snapshot().Profiles
		created := profiles[len(profiles)-1]
		fmt.Fprintf(c.wiring.stdout, "%s\t%s\n", created.ProfileID, created.ProfileName)
		return nil
	case "rm", "remove":
		if len(rest) != 1 {
			return errors.New("profiles rm requires a profile id")
		}
		if err := s.store.Load(ctx); err != nil {
			return err
		}
		s.store.RemoveProfile(rest[0])
		s.store.Wait()
		return storeError(s.store)
	default:
		return fmt.Errorf("unknown profiles action: %s", action)
	}
}
