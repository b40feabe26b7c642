package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"outreach/internal/state"
	"outreach/internal/types"
)

type TasksCommand struct {
	wiring commandWiring
}

func NewTasksCommand(wiring commandWiring) *TasksCommand {
	return &TasksCommand{wiring: wiring}
}

func (c *TasksCommand) Run(args []string) error {
	fs := pflag.NewFlagSet("tasks", pflag.ContinueOnError)
	fs.SetOutput(c.wiring.stderr)
	comment := fs.StringP("comment", "c", "", "comments for the task, one per line")
	platformName := fs.StringP("platform", "p", "", "platform to bind instead of detecting it from the link")
	asJSON := fs.Bool("json", false, "print tasks as JSON")
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
		tasks := s.store.Snapshot().Tasks
		if *asJSON {
			enc := json.NewEncoder(c.wiring.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(tasks)
		}
		printTasks(c.wiring.stdout, tasks)
		return nil
	case "add":
		if len(rest) != 1 {
			return errors.New("tasks add requires a link")
		}
		if err := s.store.Load(ctx); err != nil {
			return err
		}
		task, err := addTask(s.store, rest[0], *comment, *platformName)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.wiring.stdout, "%s\t%s\t%d briefcases\n", task.TaskID, task.SocialMedia, len(task.RelatedBriefcases))
		return nil
	case "rm", "remove":
		if len(rest) != 1 {
			return errors.New("tasks rm requires a task id")
		}
		before := len(s.store.Snapshot().Tasks)
		s.store.RemoveTask(rest[0])
		if len(s.store.Snapshot().Tasks) == before {
			return fmt.Errorf("task not found: %s", rest[0])
		}
		return nil
	case "start":
		ack, err := s.store.StartAutomation(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(c.wiring.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ack)
	default:
		return fmt.Errorf("unknown tasks action: %s", action)
	}
}

func addTask(st *state.Store, link, comment, platformName string) (types.Task, error) {
	if platformName == "" {
		return st.AddTask(link, comment)
	}
	platform, ok := types.ParsePlatform(platformName)
	if !ok {
		return types.Task{}, fmt.Errorf("unknown platform: %s", platformName)
	}
	return st.AddTaskForPlatform(link, comment, platform)
}
