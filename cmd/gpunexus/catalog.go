package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/gpunexus/internal/config"
	"github.com/san-kum/gpunexus/internal/gpu"
)

func newTopicsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "list architecture blocks and pipeline stages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(root.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, t := range gpu.Topics() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Name, t.Description)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(root.stdout)
			for _, f := range gpu.Facts() {
				fmt.Fprintf(root.stdout, "%s  %s\n", f.Title, f.Body)
			}
			return nil
		},
	}
}

func newExplainCommand(root *rootOptions) *cobra.Command {
	var contextDescription string
	cmd := &cobra.Command{
		Use:   "explain [topic]",
		Short: "ask the assistant to explain a topic",
		Long:  "Explain a catalog topic, by id or name, or any free-form topic given with --context.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := gpu.Topic{Name: args[0]}
			found, err := gpu.Lookup(args[0])
			switch {
			case err == nil:
				topic = found
			case errors.Is(err, gpu.ErrUnknownTopic):
				root.logger.Debugf("%q is not in the catalog", args[0])
			default:
				return err
			}
			if cmd.Flags().Changed("context") {
				topic.Description = contextDescription
			}

			requester, err := newRequester(cmd.Context(), root)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(root.stdout, requester.ExplainTopic(cmd.Context(), topic.Name, topic.Description))
			return err
		},
	}
	cmd.Flags().StringVar(&contextDescription, "context", "", "context sent with the topic")
	return cmd
}

func newAskCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "ask the assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question is empty")
			}
			requester, err := newRequester(cmd.Context(), root)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(root.stdout, requester.Converse(cmd.Context(), question, nil))
			return err
		},
	}
}

func newPresetsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list simulation presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(root.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTASKS\tLANES\tSERIAL TASKS/SEC\tDEADLINE\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				cfg := config.DefaultConfig()
				cfg.Simulation = p.Simulation
				s := p.Simulation
				fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\t%s\t%s\n",
					name, s.Tasks, s.Lanes, cfg.Parallel().SerialRate(), s.Deadline, p.Description)
			}
			return w.Flush()
		},
	}
}

func newConfigCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "gpunexus.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return fmt.Errorf("could not write %s: %w", path, err)
			}
			root.logger.Infof("config written to %s", path)
			_, err := fmt.Fprintln(root.stdout, path)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
