package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lool-ventures/founder-skills/cli/internal/artifact"
	"github.com/lool-ventures/founder-skills/cli/internal/formatter"
)

var (
	errNoInput   = errors.New("pipe JSON input via stdin")
	errNotObject = errors.New("JSON must be an object")
)

// readInput reads all of the command's stdin.
func readInput(cmd *cobra.Command) ([]byte, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errNoInput
	}
	return data, nil
}

// readObject reads stdin as a single JSON object.
func readObject(cmd *cobra.Command) (map[string]any, error) {
	data, err := readInput(cmd)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// readInto decodes stdin into v, rejecting anything but a JSON object.
func readInto(cmd *cobra.Command, v any) error {
	data, err := readInput(cmd)
	if err != nil {
		return err
	}
	if t := bytes.TrimSpace(data); t[0] != '{' {
		var doc any
		if err := json.Unmarshal(t, &doc); err != nil {
			return fmt.Errorf("invalid JSON input: %w", err)
		}
		return errNotObject
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON input: %w", err)
	}
	return nil
}

// writeJSON encodes v and writes it to --out, or stdout when unset.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := formatter.MarshalJSON(v, cfg.Pretty || pretty)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return artifact.Emit(cmd.OutOrStdout(), output, data)
}
